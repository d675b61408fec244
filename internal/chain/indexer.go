package chain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Indexer re-fetches landed transactions in structured form. It is only
// consulted after on-chain confirmation.
type Indexer interface {
	GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error)
}

// IndexerClient is an HTTP client for the transaction indexer.
type IndexerClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewIndexerClient creates a new indexer client.
func NewIndexerClient(baseURL string, logger *zap.Logger) *IndexerClient {
	return &IndexerClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// GetTransaction fetches the structured description of a transaction.
func (c *IndexerClient) GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error) {
	requestURL := fmt.Sprintf("%s/transactions/%s", c.baseURL, url.PathEscape(signature))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("transaction %s not indexed yet", signature)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer status %d", resp.StatusCode)
	}

	var detail TransactionDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	c.logger.Debug("transaction-fetched",
		zap.String("signature", signature),
		zap.String("type", detail.Type),
		zap.Int("transfer-count", len(detail.Transfers)))

	return &detail, nil
}
