package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// RPC is the chain node collaborator: one-shot submission plus status
// queries for a signature.
type RPC interface {
	// SubmitTransaction sends the raw signed payload and returns the
	// transaction signature. It is called at most once per submission
	// attempt; propagation retries are the network's concern.
	SubmitTransaction(ctx context.Context, payload []byte) (signature string, err error)

	// SignatureStatus returns the current status of a signature. A status
	// with LevelUnobserved and no Err means the node has not seen it yet.
	SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
}

// RPCClient is an HTTP JSON-RPC implementation of RPC.
type RPCClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRPCClient creates a JSON-RPC client for the given node URL.
func NewRPCClient(url string, logger *zap.Logger) *RPCClient {
	return &RPCClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rpc status %d: %s", resp.StatusCode, string(data))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// SubmitTransaction sends the base64-encoded payload via sendTransaction.
func (c *RPCClient) SubmitTransaction(ctx context.Context, payload []byte) (signature string, err error) {
	encoded := base64.StdEncoding.EncodeToString(payload)
	params := []interface{}{
		encoded,
		map[string]interface{}{"encoding": "base64"},
	}

	err = c.call(ctx, "sendTransaction", params, &signature)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Debug("transaction-submitted", zap.String("signature", signature))
	return signature, nil
}

// SignatureStatus queries getSignatureStatuses for a single signature.
func (c *RPCClient) SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	params := []interface{}{
		[]string{signature},
		map[string]interface{}{"searchTransactionHistory": true},
	}

	var result struct {
		Value []*struct {
			Slot               uint64          `json:"slot"`
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}
	err := c.call(ctx, "getSignatureStatuses", params, &result)
	if err != nil {
		return nil, fmt.Errorf("get signature statuses: %w", err)
	}

	if len(result.Value) == 0 || result.Value[0] == nil {
		return &SignatureStatus{Level: LevelUnobserved}, nil
	}

	entry := result.Value[0]
	status := &SignatureStatus{
		Level: ConfirmationLevel(entry.ConfirmationStatus),
		Slot:  entry.Slot,
	}
	if len(entry.Err) > 0 && string(entry.Err) != "null" {
		status.Err = string(entry.Err)
	}
	return status, nil
}
