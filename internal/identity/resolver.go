// Package identity resolves on-chain addresses to stable dashboard
// identities via the social-graph backend.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Identity is the stable profile behind an address.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Resolver maps an address to an optional stable identity. A nil Identity
// with nil error means the address is unknown.
type Resolver interface {
	Resolve(ctx context.Context, address string) (*Identity, error)
}

// HTTPResolver is an HTTP client for the identity-resolution service with a
// ristretto TTL cache in front of it.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
	cache      *ristretto.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// Config holds resolver configuration.
type Config struct {
	BaseURL  string
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// negative is the cache marker for addresses known to be unresolvable.
type negative struct{}

// NewHTTPResolver creates a new cached identity resolver.
func NewHTTPResolver(cfg *Config) (*HTTPResolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100000, // 10x expected max cached identities
		MaxCost:     10000,  // items, not bytes
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &HTTPResolver{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   cfg.Logger,
	}, nil
}

// Resolve returns the identity behind an address, consulting the cache
// first. Unknown addresses are cached too so repeated misses stay cheap.
func (r *HTTPResolver) Resolve(ctx context.Context, address string) (*Identity, error) {
	if cached, found := r.cache.Get(address); found {
		CacheHitsTotal.Inc()
		if _, unknown := cached.(negative); unknown {
			return nil, nil
		}
		identity := cached.(Identity)
		return &identity, nil
	}
	CacheMissesTotal.Inc()

	requestURL := fmt.Sprintf("%s/identities/%s", r.baseURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		r.cache.SetWithTTL(address, negative{}, 1, r.cacheTTL)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}

	r.cache.SetWithTTL(address, identity, 1, r.cacheTTL)
	r.logger.Debug("identity-resolved",
		zap.String("address", address),
		zap.String("id", identity.ID))

	return &identity, nil
}
