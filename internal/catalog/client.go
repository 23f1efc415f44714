package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shopgifter/internal/cache"
	"shopgifter/internal/model"
	"shopgifter/pkg/apierror"
	"shopgifter/pkg/response"

	"go.uber.org/zap"
)

// cacheKey is where the raw storefront payload is cached.
const cacheKey = "catalog:shop"

// Config holds storefront client settings.
type Config struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client reads the public storefront snapshot. No auth is required.
type Client struct {
	cfg    Config
	http   *http.Client
	cache  cache.Cache
	logger *zap.Logger
}

// NewClient creates a storefront client. A nil cache disables caching.
func NewClient(cfg Config, httpClient *http.Client, c cache.Cache, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: httpClient, cache: c, logger: logger.Named("catalog")}
}

type shopPayload struct {
	Data struct {
		Entries []model.ShopEntry `json:"entries"`
	} `json:"data"`
}

// Fetch returns the current storefront entries in catalog order. Any
// transport, status or decode failure yields an empty slice; the cause is logged.
func (c *Client) Fetch(ctx context.Context) []model.ShopEntry {
	entries, err := c.FetchEntries(ctx)
	if err != nil {
		c.logger.Warn("storefront unavailable", zap.Error(err))
		return []model.ShopEntry{}
	}
	return entries
}

// FetchEntries is Fetch with the error exposed.
func (c *Client) FetchEntries(ctx context.Context) ([]model.ShopEntry, error) {
	raw, err := c.cache.GetOrSet(ctx, cacheKey, c.cfg.CacheTTL, func() ([]byte, error) {
		return c.download(ctx)
	})
	if err != nil {
		return nil, err
	}

	var payload shopPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		_ = c.cache.Delete(ctx, cacheKey)
		return nil, apierror.Transport("invalid storefront payload", err)
	}
	if payload.Data.Entries == nil {
		return []model.ShopEntry{}, nil
	}

	c.logger.Debug("storefront fetched", zap.Int("entries", len(payload.Data.Entries)))
	return payload.Data.Entries, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build storefront request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apierror.Transport("storefront request failed", err)
	}

	body, err := response.Body(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierror.FromResponse(resp.StatusCode, body)
	}
	return body, nil
}
