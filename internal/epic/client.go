package epic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopgifter/internal/cache"
	"shopgifter/pkg/apierror"
	"shopgifter/pkg/response"

	"go.uber.org/zap"
)

// Config holds platform endpoints, client credentials and timeouts.
type Config struct {
	AccountBaseURL string
	MCPBaseURL     string
	LoginURL       string

	ClientToken       string
	DeviceClientToken string

	AuthTimeout       time.Duration
	PollInterval      time.Duration
	RecipientCacheTTL time.Duration
}

// Client talks to the account and gift services.
type Client struct {
	cfg    Config
	http   *http.Client
	cache  cache.Cache
	logger *zap.Logger
}

// NewClient creates a platform client. A nil cache disables recipient caching.
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
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 10 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 11 * time.Second
	}
	cfg.AccountBaseURL = strings.TrimRight(cfg.AccountBaseURL, "/")
	cfg.MCPBaseURL = strings.TrimRight(cfg.MCPBaseURL, "/")

	return &Client{cfg: cfg, http: httpClient, cache: c, logger: logger.Named("epic")}
}

// LoginLink builds the browser link that signs in with an exchange code.
func (c *Client) LoginLink(code string) string {
	return c.cfg.LoginURL + "?exchangeCode=" + url.QueryEscape(code)
}

func (c *Client) accountURL(format string, args ...interface{}) string {
	return c.cfg.AccountBaseURL + fmt.Sprintf(format, args...)
}

// postForm sends a form-encoded token request with Basic client credentials.
func (c *Client) postForm(ctx context.Context, basic string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.accountURL("/account/api/oauth/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.doJSON(req, out)
}

// bearer sends a request authorized with an access token and decodes the reply.
func (c *Client) bearer(ctx context.Context, method, target, token string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apierror.Transport(fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
	}
	return response.JSON(resp, out)
}

func (c *Client) authContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.AuthTimeout)
}
