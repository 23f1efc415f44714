package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	App     AppConfig
	Epic    EpicConfig
	Shop    ShopConfig
	Gift    GiftConfig
	Store   StoreConfig
	Cache   CacheConfig
	Tracing TracingConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"shopgifter"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.5"`
}

// EpicConfig holds platform endpoints and client credentials.
type EpicConfig struct {
	AccountBaseURL string `envconfig:"EPIC_ACCOUNT_BASE_URL" default:"https://account-public-service-prod.ol.epicgames.com"`
	MCPBaseURL     string `envconfig:"EPIC_MCP_BASE_URL" default:"https://fngw-mcp-gc-livefn.ol.epicgames.com"`
	LoginURL       string `envconfig:"EPIC_LOGIN_URL" default:"https://www.epicgames.com/id/exchange"`

	// Basic credentials for the login client and the device_auth client.
	ClientToken       string `envconfig:"EPIC_CLIENT_TOKEN" default:"OThmN2U0MmMyZTNhNGY4NmE3NGViNDNmYmI0MWVkMzk6MGEyNDQ5YTItMDAxYS00NTFlLWFmZWMtM2U4MTI5MDFjNGQ3"`
	DeviceClientToken string `envconfig:"EPIC_DEVICE_CLIENT_TOKEN" default:"M2Y2OWU1NmM3NjQ5NDkyYzhjYzI5ZjFhZjA4YThhMTI6YjUxZWU5Y2IxMjIzNGY1MGE2OWVmYTY3ZWY1MzgxMmU="`

	AuthTimeout  time.Duration `envconfig:"EPIC_AUTH_TIMEOUT" default:"10s"`
	PollInterval time.Duration `envconfig:"EPIC_POLL_INTERVAL" default:"11s"`
}

// ShopConfig holds storefront catalog settings.
type ShopConfig struct {
	URL      string        `envconfig:"SHOP_URL" default:"https://fortnite-api.com/v2/shop"`
	Timeout  time.Duration `envconfig:"SHOP_TIMEOUT" default:"15s"`
	CacheTTL time.Duration `envconfig:"SHOP_CACHE_TTL" default:"1m"`
}

// GiftConfig holds gift submission pacing.
type GiftConfig struct {
	Timeout   time.Duration `envconfig:"GIFT_TIMEOUT" default:"5s"`
	ItemDelay time.Duration `envconfig:"GIFT_ITEM_DELAY" default:"5s"`
}

// StoreConfig holds account store settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"STORE_PATH" default:"./data/accounts.db"`
	// MySQL / PostgreSQL settings
	Host     string `envconfig:"STORE_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_PORT" default:"0"`
	Name     string `envconfig:"STORE_NAME" default:"shopgifter"`
	User     string `envconfig:"STORE_USER" default:"root"`
	Password string `envconfig:"STORE_PASS" default:""`
	SSLMode  string `envconfig:"STORE_SSLMODE" default:"disable"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis

	RedisHost      string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort      int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string        `envconfig:"REDIS_KEY_PREFIX" default:"shopgifter:"`
	RecipientTTL   time.Duration `envconfig:"RECIPIENT_CACHE_TTL" default:"10m"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `envconfig:"TRACING_ENABLED" default:"false"`
	Endpoint    string `envconfig:"TRACING_ENDPOINT" default:"http://localhost:14268/api/traces"`
	ServiceName string `envconfig:"TRACING_SERVICE_NAME" default:"shopgifter"`
}

// MySQLDSN returns the MySQL data source name.
func (s *StoreConfig) MySQLDSN() string {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.User, s.Password, s.Host, port, s.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, port, s.Name, s.SSLMode)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "sqlite", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
	switch c.Cache.Type {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}
	if c.Gift.Timeout <= 0 {
		return fmt.Errorf("gift timeout must be positive")
	}
	if c.Gift.ItemDelay < 0 {
		return fmt.Errorf("gift item delay must not be negative")
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
