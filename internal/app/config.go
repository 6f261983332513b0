package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL   string        `usage:"PostgreSQL connection URL (SHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL      string        `default:"redis://localhost:6379/0" usage:"Redis connection URL for session storage" flag:"redis-url"`
	PublicBaseURL string        `default:"http://localhost:8080" usage:"Externally visible origin, used for payment redirect URLs" flag:"public-base-url"`
	InvoiceDir    string        `default:"data/invoices" usage:"Directory where generated invoice PDFs are stored" flag:"invoice-dir"`
	Currency      string        `default:"usd" usage:"ISO currency code used for checkout sessions"`
	PageSize      int           `default:"20" usage:"Catalog page size" flag:"page-size"`
	SessionTTL    time.Duration `default:"720h" usage:"Session inactivity expiry" flag:"session-ttl"`
	Payment       PaymentConfig
	Kafka         KafkaConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// PaymentConfig points at the hosted payment provider.
type PaymentConfig struct {
	BaseURL string `usage:"Payment provider API base URL (SHOP_PAYMENT_BASE_URL)" flag:"payment-base-url"`
	APIKey  string `usage:"Payment provider secret key (SHOP_PAYMENT_API_KEY)" flag:"payment-api-key"`
}

// KafkaConfig controls order event publishing. Leaving Brokers empty
// disables publishing entirely.
type KafkaConfig struct {
	Brokers []string `usage:"Kafka broker addresses; empty disables event publishing" flag:"kafka-brokers"`
	Topic   string   `default:"storefront.orders" usage:"Kafka topic for order events" flag:"kafka-topic"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set SHOP_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Payment.BaseURL == "" {
		return nil, errors.New("payment provider base URL is required: set SHOP_PAYMENT_BASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisURL == "redis://localhost:6379/0" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
