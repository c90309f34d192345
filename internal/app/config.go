package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SWIFTPOS_ prefix), flags, or YAML config files.
type Config struct {
	Addr string `default:"0.0.0.0:8080" usage:"API server listen address"`

	// DatabaseURL selects the PostgreSQL backend; when empty the server
	// falls back to the single-file local store at LocalStorePath.
	DatabaseURL    string `usage:"PostgreSQL connection URL (SWIFTPOS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	LocalStorePath string `default:"swiftpos-state.json" usage:"State file path for the file-backed store" flag:"local-store-path"`

	RedisAddr string `usage:"Redis address enabling the catalog read cache (host:port)" flag:"redis-addr"`

	LegacyBaseURL string        `usage:"Legacy POS API base URL; enables the checkout bridge" flag:"legacy-base-url"`
	LegacyTimeout time.Duration `default:"10s" usage:"Legacy POS API request timeout" flag:"legacy-timeout"`

	GeminiAPIKey string `usage:"Generative Language API key; empty serves canned insights" flag:"gemini-api-key"`
	GeminiModel  string `default:"gemini-1.5-flash" usage:"Generative Language model name" flag:"gemini-model"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client sliding window rate limiter.
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
		EnvPrefix: "SWIFTPOS",
		Files:     []string{"config.yaml", "/etc/swiftpos/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's SWIFTPOS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
