package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters, resolved once at
// startup.
type Config struct {
	SupabaseURL string `env:"SUPABASE_URL"`
	JWKSURL     string `env:"SUPABASE_JWKS_URL"`
	CORSOrigin  string `env:"CORS_ORIGIN" envDefault:"*"`
	Port        string `env:"PORT" envDefault:"8080"`
	DBPath      string `env:"DB_PATH" envDefault:"data/db.json"`
	LogLevel    int    `env:"LOG_LEVEL" envDefault:"0"`
}

// Issuer returns the token issuer URL of the configured Supabase project.
func (c *Config) Issuer() string {
	return c.SupabaseURL + "/auth/v1"
}

// Load reads configuration from environment variables. The JWKS endpoint
// is derived from the project URL unless explicitly overridden.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	if cfg.SupabaseURL == "" {
		return nil, errors.New("SUPABASE_URL is required")
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = cfg.SupabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &cfg, nil
}
