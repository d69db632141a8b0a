package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`

	DBDriver    string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL string `env:"DATABASE_URL,default=host=postgres user=postgres password=postgres dbname=shop port=5432 sslmode=disable"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`
	JWTIssuer string        `env:"JWT_ISSUER,default=storefront"`

	OIDCIssuer   string `env:"OIDC_ISSUER"`
	OIDCClientID string `env:"OIDC_CLIENT_ID"`

	RedisAddr string        `env:"REDIS_ADDR"`
	CacheTTL  time.Duration `env:"CACHE_TTL,default=5m"`

	CORSOrigins   string `env:"CORS_ORIGINS,default=*"`
	AuthRateLimit int    `env:"AUTH_RATE_LIMIT,default=5"`
	AuthRateBurst int    `env:"AUTH_RATE_BURST,default=10"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	SeedCatalog   bool   `env:"SEED_CATALOG,default=false"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// Load reads envFile when it exists and then decodes the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required with the postgres driver")
		}
	case "sqlite":
		if c.JWTSecret == "" {
			c.JWTSecret = "dev-only-secret"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if (c.OIDCIssuer == "") != (c.OIDCClientID == "") {
		return errors.New("OIDC_ISSUER and OIDC_CLIENT_ID must be set together")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}
