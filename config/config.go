// Package config loads service options from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultHTTPAddr        = ":5005"
	DefaultTokenExpiration = 1176 * time.Hour
	DefaultDBDriver        = "sqlite"
	DefaultDatabaseURL     = "file:attend?mode=memory&cache=shared"
	DefaultBcryptCost      = 10
	DefaultLogLevel        = "info"
	DefaultAPIPrefix       = "/api/auth"
)

// ErrMissingSecret aborts startup when no signing secret is configured
var ErrMissingSecret = errors.New("config: TOKEN_SECRET must be set")

// Config holds the service configuration. It satisfies auth.Config.
type Config struct {
	// HTTPAddr is the listen address
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// TokenSecret is the HS256 signing secret
	TokenSecret string `mapstructure:"TOKEN_SECRET"`
	// TokenPreviousSecret still verifies tokens after a secret rotation
	TokenPreviousSecret string        `mapstructure:"TOKEN_PREVIOUS_SECRET"`
	TokenExpiration     time.Duration `mapstructure:"TOKEN_EXPIRATION"`
	TokenIssuer         string        `mapstructure:"TOKEN_ISSUER"`
	// DBDriver is one of sqlite or postgres
	DBDriver        string `mapstructure:"DB_DRIVER"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST"`
	StrictPhoneCode bool   `mapstructure:"STRICT_PHONE_CODE"`
	UseHashid       bool   `mapstructure:"USE_HASHID"`
	Debug           bool   `mapstructure:"DEBUG"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	APIPrefix       string `mapstructure:"API_PREFIX"`
}

// Load reads the given .env files (default .env) if present, then
// builds and validates Config from the environment. Environment
// variables win over .env values.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", DefaultHTTPAddr)
	v.SetDefault("TOKEN_SECRET", "")
	v.SetDefault("TOKEN_PREVIOUS_SECRET", "")
	v.SetDefault("TOKEN_EXPIRATION", DefaultTokenExpiration.String())
	v.SetDefault("TOKEN_ISSUER", "")
	v.SetDefault("DB_DRIVER", DefaultDBDriver)
	v.SetDefault("DATABASE_URL", DefaultDatabaseURL)
	v.SetDefault("BCRYPT_COST", DefaultBcryptCost)
	v.SetDefault("STRICT_PHONE_CODE", false)
	v.SetDefault("USE_HASHID", false)
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", DefaultLogLevel)
	v.SetDefault("API_PREFIX", DefaultAPIPrefix)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return ErrMissingSecret
	}

	if c.TokenPreviousSecret != "" && c.TokenPreviousSecret == c.TokenSecret {
		return errors.New("config: TOKEN_PREVIOUS_SECRET must differ from TOKEN_SECRET")
	}

	if c.TokenExpiration <= 0 {
		return errors.New("config: TOKEN_EXPIRATION must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unsupported LOG_LEVEL %q", c.LogLevel)
	}

	return nil
}

func (c *Config) GetSigningKey() string {
	return c.TokenSecret
}

func (c *Config) GetSigningMethod() string {
	return "HS256"
}

func (c *Config) GetContextKey() string {
	return "user"
}

func (c *Config) GetTokenExpiration() time.Duration {
	return c.TokenExpiration
}

func (c *Config) GetTokenLookup() string {
	return "header:Authorization"
}

func (c *Config) GetAuthScheme() string {
	return "Bearer"
}

func (c *Config) GetIssuer() string {
	return c.TokenIssuer
}
