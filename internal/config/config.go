// Package config loads application configuration from the environment.
// .env and .env.local are read first; values already present in the
// environment always win.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppAddr string `env:"APP_ADDR" envDefault:":8080"`

	// postgres or memory
	StoreDriver string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseDSN string        `env:"DB_DSN"`
	DBTimeout   time.Duration `env:"DB_TIMEOUT" envDefault:"3s"`

	// Optional. Token blacklist falls back to the store when empty.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Comma-separated, e.g. "https://example.com,https://app.example.com"
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
	EnableHSTS         bool   `env:"ENABLE_HSTS" envDefault:"false"`

	// Must leave room for a full upload plus multipart overhead.
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"6291456"`

	UploadDir               string   `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadSize           int64    `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
	UploadAllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" envSeparator:"," envDefault:"jpg,jpeg,png,gif,pdf"`

	PublicRead  bool `env:"PUBLIC_READ" envDefault:"true"`
	PageSize    int  `env:"PAGE_SIZE" envDefault:"10"`
	MaxPageSize int  `env:"MAX_PAGE_SIZE" envDefault:"100"`

	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// LoadEnvFiles reads .env and .env.local without overriding the environment.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads env files, parses the environment and checks cross-field rules.
func Load() (*Config, error) {
	LoadEnvFiles()
	return Parse()
}

// Parse reads only the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when STORE_DRIVER=postgres"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.PageSize <= 0 || c.PageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be between 1 and %d", c.MaxPageSize))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}
	return errors.Join(errs...)
}
