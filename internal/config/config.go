package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "boxoffice.yaml"

// Config holds all configuration for the application
type Config struct {
	// Variant selects the storefront or the admin console
	Variant string `yaml:"variant" validate:"oneof=storefront console"`

	// Remote ticketing API
	API APIConfig `yaml:"api"`

	// Web frontend
	Frontend FrontendConfig `yaml:"frontend"`

	// Client session persistence
	Session SessionConfig `yaml:"session"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`

	// Local development API
	DevAPI DevAPIConfig `yaml:"devapi"`
}

// APIConfig holds the remote API location
type APIConfig struct {
	URL string `yaml:"url" validate:"required,url"`
}

// FrontendConfig holds web frontend settings
type FrontendConfig struct {
	ListenAddr     string   `yaml:"listen_addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// LoginRatePerMinute limits login form submissions; 0 disables the limit
	LoginRatePerMinute float64 `yaml:"login_rate_per_minute" validate:"gte=0"`
}

// SessionConfig holds session store settings
type SessionConfig struct {
	Store              string        `yaml:"store" validate:"oneof=file keyring sqlite memory"`
	Path               string        `yaml:"path"` // empty = per-user default
	RevalidateInterval time.Duration `yaml:"revalidate_interval" validate:"gte=1s"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// DevAPIConfig holds settings for the local development API
type DevAPIConfig struct {
	ListenAddr  string        `yaml:"listen_addr"`
	DatabaseURL string        `yaml:"database_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// Defaults returns the configuration used when nothing is set
func Defaults(variant string) *Config {
	listenAddr := ":3000"
	if variant == "console" {
		listenAddr = ":3001"
	}

	return &Config{
		Variant: variant,
		API: APIConfig{
			URL: "http://localhost:8080",
		},
		Frontend: FrontendConfig{
			ListenAddr:         listenAddr,
			LoginRatePerMinute: 10,
		},
		Session: SessionConfig{
			Store:              "file",
			RevalidateInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		DevAPI: DevAPIConfig{
			ListenAddr:  ":8080",
			DatabaseURL: "devapi.sqlite",
			TokenTTL:    time.Hour,
		},
	}
}

// Load builds the configuration for variant from defaults, an optional
// YAML file (BOXOFFICE_CONFIG, default boxoffice.yaml) and environment
// variables, in increasing precedence
func Load(variant string) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Defaults(variant)

	path := os.Getenv("BOXOFFICE_CONFIG")
	if path == "" {
		path = defaultConfigFile
	}
	if err := cfg.loadFile(path, os.Getenv("BOXOFFICE_CONFIG") != ""); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Variant, "BOXOFFICE_VARIANT")
	setString(&c.API.URL, "BOXOFFICE_API_URL")
	setString(&c.Frontend.ListenAddr, "BOXOFFICE_LISTEN_ADDR")
	setString(&c.Session.Store, "SESSION_STORE")
	setString(&c.Session.Path, "SESSION_PATH")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.DevAPI.ListenAddr, "DEVAPI_LISTEN_ADDR")
	setString(&c.DevAPI.DatabaseURL, "DEVAPI_DATABASE_URL")
	setString(&c.DevAPI.JWTSecret, "DEVAPI_JWT_SECRET")

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Frontend.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Frontend.AllowedOrigins = append(c.Frontend.AllowedOrigins, origin)
			}
		}
	}

	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LOGIN_RATE_LIMIT %q: %w", v, err)
		}
		c.Frontend.LoginRatePerMinute = rate
	}

	if err := setDuration(&c.Session.RevalidateInterval, "SESSION_REVALIDATE_INTERVAL"); err != nil {
		return err
	}
	return setDuration(&c.DevAPI.TokenTTL, "DEVAPI_TOKEN_TTL")
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
