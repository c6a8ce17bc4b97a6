package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the API and the CLI tools.
type Config struct {
	Port              string `yaml:"port"`
	DatabaseURL       string `yaml:"database_url"`
	SupabaseJWTSecret string `yaml:"-"`
	ResendAPIKey      string `yaml:"-"`
	ResendBaseURL     string `yaml:"resend_base_url"`
	MailFrom          string `yaml:"mail_from"`
	MarketTimezone    string `yaml:"market_timezone"`
	TaxRateBps        int64  `yaml:"tax_rate_bps"`

	ListingCacheTTL time.Duration `yaml:"listing_cache_ttl"`

	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig tunes the connection pool and the transient-failure retry.
type DatabaseConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryBaseDelay  time.Duration `yaml:"retry_base_delay"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:            "8080",
		ResendBaseURL:   "https://api.resend.com",
		MailFrom:        "Cornucopia <no-reply@cornucopia.market>",
		MarketTimezone:  "UTC",
		ListingCacheTTL: 5 * time.Minute,
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			RetryAttempts:   3,
			RetryBaseDelay:  100 * time.Millisecond,
		},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then environment variables. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		log.Println("config: no .env file, using process environment")
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.ApplyYAML(data); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyYAML overlays the YAML document on cfg. Absent keys keep their value.
func (c *Config) ApplyYAML(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("APP_PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SupabaseJWTSecret = getEnv("SUPABASE_JWT_SECRET", c.SupabaseJWTSecret)
	c.ResendAPIKey = getEnv("RESEND_API_KEY", c.ResendAPIKey)
	c.ResendBaseURL = getEnv("RESEND_BASE_URL", c.ResendBaseURL)
	c.MailFrom = getEnv("MAIL_FROM", c.MailFrom)
	c.MarketTimezone = getEnv("MARKET_TIMEZONE", c.MarketTimezone)

	var err error
	if c.TaxRateBps, err = getInt64("TAX_RATE_BPS", c.TaxRateBps); err != nil {
		return err
	}
	if c.ListingCacheTTL, err = getDuration("LISTING_CACHE_TTL", c.ListingCacheTTL); err != nil {
		return err
	}

	db := &c.Database
	if db.RetryAttempts, err = getInt("DB_RETRY_ATTEMPTS", db.RetryAttempts); err != nil {
		return err
	}
	if db.RetryBaseDelay, err = getDuration("DB_RETRY_BASE_DELAY", db.RetryBaseDelay); err != nil {
		return err
	}
	if db.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns); err != nil {
		return err
	}
	if db.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", db.MaxIdleConns); err != nil {
		return err
	}
	if db.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", db.ConnMaxLifetime); err != nil {
		return err
	}
	return nil
}

// Validate reports missing or malformed settings shared by every binary.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.TaxRateBps < 0 {
		return errors.New("TAX_RATE_BPS must not be negative")
	}
	if c.ListingCacheTTL <= 0 {
		return errors.New("LISTING_CACHE_TTL must be positive")
	}
	return nil
}

// ValidateServer adds the checks only the HTTP API needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SupabaseJWTSecret == "" {
		return errors.New("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

// Location resolves MarketTimezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.MarketTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_TIMEZONE %q: %w", c.MarketTimezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
