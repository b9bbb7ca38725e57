// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Ebay     EbayConfig     `yaml:"ebay"`
	Cookie   CookieConfig   `yaml:"cookie"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Quota    QuotaConfig    `yaml:"quota"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings for the publish
// journal. The journal is optional; an empty host disables it.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a journal database is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// EbayConfig defines eBay API credentials and environment settings.
// ClientSecret is expected to arrive via ${ENV_VAR} substitution, never as
// a literal in a checked-in file.
type EbayConfig struct {
	ClientID     string             `yaml:"client_id"`
	ClientSecret string             `yaml:"client_secret"`
	RedirectName string             `yaml:"redirect_name"` // eBay RuName, not a URL
	Environment  domain.Environment `yaml:"environment"`
	Marketplace  string             `yaml:"marketplace"`

	// Endpoint overrides for tests; empty values resolve from Environment.
	AuthURL      string `yaml:"auth_url"`
	TokenURL     string `yaml:"token_url"`
	APIBaseURL   string `yaml:"api_base_url"`
	AnalyticsURL string `yaml:"analytics_url"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines eBay API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// CookieConfig defines the encrypted session cookie settings. Key is the
// base64 encoding of exactly 32 bytes of key material.
type CookieConfig struct {
	Key    string        `yaml:"key"`
	MaxAge time.Duration `yaml:"max_age"`
}

// KeyBytes decodes the configured cookie key.
func (c *CookieConfig) KeyBytes() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.Key)
	if err != nil {
		return nil, fmt.Errorf("decoding cookie key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cookie key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// PricingConfig defines VAT and suggested-price derivation settings.
type PricingConfig struct {
	VATRate       float64 `yaml:"vat_rate"`
	Base          string  `yaml:"base"` // min, median
	UndercutBy    float64 `yaml:"undercut_by"`
	MinGrossPrice float64 `yaml:"min_gross_price"`
}

// QuotaConfig defines the Analytics API quota poller settings.
type QuotaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyEbayDefaults(&cfg.Ebay)
	applyCookieDefaults(&cfg.Cookie)
	applyPricingDefaults(&cfg.Pricing)
	applyQuotaDefaults(&cfg.Quota)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyEbayDefaults(e *EbayConfig) {
	if e.Environment == "" {
		e.Environment = domain.EnvSandbox
	}
	if e.Marketplace == "" {
		e.Marketplace = "EBAY_DE"
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applyCookieDefaults(c *CookieConfig) {
	if c.MaxAge == 0 {
		c.MaxAge = 30 * 24 * time.Hour
	}
}

func applyPricingDefaults(p *PricingConfig) {
	if p.VATRate == 0 {
		p.VATRate = 0.19
	}
	if p.Base == "" {
		p.Base = "min"
	}
	if p.UndercutBy == 0 {
		p.UndercutBy = 0.5
	}
	if p.MinGrossPrice == 0 {
		p.MinGrossPrice = 1.0
	}
}

func applyQuotaDefaults(q *QuotaConfig) {
	if q.PollInterval == 0 {
		q.PollInterval = 15 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Ebay.ClientID == "" {
		errs = append(errs, fmt.Errorf("ebay.client_id is required"))
	}
	if cfg.Ebay.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("ebay.client_secret is required"))
	}
	if cfg.Ebay.RedirectName == "" {
		errs = append(errs, fmt.Errorf("ebay.redirect_name is required"))
	}

	switch cfg.Ebay.Environment {
	case domain.EnvSandbox, domain.EnvProduction:
	default:
		errs = append(errs, fmt.Errorf(
			"ebay.environment must be SANDBOX or PRODUCTION (got %q)",
			cfg.Ebay.Environment,
		))
	}

	if cfg.Cookie.Key == "" {
		errs = append(errs, fmt.Errorf("cookie.key is required"))
	} else if _, err := cfg.Cookie.KeyBytes(); err != nil {
		errs = append(errs, fmt.Errorf("cookie.key is invalid: %w", err))
	}

	switch cfg.Pricing.Base {
	case "min", "median":
	default:
		errs = append(errs, fmt.Errorf(
			"pricing.base must be min or median (got %q)", cfg.Pricing.Base,
		))
	}

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when database.host is set"))
		}
	}

	return errors.Join(errs...)
}
