// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Port       int    `yaml:"port"`
	JWTSecret  string `yaml:"jwt_secret"`
	AdminUser  string `yaml:"admin_user"`
	AdminPass  string `yaml:"admin_pass"`
	SuccessURL string `yaml:"success_url"` // browser redirect target after verify
	FailureURL string `yaml:"failure_url"`
}

type ZarinPalConfig struct {
	MerchantID  string `yaml:"merchant_id"`
	CallbackURL string `yaml:"callback_url"`
	Sandbox     bool   `yaml:"sandbox"`
}

type PaymentConfig struct {
	GatewayEnabled      bool  `yaml:"gateway_enabled"`
	CardTransferEnabled bool  `yaml:"card_transfer_enabled"`
	MinAmountIRR        int64 `yaml:"min_amount_irr"`
	MaxAmountIRR        int64 `yaml:"max_amount_irr"`

	ZarinPal ZarinPalConfig `yaml:"zarinpal"`

	// Shown to the user for card-transfer payments.
	BankAccount string `yaml:"bank_account"`
}

type RenewalConfig struct {
	FreeRenewalCount    int   `yaml:"free_renewal_count"`
	RenewalDurationDays int   `yaml:"renewal_duration_days"`
	PriceIRR            int64 `yaml:"price_irr"`
}

type SweepConfig struct {
	Interval              time.Duration `yaml:"interval"`
	PendingTimeoutMinutes int           `yaml:"pending_timeout_minutes"`
	CardWindowMinutes     int           `yaml:"card_window_minutes"`
	FeaturedWarningHours  int           `yaml:"featured_warning_hours"`
	ExpiryWarningDays     int           `yaml:"expiry_warning_days"`
	BatchLimit            int           `yaml:"batch_limit"`
	LockTTL               time.Duration `yaml:"lock_ttl"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	Renewal  RenewalConfig  `yaml:"renewal"`
	Sweep    SweepConfig    `yaml:"sweep"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Payment.MinAmountIRR <= 0 {
		cfg.Payment.MinAmountIRR = 10_000
	}
	if cfg.Payment.MaxAmountIRR <= 0 {
		cfg.Payment.MaxAmountIRR = 1_000_000_000
	}
	if cfg.Renewal.FreeRenewalCount <= 0 {
		cfg.Renewal.FreeRenewalCount = 1
	}
	if cfg.Renewal.RenewalDurationDays <= 0 {
		cfg.Renewal.RenewalDurationDays = 30
	}
	if cfg.Renewal.PriceIRR <= 0 {
		cfg.Renewal.PriceIRR = 300_000
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = time.Minute
	}
	if cfg.Sweep.PendingTimeoutMinutes <= 0 {
		cfg.Sweep.PendingTimeoutMinutes = 30
	}
	if cfg.Sweep.CardWindowMinutes <= 0 {
		cfg.Sweep.CardWindowMinutes = 10
	}
	if cfg.Sweep.FeaturedWarningHours <= 0 {
		cfg.Sweep.FeaturedWarningHours = 24
	}
	if cfg.Sweep.ExpiryWarningDays <= 0 {
		cfg.Sweep.ExpiryWarningDays = 7
	}
	if cfg.Sweep.BatchLimit <= 0 {
		cfg.Sweep.BatchLimit = 200
	}
	if cfg.Sweep.LockTTL <= 0 {
		cfg.Sweep.LockTTL = 2 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Payment.GatewayEnabled && cfg.Payment.ZarinPal.MerchantID == "" {
		return nil, errors.New("payment.zarinpal.merchant_id is required when the gateway method is enabled")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}

// PendingTimeout returns the gateway pending window as a duration.
func (s SweepConfig) PendingTimeout() time.Duration {
	return time.Duration(s.PendingTimeoutMinutes) * time.Minute
}

// CardWindow returns the card-transfer confirmation window as a duration.
func (s SweepConfig) CardWindow() time.Duration {
	return time.Duration(s.CardWindowMinutes) * time.Minute
}
