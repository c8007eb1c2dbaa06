package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds runtime configuration for the service.
type Config struct {
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DBPath      string `envconfig:"DB_PATH" default:"tenanttrack.db"`

	LateFeePercent float64 `envconfig:"LATE_FEE_PERCENT" default:"5"`
	LateFeeMax     float64 `envconfig:"LATE_FEE_MAX" default:"0"` // 0 = uncapped
	RentDueDay     int     `envconfig:"RENT_DUE_DAY" default:"1"`
	TaxRoundAmount bool    `envconfig:"TAX_ROUND_AMOUNT" default:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.StoreDriver != DriverSQLite && c.StoreDriver != DriverMemory {
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.RentDueDay < 1 || c.RentDueDay > 28 {
		return fmt.Errorf("rent due day must be between 1 and 28, got %d", c.RentDueDay)
	}
	if c.LateFeePercent < 0 || c.LateFeeMax < 0 {
		return fmt.Errorf("late fee settings must not be negative")
	}
	return nil
}

// LateFeePercentage returns LATE_FEE_PERCENT as money arithmetic input.
func (c *Config) LateFeePercentage() decimal.Decimal {
	return decimal.NewFromFloat(c.LateFeePercent)
}

// MaxLateFee returns LATE_FEE_MAX; zero means no cap.
func (c *Config) MaxLateFee() decimal.Decimal {
	return decimal.NewFromFloat(c.LateFeeMax)
}
