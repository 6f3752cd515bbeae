package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/internal/money"
)

// Config holds the application configuration.
type Config struct {
	Environment string

	// ArchiveDSN selects the transaction archive backend: a postgres://
	// URL or a SQLite file path. Empty disables archiving.
	ArchiveDSN string

	// KafkaBrokers is a comma-separated broker list; empty disables event
	// publishing. KafkaTopic defaults to "transaction_completed".
	KafkaBrokers string
	KafkaTopic   string

	// Policy limit overrides as decimal strings; empty means the default.
	OverdraftFloor       string
	TransferFee          string
	DailyWithdrawalLimit string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:          os.Getenv("APP_ENV"),
		ArchiveDSN:           os.Getenv("ARCHIVE_DSN"),
		KafkaBrokers:         os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:           os.Getenv("KAFKA_TOPIC"),
		OverdraftFloor:       os.Getenv("OVERDRAFT_FLOOR"),
		TransferFee:          os.Getenv("TRANSFER_FEE"),
		DailyWithdrawalLimit: os.Getenv("DAILY_WITHDRAWAL_LIMIT"),
	}

	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "transaction_completed"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var missing []string

	if c.Environment == "" {
		missing = append(missing, "APP_ENV")
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	if c.KafkaBrokers != "" && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	if _, err := c.Limits(); err != nil {
		return err
	}

	return nil
}

// Limits resolves the admission policy, applying defaults for any unset
// override.
func (c *Config) Limits() (ledger.Limits, error) {
	limits := ledger.DefaultLimits()

	overrides := []struct {
		name  string
		value string
		dst   *money.Money
	}{
		{"OVERDRAFT_FLOOR", c.OverdraftFloor, &limits.OverdraftFloor},
		{"TRANSFER_FEE", c.TransferFee, &limits.TransferFee},
		{"DAILY_WITHDRAWAL_LIMIT", c.DailyWithdrawalLimit, &limits.DailyWithdrawalLimit},
	}

	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		m, err := money.FromString(o.value)
		if err != nil {
			return ledger.Limits{}, fmt.Errorf("invalid %s: %w", o.name, err)
		}
		*o.dst = m
	}

	if limits.OverdraftFloor.IsPositive() {
		return ledger.Limits{}, errors.New("OVERDRAFT_FLOOR must be zero or negative")
	}
	if limits.TransferFee.IsNegative() {
		return ledger.Limits{}, errors.New("TRANSFER_FEE must not be negative")
	}
	if !limits.DailyWithdrawalLimit.IsPositive() {
		return ledger.Limits{}, errors.New("DAILY_WITHDRAWAL_LIMIT must be positive")
	}

	return limits, nil
}

// Brokers splits the comma-separated broker list.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
