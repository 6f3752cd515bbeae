package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Helper to reset env
	resetEnv := func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("ARCHIVE_DSN")
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("KAFKA_TOPIC")
		os.Unsetenv("OVERDRAFT_FLOOR")
		os.Unsetenv("TRANSFER_FEE")
		os.Unsetenv("DAILY_WITHDRAWAL_LIMIT")
	}
	resetEnv()
	defer resetEnv()

	// 1. Missing APP_ENV -> Fail
	_, err := Load()
	if err == nil {
		t.Error("expected error when APP_ENV is missing, got nil")
	}

	// 2. Minimal config -> Success with defaults
	os.Setenv("APP_ENV", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.KafkaTopic != "transaction_completed" {
		t.Errorf("expected default topic, got %s", cfg.KafkaTopic)
	}

	limits, err := cfg.Limits()
	if err != nil {
		t.Fatalf("limits: %v", err)
	}
	if limits.TransferFee.String() != "2.50" {
		t.Errorf("expected default fee 2.50, got %s", limits.TransferFee)
	}

	// 3. Invalid policy override -> Fail
	os.Setenv("TRANSFER_FEE", "not-money")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed TRANSFER_FEE")
	}
	os.Setenv("TRANSFER_FEE", "-1.00")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative TRANSFER_FEE")
	}

	// 4. Valid overrides -> Success
	os.Setenv("TRANSFER_FEE", "0.00")
	os.Setenv("OVERDRAFT_FLOOR", "-250.00")
	os.Setenv("DAILY_WITHDRAWAL_LIMIT", "2000.00")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	limits, err = cfg.Limits()
	if err != nil {
		t.Fatalf("limits: %v", err)
	}
	if limits.OverdraftFloor.String() != "-250.00" {
		t.Errorf("expected floor -250.00, got %s", limits.OverdraftFloor)
	}

	// 5. Broker list parsing
	os.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	brokers := cfg.Brokers()
	if len(brokers) != 2 || brokers[1] != "broker-2:9092" {
		t.Errorf("unexpected brokers: %v", brokers)
	}
}
