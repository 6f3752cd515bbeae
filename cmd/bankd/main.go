package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/bank-core/internal/archive"
	"github.com/example/bank-core/internal/config"
	"github.com/example/bank-core/internal/events"
	eventskafka "github.com/example/bank-core/internal/events/kafka"
	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/internal/money"
)

const flushInterval = 30 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Environment)
	defer logger.Sync()

	limits, err := cfg.Limits()
	if err != nil {
		logger.Fatal("invalid limit configuration", zap.Error(err))
	}

	bank := ledger.New(limits, logger)

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open archive store", zap.Error(err))
	}
	defer store.Close()

	var publisher events.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := eventskafka.NewPublisher(brokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		logger.Info("kafka publisher enabled",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	exporter := archive.NewExporter(bank, store, publisher, cfg.KafkaTopic, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("shutting down")
		cancel()
	}()

	runDemo(bank, logger)

	logger.Info("archiving transaction log", zap.Duration("interval", flushInterval))
	if err := exporter.Run(ctx, flushInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("archive exporter stopped", zap.Error(err))
	}
}

// runDemo exercises the ledger end to end: two customers, a deposit, a
// withdrawal and a cross-account transfer, then dumps the resulting
// balances and histories.
func runDemo(bank *ledger.Ledger, logger *zap.Logger) {
	john, err := bank.CreateAccount("John Doe", "US12345678", ledger.AccountChecking, money.MustFromString("1000.00"))
	if err != nil {
		logger.Fatal("create account failed", zap.Error(err))
	}
	jane, err := bank.CreateAccount("Jane Smith", "US87654321", ledger.AccountSavings, money.MustFromString("500.00"))
	if err != nil {
		logger.Fatal("create account failed", zap.Error(err))
	}

	if ok, err := bank.Deposit(john, money.MustFromString("250.00"), "Salary deposit"); err != nil || !ok {
		logger.Fatal("deposit failed", zap.Bool("accepted", ok), zap.Error(err))
	}
	if ok, err := bank.Withdraw(john, money.MustFromString("100.00"), "ATM withdrawal"); err != nil || !ok {
		logger.Fatal("withdrawal failed", zap.Bool("accepted", ok), zap.Error(err))
	}
	if ok, err := bank.Transfer(john, jane, money.MustFromString("200.00"), "Payment to Jane"); err != nil || !ok {
		logger.Fatal("transfer failed", zap.Bool("accepted", ok), zap.Error(err))
	}

	for _, number := range []string{john, jane} {
		info, ok := bank.GetAccount(number)
		if !ok {
			continue
		}
		logger.Info("account",
			zap.String("number", info.Number),
			zap.String("customer", info.CustomerName),
			zap.String("balance", info.Balance.String()))

		for _, txn := range bank.GetTransactionHistory(number) {
			logger.Info("transaction",
				zap.String("id", txn.ID),
				zap.String("kind", string(txn.Kind)),
				zap.String("amount", txn.Amount.String()),
				zap.String("description", txn.Description))
		}
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (archive.Store, error) {
	dsn := cfg.ArchiveDSN
	if dsn == "" {
		dsn = "bank-archive.db"
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		store := archive.NewPostgresStore(pool)
		if err := store.InitSchema(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("using postgres archive")
		return store, nil
	}

	logger.Info("using sqlite archive", zap.String("path", dsn))
	return archive.OpenSQLite(dsn)
}

func newLogger(environment string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
