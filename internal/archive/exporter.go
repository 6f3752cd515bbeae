package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/bank-core/internal/events"
	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/pkg/audit"
)

// Exporter drains new transaction log entries into a Store, chaining
// tamper-evidence hashes as it goes, and optionally publishing a
// TransactionCompleted event per entry. It resumes from the store's tip,
// so restarts and replays are safe.
type Exporter struct {
	ledger    *ledger.Ledger
	store     Store
	publisher events.Publisher
	topic     string
	logger    *zap.Logger
}

// NewExporter wires an exporter. publisher may be nil to archive without
// event delivery; a nil logger disables logging.
func NewExporter(l *ledger.Ledger, store Store, publisher events.Publisher, topic string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		ledger:    l,
		store:     store,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Flush archives every log entry newer than the store's tip. It returns
// the number of entries archived. Event delivery failures are logged but
// do not fail the flush; the archive is the system of record, the stream
// is best-effort.
func (e *Exporter) Flush(ctx context.Context) (int, error) {
	tipSeq, tipHash, err := e.store.Tip(ctx)
	if err != nil {
		return 0, fmt.Errorf("read archive tip: %w", err)
	}

	pending := e.ledger.LogSince(tipSeq)
	if len(pending) == 0 {
		return 0, nil
	}

	chain := audit.NewChainFrom(tipHash)
	archived := 0
	for _, txn := range pending {
		entry := chain.Append(txn.Sequence, txn.Timestamp.UTC().Format(time.RFC3339Nano), payload(txn))
		rec := Record{
			Transaction:  txn,
			PreviousHash: entry.PreviousHash,
			Hash:         entry.Hash,
		}
		if err := e.store.Save(ctx, rec); err != nil {
			return archived, fmt.Errorf("archive transaction %d: %w", txn.Sequence, err)
		}
		archived++

		if e.publisher == nil {
			continue
		}
		if err := e.publisher.Publish(e.topic, events.NewTransactionCompleted(txn)); err != nil {
			e.logger.Warn("event publish failed",
				zap.Uint64("sequence", txn.Sequence),
				zap.String("transaction_id", txn.ID),
				zap.Error(err))
		}
	}

	e.logger.Info("archived transactions",
		zap.Int("count", archived),
		zap.Uint64("tip", pending[len(pending)-1].Sequence))
	return archived, nil
}

// Run flushes on the given interval until the context is cancelled. The
// final state is flushed before returning.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := e.Flush(flushCtx); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := e.Flush(ctx); err != nil {
				return err
			}
		}
	}
}

// payload is the canonical encoding hashed into the audit chain and
// stored alongside each row.
func payload(txn ledger.Transaction) string {
	data, err := json.Marshal(txn)
	if err != nil {
		// Transaction contains only marshalable fields; reaching this
		// means the record type itself is broken.
		panic(fmt.Sprintf("encode transaction %d: %v", txn.Sequence, err))
	}
	return string(data)
}
