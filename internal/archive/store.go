// Package archive persists the ledger's append-only transaction log to a
// durable store for auditing and reporting. The core ledger stays
// memory-resident; the archive is an external consumer of the log,
// reading it through the sequence cursor and never mutating it.
//
// Every archived row carries hash-chain material so an auditor can prove
// the archive itself was not rewritten after the fact.
package archive

import (
	"context"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/pkg/audit"
)

// Record is one archived transaction plus its tamper-evidence hashes.
type Record struct {
	ledger.Transaction
	PreviousHash string
	Hash         string
}

// Store is a durable sink for archived transactions. Save must be
// idempotent on the transaction sequence, so the exporter can safely
// replay after a partial flush.
type Store interface {
	// Save persists one record.
	Save(ctx context.Context, rec Record) error

	// Tip returns the highest archived sequence and its hash; (0, "") for
	// an empty archive.
	Tip(ctx context.Context) (uint64, string, error)

	// Entries returns the full chain material in sequence order, for
	// verification with audit.VerifyChain.
	Entries(ctx context.Context) ([]*audit.Entry, error)

	// TransactionsForAccount returns archived transactions in which the
	// account is either party, newest first.
	TransactionsForAccount(ctx context.Context, accountNumber string) ([]ledger.Transaction, error)

	Close() error
}
