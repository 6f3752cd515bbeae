// Package events defines the outbound event contract for completed ledger
// transactions. The ledger core never publishes; consumers of the
// transaction log (the archive exporter) do.
package events

import (
	"time"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/internal/money"
)

// Publisher delivers an event to an external stream.
type Publisher interface {
	Publish(topic string, event any) error
}

// TransactionCompleted is emitted once per completed log entry.
type TransactionCompleted struct {
	Sequence      uint64      `json:"sequence"`
	TransactionID string      `json:"transaction_id"`
	FromAccount   string      `json:"from_account,omitempty"`
	ToAccount     string      `json:"to_account,omitempty"`
	Amount        money.Money `json:"amount"`
	Kind          ledger.Kind `json:"kind"`
	Description   string      `json:"description"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// NewTransactionCompleted maps a log entry to its event payload.
func NewTransactionCompleted(t ledger.Transaction) TransactionCompleted {
	return TransactionCompleted{
		Sequence:      t.Sequence,
		TransactionID: t.ID,
		FromAccount:   t.FromAccount,
		ToAccount:     t.ToAccount,
		Amount:        t.Amount,
		Kind:          t.Kind,
		Description:   t.Description,
		OccurredAt:    t.Timestamp,
	}
}
