package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/bank-core/internal/money"
)

// Kind is the economic cause of a transaction record.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindTransfer   Kind = "transfer"
	KindFee        Kind = "fee"
	KindInterest   Kind = "interest"
)

// Status is the lifecycle state of a transaction record. Records enter the
// log only once completed; a record whose status has left pending is
// immutable.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Transaction is one immutable entry in the append-only log. Sequence is
// assigned at append time and increases monotonically; it orders the log
// causally and gives external consumers a resume cursor. FromAccount and
// ToAccount are empty when no account is on that side: deposits have no
// source, withdrawals and fees have no destination, transfers have both.
type Transaction struct {
	Sequence    uint64      `json:"sequence"`
	ID          string      `json:"transaction_id"`
	FromAccount string      `json:"from_account,omitempty"`
	ToAccount   string      `json:"to_account,omitempty"`
	Amount      money.Money `json:"amount"`
	Kind        Kind        `json:"kind"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
}

// newTransaction builds a pending record; the ledger completes it when it
// appends to the log.
func newTransaction(from, to string, amount money.Money, kind Kind, description string, now time.Time) Transaction {
	return Transaction{
		ID:          "TXN" + uuid.NewString(),
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		Kind:        kind,
		Timestamp:   now,
		Description: description,
		Status:      StatusPending,
	}
}
