package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/internal/money"
)

func TestNewTransactionCompleted(t *testing.T) {
	txn := ledger.Transaction{
		Sequence:    7,
		ID:          "TXN-test",
		FromAccount: "0000000001",
		ToAccount:   "0000000002",
		Amount:      money.MustFromString("200.00"),
		Kind:        ledger.KindTransfer,
		Timestamp:   time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Description: "Payment",
		Status:      ledger.StatusCompleted,
	}

	event := NewTransactionCompleted(txn)
	assert.Equal(t, uint64(7), event.Sequence)
	assert.Equal(t, "TXN-test", event.TransactionID)
	assert.Equal(t, txn.Timestamp, event.OccurredAt)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":"200.00"`)
	assert.Contains(t, string(data), `"kind":"transfer"`)
}

func TestTransactionCompletedOmitsEmptyParties(t *testing.T) {
	event := NewTransactionCompleted(ledger.Transaction{
		Sequence: 1,
		ID:       "TXN-deposit",
		ToAccount: "0000000001",
		Amount:   money.MustFromString("50.00"),
		Kind:     ledger.KindDeposit,
	})

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "from_account")
	assert.Contains(t, string(data), `"to_account":"0000000001"`)
}
