package archive

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/internal/money"
	"github.com/example/bank-core/pkg/audit"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	l := ledger.New(ledger.DefaultLimits(), nil)
	from, err := l.CreateAccount("John Doe", "US12345678", ledger.AccountChecking, money.MustFromString("1000.00"))
	require.NoError(t, err)
	to, err := l.CreateAccount("Jane Smith", "US87654321", ledger.AccountSavings, money.MustFromString("500.00"))
	require.NoError(t, err)

	ok, err := l.Transfer(from, to, money.MustFromString("200.00"), "Payment to Jane")
	require.NoError(t, err)
	require.True(t, ok)

	exporter := NewExporter(l, store, nil, "", nil)
	archived, err := exporter.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, archived) // two initial deposits, transfer, fee

	seq, hash, err := store.Tip(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), seq)
	assert.NotEmpty(t, hash)

	// archived chain verifies end to end
	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.True(t, audit.VerifyChain(entries))

	// flushing again archives nothing new
	archived, err = exporter.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, archived)

	// subsequent activity extends the same chain
	ok, err = l.Withdraw(from, money.MustFromString("50.00"), "ATM withdrawal")
	require.NoError(t, err)
	require.True(t, ok)

	archived, err = exporter.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	entries, err = store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.True(t, audit.VerifyChain(entries))
}

func TestSQLiteTransactionsForAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	l := ledger.New(ledger.DefaultLimits(), nil)
	from, err := l.CreateAccount("John Doe", "US12345678", ledger.AccountChecking, money.MustFromString("1000.00"))
	require.NoError(t, err)
	to, err := l.CreateAccount("Jane Smith", "US87654321", ledger.AccountSavings, money.MustFromString("0"))
	require.NoError(t, err)

	ok, err := l.Transfer(from, to, money.MustFromString("100.00"), "Rent")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = NewExporter(l, store, nil, "", nil).Flush(ctx)
	require.NoError(t, err)

	txns, err := store.TransactionsForAccount(ctx, from)
	require.NoError(t, err)
	require.Len(t, txns, 3) // initial deposit, transfer, fee

	// newest first, values decoded faithfully
	assert.Equal(t, ledger.KindFee, txns[0].Kind)
	assert.Equal(t, "2.50", txns[0].Amount.String())
	assert.Equal(t, ledger.KindTransfer, txns[1].Kind)
	assert.Equal(t, to, txns[1].ToAccount)
	assert.Equal(t, ledger.StatusCompleted, txns[1].Status)
	assert.Equal(t, ledger.KindDeposit, txns[2].Kind)

	// the counterparty sees the transfer but not the fee
	txns, err = store.TransactionsForAccount(ctx, to)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, ledger.KindTransfer, txns[0].Kind)
}

func TestSQLiteSaveIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	rec := Record{
		Transaction: ledger.Transaction{
			Sequence: 1,
			ID:       "TXN-once",
			Amount:   money.MustFromString("10.00"),
			Kind:     ledger.KindDeposit,
			Status:   ledger.StatusCompleted,
		},
		PreviousHash: "prev",
		Hash:         "hash",
	}

	require.NoError(t, store.Save(ctx, rec))
	require.NoError(t, store.Save(ctx, rec))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
