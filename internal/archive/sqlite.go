package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/internal/money"
	"github.com/example/bank-core/pkg/audit"
)

// SQLiteStore archives transactions into a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS ledger_archive (
		seq            INTEGER PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		from_account   TEXT NOT NULL,
		to_account     TEXT NOT NULL,
		amount         TEXT NOT NULL,
		kind           TEXT NOT NULL,
		ts             TEXT NOT NULL,
		description    TEXT NOT NULL,
		status         TEXT NOT NULL,
		payload        TEXT NOT NULL,
		prev_hash      TEXT NOT NULL,
		hash           TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_archive_from ON ledger_archive(from_account);
	CREATE INDEX IF NOT EXISTS idx_ledger_archive_to ON ledger_archive(to_account);
`

// NewSQLiteStore creates the schema on the given database and returns a
// store backed by it.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLite opens (or creates) a SQLite archive at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Save persists one record. Replays of an already-archived sequence are
// ignored.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	query := `
		INSERT OR IGNORE INTO ledger_archive
			(seq, transaction_id, from_account, to_account, amount, kind, ts, description, status, payload, prev_hash, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Sequence, rec.ID, rec.FromAccount, rec.ToAccount,
		rec.Amount.String(), string(rec.Kind), rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Description, string(rec.Status), payload(rec.Transaction), rec.PreviousHash, rec.Hash)
	if err != nil {
		return fmt.Errorf("archive insert failed: %w", err)
	}
	return nil
}

// Tip returns the newest archived sequence and its hash.
func (s *SQLiteStore) Tip(ctx context.Context) (uint64, string, error) {
	var seq uint64
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT seq, hash FROM ledger_archive ORDER BY seq DESC LIMIT 1`).Scan(&seq, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("archive tip query failed: %w", err)
	}
	return seq, hash, nil
}

// Entries returns the chain material in sequence order.
func (s *SQLiteStore) Entries(ctx context.Context) ([]*audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, ts, prev_hash, payload, hash FROM ledger_archive ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("archive entries query failed: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		e := &audit.Entry{}
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.PreviousHash, &e.Payload, &e.Hash); err != nil {
			return nil, fmt.Errorf("scan archive entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TransactionsForAccount returns archived transactions in which the
// account is either party, newest first.
func (s *SQLiteStore) TransactionsForAccount(ctx context.Context, accountNumber string) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, transaction_id, from_account, to_account, amount, kind, ts, description, status
		FROM ledger_archive
		WHERE from_account = ? OR to_account = ?
		ORDER BY seq DESC
	`, accountNumber, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("archive account query failed: %w", err)
	}
	defer rows.Close()

	var txns []ledger.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanTransaction decodes one archived row into a ledger.Transaction.
func scanTransaction(scan func(dest ...any) error) (ledger.Transaction, error) {
	var txn ledger.Transaction
	var amount, kind, ts, status string

	if err := scan(&txn.Sequence, &txn.ID, &txn.FromAccount, &txn.ToAccount,
		&amount, &kind, &ts, &txn.Description, &status); err != nil {
		return ledger.Transaction{}, fmt.Errorf("scan archived transaction: %w", err)
	}

	m, err := money.FromString(amount)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("archived amount %q: %w", amount, err)
	}
	when, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("archived timestamp %q: %w", ts, err)
	}

	txn.Amount = m
	txn.Kind = ledger.Kind(kind)
	txn.Timestamp = when
	txn.Status = ledger.Status(status)
	return txn, nil
}
