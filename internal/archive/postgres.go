package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/bank-core/internal/ledger"
	"github.com/example/bank-core/pkg/audit"
)

// Pool is the subset of *pgxpool.Pool the archive needs; tests substitute
// a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore archives transactions into PostgreSQL.
type PostgresStore struct {
	Pool Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over an existing pool.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// InitSchema creates the archive table if it does not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_archive (
			seq            BIGINT PRIMARY KEY,
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
		)
	`)
	if err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}

	_, err = s.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_ledger_archive_accounts
		ON ledger_archive(from_account, to_account)
	`)
	if err != nil {
		return fmt.Errorf("create archive index: %w", err)
	}
	return nil
}

// Save persists one record; replays of an archived sequence are ignored.
func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO ledger_archive
			(seq, transaction_id, from_account, to_account, amount, kind, ts, description, status, payload, prev_hash, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (seq) DO NOTHING
	`

	_, err := s.Pool.Exec(ctx, query,
		rec.Sequence, rec.ID, rec.FromAccount, rec.ToAccount,
		rec.Amount.String(), string(rec.Kind), rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Description, string(rec.Status), payload(rec.Transaction), rec.PreviousHash, rec.Hash)
	if err != nil {
		return fmt.Errorf("archive insert failed: %w", err)
	}
	return nil
}

// Tip returns the newest archived sequence and its hash.
func (s *PostgresStore) Tip(ctx context.Context) (uint64, string, error) {
	var seq uint64
	var hash string
	err := s.Pool.QueryRow(ctx,
		`SELECT seq, hash FROM ledger_archive ORDER BY seq DESC LIMIT 1`).Scan(&seq, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("archive tip query failed: %w", err)
	}
	return seq, hash, nil
}

// Entries returns the chain material in sequence order.
func (s *PostgresStore) Entries(ctx context.Context) ([]*audit.Entry, error) {
	rows, err := s.Pool.Query(ctx,
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
func (s *PostgresStore) TransactionsForAccount(ctx context.Context, accountNumber string) ([]ledger.Transaction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT seq, transaction_id, from_account, to_account, amount, kind, ts, description, status
		FROM ledger_archive
		WHERE from_account = $1 OR to_account = $1
		ORDER BY seq DESC
	`, accountNumber)
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

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}
