// Package postgres implements a finassist.Store on a PostgreSQL database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store reads customers and transactions from PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url and checks the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot reach database: %w", err)
	}
	return New(pool), nil
}

// New returns a Store using an existing pool.
func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Close closes the underlying pool.
func (s *Store) Close() { s.pool.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	account_number TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	balance        NUMERIC NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS transactions (
	id             BIGSERIAL PRIMARY KEY,
	account_number TEXT NOT NULL REFERENCES customers (account_number),
	date           TEXT NOT NULL,
	type           TEXT NOT NULL,
	amount         NUMERIC NOT NULL CHECK (amount >= 0),
	description    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS transactions_account_date ON transactions (account_number, date, id);
`

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("cannot create schema: %w", err)
	}
	return nil
}

// Seed replaces the content of the database with the content of the ledger.
//
// Transactions are inserted in ledger order so that their ids keep the order
// of transactions of the same day.
func (s *Store) Seed(ctx context.Context, l *finassist.Ledger) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE transactions, customers RESTART IDENTITY`); err != nil {
		return fmt.Errorf("cannot clear tables: %w", err)
	}

	batch := &pgx.Batch{}
	for c := range l.Customers() {
		batch.Queue(`INSERT INTO customers (account_number, name, email, balance) VALUES ($1, $2, $3, $4::numeric)`,
			c.AccountNumber, c.Name, c.Email, c.Balance.String())
	}
	for t := range l.AllTransactions() {
		batch.Queue(`INSERT INTO transactions (account_number, date, type, amount, description) VALUES ($1, $2, $3, $4::numeric, $5)`,
			t.AccountNumber, t.Date.String(), t.Type, t.Amount.String(), t.Description)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to seed row %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Customer implements finassist.Store.
func (s *Store) Customer(ctx context.Context, accountNumber string) (finassist.Customer, bool, error) {
	var c finassist.Customer
	var balance string
	err := s.pool.QueryRow(ctx,
		`SELECT account_number, name, email, balance::text FROM customers WHERE account_number = $1`,
		accountNumber,
	).Scan(&c.AccountNumber, &c.Name, &c.Email, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return finassist.Customer{}, false, nil
	}
	if err != nil {
		return finassist.Customer{}, false, fmt.Errorf("cannot read customer %q: %w", accountNumber, err)
	}
	if c.Balance, err = decimal.NewFromString(balance); err != nil {
		return finassist.Customer{}, false, fmt.Errorf("invalid balance of customer %q: %w", accountNumber, err)
	}
	return c, true, nil
}

// Transactions implements finassist.Store.
func (s *Store) Transactions(ctx context.Context, accountNumber string, r *date.Range) ([]finassist.Transaction, error) {
	query := `SELECT date, type, amount::text, description FROM transactions WHERE account_number = $1`
	args := []any{accountNumber}
	if r != nil {
		query += ` AND date BETWEEN $2 AND $3`
		args = append(args, r.From.String(), r.To.String())
	}
	query += ` ORDER BY date, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot list transactions of %q: %w", accountNumber, err)
	}
	defer rows.Close()

	txs := make([]finassist.Transaction, 0)
	for rows.Next() {
		var day, amount string
		t := finassist.Transaction{AccountNumber: accountNumber}
		if err := rows.Scan(&day, &t.Type, &amount, &t.Description); err != nil {
			return nil, fmt.Errorf("cannot read transaction: %w", err)
		}
		if t.Date, err = date.Parse(day); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount of transaction on %s: %w", day, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txs, nil
}

var _ finassist.Store = (*Store)(nil)
