package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // registers the "postgres" driver

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	system     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS transactions (
	id              TEXT PRIMARY KEY,
	idempotency_key TEXT NOT NULL UNIQUE,
	from_account    BIGINT NOT NULL REFERENCES accounts(id),
	to_account      BIGINT NOT NULL REFERENCES accounts(id),
	amount          NUMERIC NOT NULL,
	message         TEXT NOT NULL,
	options         INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	id             TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL REFERENCES transactions(id),
	account_id     BIGINT NOT NULL REFERENCES accounts(id),
	amount         NUMERIC NOT NULL,
	message        TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_entries_account_id_idx ON ledger_entries (account_id);
`

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the ledger tables when they do not exist yet.
func (p *PostgresLedgerStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `INSERT INTO accounts (name, system) VALUES ($1, $2) RETURNING id, created_at`

	err := p.db.QueryRowContext(ctx, query, account.Name, account.System).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (p *PostgresLedgerStore) GetAccount(ctx context.Context, accountId int64) (models.Account, error) {
	const query = `SELECT id, name, system, created_at FROM accounts WHERE id = $1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, accountId).Scan(&account.ID, &account.Name, &account.System, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (p *PostgresLedgerStore) TransactionExists(ctx context.Context, idempotencyKey string) (bool, error) {
	const query = `select 1 from transactions where idempotency_key = $1 Limit 1`

	var exists int
	err := p.db.QueryRowContext(ctx, query, idempotencyKey).Scan(&exists)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (p *PostgresLedgerStore) saveTransaction(ctx context.Context, tx models.Transaction, dbTx *sql.Tx) error {
	const query = `INSERT INTO transactions(id, idempotency_key,from_account,to_account,amount,message,options,created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := dbTx.ExecContext(ctx, query, tx.ID, tx.IdempotencyKey, tx.FromAccount, tx.ToAccount, tx.Amount, tx.Message, int64(tx.Options), tx.CreatedAt)

	return err
}

func (p *PostgresLedgerStore) saveEntry(ctx context.Context, ledgerEntry models.LedgerEntry, dbTx *sql.Tx) error {
	const query = `INSERT INTO ledger_entries (id,transaction_id,account_id,amount,message,created_at)
	VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := dbTx.ExecContext(ctx, query, ledgerEntry.ID, ledgerEntry.TransactionID, ledgerEntry.AccountID, ledgerEntry.Amount, ledgerEntry.Message, ledgerEntry.CreatedAt)
	return err
}

func (p *PostgresLedgerStore) SaveTransactionWithEntries(ctx context.Context, tx models.Transaction, debit models.LedgerEntry, credit models.LedgerEntry) (err error) {

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	err = p.saveTransaction(ctx, tx, dbTx)
	if err != nil {
		return err
	}

	err = p.saveEntry(ctx, debit, dbTx)
	if err != nil {
		return err
	}

	err = p.saveEntry(ctx, credit, dbTx)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

func (p *PostgresLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {

	const query = `SELECT id, transaction_id, account_id, amount, message, created_at from ledger_entries ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanEntries(rows)
}

func (p *PostgresLedgerStore) GetEntriesByAccount(ctx context.Context, accountId int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, transaction_id, account_id, amount, message, created_at from ledger_entries
	WHERE account_id = $1 ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, accountId)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry

	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TransactionID,
			&entry.AccountID,
			&entry.Amount,
			&entry.Message,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
