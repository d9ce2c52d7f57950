package interfaces

import (
	"context"

	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

type LedgerStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	GetAccount(ctx context.Context, accountId int64) (models.Account, error)
	TransactionExists(ctx context.Context, idempotencyKey string) (bool, error)
	SaveTransactionWithEntries(ctx context.Context, tx models.Transaction, debit models.LedgerEntry, credit models.LedgerEntry) error
	GetEntriesByAccount(ctx context.Context, accountId int64) ([]models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
}
