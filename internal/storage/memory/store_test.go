package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

func TestMemoryLedgerStore_Accounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLedgerStore()

	alice, err := store.CreateAccount(ctx, models.Account{Name: "alice"})
	require.NoError(t, err)
	bob, err := store.CreateAccount(ctx, models.Account{Name: "bob"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, int64(2), bob.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	got, err := store.GetAccount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	_, err = store.GetAccount(ctx, 42)
	assert.ErrorIs(t, err, interfaces.ErrAccountNotFound)
}

func TestMemoryLedgerStore_SaveTransactionWithEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLedgerStore()

	tx := models.Transaction{ID: "t1", IdempotencyKey: "k1", FromAccount: 1, ToAccount: 2, Amount: decimal.NewFromInt(5)}
	debit := models.LedgerEntry{ID: "t1-debit", AccountID: 1, Amount: decimal.NewFromInt(-5)}
	credit := models.LedgerEntry{ID: "t1-credit", AccountID: 2, Amount: decimal.NewFromInt(5)}
	require.NoError(t, store.SaveTransactionWithEntries(ctx, tx, debit, credit))

	exists, err := store.TransactionExists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.TransactionExists(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := store.GetLedgerEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.LedgerEntry{debit, credit}, all)

	// returned slice is a copy
	all[0].AccountID = 99
	again, _ := store.GetLedgerEntries(ctx)
	assert.Equal(t, int64(1), again[0].AccountID)

	forBob, err := store.GetEntriesByAccount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.LedgerEntry{credit}, forBob)
}
