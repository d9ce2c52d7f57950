package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"sync"    // standard Go package for concurrency primitives like Mutex
	"time"

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"                // domain models: LedgerEntry, Account
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// It stores accounts and ledger entries in memory and is thread-safe for concurrent writes.
type MemoryLedgerStore struct {
	mu           sync.Mutex                    // mutex to protect every field below
	nextID       int64                         // last account id handed out
	accounts     map[int64]models.Account      // accounts by id
	entries      []models.LedgerEntry          // slice that holds all ledger entries
	transactions map[string]models.Transaction // transactions by idempotency key
}

// NewMemoryLedgerStore creates and returns a new MemoryLedgerStore instance
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts:     make(map[int64]models.Account),
		entries:      make([]models.LedgerEntry, 0),
		transactions: make(map[string]models.Transaction),
	}
}

// CreateAccount assigns the next id to account and stores it.
func (m *MemoryLedgerStore) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	account.ID = m.nextID
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	m.accounts[account.ID] = account
	return account, nil
}

func (m *MemoryLedgerStore) GetAccount(ctx context.Context, accountId int64) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[accountId]
	if !ok {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	return account, nil
}

func (m *MemoryLedgerStore) TransactionExists(ctx context.Context, idempotencyKey string) (bool, error) {
	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits (even if error occurs)

	_, exists := m.transactions[idempotencyKey]
	return exists, nil
}

// SaveTransactionWithEntries records the transaction and both of its entries under one lock,
// so readers never observe a debit without its credit.
func (m *MemoryLedgerStore) SaveTransactionWithEntries(ctx context.Context, tx models.Transaction, debit models.LedgerEntry, credit models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions[tx.IdempotencyKey] = tx
	m.entries = append(m.entries, debit, credit)
	return nil // always succeeds in memory
}

// GetLedgerEntries returns a copy of all ledger entries stored in memory.
// Useful for testing, debugging, and printing ledger state.
func (m *MemoryLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	m.mu.Lock()         // lock to prevent concurrent modification while reading
	defer m.mu.Unlock() // unlock automatically at the end

	// create a new slice to copy entries
	copied := make([]models.LedgerEntry, len(m.entries))
	copy(copied, m.entries) // copy all entries to the new slice
	return copied, nil      // return the copy so external code can't modify internal state
}

func (m *MemoryLedgerStore) GetEntriesByAccount(ctx context.Context, accountId int64) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.LedgerEntry

	for _, e := range m.entries {
		if e.AccountID == accountId {
			result = append(result, e)
		}
	}
	return result, nil
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
