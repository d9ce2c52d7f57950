package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models/events"
)

// TopicTransactionCompleted is the default topic completed transfers are published to.
const TopicTransactionCompleted = "transaction_completed"

var (
	ErrAccountNotFound   = interfaces.ErrAccountNotFound
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrSameAccount       = errors.New("source and destination accounts are the same")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Ledger is the main struct representing our ledger system
// It holds a reference to the storage layer and a mutex per account for concurrency control
type Ledger struct {
	store     interfaces.LedgerStore // Interface to save ledger entries, can be any storage implementation
	publisher interfaces.EventPublisher
	topic     string
	logger    logrus.FieldLogger
	muMap     map[int64]*sync.Mutex //stores the *sync.Mutex for each account in a map
	mapMu     sync.Mutex            // protects the muMap itself
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher makes the ledger publish a TransactionCompleted event to topic
// after every committed transaction.
func WithPublisher(publisher interfaces.EventPublisher, topic string) Option {
	return func(l *Ledger) {
		l.publisher = publisher
		if topic != "" {
			l.topic = topic
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLedger is a constructor function that creates a new Ledger instance
// We pass in a storage implementation (MemoryLedgerStore, Postgres, etc.)
func NewLedger(store interfaces.LedgerStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		topic:  TopicTransactionCompleted,
		logger: logrus.StandardLogger(),
		muMap:  make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) getAccountLock(accountId int64) *sync.Mutex {

	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountId]; !exists {
		l.muMap[accountId] = &sync.Mutex{}
	}
	return l.muMap[accountId]
}

// OpenAccount creates a new account. System accounts are allowed to run a deficit.
func (l *Ledger) OpenAccount(ctx context.Context, name string, system bool) (models.Account, error) {
	return l.store.CreateAccount(ctx, models.Account{Name: name, System: system})
}

// ResolveAccount returns the account handle for id, or ErrAccountNotFound.
func (l *Ledger) ResolveAccount(ctx context.Context, id int64) (models.Account, error) {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return models.Account{}, fmt.Errorf("resolve account %d: %w", id, err)
	}
	return account, nil
}

// Transfer moves amount from source to destination with message as the journal text.
func (l *Ledger) Transfer(ctx context.Context, source, destination models.Account, amount decimal.Decimal, options models.TransferOptions, message string) error {
	key := uuid.New().String()
	tx := models.Transaction{
		ID:             key,
		IdempotencyKey: key,
		FromAccount:    source.ID,
		ToAccount:      destination.ID,
		Amount:         amount,
		Message:        message,
		Options:        options,
		CreatedAt:      time.Now().UTC(),
	}
	return l.post(ctx, tx, !source.System && !options.Has(models.OptionAllowDeficit))
}

// PostTransaction is the core method that processes a transaction
// It converts a Transaction (intent) into two LedgerEntry objects (debit and credit)
// ensuring double-entry accounting, and then saves them to the store.
// Replaying an idempotency key that was already posted is a no-op.
func (l *Ledger) PostTransaction(ctx context.Context, tx models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.IdempotencyKey == "" {
		tx.IdempotencyKey = tx.ID
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	source, err := l.store.GetAccount(ctx, tx.FromAccount)
	if err != nil {
		return fmt.Errorf("source account %d: %w", tx.FromAccount, err)
	}
	if _, err := l.store.GetAccount(ctx, tx.ToAccount); err != nil {
		return fmt.Errorf("destination account %d: %w", tx.ToAccount, err)
	}
	return l.post(ctx, tx, !source.System && !tx.Options.Has(models.OptionAllowDeficit))
}

func (l *Ledger) post(ctx context.Context, tx models.Transaction, checkBalance bool) error {
	// Basic validation: the transaction amount must be positive
	if tx.Amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}
	if tx.FromAccount == tx.ToAccount {
		return ErrSameAccount
	}

	//Get Locks for both accounts
	debitMutex := l.getAccountLock(tx.FromAccount)
	creditMutex := l.getAccountLock(tx.ToAccount)

	// Lock in order to avoid deadlocks
	if tx.FromAccount < tx.ToAccount {
		debitMutex.Lock()
		creditMutex.Lock()
	} else {
		creditMutex.Lock()
		debitMutex.Lock()
	}

	defer debitMutex.Unlock()
	defer creditMutex.Unlock()

	// Idempotency check, under the account locks so a concurrent replay cannot slip through
	exists, err := l.store.TransactionExists(ctx, tx.IdempotencyKey)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if checkBalance {
		balance, err := l.balance(ctx, tx.FromAccount)
		if err != nil {
			return err
		}
		if balance.LessThan(tx.Amount) {
			return fmt.Errorf("%w: account %d has %s, needs %s", ErrInsufficientFunds, tx.FromAccount, balance, tx.Amount)
		}
	}

	// Debit entry: money leaving the sender's account, negative amount
	debit := models.LedgerEntry{
		ID:            tx.ID + "-debit",
		TransactionID: tx.ID,
		AccountID:     tx.FromAccount,
		Amount:        tx.Amount.Neg(),
		Message:       tx.Message,
		CreatedAt:     tx.CreatedAt,
	}

	// Credit entry: money entering the receiver's account, positive amount
	credit := models.LedgerEntry{
		ID:            tx.ID + "-credit",
		TransactionID: tx.ID,
		AccountID:     tx.ToAccount,
		Amount:        tx.Amount,
		Message:       tx.Message,
		CreatedAt:     tx.CreatedAt,
	}

	if err := l.store.SaveTransactionWithEntries(ctx, tx, debit, credit); err != nil {
		return err
	}

	l.publishCompleted(ctx, tx)
	return nil
}

// publishCompleted never fails the transfer: the entries are already committed.
func (l *Ledger) publishCompleted(ctx context.Context, tx models.Transaction) {
	if l.publisher == nil {
		return
	}

	event := events.TransactionCompleted{
		TransactionID: tx.ID,
		FromAccount:   tx.FromAccount,
		ToAccount:     tx.ToAccount,
		Amount:        tx.Amount,
		Message:       tx.Message,
		Options:       tx.Options.String(),
		OccurredAt:    tx.CreatedAt,
	}
	if err := l.publisher.Publish(ctx, l.topic, event); err != nil {
		l.logger.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"topic":          l.topic,
			"error":          err.Error(),
		}).Error("Publishing transaction completed event failed")
	}
}

func (l *Ledger) balance(ctx context.Context, accountId int64) (decimal.Decimal, error) {
	ledgerEntries, err := l.store.GetEntriesByAccount(ctx, accountId)

	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero

	for _, ledgerEntry := range ledgerEntries {
		balance = balance.Add(ledgerEntry.Amount)
	}
	return balance, nil
}

func (l *Ledger) GetBalance(ctx context.Context, accountId int64) (decimal.Decimal, error) {
	if _, err := l.store.GetAccount(ctx, accountId); err != nil {
		return decimal.Zero, fmt.Errorf("account %d: %w", accountId, err)
	}
	return l.balance(ctx, accountId)
}

func (l *Ledger) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	ledgerEntries, err := l.store.GetLedgerEntries(ctx)

	if err != nil {
		return []models.LedgerEntry{}, err
	}
	return ledgerEntries, nil
}
