package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

var errUnknownAccount = fmt.Errorf("no such account: %w", interfaces.ErrAccountNotFound)

type transferCall struct {
	Source      int64
	Destination int64
	Amount      decimal.Decimal
	Options     models.TransferOptions
	Message     string
}

// fakeLedger records transfers. Accounts 1..9 exist unless removed.
type fakeLedger struct {
	mu          sync.Mutex
	missing     map[int64]bool
	failures    map[string]error // keyed by rendered message
	resolveErr  error            // returned by every ResolveAccount when set
	transfers   []transferCall
	resolves    int
	inFlight    int
	maxInFlight int
	panicOn     string

	// when set, Transfer signals entered then waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		missing:  map[int64]bool{},
		failures: map[string]error{},
	}
}

func (f *fakeLedger) ResolveAccount(ctx context.Context, id int64) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resolves++
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}
	if f.resolveErr != nil {
		return models.Account{}, f.resolveErr
	}
	if id < 1 || id > 9 || f.missing[id] {
		return models.Account{}, errUnknownAccount
	}
	return models.Account{ID: id}, nil
}

func (f *fakeLedger) Transfer(ctx context.Context, source, destination models.Account, amount decimal.Decimal, options models.TransferOptions, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	entered, release := f.entered, f.release
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if message == f.panicOn && message != "" {
		panic("ledger exploded")
	}
	if err, ok := f.failures[message]; ok {
		return err
	}
	f.transfers = append(f.transfers, transferCall{
		Source:      source.ID,
		Destination: destination.ID,
		Amount:      amount,
		Options:     options,
		Message:     message,
	})
	return nil
}

func (f *fakeLedger) calls() []transferCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]transferCall, len(f.transfers))
	copy(out, f.transfers)
	return out
}

func (f *fakeLedger) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.maxInFlight
}

func tx(source, destination int64, amount int64, message string) *models.CachedTransaction {
	return models.NewCachedTransaction(source, destination, decimal.NewFromInt(amount), message, models.OptionNone)
}
