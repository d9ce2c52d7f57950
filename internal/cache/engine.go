package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

// Ledger is what the cache needs from the system of record.
type Ledger interface {
	ResolveAccount(ctx context.Context, id int64) (models.Account, error)
	Transfer(ctx context.Context, source, destination models.Account, amount decimal.Decimal, options models.TransferOptions, message string) error
}

// FlushStats summarises one drain-and-process pass.
type FlushStats struct {
	Drained         int `json:"drained"`
	Aggregated      int `json:"aggregated"`
	Transferred     int `json:"transferred"`
	AccountNotFound int `json:"account_not_found"`
	TransferFailed  int `json:"transfer_failed"`
}

// Engine turns a drained batch into ledger transfers.
type Engine struct {
	ledger Ledger
	logger logrus.FieldLogger
}

func NewEngine(ledger Ledger, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{ledger: ledger, logger: logger}
}

// Process aggregates batch and posts every merged record, one at a time.
// Failed records are logged and dropped; nothing is retried.
func (e *Engine) Process(ctx context.Context, batch []*models.CachedTransaction) FlushStats {
	stats := FlushStats{Drained: len(batch)}

	for _, tx := range Aggregate(batch) {
		stats.Aggregated++

		err := e.commit(ctx, tx)
		switch {
		case err == nil:
			stats.Transferred++
			continue
		case errors.Is(err, ErrAccountNotFound):
			stats.AccountNotFound++
		default:
			stats.TransferFailed++
		}

		e.logger.WithFields(logrus.Fields{
			"source_account":      tx.SourceAccountID,
			"destination_account": tx.DestinationAccountID,
			"amount":              tx.Amount.String(),
			"merge_count":         tx.MergeCount,
			"message":             tx.Message,
			"error":               err.Error(),
		}).Error("Transaction cache discarded transfer")
	}
	return stats
}

func (e *Engine) commit(ctx context.Context, tx *models.CachedTransaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrTransferFailed, r)
		}
	}()

	source, err := e.ledger.ResolveAccount(ctx, tx.SourceAccountID)
	if err != nil {
		return resolveError("source", tx.SourceAccountID, err)
	}
	destination, err := e.ledger.ResolveAccount(ctx, tx.DestinationAccountID)
	if err != nil {
		return resolveError("destination", tx.DestinationAccountID, err)
	}

	if err := e.ledger.Transfer(ctx, source, destination, tx.Amount, tx.Options, tx.RenderedMessage()); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

// resolveError keeps a missing account apart from a store that could not answer.
func resolveError(side string, id int64, err error) error {
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		return fmt.Errorf("%w: %s %d: %w", ErrAccountNotFound, side, id, err)
	}
	return fmt.Errorf("%w: resolve %s %d: %w", ErrTransferFailed, side, id, err)
}
