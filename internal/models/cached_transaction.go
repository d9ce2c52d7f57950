package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// IdentityKey groups cached transactions for merging.
// It always uses the message as submitted, never the rendered one.
type IdentityKey struct {
	Source      int64
	Destination int64
	Message     string
}

// CachedTransaction is a transfer waiting in the cache for its flush cycle.
// Only Amount and MergeCount change after creation.
type CachedTransaction struct {
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
	Message              string
	Options              TransferOptions
	MergeCount           int
}

// NewCachedTransaction creates a record representing a single submission.
func NewCachedTransaction(source, destination int64, amount decimal.Decimal, message string, options TransferOptions) *CachedTransaction {
	return &CachedTransaction{
		SourceAccountID:      source,
		DestinationAccountID: destination,
		Amount:               amount,
		Message:              message,
		Options:              options,
		MergeCount:           1,
	}
}

func (c *CachedTransaction) Key() IdentityKey {
	return IdentityKey{
		Source:      c.SourceAccountID,
		Destination: c.DestinationAccountID,
		Message:     c.Message,
	}
}

// Merge folds other into c. The caller guarantees both share the same key.
func (c *CachedTransaction) Merge(other *CachedTransaction) {
	c.Amount = c.Amount.Add(other.Amount)

	count := other.MergeCount
	if count < 1 {
		count = 1
	}
	c.MergeCount += count
}

// RenderedMessage is the journal text for the transfer: the message itself
// for a single submission, "<count> <message>s" for a merged one.
func (c *CachedTransaction) RenderedMessage() string {
	if c.MergeCount <= 1 {
		return c.Message
	}
	return strconv.Itoa(c.MergeCount) + " " + c.Message + "s"
}
