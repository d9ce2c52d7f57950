package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry represents a single ledger record for an account
type LedgerEntry struct {
	ID            string          `json:"id"`             // unique identifier
	TransactionID string          `json:"transaction_id"` // transaction this entry belongs to
	AccountID     int64           `json:"account_id"`     // which account this entry belongs to
	Amount        decimal.Decimal `json:"amount"`         // positive for credits, negative for debits
	Message       string          `json:"message"`        // journal text
	CreatedAt     time.Time       `json:"created_at"`     // timestamp
}
