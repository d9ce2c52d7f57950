package events

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionCompleted struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   int64           `json:"from_account"`
	ToAccount     int64           `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
	Options       string          `json:"options"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
