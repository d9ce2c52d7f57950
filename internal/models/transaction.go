package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents an intent to transfer money
type Transaction struct {
	ID             string
	IdempotencyKey string
	FromAccount    int64
	ToAccount      int64
	Amount         decimal.Decimal
	Message        string
	Options        TransferOptions
	CreatedAt      time.Time
}
