package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit = "deposit"

	TransactionStatusCompleted = "completed"
)

// Transaction is one append-only ledger row.
// Reference is unique per (user, type) and acts as the dedup key for deposits.
type Transaction struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UserID      uuid.UUID
	Type        string
	Amount      decimal.Decimal
	Status      string
	Source      string
	Destination string
	Reference   string
	Description string
}
