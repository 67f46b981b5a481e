package models

import (
	"time"

	"github.com/google/uuid"
)

// VirtualAccount binds a user to the dedicated virtual account number
// provisioned for them by the payment processor. Read-only to the reconciler.
type VirtualAccount struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	UserID        uuid.UUID
	AccountNumber string
	CustomerCode  string
}
