package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LockStatusActive = "active"

	// Single global lock name for the server-triggered reconciliation job
	LockNameTransactionProcessing = "transaction_processing"
)

// SystemLock is an advisory mutual-exclusion row. At most one active row per
// lock name may exist, enforced by a partial unique index. A row past its
// ExpiresAt is treated as absent so a crashed pass cannot wedge future ones.
type SystemLock struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Name      string
	Status    string
	ExpiresAt time.Time
}
