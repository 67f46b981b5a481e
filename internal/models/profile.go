package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the user record owned by the auth provider.
// Only the fields the reconciler needs are mirrored here.
type Profile struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Email     string
	FirstName string
}
