package models

import (
	"time"

	"github.com/google/uuid"
)

// PushToken is the FCM device token registered for a user, one per user
type PushToken struct {
	UserID    uuid.UUID
	Token     string
	Platform  string
	UpdatedAt time.Time
}
