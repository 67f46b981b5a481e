package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDepositSuccessful = "deposit_successful"

	EventStatusUnread = "unread"
)

// Event is an in-app feed entry shown to the user
type Event struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UserID      uuid.UUID
	Type        string
	Title       string
	Description string
	Status      string
}
