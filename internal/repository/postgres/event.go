package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planmoni/depositwatch/internal/models"
)

type EventRepo struct {
	DB DBTX
}

const createEvent = `-- name: CreateEvent
INSERT INTO events (id, created_at, user_id, type, title, description, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, user_id, type, title, description, status
`

func (r *EventRepo) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.Status == "" {
		event.Status = models.EventStatusUnread
	}

	rows, _ := r.DB.Query(ctx, createEvent,
		event.ID, event.CreatedAt, event.UserID, event.Type, event.Title, event.Description, event.Status,
	)
	created, err := pgx.CollectOneRow(rows, rowToEvent)

	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listEvents = `-- name: ListEvents
SELECT id, created_at, user_id, type, title, description, status FROM events
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *EventRepo) ListEvents(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	rows, _ := r.DB.Query(ctx, listEvents, userID)
	events, err := pgx.CollectRows(rows, rowToEvent)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return events, nil
}

func rowToEvent(row pgx.CollectableRow) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.CreatedAt, &e.UserID, &e.Type, &e.Title, &e.Description, &e.Status)
	return e, err
}
