package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/models"
)

type PushTokenRepo struct {
	DB DBTX
}

const upsertToken = `-- name: UpsertToken
INSERT INTO push_tokens (user_id, token, platform, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET token = EXCLUDED.token, platform = EXCLUDED.platform, updated_at = EXCLUDED.updated_at
`

func (r *PushTokenRepo) UpsertToken(ctx context.Context, token models.PushToken) error {
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = time.Now()
	}

	_, err := r.DB.Exec(ctx, upsertToken, token.UserID, token.Token, token.Platform, token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const getToken = `-- name: GetToken
SELECT user_id, token, platform, updated_at FROM push_tokens
WHERE user_id = $1
`

func (r *PushTokenRepo) GetToken(ctx context.Context, userID uuid.UUID) (models.PushToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, userID)
	token, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.PushToken, error) {
		var t models.PushToken
		err := row.Scan(&t.UserID, &t.Token, &t.Platform, &t.UpdatedAt)
		return t, err
	})

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrPushTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}
