package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/models"
)

type ProfileRepo struct {
	DB DBTX
}

const createProfile = `-- name: CreateProfile
INSERT INTO profiles (id, email, first_name)
VALUES ($1, $2, $3)
RETURNING id, created_at, email, first_name
`

func (r *ProfileRepo) CreateProfile(ctx context.Context, email string, firstName string) (models.Profile, error) {
	rows, _ := r.DB.Query(ctx, createProfile, uuid.New(), email, firstName)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)

	if err != nil {
		return profile, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}

const getProfile = `-- name: GetProfile
SELECT id, created_at, email, first_name FROM profiles
WHERE id = $1
`

func (r *ProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	rows, _ := r.DB.Query(ctx, getProfile, userID)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)

	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, pgx.ErrNoRows):
		return profile, apperrors.ErrProfileNotFound
	default:
		return profile, fmt.Errorf("db error: %w", err)
	}
}

func rowToProfile(row pgx.CollectableRow) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.CreatedAt, &p.Email, &p.FirstName)
	return p, err
}
