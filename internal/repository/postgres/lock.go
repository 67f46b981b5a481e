package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/models"
)

type LockRepo struct {
	DB DBTX
}

const deleteExpiredLock = `-- name: DeleteExpiredLock
DELETE FROM system_locks
WHERE lock_name = $1 AND status = 'active' AND expires_at <= $2
`

const insertLock = `-- name: InsertLock
INSERT INTO system_locks (id, lock_name, status, expires_at)
VALUES ($1, $2, 'active', $3)
RETURNING id, created_at, lock_name, status, expires_at
`

// Acquire claims the named lock for at most ttl.
// An expired active row is treated as absent: it is removed first, then a
// fresh row is inserted. The partial unique index on active lock names makes
// concurrent inserts race safely; the loser gets a unique violation which is
// reported as apperrors.ErrLockHeld.
func (r *LockRepo) Acquire(ctx context.Context, name string, ttl time.Duration) (models.SystemLock, error) {
	var lock models.SystemLock

	now := time.Now()

	if _, err := r.DB.Exec(ctx, deleteExpiredLock, name, now); err != nil {
		return lock, fmt.Errorf("db error: %w", err)
	}

	rows, _ := r.DB.Query(ctx, insertLock, uuid.New(), name, now.Add(ttl))
	lock, err := pgx.CollectOneRow(rows, rowToLock)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return lock, apperrors.ErrLockHeld
		}

		return lock, fmt.Errorf("db error: %w", err)
	}

	return lock, nil
}

const deleteLock = `-- name: DeleteLock
DELETE FROM system_locks
WHERE lock_name = $1
`

// Release drops the lock row. Releasing an absent lock is not an error: the
// row may have expired and been replaced while the caller was still running.
func (r *LockRepo) Release(ctx context.Context, name string) error {
	if _, err := r.DB.Exec(ctx, deleteLock, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToLock(row pgx.CollectableRow) (models.SystemLock, error) {
	var l models.SystemLock
	err := row.Scan(&l.ID, &l.CreatedAt, &l.Name, &l.Status, &l.ExpiresAt)
	return l, err
}
