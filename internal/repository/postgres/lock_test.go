package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
	"github.com/planmoni/depositwatch/internal/testutil"
)

func TestLock(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	name := models.LockNameTransactionProcessing

	t.Run("acquire free lock", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			lock, err := storage.Lock().Acquire(t.Context(), name, 5*time.Minute)

			require.NoError(t, err, "free lock has to be acquired ok")
			require.Equal(t, name, lock.Name)
			require.Equal(t, models.LockStatusActive, lock.Status)
			require.True(t, lock.ExpiresAt.After(time.Now()), "expiry has to be in the future")
		})
	})

	t.Run("acquire held lock", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Lock().Acquire(t.Context(), name, 5*time.Minute)
			require.NoError(t, err)

			_, err = storage.Lock().Acquire(t.Context(), name, 5*time.Minute)

			require.ErrorIs(t, err, apperrors.ErrLockHeld, "second acquire must report contention")
		})
	})

	t.Run("expired lock treated as absent", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			// Negative ttl plants an already expired active row
			_, err := storage.Lock().Acquire(t.Context(), name, -time.Minute)
			require.NoError(t, err)

			lock, err := storage.Lock().Acquire(t.Context(), name, 5*time.Minute)

			require.NoError(t, err, "expired row must not block a new pass")
			require.True(t, lock.ExpiresAt.After(time.Now()))
		})
	})

	t.Run("release frees the lock", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Lock().Acquire(t.Context(), name, 5*time.Minute)
			require.NoError(t, err)

			err = storage.Lock().Release(t.Context(), name)
			require.NoError(t, err)

			_, err = storage.Lock().Acquire(t.Context(), name, 5*time.Minute)
			require.NoError(t, err, "lock has to be acquirable after release")
		})
	})

	t.Run("release absent lock", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			err := storage.Lock().Release(t.Context(), "never-acquired")

			require.NoError(t, err, "releasing an absent lock is not an error")
		})
	})

	t.Run("independent lock names", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Lock().Acquire(t.Context(), name, 5*time.Minute)
			require.NoError(t, err)

			_, err = storage.Lock().Acquire(t.Context(), "other_job", 5*time.Minute)

			require.NoError(t, err, "different lock names must not contend")
		})
	})
}
