package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
	"github.com/planmoni/depositwatch/internal/testutil"
)

func TestTransaction(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	t.Run("CreateTransaction", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			profile := newProfile(t, storage)

			base := models.Transaction{
				UserID:      profile.ID,
				Type:        models.TransactionTypeDeposit,
				Amount:      decimal.NewFromInt(5000),
				Status:      models.TransactionStatusCompleted,
				Source:      "Paystack Virtual Account",
				Destination: "wallet",
				Reference:   "TX100",
				Description: "Funds added to wallet",
			}

			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					created, err := storage.Transaction().CreateTransaction(t.Context(), base)

					require.NoError(t, err, "transaction has to be created ok")
					require.NotZero(t, created.ID)
					require.NotZero(t, created.CreatedAt)
					require.Equal(t, "TX100", created.Reference)
				})
			})

			t.Run("duplicate reference", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Transaction().CreateTransaction(t.Context(), base)
					require.NoError(t, err, "first insert should be ok")

					_, err = storage.Transaction().CreateTransaction(t.Context(), base)

					require.ErrorIs(t, err, apperrors.ErrDuplicateReference, "same (user, type, reference) must be rejected")
				})
			})

			t.Run("same reference different user", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Transaction().CreateTransaction(t.Context(), base)
					require.NoError(t, err)

					other := newProfile(t, storage)
					tr := base
					tr.UserID = other.ID

					_, err = storage.Transaction().CreateTransaction(t.Context(), tr)

					require.NoError(t, err, "reference is unique per user, not globally")
				})
			})
		})
	})

	t.Run("ListReferences", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			profile := newProfile(t, storage)

			t.Run("empty ledger", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					refs, err := storage.Transaction().ListReferences(t.Context(), profile.ID, models.TransactionTypeDeposit)

					require.NoError(t, err)
					require.Empty(t, refs)
				})
			})

			t.Run("returns deposit references only", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					for _, ref := range []string{"TX100", "TX101"} {
						_, err := storage.Transaction().CreateTransaction(t.Context(), models.Transaction{
							UserID:    profile.ID,
							Type:      models.TransactionTypeDeposit,
							Amount:    decimal.NewFromInt(10),
							Status:    models.TransactionStatusCompleted,
							Reference: ref,
						})
						require.NoError(t, err)
					}
					_, err := storage.Transaction().CreateTransaction(t.Context(), models.Transaction{
						UserID:    profile.ID,
						Type:      "payout",
						Amount:    decimal.NewFromInt(10),
						Status:    models.TransactionStatusCompleted,
						Reference: "TX102",
					})
					require.NoError(t, err)

					refs, err := storage.Transaction().ListReferences(t.Context(), profile.ID, models.TransactionTypeDeposit)

					require.NoError(t, err)
					require.ElementsMatch(t, []string{"TX100", "TX101"}, refs)
				})
			})
		})
	})
}
