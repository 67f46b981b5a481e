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

type TransactionRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, created_at, user_id, type, amount, status, source, destination, reference, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, user_id, type, amount, status, source, destination, reference, description
`

func (r *TransactionRepo) CreateTransaction(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createTransaction,
		tr.ID, tr.CreatedAt, tr.UserID, tr.Type, tr.Amount, tr.Status,
		tr.Source, tr.Destination, tr.Reference, tr.Description,
	)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrDuplicateReference
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listReferences = `-- name: ListReferences
SELECT reference FROM transactions
WHERE user_id = $1 AND type = $2
`

func (r *TransactionRepo) ListReferences(ctx context.Context, userID uuid.UUID, trType string) ([]string, error) {
	rows, _ := r.DB.Query(ctx, listReferences, userID, trType)
	references, err := pgx.CollectRows(rows, pgx.RowTo[string])

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return references, nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, created_at, user_id, type, amount, status, source, destination, reference, description
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *TransactionRepo) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, listTransactions, userID)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.Type, &t.Amount, &t.Status,
		&t.Source, &t.Destination, &t.Reference, &t.Description)
	return t, err
}
