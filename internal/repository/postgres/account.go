package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/models"
)

type AccountRepo struct {
	DB DBTX
}

const createAccount = `-- name: CreateAccount
INSERT INTO virtual_accounts (id, user_id, account_number, customer_code)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, user_id, account_number, customer_code
`

func (r *AccountRepo) CreateAccount(ctx context.Context, userID uuid.UUID, accountNumber string, customerCode string) (models.VirtualAccount, error) {
	rows, _ := r.DB.Query(ctx, createAccount, uuid.New(), userID, accountNumber, customerCode)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrAccountExists
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccountByUser = `-- name: GetAccountByUser
SELECT id, created_at, user_id, account_number, customer_code FROM virtual_accounts
WHERE user_id = $1
`

func (r *AccountRepo) GetAccountByUser(ctx context.Context, userID uuid.UUID) (models.VirtualAccount, error) {
	rows, _ := r.DB.Query(ctx, getAccountByUser, userID)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

const listAccounts = `-- name: ListAccounts
SELECT id, created_at, user_id, account_number, customer_code FROM virtual_accounts
ORDER BY created_at
`

func (r *AccountRepo) ListAccounts(ctx context.Context) ([]models.VirtualAccount, error) {
	rows, _ := r.DB.Query(ctx, listAccounts)
	accounts, err := pgx.CollectRows(rows, rowToAccount)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

func rowToAccount(row pgx.CollectableRow) (models.VirtualAccount, error) {
	var a models.VirtualAccount
	err := row.Scan(&a.ID, &a.CreatedAt, &a.UserID, &a.AccountNumber, &a.CustomerCode)
	return a, err
}
