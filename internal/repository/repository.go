package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/planmoni/depositwatch/internal/models"
)

type ProfileRepo interface {
	CreateProfile(ctx context.Context, email string, firstName string) (models.Profile, error)

	// Get profile by user id
	// If profile not found must return apperrors.ErrProfileNotFound
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

type WalletRepo interface {
	// Create wallet with zero balance
	// If wallet for user exists already has to return apperrors.ErrWalletExists
	CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Get wallet by owning user
	// If wallet not found must return apperrors.ErrWalletNotFound
	GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Credit increments the available balance and returns the updated wallet.
	// Must only ever be called inside the atomic deposit apply.
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Wallet, error)
}

type TransactionRepo interface {
	// Create ledger row
	// If (user, type, reference) exists already must return apperrors.ErrDuplicateReference
	CreateTransaction(ctx context.Context, tr models.Transaction) (models.Transaction, error)

	// ListReferences returns the references already recorded for user and type.
	// Callers must read these fresh every reconciliation pass, never cache.
	ListReferences(ctx context.Context, userID uuid.UUID, trType string) ([]string, error)

	ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
}

type AccountRepo interface {
	// Create virtual account binding
	// If user already has an account must return apperrors.ErrAccountExists
	CreateAccount(ctx context.Context, userID uuid.UUID, accountNumber string, customerCode string) (models.VirtualAccount, error)

	// Get binding by owning user
	// If not found must return apperrors.ErrAccountNotFound
	GetAccountByUser(ctx context.Context, userID uuid.UUID) (models.VirtualAccount, error)

	ListAccounts(ctx context.Context) ([]models.VirtualAccount, error)
}

type LockRepo interface {
	// Acquire the named lock for at most ttl.
	// An active row past its expiry is treated as absent and replaced.
	// If another pass holds the lock must return apperrors.ErrLockHeld.
	Acquire(ctx context.Context, name string, ttl time.Duration) (models.SystemLock, error)

	// Release deletes the lock row. Safe to call when the row is gone already.
	Release(ctx context.Context, name string) error
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
	ListEvents(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
}

type PushTokenRepo interface {
	// Upsert the token for a user, one row per user
	UpsertToken(ctx context.Context, token models.PushToken) error

	// Get token for user
	// If not found must return apperrors.ErrPushTokenNotFound
	GetToken(ctx context.Context, userID uuid.UUID) (models.PushToken, error)
}

type Storage interface {
	Profile() ProfileRepo
	Wallet() WalletRepo
	Transaction() TransactionRepo
	Account() AccountRepo
	Lock() LockRepo
	Event() EventRepo
	PushToken() PushTokenRepo

	// InTx runs fn with a Storage bound to one database transaction.
	// Returned error rolls the whole transaction back.
	InTx(ctx context.Context, fn func(Storage) error) error
}
