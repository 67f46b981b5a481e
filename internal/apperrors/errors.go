package apperrors

import (
	"errors"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrWalletExists    = errors.New("wallet already exists")

	ErrAccountNotFound = errors.New("virtual account not found")
	ErrAccountExists   = errors.New("virtual account already exists for this user")

	// Reference already recorded in the ledger for this user and type.
	// Means the deposit was applied by an earlier pass, not a real failure.
	ErrDuplicateReference = errors.New("transaction reference already recorded")

	// Another reconciliation pass holds the processing lock
	ErrLockHeld = errors.New("processing lock is held")

	ErrPushTokenNotFound = errors.New("push token not found")
)
