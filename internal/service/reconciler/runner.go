package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
)

// DefaultLockTTL bounds how long a crashed pass can block the next one
const DefaultLockTTL = 5 * time.Minute

// Summary of one server-triggered reconciliation pass
type Summary struct {
	ProcessedAccounts int
	NewTransactions   int
}

type accountProcessor interface {
	ProcessAccount(ctx context.Context, account models.VirtualAccount, email string) (int, error)
}

// Runner is the server-triggered orchestrator: it serializes whole passes
// behind the processing lock and walks every account binding.
//
// The lock is a throughput optimization, not the correctness guarantee. A
// client-style poller may run concurrently without it; the unique ledger
// constraint is the final line of defense either way.
type Runner struct {
	locks     repository.LockRepo
	accounts  repository.AccountRepo
	processor accountProcessor
	lockTTL   time.Duration
	logger    logger.Logger
}

func NewRunner(locks repository.LockRepo, accounts repository.AccountRepo, processor accountProcessor, logger logger.Logger) *Runner {
	return &Runner{
		locks:     locks,
		accounts:  accounts,
		processor: processor,
		lockTTL:   DefaultLockTTL,
		logger:    logger,
	}
}

// Run executes one full pass over all account bindings.
// Returns apperrors.ErrLockHeld without doing any work when another pass is
// already in flight.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	_, err := r.locks.Acquire(ctx, models.LockNameTransactionProcessing, r.lockTTL)
	switch {
	case errors.Is(err, apperrors.ErrLockHeld):
		r.logger.Info("Transaction processing already in progress, skipping")
		return summary, err
	case err != nil:
		return summary, fmt.Errorf("failed to acquire processing lock: %w", err)
	}

	// Release on every exit; if this fails the row expires on its own
	defer func() {
		if err := r.locks.Release(context.WithoutCancel(ctx), models.LockNameTransactionProcessing); err != nil {
			r.logger.Error("Failed to release processing lock, relying on expiry", "error", err)
		}
	}()

	accounts, err := r.accounts.ListAccounts(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list accounts: %w", err)
	}

	r.logger.Info("Starting transaction check", "accounts", len(accounts))

	for _, account := range accounts {
		// Server path matches on account number only, no email fallback
		applied, err := r.processor.ProcessAccount(ctx, account, "")
		if err != nil {
			r.logger.Error("Failed to process account, continuing with next",
				"account_number", account.AccountNumber,
				"error", err,
			)
			continue
		}

		summary.ProcessedAccounts++
		summary.NewTransactions += applied
	}

	r.logger.Info("Transaction check completed",
		"processed_accounts", summary.ProcessedAccounts,
		"new_transactions", summary.NewTransactions,
	)

	return summary, nil
}
