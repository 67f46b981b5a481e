package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/service/paystack"
)

// DefaultChannel is the settlement channel of dedicated virtual accounts
const DefaultChannel = "dedicated_nuban"

type paystackClient interface {
	ListTransactions(ctx context.Context) ([]paystack.Transaction, error)
}

type depositService interface {
	Apply(ctx context.Context, userID uuid.UUID, amountKobo int64, reference string) (models.Transaction, error)
	AppliedReferences(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error)
}

type notifier interface {
	DepositReceived(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string)
}

// Reconciler runs one fetch -> filter -> dedup -> apply pass for one account
type Reconciler struct {
	client   paystackClient
	deposits depositService
	notifier notifier
	channel  string
	logger   logger.Logger
}

func New(client paystackClient, deposits depositService, notifier notifier, channel string, logger logger.Logger) *Reconciler {
	if channel == "" {
		channel = DefaultChannel
	}

	return &Reconciler{
		client:   client,
		deposits: deposits,
		notifier: notifier,
		channel:  channel,
		logger:   logger,
	}
}

// ProcessAccount reconciles one account binding and returns the number of
// newly applied deposits.
//
// A fetch failure aborts only this account: the caller skips it and retries
// on the next pass. Per-transaction failures are logged and skipped so one
// bad transaction never blocks the rest.
func (r *Reconciler) ProcessAccount(ctx context.Context, account models.VirtualAccount, email string) (int, error) {
	transactions, err := r.client.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch transactions for account %s: %w", account.AccountNumber, err)
	}

	matched := Filter(transactions, MatchOpts{
		AccountNumber: account.AccountNumber,
		Channel:       r.channel,
		Email:         email,
	})
	if len(matched) == 0 {
		return 0, nil
	}

	// Fresh read every pass: a concurrent pass may have applied rows since
	seen, err := r.deposits.AppliedReferences(ctx, account.UserID)
	if err != nil {
		return 0, err
	}

	fresh := Dedup(matched, seen)
	r.logger.Debug("Reconciliation pass",
		"account_number", account.AccountNumber,
		"matched", len(matched),
		"new", len(fresh),
	)

	applied := 0
	for _, tx := range fresh {
		created, err := r.deposits.Apply(ctx, account.UserID, tx.Amount, tx.Reference)

		switch {
		case errors.Is(err, apperrors.ErrDuplicateReference):
			// Lost the race to a concurrent pass; the deposit is credited
			r.logger.Debug("Reference already applied", "reference", tx.Reference)
			continue
		case err != nil:
			r.logger.Error("Failed to apply deposit", "reference", tx.Reference, "error", err)
			continue
		}

		applied++

		// Best-effort: ledger row is committed, delivery failures are only logged
		r.notifier.DepositReceived(ctx, account.UserID, created.Amount, created.Reference)
	}

	return applied, nil
}
