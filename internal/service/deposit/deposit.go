package deposit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
)

// minorUnitsPerNaira converts kobo amounts reported by the processor
var minorUnitsPerNaira = decimal.NewFromInt(100)

type Service struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, logger logger.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Apply credits the user's wallet with one externally observed deposit.
//
// The ledger insert, the wallet credit and the in-app feed event happen in a
// single database transaction. The unique (user, type, reference) constraint
// on the ledger is checked first, so a duplicate reference rolls everything
// back without touching the balance and is reported as ErrDuplicateReference.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, amountKobo int64, reference string) (models.Transaction, error) {
	amount := decimal.NewFromInt(amountKobo).Div(minorUnitsPerNaira)

	var created models.Transaction

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		var err error

		created, err = store.Transaction().CreateTransaction(ctx, models.Transaction{
			UserID:      userID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Source:      "Paystack Virtual Account",
			Destination: "wallet",
			Reference:   reference,
			Description: "Funds added to wallet",
		})
		if err != nil {
			return err
		}

		if _, err := store.Wallet().Credit(ctx, userID, amount); err != nil {
			return err
		}

		_, err = store.Event().CreateEvent(ctx, models.Event{
			UserID:      userID,
			Type:        models.EventTypeDepositSuccessful,
			Title:       "Funds Received",
			Description: fmt.Sprintf("₦%s has been added to your wallet", amount.StringFixed(2)),
			Status:      models.EventStatusUnread,
		})
		return err
	})
	if err != nil {
		return created, err
	}

	s.logger.Info("Deposit applied", "user_id", userID, "reference", reference, "amount", amount)
	return created, nil
}

// AppliedReferences returns the set of deposit references already recorded for
// the user. Must be called fresh at the start of every reconciliation pass:
// concurrent passes may have inserted rows since the last read.
func (s *Service) AppliedReferences(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	references, err := s.storage.Transaction().ListReferences(ctx, userID, models.TransactionTypeDeposit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied references: %w", err)
	}

	seen := make(map[string]struct{}, len(references))
	for _, ref := range references {
		seen[ref] = struct{}{}
	}

	return seen, nil
}
