package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
)

type pushSender interface {
	Send(ctx context.Context, userID uuid.UUID, title string, body string, data map[string]any) error
}

type emailSender interface {
	SendDeposit(ctx context.Context, to string, firstName string, amount decimal.Decimal, reference string) error
}

// Dispatcher fans one deposit out to push and email.
//
// Delivery is best-effort: the ledger row is already committed when the
// dispatcher runs, so failures here are logged and never retried. The ledger
// is authoritative, notifications are not.
type Dispatcher struct {
	push     pushSender
	email    emailSender
	profiles repository.ProfileRepo
	logger   logger.Logger
}

func NewDispatcher(push pushSender, email emailSender, profiles repository.ProfileRepo, logger logger.Logger) *Dispatcher {
	return &Dispatcher{
		push:     push,
		email:    email,
		profiles: profiles,
		logger:   logger,
	}
}

func (d *Dispatcher) DepositReceived(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) {
	body := fmt.Sprintf("₦%s has been added to your wallet", amount.StringFixed(2))

	err := d.push.Send(ctx, userID, "Funds Received", body, map[string]any{
		"type":                  models.EventTypeDepositSuccessful,
		"transaction_reference": reference,
		"amount":                amount.String(),
	})
	if err != nil {
		d.logger.Warn("Failed to send push notification", "user_id", userID, "reference", reference, "error", err)
	}

	profile, err := d.profiles.GetProfile(ctx, userID)
	if err != nil {
		d.logger.Warn("Failed to load profile for email", "user_id", userID, "error", err)
		return
	}
	if profile.Email == "" {
		d.logger.Debug("No email for user", "user_id", userID)
		return
	}

	if err := d.email.SendDeposit(ctx, profile.Email, profile.FirstName, amount, reference); err != nil {
		d.logger.Warn("Failed to send email notification", "user_id", userID, "reference", reference, "error", err)
	}
}
