package reconciler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/repository"
)

const (
	defaultPollInterval = 30 * time.Second

	// Chance per tick to also fire the server-side job, roughly one trigger
	// every five minutes at the default interval
	defaultTriggerChance = 0.1
)

// Poller is the client-style orchestrator: it reconciles a single user's
// account on a timer, without the processing lock. The unique ledger
// constraint alone protects it against concurrent server passes. A fraction
// of ticks also triggers the server-side job as a redundancy measure.
type Poller struct {
	userID    uuid.UUID
	accounts  repository.AccountRepo
	profiles  repository.ProfileRepo
	processor accountProcessor

	interval      time.Duration
	triggerChance float64
	trigger       func(ctx context.Context) error
	chance        func() float64

	logger logger.Logger
}

type PollerOpts struct {
	// Tick interval, default 30s
	Interval time.Duration

	// Probability per tick to fire Trigger, default 0.1
	TriggerChance float64

	// Fires the server-side reconciliation job. May be nil.
	Trigger func(ctx context.Context) error
}

func NewPoller(userID uuid.UUID, accounts repository.AccountRepo, profiles repository.ProfileRepo, processor accountProcessor, opts PollerOpts, logger logger.Logger) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	triggerChance := opts.TriggerChance
	if triggerChance <= 0 {
		triggerChance = defaultTriggerChance
	}

	return &Poller{
		userID:        userID,
		accounts:      accounts,
		profiles:      profiles,
		processor:     processor,
		interval:      interval,
		triggerChance: triggerChance,
		trigger:       opts.Trigger,
		chance:        rand.Float64,
		logger:        logger,
	}
}

// Poll runs ticks until the context is cancelled.
// The returned channel closes when the loop has fully stopped.
func (p *Poller) Poll(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	p.logger.Debug("Starting poller", "user_id", p.userID, "interval", p.interval)

	go func() {
		defer close(idleStopped)

		// First pass right away, then on the ticker
		p.tick(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Poller stopped by context")
				return

			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()

	return idleStopped
}

func (p *Poller) tick(ctx context.Context) {
	account, err := p.accounts.GetAccountByUser(ctx, p.userID)
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		p.logger.Debug("No virtual account for user yet", "user_id", p.userID)
		return
	case err != nil:
		p.logger.Error("Failed to load account", "user_id", p.userID, "error", err)
		return
	}

	// The poller is scoped to the authenticated user, so it keeps the
	// original loose matching and also accepts transactions by their email
	email := ""
	if profile, err := p.profiles.GetProfile(ctx, p.userID); err == nil {
		email = profile.Email
	}

	if _, err := p.processor.ProcessAccount(ctx, account, email); err != nil {
		p.logger.Warn("Poll pass failed, will retry next tick", "user_id", p.userID, "error", err)
	}

	if p.trigger != nil && p.chance() < p.triggerChance {
		if err := p.trigger(ctx); err != nil {
			// Expected to fail now and then, the server job has its own lock
			p.logger.Debug("Server check trigger failed", "error", err)
		}
	}
}

// NewHTTPTrigger returns a trigger that fires the server-side job endpoint
func NewHTTPTrigger(jobURL string, serviceToken string) func(ctx context.Context) error {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, jobURL, bytes.NewReader(nil))
		if err != nil {
			return fmt.Errorf("failed to create trigger request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+serviceToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to trigger server check: %w", err)
		}
		defer resp.Body.Close() // nolint:errcheck

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("server check trigger returned status %d", resp.StatusCode)
		}

		return nil
	}
}
