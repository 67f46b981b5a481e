package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
)

const DefaultFCMSendURL = "https://fcm.googleapis.com/fcm/send"

type PushConfig struct {
	SendURL   string
	ServerKey string
}

// PushSender delivers push notifications through FCM.
//
// It is an explicitly constructed component and the single owner of the token
// cache. Token registration goes through UpsertToken so the cached entry is
// refreshed in the same step and a re-registered device takes effect on the
// next send, not on the next restart.
type PushSender struct {
	sendURL   string
	serverKey string

	tokens repository.PushTokenRepo
	client *http.Client
	logger logger.Logger

	mu    sync.Mutex
	cache map[uuid.UUID]string
}

func NewPushSender(cfg PushConfig, tokens repository.PushTokenRepo, logger logger.Logger) *PushSender {
	sendURL := cfg.SendURL
	if sendURL == "" {
		sendURL = DefaultFCMSendURL
	}

	return &PushSender{
		sendURL:   sendURL,
		serverKey: cfg.ServerKey,
		tokens:    tokens,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
		cache:     make(map[uuid.UUID]string),
	}
}

// Send pushes a notification to the user's registered device.
// A user without a registered token is not an error: there is simply no
// device to notify.
func (s *PushSender) Send(ctx context.Context, userID uuid.UUID, title string, body string, data map[string]any) error {
	if s.serverKey == "" {
		s.logger.Debug("Push disabled, no server key configured")
		return nil
	}

	token, err := s.userToken(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrPushTokenNotFound):
		s.logger.Debug("No push token for user", "user_id", userID)
		return nil
	case err != nil:
		return err
	}

	payload := struct {
		To           string         `json:"to"`
		Notification map[string]any `json:"notification"`
		Data         map[string]any `json:"data,omitempty"`
	}{
		To:           token,
		Notification: map[string]any{"title": title, "body": body},
		Data:         data,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, buf)
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Authorization", "key="+s.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push delivery failed with status %d", resp.StatusCode)
	}

	return nil
}

// UpsertToken stores the device token and refreshes the cache entry.
// Must be the only registration path: writing to the repo behind the sender's
// back leaves a stale token cached until the process restarts.
func (s *PushSender) UpsertToken(ctx context.Context, token models.PushToken) error {
	if err := s.tokens.UpsertToken(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[token.UserID] = token.Token
	s.mu.Unlock()

	return nil
}

func (s *PushSender) userToken(ctx context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	token, ok := s.cache[userID]
	s.mu.Unlock()
	if ok {
		return token, nil
	}

	stored, err := s.tokens.GetToken(ctx, userID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[userID] = stored.Token
	s.mu.Unlock()

	return stored.Token, nil
}
