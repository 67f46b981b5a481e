package reconciler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
)

type fakeProfiles struct {
	profiles map[uuid.UUID]models.Profile
}

func (p *fakeProfiles) CreateProfile(_ context.Context, email string, firstName string) (models.Profile, error) {
	return models.Profile{ID: uuid.New(), Email: email, FirstName: firstName}, nil
}

func (p *fakeProfiles) GetProfile(_ context.Context, userID uuid.UUID) (models.Profile, error) {
	profile, ok := p.profiles[userID]
	if !ok {
		return models.Profile{}, apperrors.ErrProfileNotFound
	}
	return profile, nil
}

// signalProcessor closes done after the expected number of calls
type signalProcessor struct {
	fakeProcessor
	want int
	done chan struct{}
	once sync.Once
}

func newSignalProcessor(want int) *signalProcessor {
	return &signalProcessor{want: want, done: make(chan struct{})}
}

func (p *signalProcessor) ProcessAccount(ctx context.Context, account models.VirtualAccount, email string) (int, error) {
	applied, err := p.fakeProcessor.ProcessAccount(ctx, account, email)

	p.mu.Lock()
	reached := len(p.calls) >= p.want
	p.mu.Unlock()
	if reached {
		p.once.Do(func() { close(p.done) })
	}

	return applied, err
}

func waitClosed(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal(msg)
	}
}

func TestPollerPoll(t *testing.T) {
	userID := uuid.New()
	account := models.VirtualAccount{ID: uuid.New(), UserID: userID, AccountNumber: "9038123456"}
	accounts := &fakeAccounts{byUser: map[uuid.UUID]models.VirtualAccount{userID: account}}
	profiles := &fakeProfiles{profiles: map[uuid.UUID]models.Profile{
		userID: {ID: userID, Email: "owner@example.com", FirstName: "Ada"},
	}}

	t.Run("first tick fires immediately with email fallback", func(t *testing.T) {
		processor := newSignalProcessor(1)

		poller := NewPoller(userID, accounts, profiles, processor, PollerOpts{Interval: time.Hour}, logger.NewNoOp())

		ctx, cancel := context.WithCancel(context.Background())
		stopped := poller.Poll(ctx)

		waitClosed(t, processor.done, "first tick never happened")
		cancel()
		waitClosed(t, stopped, "poller did not stop")

		require.Equal(t, "9038123456", processor.calls[0].accountNumber)
		require.Equal(t, "owner@example.com", processor.calls[0].email)
	})

	t.Run("keeps ticking on the interval", func(t *testing.T) {
		processor := newSignalProcessor(3)

		poller := NewPoller(userID, accounts, profiles, processor, PollerOpts{Interval: 5 * time.Millisecond}, logger.NewNoOp())

		ctx, cancel := context.WithCancel(context.Background())
		stopped := poller.Poll(ctx)

		waitClosed(t, processor.done, "expected at least three ticks")
		cancel()
		waitClosed(t, stopped, "poller did not stop")
	})

	t.Run("missing account binding is not an error", func(t *testing.T) {
		processor := &fakeProcessor{}
		empty := &fakeAccounts{byUser: map[uuid.UUID]models.VirtualAccount{}}

		poller := NewPoller(userID, empty, profiles, processor, PollerOpts{Interval: time.Hour}, logger.NewNoOp())

		ctx, cancel := context.WithCancel(context.Background())
		stopped := poller.Poll(ctx)

		time.Sleep(20 * time.Millisecond)
		cancel()
		waitClosed(t, stopped, "poller did not stop")

		require.Empty(t, processor.calls)
	})

	t.Run("missing profile polls without email fallback", func(t *testing.T) {
		processor := newSignalProcessor(1)
		noProfiles := &fakeProfiles{profiles: map[uuid.UUID]models.Profile{}}

		poller := NewPoller(userID, accounts, noProfiles, processor, PollerOpts{Interval: time.Hour}, logger.NewNoOp())

		ctx, cancel := context.WithCancel(context.Background())
		stopped := poller.Poll(ctx)

		waitClosed(t, processor.done, "first tick never happened")
		cancel()
		waitClosed(t, stopped, "poller did not stop")

		require.Empty(t, processor.calls[0].email)
	})

	t.Run("trigger fires when the dice land below the chance", func(t *testing.T) {
		processor := newSignalProcessor(1)
		triggered := make(chan struct{}, 1)

		poller := NewPoller(userID, accounts, profiles, processor, PollerOpts{
			Interval: time.Hour,
			Trigger: func(_ context.Context) error {
				triggered <- struct{}{}
				return nil
			},
		}, logger.NewNoOp())
		poller.chance = func() float64 { return 0.05 }

		ctx, cancel := context.WithCancel(context.Background())
		stopped := poller.Poll(ctx)

		select {
		case <-triggered:
		case <-time.After(3 * time.Second):
			t.Fatal("trigger never fired")
		}
		cancel()
		waitClosed(t, stopped, "poller did not stop")
	})

	t.Run("trigger stays quiet when the dice land above the chance", func(t *testing.T) {
		processor := newSignalProcessor(1)
		triggered := make(chan struct{}, 1)

		poller := NewPoller(userID, accounts, profiles, processor, PollerOpts{
			Interval: time.Hour,
			Trigger: func(_ context.Context) error {
				triggered <- struct{}{}
				return nil
			},
		}, logger.NewNoOp())
		poller.chance = func() float64 { return 0.95 }

		ctx, cancel := context.WithCancel(context.Background())
		stopped := poller.Poll(ctx)

		waitClosed(t, processor.done, "first tick never happened")
		cancel()
		waitClosed(t, stopped, "poller did not stop")

		require.Empty(t, triggered)
	})
}

func TestNewHTTPTrigger(t *testing.T) {
	t.Run("posts with the service token", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(map[string]bool{"success": true}) // nolint:errcheck
		}))
		defer srv.Close()

		trigger := NewHTTPTrigger(srv.URL+"/api/jobs/check-new-transactions", "svc-token")

		require.NoError(t, trigger(context.Background()))
		require.Equal(t, "Bearer svc-token", gotAuth)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		trigger := NewHTTPTrigger(srv.URL, "bad-token")

		require.Error(t, trigger(context.Background()))
	})

	t.Run("unreachable server is an error", func(t *testing.T) {
		trigger := NewHTTPTrigger("http://127.0.0.1:1/api/jobs/check-new-transactions", "svc-token")

		require.Error(t, trigger(context.Background()))
	})
}
