package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/planmoni/depositwatch/internal/db"
	"github.com/planmoni/depositwatch/internal/handlers"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/repository/postgres"
	"github.com/planmoni/depositwatch/internal/service/deposit"
	"github.com/planmoni/depositwatch/internal/service/notify"
	"github.com/planmoni/depositwatch/internal/service/paystack"
	"github.com/planmoni/depositwatch/internal/service/reconciler"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Poller     *reconciler.Poller

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	paystackClient := paystack.NewClient(c.PaystackAPIURL, c.PaystackSecretKey, logger)

	pushSender := notify.NewPushSender(notify.PushConfig{
		SendURL:   c.FCMSendURL,
		ServerKey: c.FCMServerKey,
	}, storage.PushToken(), logger)
	emailSender := notify.NewEmailSender(notify.EmailConfig{
		APIURL: c.ResendAPIURL,
		APIKey: c.ResendAPIKey,
		From:   c.ResendFrom,
	}, logger)
	dispatcher := notify.NewDispatcher(pushSender, emailSender, storage.Profile(), logger)

	depositService := deposit.NewService(storage, logger)
	processor := reconciler.New(paystackClient, depositService, dispatcher, c.Channel, logger)
	runner := reconciler.NewRunner(storage.Lock(), storage.Account(), processor, logger)

	// Token registration goes through the sender so its cache stays coherent
	mux := handlers.NewRouter(runner, paystackClient, pushSender, c.ServiceToken, logger)

	app := &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
	}

	if c.PollUserID != "" {
		userID, err := uuid.Parse(c.PollUserID)
		if err != nil {
			return nil, fmt.Errorf("configuration error: poll user id is not a valid uuid: %w", err)
		}

		trigger := reconciler.NewHTTPTrigger(
			"http://"+c.ListenAddr+"/api/jobs/check-new-transactions",
			c.ServiceToken,
		)
		app.Poller = reconciler.NewPoller(userID, storage.Account(), storage.Profile(), processor,
			reconciler.PollerOpts{Trigger: trigger}, logger)
	}

	return app, nil
}

// Run starts the http server and the poller (if configured) and closes both
// gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	var pollerStopped <-chan struct{}
	if s.Poller != nil {
		pollerStopped = s.Poller.Poll(srvCtx)
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	if pollerStopped != nil {
		<-pollerStopped
	}

	return err
}
