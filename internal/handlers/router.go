package handlers

import (
	"context"
	"net/http"

	"github.com/planmoni/depositwatch/internal/handlers/middleware"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/service/paystack"
	"github.com/planmoni/depositwatch/internal/service/reconciler"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	jobRunner jobRunner,
	directory bankDirectory,
	pushTokens pushTokenStore,
	serviceToken string,
	logger logger.Logger,
) http.Handler {
	serviceAuth := middleware.ServiceTokenMiddleware(serviceToken)

	root := http.NewServeMux()

	root.Handle("POST /api/jobs/check-new-transactions", serviceAuth(handleCheckNewTransactions(jobRunner, logger)))
	root.Handle("GET /api/banks", handleListBanks(directory, logger))
	root.Handle("GET /api/accounts/resolve", handleResolveAccount(directory, logger))
	root.Handle("POST /api/push-tokens", handleRegisterPushToken(pushTokens, logger))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type jobRunner interface {
	// Run one full reconciliation pass over all account bindings
	// Has to return apperrors.ErrLockHeld when a pass is already in flight
	Run(ctx context.Context) (reconciler.Summary, error)
}

type bankDirectory interface {
	// Resolve account name for account number and bank code
	ResolveAccount(ctx context.Context, accountNumber string, bankCode string) (paystack.ResolvedAccount, error)

	ListBanks(ctx context.Context) ([]paystack.Bank, error)
}

type pushTokenStore interface {
	// Upsert the device token for a user, one row per user
	UpsertToken(ctx context.Context, token models.PushToken) error
}
