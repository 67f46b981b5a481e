package handlers

import (
	"errors"
	"net/http"

	"github.com/planmoni/depositwatch/internal/apperrors"
	"github.com/planmoni/depositwatch/internal/handlers/render"
	"github.com/planmoni/depositwatch/internal/logger"
)

func handleCheckNewTransactions(jobRunner jobRunner, l logger.Logger) http.Handler {
	type response struct {
		Success           bool `json:"success"`
		ProcessedAccounts int  `json:"processed_accounts"`
		NewTransactions   int  `json:"new_transactions"`
	}

	type skipped struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summary, err := jobRunner.Run(r.Context())

		switch {
		case err == nil:
			render.JSON(w, response{
				Success:           true,
				ProcessedAccounts: summary.ProcessedAccounts,
				NewTransactions:   summary.NewTransactions,
			})
		case errors.Is(err, apperrors.ErrLockHeld):
			// Not a failure for the caller: the concurrent pass does the work
			render.JSON(w, skipped{Message: "already processing"})
		default:
			l.Error("Transaction check failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
