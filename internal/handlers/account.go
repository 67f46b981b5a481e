package handlers

import (
	"net/http"

	"github.com/planmoni/depositwatch/internal/handlers/render"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/service/paystack"
)

func handleListBanks(directory bankDirectory, l logger.Logger) http.Handler {
	type response struct {
		Status bool            `json:"status"`
		Data   []paystack.Bank `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		banks, err := directory.ListBanks(r.Context())
		if err != nil {
			l.Error("Failed to list banks", "error", err)
			render.ServiceError(w, "Bank directory unavailable", http.StatusBadGateway)
			return
		}

		render.JSON(w, response{Status: true, Data: banks})
	})
}

func handleResolveAccount(directory bankDirectory, l logger.Logger) http.Handler {
	type resolved struct {
		AccountName   string `json:"account_name"`
		AccountNumber string `json:"account_number"`
		BankID        int64  `json:"bank_id"`
		BankName      string `json:"bank_name"`
	}

	type response struct {
		Status bool     `json:"status"`
		Data   resolved `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountNumber := r.URL.Query().Get("account_number")
		bankCode := r.URL.Query().Get("bank_code")
		if accountNumber == "" || bankCode == "" {
			render.ServiceError(w, "account_number and bank_code are required", http.StatusBadRequest)
			return
		}

		account, err := directory.ResolveAccount(r.Context(), accountNumber, bankCode)
		if err != nil {
			l.Error("Failed to resolve account", "account_number", accountNumber, "error", err)
			render.ServiceError(w, "Account resolution unavailable", http.StatusBadGateway)
			return
		}

		render.JSON(w, response{Status: true, Data: resolved{
			AccountName:   account.AccountName,
			AccountNumber: account.AccountNumber,
			BankID:        account.BankID,
			BankName:      bankNameFor(r, directory, bankCode, l),
		}})
	})
}

// bankNameFor enriches the resolution with the human bank name. The directory
// lookup is cosmetic, so failures degrade to a generic label instead of
// failing the request.
func bankNameFor(r *http.Request, directory bankDirectory, bankCode string, l logger.Logger) string {
	banks, err := directory.ListBanks(r.Context())
	if err != nil {
		l.Debug("Failed to load bank names", "error", err)
		return "Bank"
	}

	for _, bank := range banks {
		if bank.Code == bankCode {
			return bank.Name
		}
	}
	return "Bank"
}
