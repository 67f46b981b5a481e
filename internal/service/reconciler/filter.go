package reconciler

import (
	"github.com/planmoni/depositwatch/internal/service/paystack"
)

// StatusSuccess is the only terminal-positive status a deposit can settle in
const StatusSuccess = "success"

// MatchOpts selects which of the processor's transactions belong to one
// account binding.
type MatchOpts struct {
	// Virtual account number the transfer must have settled on
	AccountNumber string

	// Expected settlement channel, e.g. "dedicated_nuban"
	Channel string

	// Email of the account owner. When set, transactions for this customer
	// email match even if the account number differs. This is the looser
	// matching the single-user poller uses; the all-accounts runner leaves it
	// empty and matches on account number only.
	Email string
}

// Filter keeps successful transactions on the expected channel that belong to
// the account. Pure and order-preserving; dedup happens separately.
func Filter(transactions []paystack.Transaction, opts MatchOpts) []paystack.Transaction {
	matched := make([]paystack.Transaction, 0, len(transactions))

	for _, tx := range transactions {
		if tx.Status != StatusSuccess || tx.Channel != opts.Channel {
			continue
		}

		byAccount := tx.Authorization != nil && tx.Authorization.AccountNumber == opts.AccountNumber
		byEmail := opts.Email != "" && tx.Customer.Email == opts.Email
		if !byAccount && !byEmail {
			continue
		}

		matched = append(matched, tx)
	}

	return matched
}

// Dedup drops transactions whose reference is already recorded and
// transactions whose metadata lacks the receiver account number. The latter
// are not confirmed virtual-account credits.
func Dedup(transactions []paystack.Transaction, seen map[string]struct{}) []paystack.Transaction {
	fresh := make([]paystack.Transaction, 0, len(transactions))

	for _, tx := range transactions {
		if _, ok := seen[tx.Reference]; ok {
			continue
		}
		if tx.ReceiverAccountNumber() == "" {
			continue
		}

		fresh = append(fresh, tx)
	}

	return fresh
}
