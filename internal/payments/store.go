package payments

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/concilia-dev/concilia/internal/model"
)

// Store retrieves payment records registered inside the business,
// consolidated across every module that takes money in or pays it out.
type Store interface {
	// ConsolidatedPayments returns all payments registered between from
	// and to, across every source, most recent first.
	ConsolidatedPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error)

	// CardSales returns point-of-sale card sales between from and to,
	// used when reconciling against card processor settlements.
	CardSales(ctx context.Context, from, to time.Time) ([]model.CardSale, error)
}

// cashFloor is the amount above which a cash payment is considered
// large enough to plausibly appear as a bank deposit.
var cashFloor = decimal.NewFromInt(50000)

// Reconcilable filters payments down to those that can appear on a bank
// statement: card and transfer payments, anything carrying a bank
// reference or account, and large cash movements.
func Reconcilable(all []model.Payment) []model.Payment {
	var out []model.Payment
	for _, p := range all {
		if isReconcilable(p) {
			out = append(out, p)
		}
	}
	return out
}

func isReconcilable(p model.Payment) bool {
	switch p.Method {
	case "tarjeta", "card":
		return true
	case "transferencia", "transfer":
		return true
	}
	if p.BankRef != "" || p.BankAccount != "" {
		return true
	}
	if p.Method == "efectivo" || p.Method == "cash" {
		return p.Amount.Abs().GreaterThan(cashFloor)
	}
	return false
}
