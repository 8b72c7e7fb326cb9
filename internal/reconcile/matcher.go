// Package reconcile pairs externally reported transactions with
// internally recorded payments. Match state lives only in the caller's
// slices for the duration of a session; nothing is persisted.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/concilia-dev/concilia/internal/model"
)

const (
	// BankWindow allows a transaction and payment to settle on the
	// same day or one day apart.
	BankWindow = 24 * time.Hour

	// SettlementWindow is the tolerance for card-terminal records,
	// where time of day is known.
	SettlementWindow = 5 * time.Minute
)

// MatchTransactions scans every unreconciled transaction against every
// unreconciled payment and links the first pair whose absolute amounts
// are equal and whose dates fall within window. Scan order is input
// order; the first satisfying payment wins. Already-reconciled records
// are skipped, so re-running on a matched set changes nothing.
// Returns the number of new links.
func MatchTransactions(txns []model.Transaction, payments []model.Payment, window time.Duration) int {
	matched := 0
	for i := range txns {
		if txns[i].Reconciled {
			continue
		}
		for j := range payments {
			if payments[j].Reconciled {
				continue
			}
			if !amountsMatch(txns[i].Amount, payments[j].Amount) {
				continue
			}
			if !withinWindow(txns[i].Date, payments[j].Date, window) {
				continue
			}

			link(&txns[i], &payments[j])
			matched++
			break
		}
	}
	return matched
}

// MatchSettlements pairs approved card settlements with POS card sales
// recorded within window of the terminal timestamp. Declined and
// pending settlements never match.
func MatchSettlements(setts []model.CardSettlement, sales []model.CardSale, window time.Duration) int {
	matched := 0
	for i := range setts {
		if setts[i].Reconciled || setts[i].Status != model.SettlementApproved {
			continue
		}
		for j := range sales {
			if sales[j].Reconciled {
				continue
			}
			if !setts[i].Amount.Equal(sales[j].Amount) {
				continue
			}
			if !withinWindow(setts[i].Timestamp, sales[j].Timestamp, window) {
				continue
			}

			setts[i].Reconciled = true
			setts[i].MatchedSaleID = sales[j].ID
			sales[j].Reconciled = true
			sales[j].MatchedSettlementID = setts[i].ID
			matched++
			break
		}
	}
	return matched
}

// ManualMatch forces a transaction/payment pair to reconcile, bypassing
// the amount and date predicate. It overwrites any prior match state on
// either record. Fails only when an ID is unknown.
func ManualMatch(txns []model.Transaction, payments []model.Payment, txnID, paymentID string) error {
	ti := -1
	for i := range txns {
		if txns[i].ID == txnID {
			ti = i
			break
		}
	}
	if ti < 0 {
		return fmt.Errorf("unknown transaction %q", txnID)
	}

	pi := -1
	for i := range payments {
		if payments[i].ID == paymentID {
			pi = i
			break
		}
	}
	if pi < 0 {
		return fmt.Errorf("unknown payment %q", paymentID)
	}

	link(&txns[ti], &payments[pi])
	return nil
}

// ManualMatchSettlement is the settlement counterpart of ManualMatch.
// It links regardless of amount, timestamp, and settlement status.
func ManualMatchSettlement(setts []model.CardSettlement, sales []model.CardSale, settlementID, saleID string) error {
	si := -1
	for i := range setts {
		if setts[i].ID == settlementID {
			si = i
			break
		}
	}
	if si < 0 {
		return fmt.Errorf("unknown settlement %q", settlementID)
	}

	ci := -1
	for i := range sales {
		if sales[i].ID == saleID {
			ci = i
			break
		}
	}
	if ci < 0 {
		return fmt.Errorf("unknown card sale %q", saleID)
	}

	setts[si].Reconciled = true
	setts[si].MatchedSaleID = sales[ci].ID
	sales[ci].Reconciled = true
	sales[ci].MatchedSettlementID = setts[si].ID
	return nil
}

func link(t *model.Transaction, p *model.Payment) {
	t.Reconciled = true
	t.MatchedPaymentID = p.ID
	p.Reconciled = true
	p.MatchedTransactionID = t.ID
}

func amountsMatch(a, b decimal.Decimal) bool {
	return a.Abs().Equal(b.Abs())
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
