package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/concilia-dev/concilia/internal/model"
)

// Stats summarizes a bank reconciliation session. Unmatched counts are
// derived as total minus matched; they are not tracked independently.
type Stats struct {
	TotalTransactions     int
	TotalPayments         int
	MatchedTransactions   int
	MatchedPayments       int
	UnmatchedTransactions int
	UnmatchedPayments     int
	PendingReconciliation int

	TransactionTotal decimal.Decimal
	PaymentTotal     decimal.Decimal
	Difference       decimal.Decimal
}

// Summarize is a pure function of the current working sets. Callers
// recompute it after every mutation.
func Summarize(txns []model.Transaction, payments []model.Payment) Stats {
	s := Stats{
		TotalTransactions: len(txns),
		TotalPayments:     len(payments),
	}

	for _, t := range txns {
		if t.Reconciled {
			s.MatchedTransactions++
		}
		s.TransactionTotal = s.TransactionTotal.Add(t.Amount)
	}
	for _, p := range payments {
		if p.Reconciled {
			s.MatchedPayments++
		}
		s.PaymentTotal = s.PaymentTotal.Add(p.Amount)
	}

	s.UnmatchedTransactions = s.TotalTransactions - s.MatchedTransactions
	s.UnmatchedPayments = s.TotalPayments - s.MatchedPayments
	s.PendingReconciliation = s.UnmatchedTransactions + s.UnmatchedPayments
	s.Difference = s.TransactionTotal.Sub(s.PaymentTotal)

	return s
}

// SettlementStats summarizes a card-settlement session, including the
// processor's fees.
type SettlementStats struct {
	TotalSettlements     int
	TotalSales           int
	Matched              int
	UnmatchedSettlements int
	UnmatchedSales       int

	SettlementTotal decimal.Decimal
	SalesTotal      decimal.Decimal
	Difference      decimal.Decimal
	TotalFees       decimal.Decimal
}

// SummarizeSettlements is the settlement counterpart of Summarize.
func SummarizeSettlements(setts []model.CardSettlement, sales []model.CardSale) SettlementStats {
	s := SettlementStats{
		TotalSettlements: len(setts),
		TotalSales:       len(sales),
	}

	matchedSales := 0
	for _, st := range setts {
		if st.Reconciled {
			s.Matched++
		}
		s.SettlementTotal = s.SettlementTotal.Add(st.Amount)
		s.TotalFees = s.TotalFees.Add(st.Fee)
	}
	for _, sale := range sales {
		if sale.Reconciled {
			matchedSales++
		}
		s.SalesTotal = s.SalesTotal.Add(sale.Amount)
	}

	s.UnmatchedSettlements = s.TotalSettlements - s.Matched
	s.UnmatchedSales = s.TotalSales - matchedSales
	s.Difference = s.SettlementTotal.Sub(s.SalesTotal)

	return s
}
