package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/concilia-dev/concilia/internal/model"
)

func TestSummarize(t *testing.T) {
	txns := []model.Transaction{
		{ID: "t1", Date: day("2025-01-22"), Amount: amt(45000)},
		{ID: "t2", Date: day("2025-01-22"), Amount: amt(-12000)},
		{ID: "t3", Date: day("2025-01-23"), Amount: amt(8000)},
	}
	payments := []model.Payment{
		{ID: "p1", Date: day("2025-01-22"), Amount: amt(45000)},
		{ID: "p2", Date: day("2025-01-25"), Amount: amt(30000)},
	}
	MatchTransactions(txns, payments, BankWindow)

	stats := Summarize(txns, payments)

	assert.Equal(t, 3, stats.TotalTransactions)
	assert.Equal(t, 2, stats.TotalPayments)
	assert.Equal(t, 1, stats.MatchedTransactions)
	assert.Equal(t, 1, stats.MatchedPayments)
	assert.Equal(t, 2, stats.UnmatchedTransactions)
	assert.Equal(t, 1, stats.UnmatchedPayments)
	assert.Equal(t, 2, stats.PendingReconciliation)
	assert.True(t, stats.TransactionTotal.Equal(decimal.NewFromInt(41000)))
	assert.True(t, stats.PaymentTotal.Equal(decimal.NewFromInt(75000)))
	assert.True(t, stats.Difference.Equal(decimal.NewFromInt(-34000)))
}

func TestSummarize_UnmatchedIsDerived(t *testing.T) {
	txns := make([]model.Transaction, 7)
	for i := range txns {
		txns[i].Amount = amt(1000)
	}
	txns[1].Reconciled = true
	txns[4].Reconciled = true
	txns[6].Reconciled = true

	stats := Summarize(txns, nil)

	assert.Equal(t, 7, stats.TotalTransactions)
	assert.Equal(t, 3, stats.MatchedTransactions)
	assert.Equal(t, 4, stats.UnmatchedTransactions)
	assert.Equal(t, stats.TotalTransactions-stats.MatchedTransactions, stats.UnmatchedTransactions)
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil, nil)

	assert.Zero(t, stats.TotalTransactions)
	assert.Zero(t, stats.UnmatchedPayments)
	assert.True(t, stats.Difference.IsZero())
}

func TestSummarizeSettlements(t *testing.T) {
	setts := []model.CardSettlement{
		{ID: "g1", Amount: amt(25000), Fee: decimal.NewFromInt(475), Status: model.SettlementApproved, Reconciled: true},
		{ID: "g2", Amount: amt(42000), Fee: decimal.NewFromInt(798), Status: model.SettlementApproved},
		{ID: "g3", Amount: amt(18500), Fee: decimal.NewFromInt(0), Status: model.SettlementDeclined},
	}
	sales := []model.CardSale{
		{ID: "s1", Amount: amt(25000), Reconciled: true},
		{ID: "s2", Amount: amt(42000)},
	}

	stats := SummarizeSettlements(setts, sales)

	assert.Equal(t, 3, stats.TotalSettlements)
	assert.Equal(t, 2, stats.TotalSales)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.UnmatchedSettlements)
	assert.Equal(t, 1, stats.UnmatchedSales)
	assert.True(t, stats.TotalFees.Equal(decimal.NewFromInt(1273)))
}
