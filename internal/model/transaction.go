package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a statement row as money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// DefaultAccount is used when the statement has no account column.
const DefaultAccount = "CUENTA-PRINCIPAL"

// Transaction is one row of an imported bank statement (cartola).
type Transaction struct {
	ID          string
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = expense, positive = income
	Type        TransactionType
	Reference   string
	Account     string
	Balance     decimal.NullDecimal // present only when the statement has a balance column

	Reconciled       bool
	MatchedPaymentID string
}
