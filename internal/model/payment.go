package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSource identifies which subsystem recorded a payment.
type PaymentSource string

const (
	SourcePOS              PaymentSource = "pos"
	SourceReservation      PaymentSource = "reservation"
	SourceSupplier         PaymentSource = "supplier"
	SourceInvoice          PaymentSource = "invoice"
	SourcePettyCashIncome  PaymentSource = "petty_cash_income"
	SourcePettyCashExpense PaymentSource = "petty_cash_expense"
)

// Payment is an internally recorded payment fetched for a
// reconciliation session.
type Payment struct {
	ID          string
	Source      PaymentSource
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Method      string // efectivo, tarjeta, transferencia, cheque
	Reference   string // receipt or document number
	BankRef     string // bank-side reference, when known
	BankAccount string

	Reconciled           bool
	MatchedTransactionID string
}
