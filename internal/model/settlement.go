package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the card processor's verdict on a transaction.
type SettlementStatus string

const (
	SettlementApproved SettlementStatus = "approved"
	SettlementDeclined SettlementStatus = "declined"
	SettlementPending  SettlementStatus = "pending"
)

// CardSettlement is one row of a card-processor settlement file. The
// processor reports the gross sale, its fee, and the net amount it
// deposits.
type CardSettlement struct {
	ID            string
	Timestamp     time.Time // date plus time of day, as reported by the terminal
	TerminalID    string
	CardType      string // VISA, MASTERCARD, AMEX...
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	NetAmount     decimal.Decimal
	AuthCode      string
	TransactionID string
	Status        SettlementStatus

	Reconciled    bool
	MatchedSaleID string
}

// CardSale is a card payment recorded at one of the POS registers.
type CardSale struct {
	ID            string
	Timestamp     time.Time
	Amount        decimal.Decimal
	Terminal      string
	ReceiptNumber string
	Register      string // recepcion or restaurante

	Reconciled          bool
	MatchedSettlementID string
}
