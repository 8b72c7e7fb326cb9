// Package settlement parses card-processor settlement exports. Unlike
// bank statements these have a fixed layout, so columns are bound by
// position rather than header detection.
package settlement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/concilia-dev/concilia/internal/model"
)

const (
	getnetTimeFormat = "2006-01-02 15:04:05"
	getnetNumFields  = 10
	colDate          = 0
	colTime          = 1
	colTerminal      = 2
	colCardType      = 3
	colAmount        = 4
	colFee           = 5
	colNet           = 6
	colAuthCode      = 7
	colTxnID         = 8
	colStatus        = 9
)

// Parse reads a Getnet settlement CSV and returns CardSettlements.
// The header row is skipped.
func Parse(r io.Reader) ([]model.CardSettlement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = getnetNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading settlement CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var setts []model.CardSettlement
	for i, rec := range records[1:] {
		s, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		setts = append(setts, s)
	}
	return setts, nil
}

func parseRow(rec []string) (model.CardSettlement, error) {
	ts, err := time.Parse(getnetTimeFormat, rec[colDate]+" "+rec[colTime])
	if err != nil {
		return model.CardSettlement{}, fmt.Errorf("parsing timestamp %q %q: %w", rec[colDate], rec[colTime], err)
	}

	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return model.CardSettlement{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}
	fee, err := decimal.NewFromString(rec[colFee])
	if err != nil {
		return model.CardSettlement{}, fmt.Errorf("parsing fee %q: %w", rec[colFee], err)
	}
	net, err := decimal.NewFromString(rec[colNet])
	if err != nil {
		return model.CardSettlement{}, fmt.Errorf("parsing net amount %q: %w", rec[colNet], err)
	}

	status, err := parseStatus(rec[colStatus])
	if err != nil {
		return model.CardSettlement{}, err
	}

	return model.CardSettlement{
		ID:            rec[colTxnID],
		Timestamp:     ts,
		TerminalID:    rec[colTerminal],
		CardType:      strings.ToUpper(rec[colCardType]),
		Amount:        amount,
		Fee:           fee,
		NetAmount:     net,
		AuthCode:      rec[colAuthCode],
		TransactionID: rec[colTxnID],
		Status:        status,
	}, nil
}

// parseStatus accepts both the processor's Spanish export values and
// their English equivalents.
func parseStatus(raw string) (model.SettlementStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "aprobada", "aprobado", "approved":
		return model.SettlementApproved, nil
	case "rechazada", "rechazado", "declined":
		return model.SettlementDeclined, nil
	case "pendiente", "pending":
		return model.SettlementPending, nil
	default:
		return "", fmt.Errorf("unknown settlement status %q", raw)
	}
}
