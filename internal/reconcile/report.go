package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/concilia-dev/concilia/internal/model"
)

// ReportHeader is the CSV header for a session report export.
const ReportHeader = "session_id,record,id,date,description,amount,detail,reconciled,matched_id"

const (
	reportNumFields = 9
	reportDateFmt   = "2006-01-02"
)

// WriteReport exports the session's working sets as CSV, one row per
// transaction and per payment. This is an export of the session, not a
// store: re-opening a session starts unreconciled again.
func WriteReport(w io.Writer, sessionID string, txns []model.Transaction, payments []model.Payment) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ReportHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		row := reportRow(sessionID, "transaction", t.ID, t.Date, t.Description,
			t.Amount.String(), t.Account, t.Reconciled, t.MatchedPaymentID)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transaction row %d: %w", i, err)
		}
	}
	for i, p := range payments {
		row := reportRow(sessionID, "payment", p.ID, p.Date, p.Description,
			p.Amount.String(), string(p.Source)+"/"+p.Method, p.Reconciled, p.MatchedTransactionID)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing payment row %d: %w", i, err)
		}
	}
	return cw.Error()
}

func reportRow(sessionID, record, id string, date time.Time, desc, amount, detail string, reconciled bool, matchedID string) []string {
	row := make([]string, reportNumFields)
	row[0] = sessionID
	row[1] = record
	row[2] = id
	row[3] = date.Format(reportDateFmt)
	row[4] = desc
	row[5] = amount
	row[6] = detail
	row[7] = fmt.Sprintf("%t", reconciled)
	row[8] = matchedID
	return row
}
