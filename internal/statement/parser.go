package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/concilia-dev/concilia/internal/id"
	"github.com/concilia-dev/concilia/internal/model"
)

// placeholderDescription is stored when a row has no description.
const placeholderDescription = "Transacción sin descripción"

// Options bound what files the parser accepts.
type Options struct {
	AcceptedExtensions []string // e.g. .csv, .xlsx, .xls
	MaxFileSizeMB      int64
}

// DefaultOptions accepts CSV and Excel statements up to 10 MB.
func DefaultOptions() Options {
	return Options{
		AcceptedExtensions: []string{".csv", ".xlsx", ".xls"},
		MaxFileSizeMB:      10,
	}
}

// Parser converts raw statement files into Transactions.
type Parser struct {
	opts Options

	// now lets tests pin import IDs.
	now func() time.Time
}

// NewParser creates a Parser with the given options.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts, now: time.Now}
}

// Summary holds the counts shown after an import.
//
// Duplicates and InvalidRows are part of the result contract but are
// not computed yet.
type Summary struct {
	TotalTransactions int
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Duplicates        int
	InvalidRows       int
}

// Result is the outcome of parsing one statement file. Errors are
// blocking row problems; Warnings are informational only.
type Result struct {
	Transactions []model.Transaction
	Errors       []string
	Warnings     []string
	Summary      Summary
}

// OK reports whether parsing produced no blocking errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// ParseFile validates the file's extension and size, then parses it
// according to its format. Validation failures are returned as errors
// before any row is read.
func (p *Parser) ParseFile(path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	accepted := false
	for _, e := range p.opts.AcceptedExtensions {
		if ext == strings.ToLower(e) {
			accepted = true
			break
		}
	}
	if !accepted {
		return nil, fmt.Errorf("unsupported format %q: use %s", ext, strings.Join(p.opts.AcceptedExtensions, ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if max := p.opts.MaxFileSizeMB * 1024 * 1024; info.Size() > max {
		return nil, fmt.Errorf("%s exceeds the %dMB limit", filepath.Base(path), p.opts.MaxFileSizeMB)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch ext {
	case ".csv":
		return p.ParseCSV(f)
	default:
		return p.ParseXLSX(f)
	}
}

// ParseCSV parses a comma-delimited statement with a header row.
func (p *Parser) ParseCSV(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // banks pad rows inconsistently

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	return p.parseRows(rows), nil
}

// ParseXLSX parses the first sheet of a spreadsheet statement.
func (p *Parser) ParseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return p.parseRows(rows), nil
}

// parseRows runs column detection on the header and converts each data
// row. Row numbers in messages are 1-indexed with the header as row 1.
func (p *Parser) parseRows(rows [][]string) *Result {
	res := &Result{}

	if len(rows) == 0 {
		res.Errors = append(res.Errors, "statement is empty")
		return res
	}

	cols := DetectColumns(rows[0])
	if missing := MissingMandatory(cols); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.String()
		}
		res.Errors = append(res.Errors, fmt.Sprintf("could not detect mandatory columns: %s", strings.Join(names, ", ")))
		return res
	}

	importedAt := p.now()
	for i, row := range rows[1:] {
		rowNum := i + 2

		txn, ok := p.parseRow(res, cols, row, rowNum)
		if !ok {
			continue
		}

		txn.ID = id.FormatImportID(importedAt, i)
		res.Transactions = append(res.Transactions, txn)
	}

	res.Summary = summarize(res.Transactions)
	return res
}

func (p *Parser) parseRow(res *Result, cols map[Field]int, row []string, rowNum int) (model.Transaction, bool) {
	rawDate := cell(row, cols[FieldDate])
	if strings.TrimSpace(rawDate) == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: missing date", rowNum))
		return model.Transaction{}, false
	}
	date, err := parseDate(rawDate)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("row %d: invalid date %q", rowNum, rawDate))
		return model.Transaction{}, false
	}

	desc := strings.TrimSpace(cell(row, cols[FieldDescription]))
	if desc == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: missing description", rowNum))
		desc = placeholderDescription
	}

	rawAmount := strings.TrimSpace(cell(row, cols[FieldAmount]))
	if rawAmount == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: missing amount", rowNum))
		return model.Transaction{}, false
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("row %d: invalid amount %q", rowNum, rawAmount))
		return model.Transaction{}, false
	}

	txnType := inferType(amount, typeHint(cols, row))
	amount = amount.Abs()
	if txnType == model.TypeExpense {
		amount = amount.Neg()
	}

	txn := model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Type:        txnType,
		Account:     model.DefaultAccount,
	}

	if idx, ok := cols[FieldReference]; ok {
		txn.Reference = strings.TrimSpace(cell(row, idx))
	}
	if idx, ok := cols[FieldAccount]; ok {
		if acct := strings.TrimSpace(cell(row, idx)); acct != "" {
			txn.Account = acct
		}
	}
	if idx, ok := cols[FieldBalance]; ok {
		if bal, err := parseAmount(cell(row, idx)); err == nil {
			txn.Balance = decimal.NewNullDecimal(bal)
		}
	}

	return txn, true
}

// dateFormats are tried in order. Day-first is assumed for slash and
// dash formats, per the deployment locale.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}

// parseAmount strips currency symbols and thousands separators before
// parsing. Statements here use CLP, so dots and commas are separators,
// not decimal points.
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '.', ',', ' ', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

func typeHint(cols map[Field]int, row []string) string {
	idx, ok := cols[FieldType]
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(cell(row, idx)))
}

// inferType prefers the statement's own debit/credit wording and falls
// back to the amount's sign.
func inferType(amount decimal.Decimal, hint string) model.TransactionType {
	if hint != "" {
		for _, kw := range []string{"debito", "egreso", "cargo"} {
			if strings.Contains(hint, kw) {
				return model.TypeExpense
			}
		}
		for _, kw := range []string{"credito", "ingreso", "abono"} {
			if strings.Contains(hint, kw) {
				return model.TypeIncome
			}
		}
	}
	if amount.IsNegative() {
		return model.TypeExpense
	}
	return model.TypeIncome
}

func summarize(txns []model.Transaction) Summary {
	s := Summary{TotalTransactions: len(txns)}
	for _, t := range txns {
		if t.Amount.IsPositive() {
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		} else {
			s.TotalExpense = s.TotalExpense.Add(t.Amount.Abs())
		}
	}
	return s
}

func cell(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}
