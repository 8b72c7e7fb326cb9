package payments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/concilia-dev/concilia/internal/model"
)

// PostgresStore consolidates payments from the business database. Each
// source is queried independently; a failing source logs a warning and
// contributes nothing instead of failing the whole fetch.
type PostgresStore struct {
	db  *sqlx.DB
	log *log.Logger
}

// Open connects to the business database and verifies the connection.
func Open(ctx context.Context, dsn string, logger *log.Logger) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return NewPostgresStore(db, logger), nil
}

func NewPostgresStore(db *sqlx.DB, logger *log.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: logger}
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// ConsolidatedPayments fans out to every payment source and merges the
// results, most recent first.
func (s *PostgresStore) ConsolidatedPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	type fetch struct {
		source model.PaymentSource
		fn     func(context.Context, time.Time, time.Time) ([]model.Payment, error)
	}
	fetches := []fetch{
		{model.SourcePOS, s.posPayments},
		{model.SourceReservation, s.reservationPayments},
		{model.SourceSupplier, s.supplierPayments},
		{model.SourceInvoice, s.invoicePayments},
		{model.SourcePettyCashIncome, s.pettyCashIncomes},
		{model.SourcePettyCashExpense, s.pettyCashExpenses},
	}

	results := make([][]model.Payment, len(fetches))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetches {
		i, f := i, f
		g.Go(func() error {
			rows, err := f.fn(gctx, from, to)
			if err != nil {
				s.log.Warn("payment source unavailable", "source", f.source, "err", err)
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Payment
	for _, rows := range results {
		all = append(all, rows...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	return all, nil
}

type posRow struct {
	ID           int64           `db:"id"`
	Total        decimal.Decimal `db:"total"`
	Method       string          `db:"payment_method"`
	CustomerName *string         `db:"customer_name"`
	RegisterType *string         `db:"register_type"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (s *PostgresStore) posPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var rows []posRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT s.id, s.total, s.payment_method, s.customer_name, r.type AS register_type
		     , s.created_at
		FROM pos_sales s
		LEFT JOIN cash_registers r ON r.id = s.cash_register_id
		WHERE s.created_at >= $1 AND s.created_at <= $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying pos sales: %w", err)
	}

	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Payment{
			ID:          fmt.Sprintf("pos-%d", r.ID),
			Source:      model.SourcePOS,
			Date:        r.CreatedAt,
			Description: fmt.Sprintf("Venta POS %s - %s", orDefault(r.RegisterType, "POS"), orDefault(r.CustomerName, "Cliente")),
			Amount:      r.Total,
			Method:      methodOr(r.Method, "efectivo"),
			Reference:   fmt.Sprintf("POS-%d", r.ID),
		})
	}
	return out, nil
}

type reservationRow struct {
	ID            int64           `db:"id"`
	ReservationID int64           `db:"reservation_id"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"payment_method"`
	PaymentType   *string         `db:"payment_type"`
	Reference     *string         `db:"reference_number"`
	GuestName     *string         `db:"guest_name"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (s *PostgresStore) reservationPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var rows []reservationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.reservation_id, p.amount, p.payment_method, p.payment_type
		     , p.reference_number, res.guest_name, p.created_at
		FROM reservation_payments p
		LEFT JOIN reservations res ON res.id = p.reservation_id
		WHERE p.created_at >= $1 AND p.created_at <= $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying reservation payments: %w", err)
	}

	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Payment{
			ID:          fmt.Sprintf("reservation-%d", r.ID),
			Source:      model.SourceReservation,
			Date:        r.CreatedAt,
			Description: fmt.Sprintf("Pago Reserva - %s (%s)", orDefault(r.GuestName, "Huésped"), orDefault(r.PaymentType, "pago")),
			Amount:      r.Amount,
			Method:      methodOr(r.Method, "efectivo"),
			Reference:   orDefault(r.Reference, fmt.Sprintf("RES-%d", r.ReservationID)),
		})
	}
	return out, nil
}

type supplierRow struct {
	ID            int64           `db:"id"`
	SupplierID    int64           `db:"supplier_id"`
	Amount        decimal.Decimal `db:"amount"`
	Description   *string         `db:"description"`
	Method        string          `db:"payment_method"`
	BankRef       *string         `db:"bank_reference"`
	BankAccount   *string         `db:"bank_account"`
	ReceiptNumber *string         `db:"receipt_number"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (s *PostgresStore) supplierPayments(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var rows []supplierRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, supplier_id, amount, description, payment_method
		     , bank_reference, bank_account, receipt_number, created_at
		FROM supplier_payments
		WHERE created_at >= $1 AND created_at <= $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying supplier payments: %w", err)
	}

	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Payment{
			ID:          fmt.Sprintf("supplier-%d", r.ID),
			Source:      model.SourceSupplier,
			Date:        r.CreatedAt,
			Description: fmt.Sprintf("Pago Proveedor - %s", orDefault(r.Description, "Pago a proveedor")),
			Amount:      r.Amount.Abs().Neg(),
			Method:      methodOr(r.Method, "transferencia"),
			Reference:   orDefault(r.ReceiptNumber, fmt.Sprintf("SUP-%d", r.SupplierID)),
			BankRef:     orDefault(r.BankRef, ""),
			BankAccount: orDefault(r.BankAccount, ""),
		})
	}
	return out, nil
}

type invoiceRow struct {
	ID            int64           `db:"id"`
	InvoiceID     int64           `db:"invoice_id"`
	InvoiceNumber *string         `db:"invoice_number"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"payment_method"`
	Reference     *string         `db:"reference_number"`
	ClientName    *string         `db:"client_name"`
	PaymentDate   time.Time       `db:"payment_date"`
}

func (s *PostgresStore) invoicePayments(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var rows []invoiceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.invoice_id, i.number AS invoice_number, p.amount
		     , p.payment_method, p.reference_number
		     , TRIM(CONCAT(c.first_name, ' ', c.last_name)) AS client_name
		     , p.payment_date
		FROM invoice_payments p
		LEFT JOIN invoices i ON i.id = p.invoice_id
		LEFT JOIN clients c ON c.id = i.client_id
		WHERE p.payment_date >= $1 AND p.payment_date <= $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying invoice payments: %w", err)
	}

	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		number := orDefault(r.InvoiceNumber, fmt.Sprintf("%d", r.InvoiceID))
		out = append(out, model.Payment{
			ID:          fmt.Sprintf("invoice-%d", r.ID),
			Source:      model.SourceInvoice,
			Date:        r.PaymentDate,
			Description: fmt.Sprintf("Pago Factura %s - %s", number, orDefault(r.ClientName, "Cliente")),
			Amount:      r.Amount,
			Method:      methodOr(r.Method, "efectivo"),
			Reference:   orDefault(r.Reference, fmt.Sprintf("INV-%d", r.InvoiceID)),
		})
	}
	return out, nil
}

type pettyCashRow struct {
	ID            int64           `db:"id"`
	Amount        decimal.Decimal `db:"amount"`
	Description   *string         `db:"description"`
	Method        string          `db:"payment_method"`
	BankRef       *string         `db:"bank_reference"`
	BankAccount   *string         `db:"bank_account"`
	ReceiptNumber *string         `db:"receipt_number"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (s *PostgresStore) pettyCashIncomes(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	rows, err := s.pettyCash(ctx, "petty_cash_incomes", from, to)
	if err != nil {
		return nil, err
	}

	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Payment{
			ID:          fmt.Sprintf("petty-income-%d", r.ID),
			Source:      model.SourcePettyCashIncome,
			Date:        r.CreatedAt,
			Description: fmt.Sprintf("Ingreso Caja Chica - %s", orDefault(r.Description, "Ingreso")),
			Amount:      r.Amount,
			Method:      methodOr(r.Method, "efectivo"),
			Reference:   orDefault(r.ReceiptNumber, fmt.Sprintf("PC-IN-%d", r.ID)),
			BankRef:     orDefault(r.BankRef, ""),
			BankAccount: orDefault(r.BankAccount, ""),
		})
	}
	return out, nil
}

func (s *PostgresStore) pettyCashExpenses(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	rows, err := s.pettyCash(ctx, "petty_cash_expenses", from, to)
	if err != nil {
		return nil, err
	}

	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Payment{
			ID:          fmt.Sprintf("petty-expense-%d", r.ID),
			Source:      model.SourcePettyCashExpense,
			Date:        r.CreatedAt,
			Description: fmt.Sprintf("Gasto Caja Chica - %s", orDefault(r.Description, "Gasto")),
			Amount:      r.Amount.Abs().Neg(),
			Method:      methodOr(r.Method, "efectivo"),
			Reference:   orDefault(r.ReceiptNumber, fmt.Sprintf("PC-EX-%d", r.ID)),
			BankRef:     orDefault(r.BankRef, ""),
			BankAccount: orDefault(r.BankAccount, ""),
		})
	}
	return out, nil
}

func (s *PostgresStore) pettyCash(ctx context.Context, table string, from, to time.Time) ([]pettyCashRow, error) {
	var rows []pettyCashRow
	query := fmt.Sprintf(`
		SELECT id, amount, description, payment_method
		     , bank_reference, bank_account, receipt_number, created_at
		FROM %s
		WHERE created_at >= $1 AND created_at <= $2`, table)
	if err := s.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	return rows, nil
}

type cardSaleRow struct {
	ID            int64           `db:"id"`
	Total         decimal.Decimal `db:"total"`
	Terminal      *string         `db:"terminal"`
	ReceiptNumber *string         `db:"receipt_number"`
	Register      *string         `db:"register"`
	CreatedAt     time.Time       `db:"created_at"`
}

// CardSales returns POS sales paid by card, the internal side of a card
// processor settlement.
func (s *PostgresStore) CardSales(ctx context.Context, from, to time.Time) ([]model.CardSale, error) {
	var rows []cardSaleRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT s.id, s.total, s.terminal, s.receipt_number, r.type AS register
		     , s.created_at
		FROM pos_sales s
		LEFT JOIN cash_registers r ON r.id = s.cash_register_id
		WHERE s.payment_method IN ('tarjeta', 'card')
		  AND s.created_at >= $1 AND s.created_at <= $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying card sales: %w", err)
	}

	out := make([]model.CardSale, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.CardSale{
			ID:            fmt.Sprintf("sale-%d", r.ID),
			Timestamp:     r.CreatedAt,
			Amount:        r.Total,
			Terminal:      orDefault(r.Terminal, ""),
			ReceiptNumber: orDefault(r.ReceiptNumber, ""),
			Register:      orDefault(r.Register, ""),
		})
	}
	return out, nil
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func methodOr(method, def string) string {
	if method == "" {
		return def
	}
	return method
}
