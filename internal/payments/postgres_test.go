package payments

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concilia-dev/concilia/internal/model"
)

func setupMockDB(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewPostgresStore(db, log.New(io.Discard)), mock
}

func window() (time.Time, time.Time) {
	from, _ := time.Parse("2006-01-02", "2025-01-01")
	to, _ := time.Parse("2006-01-02", "2025-01-31")
	return from, to
}

func TestConsolidatedPayments_MergesSources(t *testing.T) {
	store, mock := setupMockDB(t)
	from, to := window()
	mock.MatchExpectationsInOrder(false)

	created := from.Add(36 * time.Hour)
	mock.ExpectQuery("FROM pos_sales").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "total", "payment_method", "customer_name", "register_type", "created_at"}).
			AddRow(7, "45000", "tarjeta", "Juan Pérez", "recepcion", created))
	mock.ExpectQuery("FROM reservation_payments").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "reservation_id", "amount", "payment_method", "payment_type", "reference_number", "guest_name", "created_at"}).
			AddRow(3, 12, "120000", "transferencia", "abono", nil, "Ana Soto", created.Add(time.Hour)))
	mock.ExpectQuery("FROM supplier_payments").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "supplier_id", "amount", "description", "payment_method", "bank_reference", "bank_account", "receipt_number", "created_at"}).
			AddRow(9, 4, "38000", "Lavandería", "transferencia", "OP-555", nil, nil, created))
	mock.ExpectQuery("FROM invoice_payments").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "invoice_id", "invoice_number", "amount", "payment_method", "reference_number", "client_name", "payment_date"}))
	mock.ExpectQuery("FROM petty_cash_incomes").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "amount", "description", "payment_method", "bank_reference", "bank_account", "receipt_number", "created_at"}))
	mock.ExpectQuery("FROM petty_cash_expenses").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "amount", "description", "payment_method", "bank_reference", "bank_account", "receipt_number", "created_at"}))

	got, err := store.ConsolidatedPayments(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Most recent first.
	assert.Equal(t, "reservation-3", got[0].ID)
	assert.Equal(t, "Pago Reserva - Ana Soto (abono)", got[0].Description)
	assert.Equal(t, "RES-12", got[0].Reference)

	byID := map[string]model.Payment{}
	for _, p := range got {
		byID[p.ID] = p
	}
	pos := byID["pos-7"]
	assert.Equal(t, model.SourcePOS, pos.Source)
	assert.Equal(t, "Venta POS recepcion - Juan Pérez", pos.Description)
	assert.True(t, pos.Amount.Equal(decimal.NewFromInt(45000)))

	sup := byID["supplier-9"]
	assert.True(t, sup.Amount.Equal(decimal.NewFromInt(-38000)), "supplier payments are expenses")
	assert.Equal(t, "OP-555", sup.BankRef)
	assert.Equal(t, "SUP-4", sup.Reference)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsolidatedPayments_FailingSourceIsSkipped(t *testing.T) {
	store, mock := setupMockDB(t)
	from, to := window()

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery("FROM pos_sales").WithArgs(from, to).
		WillReturnError(assert.AnError)
	mock.ExpectQuery("FROM reservation_payments").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "reservation_id", "amount", "payment_method", "payment_type", "reference_number", "guest_name", "created_at"}).
			AddRow(3, 12, "120000", "transferencia", nil, "REF-9", "Ana Soto", from))
	mock.ExpectQuery("FROM supplier_payments").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "supplier_id", "amount", "description", "payment_method", "bank_reference", "bank_account", "receipt_number", "created_at"}))
	mock.ExpectQuery("FROM invoice_payments").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "invoice_id", "invoice_number", "amount", "payment_method", "reference_number", "client_name", "payment_date"}))
	mock.ExpectQuery("FROM petty_cash_incomes").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "amount", "description", "payment_method", "bank_reference", "bank_account", "receipt_number", "created_at"}))
	mock.ExpectQuery("FROM petty_cash_expenses").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "amount", "description", "payment_method", "bank_reference", "bank_account", "receipt_number", "created_at"}))

	got, err := store.ConsolidatedPayments(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "reservation-3", got[0].ID)
	assert.Equal(t, "REF-9", got[0].Reference)
}

func TestCardSales(t *testing.T) {
	store, mock := setupMockDB(t)
	from, to := window()

	ts := from.Add(10 * time.Hour)
	mock.ExpectQuery("FROM pos_sales").WithArgs(from, to).WillReturnRows(
		sqlmock.NewRows([]string{"id", "total", "terminal", "receipt_number", "register", "created_at"}).
			AddRow(21, "25000", "TERM-01", "B-778", "spa", ts))

	got, err := store.CardSales(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sale-21", got[0].ID)
	assert.Equal(t, "TERM-01", got[0].Terminal)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(25000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
