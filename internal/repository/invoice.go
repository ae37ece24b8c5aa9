package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	"github.com/yellowpin/yellowpin/internal/types"
)

type invoiceRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewInvoiceRepository creates a postgres-backed invoice repository
func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `id, invoice_number, subscriber_id, tier_id, billing_cycle, change_type,
	amount, tax_amount, total_amount, invoice_status, issue_date, due_date, paid_at,
	payment_method, payment_reference, notes,
	status, created_at, updated_at, created_by, updated_by`

type invoiceRow struct {
	ID               string     `db:"id"`
	InvoiceNumber    string     `db:"invoice_number"`
	SubscriberID     string     `db:"subscriber_id"`
	TierID           string     `db:"tier_id"`
	BillingCycle     string     `db:"billing_cycle"`
	ChangeType       string     `db:"change_type"`
	Amount           string     `db:"amount"`
	TaxAmount        string     `db:"tax_amount"`
	TotalAmount      string     `db:"total_amount"`
	InvoiceStatus    string     `db:"invoice_status"`
	IssueDate        time.Time  `db:"issue_date"`
	DueDate          time.Time  `db:"due_date"`
	PaidAt           *time.Time `db:"paid_at"`
	PaymentMethod    *string    `db:"payment_method"`
	PaymentReference *string    `db:"payment_reference"`
	Notes            string     `db:"notes"`
	types.BaseModel
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (:id, :invoice_number, :subscriber_id, :tier_id, :billing_cycle, :change_type,
			:amount, :tax_amount, :total_amount, :invoice_status, :issue_date, :due_date, :paid_at,
			:payment_method, :payment_reference, :notes,
			:status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toInvoiceRow(inv)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND status != 'deleted'`

	var row invoiceRow
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("invoice not found").
				WithHintf("Invoice %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch invoice").
			Mark(ierr.ErrDatabase)
	}
	return fromInvoiceRow(&row)
}

func (r *invoiceRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE subscriber_id = $1 AND status != 'deleted'
		ORDER BY issue_date DESC, invoice_number DESC`

	var rows []invoiceRow
	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &rows, query, subscriberID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for i := range rows {
		inv, err := fromInvoiceRow(&rows[i])
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	query := `UPDATE invoices SET
		invoice_status = :invoice_status, paid_at = :paid_at,
		payment_method = :payment_method, payment_reference = :payment_reference,
		notes = :notes, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toInvoiceRow(inv))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s does not exist", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// NextSequence atomically claims the next invoice number for the given year.
func (r *invoiceRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	query := `INSERT INTO invoice_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`

	var seq int64
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &seq, query, year); err != nil {
		return 0, ierr.WithError(err).
			WithHintf("Failed to claim invoice sequence for year %d", year).
			Mark(ierr.ErrDatabase)
	}
	return seq, nil
}

func toInvoiceRow(inv *invoice.Invoice) *invoiceRow {
	var method *string
	if inv.PaymentMethod != nil {
		method = new(string)
		*method = string(*inv.PaymentMethod)
	}

	return &invoiceRow{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		SubscriberID:     inv.SubscriberID,
		TierID:           inv.TierID,
		BillingCycle:     string(inv.BillingCycle),
		ChangeType:       string(inv.ChangeType),
		Amount:           inv.Amount.String(),
		TaxAmount:        inv.TaxAmount.String(),
		TotalAmount:      inv.TotalAmount.String(),
		InvoiceStatus:    string(inv.InvoiceStatus),
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		PaidAt:           inv.PaidAt,
		PaymentMethod:    method,
		PaymentReference: inv.PaymentReference,
		Notes:            inv.Notes,
		BaseModel:        inv.BaseModel,
	}
}

func fromInvoiceRow(row *invoiceRow) (*invoice.Invoice, error) {
	amount, err := parseDecimal(row.Amount)
	if err != nil {
		return nil, err
	}
	taxAmount, err := parseDecimal(row.TaxAmount)
	if err != nil {
		return nil, err
	}
	totalAmount, err := parseDecimal(row.TotalAmount)
	if err != nil {
		return nil, err
	}

	var method *types.PaymentMethodType
	if row.PaymentMethod != nil {
		m := types.PaymentMethodType(*row.PaymentMethod)
		method = &m
	}

	return &invoice.Invoice{
		ID:               row.ID,
		InvoiceNumber:    row.InvoiceNumber,
		SubscriberID:     row.SubscriberID,
		TierID:           row.TierID,
		BillingCycle:     types.BillingCycle(row.BillingCycle),
		ChangeType:       types.PlanChangeType(row.ChangeType),
		Amount:           amount,
		TaxAmount:        taxAmount,
		TotalAmount:      totalAmount,
		InvoiceStatus:    types.InvoiceStatus(row.InvoiceStatus),
		IssueDate:        row.IssueDate,
		DueDate:          row.DueDate,
		PaidAt:           row.PaidAt,
		PaymentMethod:    method,
		PaymentReference: row.PaymentReference,
		Notes:            row.Notes,
		BaseModel:        row.BaseModel,
	}, nil
}
