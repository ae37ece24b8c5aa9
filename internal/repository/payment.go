package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yellowpin/yellowpin/internal/domain/payment"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	"github.com/yellowpin/yellowpin/internal/types"
)

type paymentRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewPaymentRepository creates a postgres-backed payment repository
func NewPaymentRepository(db postgres.IClient, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

const paymentColumns = `id, invoice_id, subscriber_id, amount, currency, method,
	payment_status, transaction_reference, failure_reason, succeeded_at, failed_at,
	status, created_at, updated_at, created_by, updated_by`

type paymentRow struct {
	ID                   string     `db:"id"`
	InvoiceID            string     `db:"invoice_id"`
	SubscriberID         string     `db:"subscriber_id"`
	Amount               string     `db:"amount"`
	Currency             string     `db:"currency"`
	Method               string     `db:"method"`
	PaymentStatus        string     `db:"payment_status"`
	TransactionReference *string    `db:"transaction_reference"`
	FailureReason        *string    `db:"failure_reason"`
	SucceededAt          *time.Time `db:"succeeded_at"`
	FailedAt             *time.Time `db:"failed_at"`
	types.BaseModel
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES (:id, :invoice_id, :subscriber_id, :amount, :currency, :method,
			:payment_status, :transaction_reference, :failure_reason, :succeeded_at, :failed_at,
			:status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toPaymentRow(p)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND status != 'deleted'`

	var row paymentRow
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("payment not found").
				WithHintf("Payment %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch payment").
			Mark(ierr.ErrDatabase)
	}
	return fromPaymentRow(&row)
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE invoice_id = $1 AND status != 'deleted'
		ORDER BY created_at ASC`

	var rows []paymentRow
	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &rows, query, invoiceID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}

	payments := make([]*payment.Payment, 0, len(rows))
	for i := range rows {
		p, err := fromPaymentRow(&rows[i])
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `UPDATE payments SET
		payment_status = :payment_status, transaction_reference = :transaction_reference,
		failure_reason = :failure_reason, succeeded_at = :succeeded_at, failed_at = :failed_at,
		updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toPaymentRow(p))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("payment not found").
			WithHintf("Payment %s does not exist", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func toPaymentRow(p *payment.Payment) *paymentRow {
	return &paymentRow{
		ID:                   p.ID,
		InvoiceID:            p.InvoiceID,
		SubscriberID:         p.SubscriberID,
		Amount:               p.Amount.String(),
		Currency:             p.Currency,
		Method:               string(p.Method),
		PaymentStatus:        string(p.Status),
		TransactionReference: p.TransactionReference,
		FailureReason:        p.FailureReason,
		SucceededAt:          p.SucceededAt,
		FailedAt:             p.FailedAt,
		BaseModel:            p.BaseModel,
	}
}

func fromPaymentRow(row *paymentRow) (*payment.Payment, error) {
	amount, err := parseDecimal(row.Amount)
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		ID:                   row.ID,
		InvoiceID:            row.InvoiceID,
		SubscriberID:         row.SubscriberID,
		Amount:               amount,
		Currency:             row.Currency,
		Method:               types.PaymentMethodType(row.Method),
		Status:               types.PaymentStatus(row.PaymentStatus),
		TransactionReference: row.TransactionReference,
		FailureReason:        row.FailureReason,
		SucceededAt:          row.SucceededAt,
		FailedAt:             row.FailedAt,
		BaseModel:            row.BaseModel,
	}, nil
}
