// Package billing manages student invoices and the payments recorded
// against them. Recording a payment updates the invoice totals and
// status in the same transaction.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qalopay/school-payments/internal/lib/strutil"
	"github.com/qalopay/school-payments/internal/models"
)

// ErrNonPositiveAmount rejects zero and negative invoice and payment
// amounts before anything reaches storage.
var ErrNonPositiveAmount = errors.New("amount must be positive")

// Repository is the storage surface billing needs. ApplyPayment runs the
// payment insert and invoice update in one transaction.
type Repository interface {
	CreateInvoice(ctx context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error)
	ListInvoices(ctx context.Context, schoolID string, limit, offset int) ([]*models.Invoice, error)
	ApplyPayment(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error)
	ListPayments(ctx context.Context, schoolID string, limit, offset int) ([]*models.Payment, error)
	SchoolDashboardStats(ctx context.Context, schoolID string, today time.Time) (*models.DashboardStats, error)
}

// Billing is the invoicing and payments service.
type Billing struct {
	log  *slog.Logger
	repo Repository
}

// New creates the billing service.
func New(log *slog.Logger, repo Repository) *Billing {
	return &Billing{log: log, repo: repo}
}

// CreateInvoice charges a student a fee due by the given date. New
// invoices start pending with nothing paid.
func (b *Billing) CreateInvoice(ctx context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error) {
	const op = "services.billing.CreateInvoice"

	if totalAmount <= 0 {
		return "", fmt.Errorf("%s: %w", op, ErrNonPositiveAmount)
	}

	id, err := b.repo.CreateInvoice(ctx, schoolID, studentID, totalAmount, dueDate)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	b.log.Info("invoice created",
		slog.String("school_id", schoolID),
		slog.String("invoice_id", id))
	return id, nil
}

// Invoices lists the school's invoices with student names.
func (b *Billing) Invoices(ctx context.Context, schoolID string, limit, offset int) ([]*models.Invoice, error) {
	const op = "services.billing.Invoices"

	invoices, err := b.repo.ListInvoices(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return invoices, nil
}

// RecordPayment registers money received against an invoice. The invoice
// moves to partially_paid or paid depending on the accumulated amount;
// overpayment is accepted and leaves the invoice paid.
func (b *Billing) RecordPayment(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error) {
	const op = "services.billing.RecordPayment"

	if amount <= 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrNonPositiveAmount)
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment, invoice, err := b.repo.ApplyPayment(ctx, schoolID, invoiceID, amount, strutil.Safe(method), paidAt)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	b.log.Info("payment recorded",
		slog.String("school_id", schoolID),
		slog.String("invoice_id", invoiceID),
		slog.String("payment_id", payment.ID),
		slog.String("invoice_status", invoice.Status))
	return payment, invoice, nil
}

// Payments lists the school's payments, newest first.
func (b *Billing) Payments(ctx context.Context, schoolID string, limit, offset int) ([]*models.Payment, error) {
	const op = "services.billing.Payments"

	payments, err := b.repo.ListPayments(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

// DashboardStats aggregates the school's counters for the dashboard.
func (b *Billing) DashboardStats(ctx context.Context, schoolID string) (*models.DashboardStats, error) {
	const op = "services.billing.DashboardStats"

	stats, err := b.repo.SchoolDashboardStats(ctx, schoolID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
