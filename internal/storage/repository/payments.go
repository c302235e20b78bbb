package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/qalopay/school-payments/internal/models"
)

// CreatePaymentTx records money received against an invoice inside the
// transaction that also updates the invoice totals. Returns the payment
// id.
func (s *Storage) CreatePaymentTx(ctx context.Context, tx *sql.Tx, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (string, error) {
	const op = "storage.CreatePaymentTx"

	var newID string
	query := `INSERT INTO payments (school_id, invoice_id, amount, payment_method, paid_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := tx.QueryRowContext(ctx, query, schoolID, invoiceID, amount, method, paidAt).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPayments returns the school's payments, newest first.
func (s *Storage) ListPayments(ctx context.Context, schoolID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"

	query := `SELECT id, school_id, invoice_id, amount, payment_method, paid_at
			  FROM payments
			  WHERE school_id = $1
			  ORDER BY paid_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err = rows.Scan(&p.ID, &p.SchoolID, &p.InvoiceID, &p.Amount, &p.PaymentMethod, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ApplyPayment records a payment and updates the invoice totals and
// status atomically. The invoice row is locked for the duration of the
// transaction so concurrent payments against the same invoice serialize.
func (s *Storage) ApplyPayment(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error) {
	const op = "storage.ApplyPayment"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	invoice, err := s.GetInvoiceTx(ctx, tx, schoolID, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentID, err := s.CreatePaymentTx(ctx, tx, schoolID, invoiceID, amount, method, paidAt)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	invoice.PaidAmount += amount
	invoice.Status = models.DeriveInvoiceStatus(invoice.TotalAmount, invoice.PaidAmount)
	if err = s.UpdateInvoicePaymentTx(ctx, tx, invoiceID, invoice.PaidAmount, invoice.Status); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	payment := &models.Payment{
		ID:            paymentID,
		SchoolID:      schoolID,
		InvoiceID:     invoiceID,
		Amount:        amount,
		PaymentMethod: method,
		PaidAt:        paidAt,
	}
	return payment, invoice, nil
}
