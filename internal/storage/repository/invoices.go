package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qalopay/school-payments/internal/models"
)

// CreateInvoice stores a new invoice for a student of the school and
// returns its id.
func (s *Storage) CreateInvoice(ctx context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error) {
	const op = "storage.CreateInvoice"

	var newID string
	query := `INSERT INTO invoices (school_id, student_id, total_amount, due_date)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, schoolID, studentID, totalAmount, dueDate).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetInvoiceTx reads an invoice of the school with FOR UPDATE, so a
// payment can adjust paid_amount without racing a concurrent payment.
func (s *Storage) GetInvoiceTx(ctx context.Context, tx *sql.Tx, schoolID, invoiceID string) (*models.Invoice, error) {
	const op = "storage.GetInvoiceTx"

	query := `SELECT id, school_id, student_id, total_amount, paid_amount, due_date, status, created_at
			  FROM invoices
			  WHERE id = $1 AND school_id = $2
			  FOR UPDATE`
	inv := &models.Invoice{}
	if err := tx.QueryRowContext(ctx, query, invoiceID, schoolID).Scan(
		&inv.ID, &inv.SchoolID, &inv.StudentID, &inv.TotalAmount, &inv.PaidAmount,
		&inv.DueDate, &inv.Status, &inv.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

// UpdateInvoicePaymentTx writes the derived paid_amount and status.
func (s *Storage) UpdateInvoicePaymentTx(ctx context.Context, tx *sql.Tx, invoiceID string, paidAmount float64, status string) error {
	const op = "storage.UpdateInvoicePaymentTx"

	query := `UPDATE invoices SET paid_amount = $1, status = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, paidAmount, status, invoiceID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListInvoices returns the school's invoices with the student name.
func (s *Storage) ListInvoices(ctx context.Context, schoolID string, limit, offset int) ([]*models.Invoice, error) {
	const op = "storage.ListInvoices"

	query := `SELECT i.id, i.school_id, i.student_id, st.full_name,
			      i.total_amount, i.paid_amount, i.due_date, i.status, i.created_at
			  FROM invoices i
			  JOIN students st ON st.id = i.student_id
			  WHERE i.school_id = $1
			  ORDER BY i.created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err = rows.Scan(&inv.ID, &inv.SchoolID, &inv.StudentID, &inv.StudentName,
			&inv.TotalAmount, &inv.PaidAmount, &inv.DueDate, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
