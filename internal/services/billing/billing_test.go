package billing_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/services/billing"
)

type mockRepo struct {
	CreateInvoiceFunc func(ctx context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error)
	ListInvoicesFunc  func(ctx context.Context, schoolID string, limit, offset int) ([]*models.Invoice, error)
	ApplyPaymentFunc  func(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error)
	ListPaymentsFunc  func(ctx context.Context, schoolID string, limit, offset int) ([]*models.Payment, error)
	StatsFunc         func(ctx context.Context, schoolID string, today time.Time) (*models.DashboardStats, error)
}

func (m *mockRepo) CreateInvoice(ctx context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error) {
	return m.CreateInvoiceFunc(ctx, schoolID, studentID, totalAmount, dueDate)
}

func (m *mockRepo) ListInvoices(ctx context.Context, schoolID string, limit, offset int) ([]*models.Invoice, error) {
	return m.ListInvoicesFunc(ctx, schoolID, limit, offset)
}

func (m *mockRepo) ApplyPayment(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error) {
	return m.ApplyPaymentFunc(ctx, schoolID, invoiceID, amount, method, paidAt)
}

func (m *mockRepo) ListPayments(ctx context.Context, schoolID string, limit, offset int) ([]*models.Payment, error) {
	return m.ListPaymentsFunc(ctx, schoolID, limit, offset)
}

func (m *mockRepo) SchoolDashboardStats(ctx context.Context, schoolID string, today time.Time) (*models.DashboardStats, error) {
	return m.StatsFunc(ctx, schoolID, today)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestCreateInvoice(t *testing.T) {
	t.Run("creates an invoice", func(t *testing.T) {
		due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		repo := &mockRepo{
			CreateInvoiceFunc: func(_ context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error) {
				assert.Equal(t, "school-1", schoolID)
				assert.Equal(t, "student-1", studentID)
				assert.Equal(t, 500.0, totalAmount)
				assert.Equal(t, due, dueDate)
				return "invoice-1", nil
			},
		}

		svc := billing.New(makeLogger(), repo)

		id, err := svc.CreateInvoice(context.Background(), "school-1", "student-1", 500, due)

		require.NoError(t, err)
		assert.Equal(t, "invoice-1", id)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		repo := &mockRepo{
			CreateInvoiceFunc: func(_ context.Context, _, _ string, _ float64, _ time.Time) (string, error) {
				t.Fatal("repository should not be reached")
				return "", nil
			},
		}

		svc := billing.New(makeLogger(), repo)

		_, err := svc.CreateInvoice(context.Background(), "school-1", "student-1", 0, time.Now())
		assert.ErrorIs(t, err, billing.ErrNonPositiveAmount)

		_, err = svc.CreateInvoice(context.Background(), "school-1", "student-1", -10, time.Now())
		assert.ErrorIs(t, err, billing.ErrNonPositiveAmount)
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("passes the payment through and reports the new status", func(t *testing.T) {
		repo := &mockRepo{
			ApplyPaymentFunc: func(_ context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error) {
				assert.Equal(t, "school-1", schoolID)
				assert.Equal(t, "invoice-1", invoiceID)
				assert.Equal(t, 200.0, amount)
				assert.Equal(t, "cash", method)
				return &models.Payment{ID: "payment-1", Amount: amount, PaidAt: paidAt},
					&models.Invoice{ID: invoiceID, TotalAmount: 500, PaidAmount: 200, Status: models.InvoicePartiallyPaid},
					nil
			},
		}

		svc := billing.New(makeLogger(), repo)

		payment, invoice, err := svc.RecordPayment(context.Background(), "school-1", "invoice-1", 200, " cash ", time.Now())

		require.NoError(t, err)
		assert.Equal(t, "payment-1", payment.ID)
		assert.Equal(t, models.InvoicePartiallyPaid, invoice.Status)
	})

	t.Run("zero paid-at defaults to now", func(t *testing.T) {
		repo := &mockRepo{
			ApplyPaymentFunc: func(_ context.Context, _, _ string, _ float64, _ string, paidAt time.Time) (*models.Payment, *models.Invoice, error) {
				assert.WithinDuration(t, time.Now(), paidAt, time.Minute)
				return &models.Payment{ID: "payment-1"}, &models.Invoice{Status: models.InvoicePaid}, nil
			},
		}

		svc := billing.New(makeLogger(), repo)

		_, _, err := svc.RecordPayment(context.Background(), "school-1", "invoice-1", 500, "transfer", time.Time{})
		require.NoError(t, err)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		repo := &mockRepo{
			ApplyPaymentFunc: func(_ context.Context, _, _ string, _ float64, _ string, _ time.Time) (*models.Payment, *models.Invoice, error) {
				t.Fatal("repository should not be reached")
				return nil, nil, nil
			},
		}

		svc := billing.New(makeLogger(), repo)

		_, _, err := svc.RecordPayment(context.Background(), "school-1", "invoice-1", 0, "cash", time.Now())
		assert.ErrorIs(t, err, billing.ErrNonPositiveAmount)
	})
}

func TestDeriveInvoiceStatus(t *testing.T) {
	cases := []struct {
		name  string
		total float64
		paid  float64
		want  string
	}{
		{name: "nothing paid", total: 500, paid: 0, want: models.InvoicePending},
		{name: "partial payment", total: 500, paid: 200, want: models.InvoicePartiallyPaid},
		{name: "exact payment", total: 500, paid: 500, want: models.InvoicePaid},
		{name: "overpayment stays paid", total: 500, paid: 600, want: models.InvoicePaid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, models.DeriveInvoiceStatus(tc.total, tc.paid))
		})
	}
}
