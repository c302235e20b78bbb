package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/qalopay/school-payments/internal/models"
)

// SchoolDashboardStats aggregates the school dashboard counters in one
// round trip each: students, invoices, overdue invoices and payments sum.
func (s *Storage) SchoolDashboardStats(ctx context.Context, schoolID string, today time.Time) (*models.DashboardStats, error) {
	const op = "storage.SchoolDashboardStats"

	stats := &models.DashboardStats{}
	query := `SELECT
			      (SELECT COUNT(*) FROM students WHERE school_id = $1),
			      (SELECT COUNT(*) FROM invoices WHERE school_id = $1),
			      (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE school_id = $1),
			      (SELECT COUNT(*) FROM invoices
			       WHERE school_id = $1 AND status = 'pending' AND due_date < $2)`
	if err := s.DB.QueryRowContext(ctx, query, schoolID, today).Scan(
		&stats.StudentsCount, &stats.InvoicesCount, &stats.PaymentsSum, &stats.OverdueCount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recent, err := s.ListPayments(ctx, schoolID, 5, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats.RecentPayments = recent
	return stats, nil
}

// PlatformStats aggregates the super-admin overview: tenant counts by
// status and the revenue of paid subscription rows.
func (s *Storage) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	const op = "storage.PlatformStats"

	stats := &models.PlatformStats{}
	query := `SELECT
			      (SELECT COUNT(*) FROM schools),
			      (SELECT COUNT(*) FROM schools WHERE subscription_status = 'active'),
			      (SELECT COUNT(*) FROM schools WHERE subscription_status = 'trial'),
			      (SELECT COALESCE(SUM(price), 0) FROM subscriptions WHERE is_paid)`
	if err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalSchools, &stats.ActiveSchools, &stats.TrialSchools, &stats.PaidRevenue); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
