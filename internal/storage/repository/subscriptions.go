package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qalopay/school-payments/internal/models"
)

// CreateSubscriptionTx appends one row to the billing audit trail inside
// an existing transaction and returns its id.
func (s *Storage) CreateSubscriptionTx(ctx context.Context, tx *sql.Tx, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscriptionTx"

	var activatedBy sql.NullString
	if sub.ActivatedBy != "" {
		activatedBy = sql.NullString{String: sub.ActivatedBy, Valid: true}
	}
	var planID sql.NullString
	if sub.PlanID != "" {
		planID = sql.NullString{String: sub.PlanID, Valid: true}
	}

	var id int
	query := `INSERT INTO subscriptions (school_id, plan_id, price, billing_cycle,
			      start_date, end_date, status, is_paid, activated_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id;`
	if err := tx.QueryRowContext(ctx, query,
		sub.SchoolID, planID, sub.Price, sub.BillingCycle,
		sub.StartDate, sub.EndDate, sub.Status, sub.IsPaid, activatedBy).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListSubscriptions returns the audit trail across all schools, newest
// first, with pagination.
func (s *Storage) ListSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"

	query := `SELECT id, school_id, COALESCE(plan_id::TEXT, ''), price, billing_cycle,
			      start_date, end_date, status, is_paid, COALESCE(activated_by::TEXT, ''), created_at
			  FROM subscriptions
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err = rows.Scan(&sub.ID, &sub.SchoolID, &sub.PlanID, &sub.Price, &sub.BillingCycle,
			&sub.StartDate, &sub.EndDate, &sub.Status, &sub.IsPaid, &sub.ActivatedBy,
			&sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ActivatePlan records a paid subscription and flips the school to the
// active status in one transaction.
func (s *Storage) ActivatePlan(ctx context.Context, schoolID string, sub models.Subscription, planName string) error {
	const op = "storage.ActivatePlan"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	sub.SchoolID = schoolID
	if _, err = s.CreateSubscriptionTx(ctx, tx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.UpdateSchoolSubscriptionTx(ctx, tx, schoolID, sub.Status, planName, &sub.EndDate); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangeSubscriptionPlan repoints an existing subscription row at a new
// plan and refreshes the plan name cached on the school, in one
// transaction.
func (s *Storage) ChangeSubscriptionPlan(ctx context.Context, subscriptionID int, plan models.Plan) error {
	const op = "storage.ChangeSubscriptionPlan"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var schoolID string
	query := `UPDATE subscriptions
			  SET plan_id = $1, price = $2, billing_cycle = $3
			  WHERE id = $4
			  RETURNING school_id;`
	if err = tx.QueryRowContext(ctx, query, plan.ID, plan.Price, plan.BillingCycle, subscriptionID).Scan(&schoolID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE schools SET plan = $1 WHERE id = $2`, plan.Name, schoolID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
