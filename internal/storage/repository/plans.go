package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qalopay/school-payments/internal/models"
)

// ListPlans returns all purchasable tiers.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"

	query := `SELECT id, name, price, billing_cycle FROM plans ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var p models.Plan
		if err = rows.Scan(&p.ID, &p.Name, &p.Price, &p.BillingCycle); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan returns one plan by id.
func (s *Storage) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	const op = "storage.GetPlan"

	query := `SELECT id, name, price, billing_cycle FROM plans WHERE id = $1`
	var p models.Plan
	if err := s.DB.QueryRowContext(ctx, query, planID).Scan(&p.ID, &p.Name, &p.Price, &p.BillingCycle); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// FindPlanByName returns the plan whose name matches case-insensitively.
func (s *Storage) FindPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	const op = "storage.FindPlanByName"

	query := `SELECT id, name, price, billing_cycle FROM plans WHERE name ILIKE $1 LIMIT 1`
	var p models.Plan
	if err := s.DB.QueryRowContext(ctx, query, "%"+name+"%").Scan(&p.ID, &p.Name, &p.Price, &p.BillingCycle); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
