package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qalopay/school-payments/internal/models"
)

const schoolColumns = `id, name, email, phone, address, owner_id,
			      subscription_status, trial_end, subscription_end, is_active, plan, created_at`

// FindSchoolByOwner returns the most recently created school owned by the
// account, or ErrNotFound. Duplicate rows per owner can exist; the newest
// one is authoritative.
func (s *Storage) FindSchoolByOwner(ctx context.Context, ownerID string) (*models.School, error) {
	const op = "storage.FindSchoolByOwner"

	query := `SELECT ` + schoolColumns + `
			  FROM schools
			  WHERE owner_id = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	return s.scanSchool(s.DB.QueryRowContext(ctx, query, ownerID), op)
}

// GetSchool returns a school by id.
func (s *Storage) GetSchool(ctx context.Context, schoolID string) (*models.School, error) {
	const op = "storage.GetSchool"

	query := `SELECT ` + schoolColumns + `
			  FROM schools
			  WHERE id = $1`
	return s.scanSchool(s.DB.QueryRowContext(ctx, query, schoolID), op)
}

// CreateSchoolTx stores a new tenant row inside an existing transaction
// and returns its id.
func (s *Storage) CreateSchoolTx(ctx context.Context, tx *sql.Tx, school models.School) (string, error) {
	const op = "storage.CreateSchoolTx"

	var newID string
	query := `INSERT INTO schools (name, email, phone, address, owner_id,
			      subscription_status, trial_end, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id;`
	if err := tx.QueryRowContext(ctx, query,
		school.Name, school.Email, school.Phone, school.Address, school.OwnerID,
		school.SubscriptionStatus, school.TrialEnd, school.IsActive).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListSchools returns all tenants, newest first, with pagination.
func (s *Storage) ListSchools(ctx context.Context, limit, offset int) ([]*models.School, error) {
	const op = "storage.ListSchools"

	query := `SELECT ` + schoolColumns + `
			  FROM schools
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.School
	for rows.Next() {
		sc, err := scanSchoolRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSchoolProfile updates the school's own contact fields.
func (s *Storage) UpdateSchoolProfile(ctx context.Context, schoolID, name, email, phone, address string) error {
	const op = "storage.UpdateSchoolProfile"

	query := `UPDATE schools
		      SET name = $1, email = $2, phone = $3, address = $4
		      WHERE id = $5`
	if _, err := s.DB.ExecContext(ctx, query, name, email, phone, address, schoolID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSchoolActive toggles the tenant's is_active flag.
func (s *Storage) SetSchoolActive(ctx context.Context, schoolID string, active bool) error {
	const op = "storage.SetSchoolActive"

	query := `UPDATE schools SET is_active = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, active, schoolID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateSchoolSubscriptionTx sets the cached subscription fields after an
// admin activates a plan, inside the same transaction that writes the
// subscription audit row.
func (s *Storage) UpdateSchoolSubscriptionTx(ctx context.Context, tx *sql.Tx, schoolID, status, plan string, subscriptionEnd *time.Time) error {
	const op = "storage.UpdateSchoolSubscriptionTx"

	query := `UPDATE schools
		      SET subscription_status = $1, plan = $2, subscription_end = $3
		      WHERE id = $4`
	if _, err := tx.ExecContext(ctx, query, status, plan, subscriptionEnd, schoolID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSchoolPlan changes only the cached plan name.
func (s *Storage) UpdateSchoolPlan(ctx context.Context, schoolID, plan string) error {
	const op = "storage.UpdateSchoolPlan"

	query := `UPDATE schools SET plan = $1 WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, plan, schoolID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindSchoolsWithTrialEndingToday returns trial tenants whose window
// closes today, joined with the owner's contact details.
func (s *Storage) FindSchoolsWithTrialEndingToday(ctx context.Context) ([]*models.TrialNotice, error) {
	const op = "storage.FindSchoolsWithTrialEndingToday"

	query := `SELECT sc.id, sc.name, u.email, u.full_name, sc.trial_end
			  FROM schools sc
			  JOIN users u ON u.uid = sc.owner_id
			  WHERE sc.subscription_status = 'trial'
			    AND sc.trial_end = CURRENT_DATE`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.TrialNotice
	for rows.Next() {
		var n models.TrialNotice
		if err = rows.Scan(&n.SchoolID, &n.SchoolName, &n.Email, &n.OwnerName, &n.TrialEnd); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanSchool(row *sql.Row, op string) (*models.School, error) {
	sc, err := scanSchoolRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sc, nil
}

func scanSchoolRow(row rowScanner) (*models.School, error) {
	sc := &models.School{}
	var trialEnd, subscriptionEnd sql.NullTime
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Email, &sc.Phone, &sc.Address,
		&sc.OwnerID, &sc.SubscriptionStatus, &trialEnd, &subscriptionEnd,
		&sc.IsActive, &sc.Plan, &sc.CreatedAt); err != nil {
		return nil, err
	}
	if trialEnd.Valid {
		sc.TrialEnd = &trialEnd.Time
	}
	if subscriptionEnd.Valid {
		sc.SubscriptionEnd = &subscriptionEnd.Time
	}
	return sc, nil
}
