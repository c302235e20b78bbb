package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/qalopay/school-payments/internal/models"
)

// CreateTerm stores an academic term for the school and returns its id.
func (s *Storage) CreateTerm(ctx context.Context, schoolID, name string, startDate, endDate time.Time) (string, error) {
	const op = "storage.CreateTerm"

	var newID string
	query := `INSERT INTO academic_terms (school_id, name, start_date, end_date)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, schoolID, name, startDate, endDate).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListTerms returns the school's academic terms ordered by start date.
func (s *Storage) ListTerms(ctx context.Context, schoolID string) ([]*models.AcademicTerm, error) {
	const op = "storage.ListTerms"

	query := `SELECT id, school_id, name, start_date, end_date
			  FROM academic_terms
			  WHERE school_id = $1
			  ORDER BY start_date DESC`
	rows, err := s.DB.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AcademicTerm
	for rows.Next() {
		var term models.AcademicTerm
		if err = rows.Scan(&term.ID, &term.SchoolID, &term.Name, &term.StartDate, &term.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &term)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
