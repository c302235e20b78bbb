package repository

import (
	"context"
	"fmt"

	"github.com/qalopay/school-payments/internal/models"
)

// CreateClass stores a class for the school and returns its id.
func (s *Storage) CreateClass(ctx context.Context, schoolID, name string) (string, error) {
	const op = "storage.CreateClass"

	var newID string
	query := `INSERT INTO classes (school_id, name)
			  VALUES ($1, $2)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, schoolID, name).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListClasses returns the school's classes, newest first.
func (s *Storage) ListClasses(ctx context.Context, schoolID string) ([]*models.Class, error) {
	const op = "storage.ListClasses"

	query := `SELECT c.id, c.school_id, c.name,
			      (SELECT COUNT(*) FROM students st WHERE st.class_id = c.id) AS students_count,
			      c.created_at
			  FROM classes c
			  WHERE c.school_id = $1
			  ORDER BY c.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Class
	for rows.Next() {
		var c models.Class
		if err = rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.StudentsCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveClass deletes a class of the school and returns the number of
// deleted rows. Students keep their row; class_id is set null by the
// schema.
func (s *Storage) RemoveClass(ctx context.Context, schoolID, classID string) (int, error) {
	const op = "storage.RemoveClass"

	query := `DELETE FROM classes WHERE id = $1 AND school_id = $2`
	res, err := s.DB.ExecContext(ctx, query, classID, schoolID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}
