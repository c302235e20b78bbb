package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qalopay/school-payments/internal/models"
)

// CreateStudent stores a student for the school and returns its id.
func (s *Storage) CreateStudent(ctx context.Context, schoolID, fullName string, classID *string) (string, error) {
	const op = "storage.CreateStudent"

	var newID string
	query := `INSERT INTO students (school_id, full_name, class_id)
			  VALUES ($1, $2, $3)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, schoolID, fullName, classID).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListStudents returns the school's students with their class name.
func (s *Storage) ListStudents(ctx context.Context, schoolID string, limit, offset int) ([]*models.Student, error) {
	const op = "storage.ListStudents"

	query := `SELECT st.id, st.school_id, st.full_name, st.class_id,
			      COALESCE(c.name, ''), st.created_at
			  FROM students st
			  LEFT JOIN classes c ON c.id = st.class_id
			  WHERE st.school_id = $1
			  ORDER BY st.created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Student
	for rows.Next() {
		var st models.Student
		var classID sql.NullString
		if err = rows.Scan(&st.ID, &st.SchoolID, &st.FullName, &classID,
			&st.ClassName, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if classID.Valid {
			st.ClassID = &classID.String
		}
		result = append(result, &st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateStudent renames a student and reassigns their class, scoped to
// the school so a tenant cannot touch another tenant's rows.
func (s *Storage) UpdateStudent(ctx context.Context, schoolID, studentID, fullName string, classID *string) (int, error) {
	const op = "storage.UpdateStudent"

	query := `UPDATE students
		      SET full_name = $1, class_id = $2
		      WHERE id = $3 AND school_id = $4`
	res, err := s.DB.ExecContext(ctx, query, fullName, classID, studentID, schoolID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// RemoveStudent deletes a student of the school and returns the number of
// deleted rows.
func (s *Storage) RemoveStudent(ctx context.Context, schoolID, studentID string) (int, error) {
	const op = "storage.RemoveStudent"

	query := `DELETE FROM students WHERE id = $1 AND school_id = $2`
	res, err := s.DB.ExecContext(ctx, query, studentID, schoolID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}
