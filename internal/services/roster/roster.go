// Package roster manages the school's students, classes and academic
// terms. Every operation is scoped to one school id; rows belonging to
// other tenants are invisible here.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qalopay/school-payments/internal/lib/strutil"
	"github.com/qalopay/school-payments/internal/models"
)

// ErrNotFound is returned when the targeted row does not exist in this
// school, including rows that exist under another tenant.
var ErrNotFound = errors.New("not found in this school")

// Repository is the storage surface the roster needs.
type Repository interface {
	CreateStudent(ctx context.Context, schoolID, fullName string, classID *string) (string, error)
	ListStudents(ctx context.Context, schoolID string, limit, offset int) ([]*models.Student, error)
	UpdateStudent(ctx context.Context, schoolID, studentID, fullName string, classID *string) (int, error)
	RemoveStudent(ctx context.Context, schoolID, studentID string) (int, error)

	CreateClass(ctx context.Context, schoolID, name string) (string, error)
	ListClasses(ctx context.Context, schoolID string) ([]*models.Class, error)
	RemoveClass(ctx context.Context, schoolID, classID string) (int, error)

	CreateTerm(ctx context.Context, schoolID, name string, startDate, endDate time.Time) (string, error)
	ListTerms(ctx context.Context, schoolID string) ([]*models.AcademicTerm, error)
}

// Roster is the service over students, classes and terms.
type Roster struct {
	log  *slog.Logger
	repo Repository
}

// New creates the roster service.
func New(log *slog.Logger, repo Repository) *Roster {
	return &Roster{log: log, repo: repo}
}

// AddStudent enrolls a student, optionally into a class.
func (r *Roster) AddStudent(ctx context.Context, schoolID, fullName, classID string) (string, error) {
	const op = "services.roster.AddStudent"

	id, err := r.repo.CreateStudent(ctx, schoolID, strutil.Safe(fullName), optionalID(classID))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	r.log.Info("student added",
		slog.String("school_id", schoolID),
		slog.String("student_id", id))
	return id, nil
}

// Students lists the school's students with their class names.
func (r *Roster) Students(ctx context.Context, schoolID string, limit, offset int) ([]*models.Student, error) {
	const op = "services.roster.Students"

	students, err := r.repo.ListStudents(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return students, nil
}

// UpdateStudent changes a student's name and class assignment.
func (r *Roster) UpdateStudent(ctx context.Context, schoolID, studentID, fullName, classID string) error {
	const op = "services.roster.UpdateStudent"

	affected, err := r.repo.UpdateStudent(ctx, schoolID, studentID, strutil.Safe(fullName), optionalID(classID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// RemoveStudent deletes a student from the school.
func (r *Roster) RemoveStudent(ctx context.Context, schoolID, studentID string) error {
	const op = "services.roster.RemoveStudent"

	affected, err := r.repo.RemoveStudent(ctx, schoolID, studentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	r.log.Info("student removed",
		slog.String("school_id", schoolID),
		slog.String("student_id", studentID))
	return nil
}

// AddClass creates a class.
func (r *Roster) AddClass(ctx context.Context, schoolID, name string) (string, error) {
	const op = "services.roster.AddClass"

	id, err := r.repo.CreateClass(ctx, schoolID, strutil.Safe(name))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Classes lists the school's classes with student counts.
func (r *Roster) Classes(ctx context.Context, schoolID string) ([]*models.Class, error) {
	const op = "services.roster.Classes"

	classes, err := r.repo.ListClasses(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return classes, nil
}

// RemoveClass deletes a class; its students stay, unassigned.
func (r *Roster) RemoveClass(ctx context.Context, schoolID, classID string) error {
	const op = "services.roster.RemoveClass"

	affected, err := r.repo.RemoveClass(ctx, schoolID, classID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AddTerm creates an academic term.
func (r *Roster) AddTerm(ctx context.Context, schoolID, name string, startDate, endDate time.Time) (string, error) {
	const op = "services.roster.AddTerm"

	if endDate.Before(startDate) {
		return "", fmt.Errorf("%s: end date precedes start date", op)
	}

	id, err := r.repo.CreateTerm(ctx, schoolID, strutil.Safe(name), startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Terms lists the school's academic terms.
func (r *Roster) Terms(ctx context.Context, schoolID string) ([]*models.AcademicTerm, error) {
	const op = "services.roster.Terms"

	terms, err := r.repo.ListTerms(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return terms, nil
}

// optionalID maps an empty form value to NULL.
func optionalID(id string) *string {
	id = strutil.Safe(id)
	if id == "" {
		return nil
	}
	return &id
}
