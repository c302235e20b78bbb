package repository

import (
	"context"
	"fmt"

	"github.com/qalopay/school-payments/internal/models"
)

// RegisterSchoolOwner creates the owner account, the school and its
// initial subscription row in a single transaction, so a failure at any
// step leaves no half-registered tenant behind. Returns the new user uid
// and school id.
func (s *Storage) RegisterSchoolOwner(ctx context.Context, user models.User, school models.School, sub models.Subscription) (string, string, error) {
	const op = "storage.RegisterSchoolOwner"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	userUID, err := s.CreateUserTx(ctx, tx, user)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	school.OwnerID = userUID
	schoolID, err := s.CreateSchoolTx(ctx, tx, school)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	sub.SchoolID = schoolID
	if _, err = s.CreateSubscriptionTx(ctx, tx, sub); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, schoolID, nil
}
