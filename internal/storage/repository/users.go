package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qalopay/school-payments/internal/models"
)

// ErrNotFound is returned by keyed lookups when no row matches.
var ErrNotFound = errors.New("not found")

// CreateUser stores a new account and returns its uid.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	var newUID string
	query := `INSERT INTO users (email, full_name, password_hash, role, email_confirmed)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.PasswordHash, string(user.Role),
		user.EmailConfirmed).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// CreateUserTx is CreateUser inside an existing transaction.
func (s *Storage) CreateUserTx(ctx context.Context, tx *sql.Tx, user models.User) (string, error) {
	const op = "storage.CreateUserTx"

	var newUID string
	query := `INSERT INTO users (email, full_name, password_hash, role, email_confirmed)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := tx.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.PasswordHash, string(user.Role),
		user.EmailConfirmed).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail returns an account by its login email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT uid, email, full_name, password_hash, role, email_confirmed, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser returns an account by uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT uid, email, full_name, password_hash, role, email_confirmed, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var role string
	if err := row.Scan(&u.UID, &u.Email, &u.FullName, &u.PasswordHash,
		&role, &u.EmailConfirmed, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Role = models.Role(role)
	return u, nil
}
