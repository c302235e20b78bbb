package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/qalopay/school-payments/internal/migrations"
)

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))

	cleanup := func() {
		storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory seeds rows directly, bypassing the repository methods
// under test.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email, fullName, role string) string {
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, full_name, password_hash, role, email_confirmed)
		VALUES ($1, $2, $3, $4, $5, TRUE)`,
		uid, email, fullName, "hashedpassword", role)
	require.NoError(t, err)
	return uid
}

func (f *TestDataFactory) CreateSchool(t *testing.T, name, ownerID, status string, trialEnd *time.Time) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO schools (id, name, owner_id, subscription_status, trial_end)
		VALUES ($1, $2, $3, $4, $5)`,
		id, name, ownerID, status, trialEnd)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CreateClass(t *testing.T, schoolID, name string) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO classes (id, school_id, name) VALUES ($1, $2, $3)`,
		id, schoolID, name)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CreateStudent(t *testing.T, schoolID, fullName string, classID *string) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO students (id, school_id, full_name, class_id)
		VALUES ($1, $2, $3, $4)`,
		id, schoolID, fullName, classID)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CreateInvoice(t *testing.T, schoolID, studentID string, total, paid float64, status string, dueDate time.Time) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO invoices (id, school_id, student_id, total_amount, paid_amount, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, schoolID, studentID, total, paid, status, dueDate)
	require.NoError(t, err)
	return id
}
