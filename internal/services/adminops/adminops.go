// Package adminops implements the platform-admin operations: managing
// tenants, activating paid plans and the cross-school statistics. Every
// entry point here sits behind the super_admin route group.
package adminops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qalopay/school-payments/internal/lib/password"
	"github.com/qalopay/school-payments/internal/lib/strutil"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// ErrEmailTaken is returned when the owner email of a new school is
// already registered.
var ErrEmailTaken = errors.New("email already registered")

// Repository is the storage surface the admin operations need.
type Repository interface {
	ListSchools(ctx context.Context, limit, offset int) ([]*models.School, error)
	SetSchoolActive(ctx context.Context, schoolID string, active bool) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	RegisterSchoolOwner(ctx context.Context, user models.User, school models.School, sub models.Subscription) (string, string, error)

	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ActivatePlan(ctx context.Context, schoolID string, sub models.Subscription, planName string) error
	ChangeSubscriptionPlan(ctx context.Context, subscriptionID int, plan models.Plan) error

	ListSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// AdminOps is the platform administration service.
type AdminOps struct {
	log       *slog.Logger
	repo      Repository
	trialDays int
}

// New creates the admin service.
func New(log *slog.Logger, repo Repository, trialDays int) *AdminOps {
	return &AdminOps{log: log, repo: repo, trialDays: trialDays}
}

// Schools lists all tenants, newest first.
func (a *AdminOps) Schools(ctx context.Context, limit, offset int) ([]*models.School, error) {
	const op = "services.adminops.Schools"

	schools, err := a.repo.ListSchools(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return schools, nil
}

// CreateSchoolParams is the admin form for adding a tenant together with
// its owner account.
type CreateSchoolParams struct {
	SchoolName string
	Email      string
	Phone      string
	Address    string
	OwnerName  string
	Password   string
}

// CreateSchool creates a tenant on behalf of its owner: a confirmed
// owner account, the school on a fresh trial and the audit row, in one
// transaction.
func (a *AdminOps) CreateSchool(ctx context.Context, params CreateSchoolParams, actorUID string) (string, error) {
	const op = "services.adminops.CreateSchool"

	email := strutil.NormalizeEmail(params.Email)

	if _, err := a.repo.GetUserByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(params.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, a.trialDays)

	user := models.User{
		Email:          email,
		FullName:       strutil.Safe(params.OwnerName),
		PasswordHash:   hash,
		Role:           models.RoleSchoolOwner,
		EmailConfirmed: true, // admin-created accounts skip confirmation
	}
	school := models.School{
		Name:               strutil.Safe(params.SchoolName),
		Email:              email,
		Phone:              strutil.Safe(params.Phone),
		Address:            strutil.Safe(params.Address),
		SubscriptionStatus: models.StatusTrial,
		TrialEnd:           &trialEnd,
		IsActive:           true,
	}
	sub := models.Subscription{
		Price:        0,
		BillingCycle: models.CycleMonthly,
		StartDate:    now,
		EndDate:      trialEnd,
		Status:       models.StatusTrial,
		ActivatedBy:  actorUID,
	}

	_, schoolID, err := a.repo.RegisterSchoolOwner(ctx, user, school, sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("school created by admin",
		slog.String("school_id", schoolID),
		slog.String("actor_uid", actorUID))
	return schoolID, nil
}

// SetSchoolActive suspends or reinstates a tenant.
func (a *AdminOps) SetSchoolActive(ctx context.Context, schoolID string, active bool) error {
	const op = "services.adminops.SetSchoolActive"

	if err := a.repo.SetSchoolActive(ctx, schoolID, active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("school active flag changed",
		slog.String("school_id", schoolID),
		slog.Bool("active", active))
	return nil
}

// AssignPlan activates a paid plan for a school. The subscription runs
// from now for one month or one year depending on the plan's billing
// cycle; the school flips to active with the new end date.
func (a *AdminOps) AssignPlan(ctx context.Context, schoolID, planID, actorUID string) (time.Time, error) {
	const op = "services.adminops.AssignPlan"

	plan, err := a.repo.GetPlan(ctx, planID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	var endDate time.Time
	if plan.BillingCycle == models.CycleYearly {
		endDate = now.AddDate(1, 0, 0)
	} else {
		endDate = now.AddDate(0, 1, 0)
	}

	sub := models.Subscription{
		PlanID:       plan.ID,
		Price:        plan.Price,
		BillingCycle: plan.BillingCycle,
		StartDate:    now,
		EndDate:      endDate,
		Status:       models.StatusActive,
		IsPaid:       true,
		ActivatedBy:  actorUID,
	}
	if err = a.repo.ActivatePlan(ctx, schoolID, sub, plan.Name); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("plan assigned",
		slog.String("school_id", schoolID),
		slog.String("plan", plan.Name),
		slog.String("actor_uid", actorUID),
		slog.Time("subscription_end", endDate))
	return endDate, nil
}

// ChangePlan moves an existing subscription to another plan without
// touching its dates or the school's status.
func (a *AdminOps) ChangePlan(ctx context.Context, subscriptionID int, planID string) error {
	const op = "services.adminops.ChangePlan"

	plan, err := a.repo.GetPlan(ctx, planID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = a.repo.ChangeSubscriptionPlan(ctx, subscriptionID, *plan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("subscription plan changed",
		slog.Int("subscription_id", subscriptionID),
		slog.String("plan", plan.Name))
	return nil
}

// Plans lists the purchasable tiers.
func (a *AdminOps) Plans(ctx context.Context) ([]*models.Plan, error) {
	const op = "services.adminops.Plans"

	plans, err := a.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Subscriptions lists the billing audit trail across all schools.
func (a *AdminOps) Subscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "services.adminops.Subscriptions"

	subs, err := a.repo.ListSubscriptions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// Stats aggregates platform-wide counters for the admin dashboard.
func (a *AdminOps) Stats(ctx context.Context) (*models.PlatformStats, error) {
	const op = "services.adminops.Stats"

	stats, err := a.repo.PlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
