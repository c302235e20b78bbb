package adminops_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/services/adminops"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

type mockRepo struct {
	ListSchoolsFunc     func(ctx context.Context, limit, offset int) ([]*models.School, error)
	SetActiveFunc       func(ctx context.Context, schoolID string, active bool) error
	GetByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	RegisterFunc        func(ctx context.Context, user models.User, school models.School, sub models.Subscription) (string, string, error)
	GetPlanFunc         func(ctx context.Context, planID string) (*models.Plan, error)
	ListPlansFunc       func(ctx context.Context) ([]*models.Plan, error)
	ActivatePlanFunc    func(ctx context.Context, schoolID string, sub models.Subscription, planName string) error
	ChangeSubPlanFunc   func(ctx context.Context, subscriptionID int, plan models.Plan) error
	ListSubsFunc        func(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	PlatformStatsFunc   func(ctx context.Context) (*models.PlatformStats, error)
}

func (m *mockRepo) ListSchools(ctx context.Context, limit, offset int) ([]*models.School, error) {
	return m.ListSchoolsFunc(ctx, limit, offset)
}

func (m *mockRepo) SetSchoolActive(ctx context.Context, schoolID string, active bool) error {
	return m.SetActiveFunc(ctx, schoolID, active)
}

func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *mockRepo) RegisterSchoolOwner(ctx context.Context, user models.User, school models.School, sub models.Subscription) (string, string, error) {
	return m.RegisterFunc(ctx, user, school, sub)
}

func (m *mockRepo) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	return m.GetPlanFunc(ctx, planID)
}

func (m *mockRepo) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	return m.ListPlansFunc(ctx)
}

func (m *mockRepo) ActivatePlan(ctx context.Context, schoolID string, sub models.Subscription, planName string) error {
	return m.ActivatePlanFunc(ctx, schoolID, sub, planName)
}

func (m *mockRepo) ChangeSubscriptionPlan(ctx context.Context, subscriptionID int, plan models.Plan) error {
	return m.ChangeSubPlanFunc(ctx, subscriptionID, plan)
}

func (m *mockRepo) ListSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	return m.ListSubsFunc(ctx, limit, offset)
}

func (m *mockRepo) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	return m.PlatformStatsFunc(ctx)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestAssignPlan(t *testing.T) {
	t.Run("monthly plan runs for one month", func(t *testing.T) {
		var gotSub models.Subscription
		var gotName string
		repo := &mockRepo{
			GetPlanFunc: func(_ context.Context, planID string) (*models.Plan, error) {
				assert.Equal(t, "plan-basic", planID)
				return &models.Plan{ID: planID, Name: "Basic", Price: 99, BillingCycle: models.CycleMonthly}, nil
			},
			ActivatePlanFunc: func(_ context.Context, schoolID string, sub models.Subscription, planName string) error {
				assert.Equal(t, "school-1", schoolID)
				gotSub, gotName = sub, planName
				return nil
			},
		}

		svc := adminops.New(makeLogger(), repo, 7)

		endDate, err := svc.AssignPlan(context.Background(), "school-1", "plan-basic", "admin-1")

		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().AddDate(0, 1, 0), endDate, time.Minute)
		assert.Equal(t, "Basic", gotName)
		assert.Equal(t, models.StatusActive, gotSub.Status)
		assert.True(t, gotSub.IsPaid)
		assert.Equal(t, 99.0, gotSub.Price)
		assert.Equal(t, "admin-1", gotSub.ActivatedBy)
	})

	t.Run("yearly plan runs for one year", func(t *testing.T) {
		repo := &mockRepo{
			GetPlanFunc: func(_ context.Context, planID string) (*models.Plan, error) {
				return &models.Plan{ID: planID, Name: "Business", Price: 999, BillingCycle: models.CycleYearly}, nil
			},
			ActivatePlanFunc: func(_ context.Context, _ string, sub models.Subscription, _ string) error {
				assert.WithinDuration(t, time.Now().AddDate(1, 0, 0), sub.EndDate, time.Minute)
				return nil
			},
		}

		svc := adminops.New(makeLogger(), repo, 7)

		endDate, err := svc.AssignPlan(context.Background(), "school-1", "plan-business", "admin-1")

		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().AddDate(1, 0, 0), endDate, time.Minute)
	})

	t.Run("unknown plan", func(t *testing.T) {
		repo := &mockRepo{
			GetPlanFunc: func(_ context.Context, _ string) (*models.Plan, error) {
				return nil, repository.ErrNotFound
			},
		}

		svc := adminops.New(makeLogger(), repo, 7)

		_, err := svc.AssignPlan(context.Background(), "school-1", "plan-gone", "admin-1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCreateSchool(t *testing.T) {
	t.Run("creates a confirmed owner and a trial school", func(t *testing.T) {
		var gotUser models.User
		var gotSchool models.School
		var gotSub models.Subscription
		repo := &mockRepo{
			GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
				return nil, repository.ErrNotFound
			},
			RegisterFunc: func(_ context.Context, user models.User, school models.School, sub models.Subscription) (string, string, error) {
				gotUser, gotSchool, gotSub = user, school, sub
				return "uid-1", "school-1", nil
			},
		}

		svc := adminops.New(makeLogger(), repo, 7)

		schoolID, err := svc.CreateSchool(context.Background(), adminops.CreateSchoolParams{
			SchoolName: "مدرسة الأمل",
			Email:      "owner@amal.com",
			OwnerName:  "Owner",
			Password:   "secret123",
		}, "admin-1")

		require.NoError(t, err)
		assert.Equal(t, "school-1", schoolID)
		assert.True(t, gotUser.EmailConfirmed)
		assert.Equal(t, models.RoleSchoolOwner, gotUser.Role)
		assert.Equal(t, models.StatusTrial, gotSchool.SubscriptionStatus)
		require.NotNil(t, gotSchool.TrialEnd)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *gotSchool.TrialEnd, time.Minute)
		assert.Equal(t, "admin-1", gotSub.ActivatedBy)
	})

	t.Run("duplicate owner email", func(t *testing.T) {
		repo := &mockRepo{
			GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{UID: "uid-1"}, nil
			},
		}

		svc := adminops.New(makeLogger(), repo, 7)

		_, err := svc.CreateSchool(context.Background(), adminops.CreateSchoolParams{
			Email: "owner@amal.com", Password: "x",
		}, "admin-1")
		assert.ErrorIs(t, err, adminops.ErrEmailTaken)
	})
}

func TestChangePlan(t *testing.T) {
	t.Run("repoints the subscription and the cached school plan", func(t *testing.T) {
		repo := &mockRepo{
			GetPlanFunc: func(_ context.Context, planID string) (*models.Plan, error) {
				return &models.Plan{ID: planID, Name: "Pro", Price: 199, BillingCycle: models.CycleMonthly}, nil
			},
			ChangeSubPlanFunc: func(_ context.Context, subscriptionID int, plan models.Plan) error {
				assert.Equal(t, 42, subscriptionID)
				assert.Equal(t, "Pro", plan.Name)
				return nil
			},
		}

		svc := adminops.New(makeLogger(), repo, 7)

		assert.NoError(t, svc.ChangePlan(context.Background(), 42, "plan-pro"))
	})
}

func TestSetSchoolActive(t *testing.T) {
	repo := &mockRepo{
		SetActiveFunc: func(_ context.Context, schoolID string, active bool) error {
			assert.Equal(t, "school-1", schoolID)
			assert.False(t, active)
			return nil
		},
	}

	svc := adminops.New(makeLogger(), repo, 7)

	assert.NoError(t, svc.SetSchoolActive(context.Background(), "school-1", false))
}
