// Package auth implements account registration, login and the session
// identity chain that the HTTP middleware builds request context from.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qalopay/school-payments/internal/lib/jwt"
	"github.com/qalopay/school-payments/internal/lib/password"
	"github.com/qalopay/school-payments/internal/lib/rabbitmq"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/lib/strutil"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/session"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// Login and registration failures the handlers translate for the user.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoSession          = errors.New("session not found or expired")
)

// Message returns the user-facing Arabic text for a known auth error and
// a generic fallback for everything else.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "بيانات الدخول غير صحيحة."
	case errors.Is(err, ErrEmailNotConfirmed):
		return "البريد الإلكتروني لم يتم تأكيده. يرجى التحقق من بريدك الإلكتروني."
	case errors.Is(err, ErrEmailTaken):
		return "هذا البريد الإلكتروني مسجل مسبقاً."
	default:
		return "حدث خطأ غير متوقع."
	}
}

// UserRepository is the account storage the service needs.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	RegisterSchoolOwner(ctx context.Context, user models.User, school models.School, sub models.Subscription) (string, string, error)
	FindPlanByName(ctx context.Context, name string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// SessionStore is the Redis-backed session lifecycle.
type SessionStore interface {
	Create(ctx context.Context, userUID string, ttl time.Duration) (*session.Session, error)
	Get(ctx context.Context, token string) (*session.Session, error)
	Refresh(ctx context.Context, token string, ttl time.Duration) (*session.Session, error)
	Delete(ctx context.Context, token string) error
}

// SchoolResolver maps an owner account to its tenant.
type SchoolResolver interface {
	ResolveSchool(ctx context.Context, ownerID string) *models.School
}

// Publisher sends notification messages to the broker.
type Publisher interface {
	Publish(exchange, routingkey string, message any) error
}

// Auth wires accounts, sessions and tenant resolution together.
type Auth struct {
	log       *slog.Logger
	users     UserRepository
	sessions  SessionStore
	resolver  SchoolResolver
	publisher Publisher
	tokens    jwt.Maker

	sessionTTL          time.Duration
	trialDays           int
	requireConfirmation bool
}

// New creates the auth service.
func New(log *slog.Logger, users UserRepository, sessions SessionStore, resolver SchoolResolver,
	publisher Publisher, tokens jwt.Maker, sessionTTL time.Duration, trialDays int,
	requireConfirmation bool) *Auth {
	return &Auth{
		log:                 log,
		users:               users,
		sessions:            sessions,
		resolver:            resolver,
		publisher:           publisher,
		tokens:              tokens,
		sessionTTL:          sessionTTL,
		trialDays:           trialDays,
		requireConfirmation: requireConfirmation,
	}
}

// Identity is the resolved state behind one session: the account and, for
// school owners, their tenant. School is nil when resolution found no
// tenant; requests still proceed and the guards decide what that means.
type Identity struct {
	User   *models.User
	School *models.School
}

// RegisterParams is the sign-up form for a school owner.
type RegisterParams struct {
	Email      string
	Password   string
	FullName   string
	SchoolName string
	Phone      string
	Address    string
	PlanSlug   string
}

// Register creates the owner account, the school and its trial
// subscription in one transaction. The caller logs in separately; no
// session is issued here.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (string, error) {
	const op = "services.auth.Register"

	email := strutil.NormalizeEmail(params.Email)

	if _, err := a.users.GetUserByEmail(ctx, email); err == nil {
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
		FullName:       strutil.Safe(params.FullName),
		PasswordHash:   hash,
		Role:           models.RoleSchoolOwner,
		EmailConfirmed: !a.requireConfirmation,
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
		PlanID:       a.planIDForSlug(ctx, params.PlanSlug),
		Price:        0,
		BillingCycle: models.CycleMonthly,
		StartDate:    now,
		EndDate:      trialEnd,
		Status:       models.StatusTrial,
		IsPaid:       false,
	}

	userUID, schoolID, err := a.users.RegisterSchoolOwner(ctx, user, school, sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	notice := models.WelcomeNotice{
		SchoolName: school.Name,
		Email:      email,
		OwnerName:  user.FullName,
	}
	if err = a.publisher.Publish(rabbitmq.Exchange, rabbitmq.KeyWelcome, notice); err != nil {
		a.log.Warn("failed to publish welcome notice", sl.Err(err),
			slog.String("school_id", schoolID))
	}

	a.log.Info("school registered",
		slog.String("school_id", schoolID),
		slog.String("owner_uid", userUID))
	return schoolID, nil
}

// planIDForSlug resolves the plan picked on the sign-up form. The
// enterprise tier is sold under the Business plan. Falls back to the
// first plan, or to no plan at all, rather than failing registration.
func (a *Auth) planIDForSlug(ctx context.Context, slug string) string {
	slug = strutil.NormalizeStatus(slug)
	if slug == "enterprise" {
		slug = "business"
	}
	if slug != "" {
		if plan, err := a.users.FindPlanByName(ctx, slug); err == nil {
			return plan.ID
		}
	}
	plans, err := a.users.ListPlans(ctx)
	if err != nil || len(plans) == 0 {
		return ""
	}
	return plans[0].ID
}

// LoginResult carries everything issued on a successful login.
type LoginResult struct {
	AccessToken  string
	SessionToken string
	ExpiresAt    time.Time
	User         *models.User
	School       *models.School
}

// Login authenticates by email and password and issues an access token
// plus a session. Unknown accounts and wrong passwords collapse into
// ErrInvalidCredentials so the response does not leak which it was.
func (a *Auth) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	const op = "services.auth.Login"

	email = strutil.NormalizeEmail(email)

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.requireConfirmation && !user.EmailConfirmed {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailNotConfirmed)
	}

	if err = password.CompareHash(user.PasswordHash, pass); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	accessToken, err := a.tokens.GenerateToken(user.UID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := a.sessions.Create(ctx, user.UID, a.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &LoginResult{
		AccessToken:  accessToken,
		SessionToken: sess.Token,
		ExpiresAt:    sess.ExpiresAt,
		User:         user,
	}
	if !user.Role.IsSuperAdmin() {
		result.School = a.resolver.ResolveSchool(ctx, user.UID)
	}

	a.log.Info("user logged in", slog.String("user_uid", user.UID))
	return result, nil
}

// SignOut deletes the session. It never fails: a session that cannot be
// removed from Redis expires on its own, and the client is considered
// signed out either way.
func (a *Auth) SignOut(ctx context.Context, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	if err := a.sessions.Delete(ctx, token); err != nil {
		a.log.Warn("failed to delete session", sl.Err(err))
	}
}

// CurrentIdentity restores the full identity behind a session token,
// account first, then the tenant. It returns ErrNoSession for missing or
// expired sessions and for sessions whose account no longer exists.
func (a *Auth) CurrentIdentity(ctx context.Context, token string) (*Identity, error) {
	const op = "services.auth.CurrentIdentity"

	sess, err := a.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	user, err := a.users.GetUser(ctx, sess.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	identity := &Identity{User: user}
	if !user.Role.IsSuperAdmin() {
		identity.School = a.resolver.ResolveSchool(ctx, user.UID)
	}
	return identity, nil
}

// RefreshSession extends the session TTL and returns the refreshed
// record, or ErrNoSession if it already expired.
func (a *Auth) RefreshSession(ctx context.Context, token string) (*session.Session, error) {
	const op = "services.auth.RefreshSession"

	sess, err := a.sessions.Refresh(ctx, token, a.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	return sess, nil
}

// RefreshSchool re-reads the tenant for an owner, for callers that need
// the latest subscription fields after an admin action.
func (a *Auth) RefreshSchool(ctx context.Context, ownerUID string) *models.School {
	return a.resolver.ResolveSchool(ctx, ownerUID)
}
