package middlewarectx_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/jwt"
	"github.com/qalopay/school-payments/internal/models"
)

type mockParser struct {
	claims *jwt.CustomClaims
	err    error
}

func (m *mockParser) ParseToken(string) (*jwt.CustomClaims, error) {
	return m.claims, m.err
}

type mockUsers struct {
	GetFunc func(ctx context.Context, uid string) (*models.User, error)
}

func (m *mockUsers) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return m.GetFunc(ctx, uid)
}

type mockResolver struct {
	school *models.School
}

func (m *mockResolver) ResolveSchool(context.Context, string) *models.School {
	return m.school
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestJWTMiddleware(t *testing.T) {
	t.Run("valid token stores uid and role", func(t *testing.T) {
		parser := &mockParser{claims: &jwt.CustomClaims{UserUID: "uid-1", Role: "school_owner"}}

		var gotUID, gotRole any
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUID = r.Context().Value(middlewarectx.UserUID)
			gotRole = r.Context().Value(middlewarectx.Role)
		})

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		middlewarectx.JWTMiddleware(parser, makeLogger())(next).ServeHTTP(rec, req)

		assert.Equal(t, "uid-1", gotUID)
		assert.Equal(t, "school_owner", gotRole)
	})

	t.Run("missing header", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		rec := httptest.NewRecorder()

		middlewarectx.JWTMiddleware(&mockParser{}, makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("expired token", func(t *testing.T) {
		called := false
		parser := &mockParser{err: errors.New("token is expired")}

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rec := httptest.NewRecorder()

		middlewarectx.JWTMiddleware(parser, makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
}

func withIdentity(req *http.Request, user *models.User, school *models.School) *http.Request {
	ctx := context.WithValue(req.Context(), middlewarectx.UserKey, user)
	ctx = context.WithValue(ctx, middlewarectx.SchoolKey, school)
	return req.WithContext(ctx)
}

func TestTenantMiddleware(t *testing.T) {
	t.Run("loads user and school into context", func(t *testing.T) {
		users := &mockUsers{
			GetFunc: func(_ context.Context, uid string) (*models.User, error) {
				return &models.User{UID: uid, Role: models.RoleSchoolOwner}, nil
			},
		}
		school := &models.School{ID: "school-1"}

		var gotUser *models.User
		var gotSchool *models.School
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = middlewarectx.UserFromContext(r.Context())
			gotSchool, _ = middlewarectx.SchoolFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
		rec := httptest.NewRecorder()

		middlewarectx.TenantMiddleware(users, &mockResolver{school: school}, makeLogger())(next).ServeHTTP(rec, req)

		require.NotNil(t, gotUser)
		assert.Equal(t, "uid-1", gotUser.UID)
		assert.Equal(t, school, gotSchool)
	})

	t.Run("missing uid in context", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		rec := httptest.NewRecorder()

		middlewarectx.TenantMiddleware(&mockUsers{}, &mockResolver{}, makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("super admin skips resolution", func(t *testing.T) {
		users := &mockUsers{
			GetFunc: func(_ context.Context, uid string) (*models.User, error) {
				return &models.User{UID: uid, Role: models.RoleSuperAdmin}, nil
			},
		}

		var gotSchool *models.School
		var ran bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSchool, ran = middlewarectx.SchoolFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/admin/schools", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "admin-1"))
		rec := httptest.NewRecorder()

		middlewarectx.TenantMiddleware(users, &mockResolver{school: &models.School{ID: "never"}}, makeLogger())(next).ServeHTTP(rec, req)

		assert.True(t, ran)
		assert.Nil(t, gotSchool)
	})
}

func TestSubscriptionGuardMiddleware(t *testing.T) {
	owner := &models.User{UID: "uid-1", Role: models.RoleSchoolOwner}
	yesterday := time.Now().AddDate(0, 0, -1)
	tomorrow := time.Now().AddDate(0, 0, 1)

	t.Run("live trial passes", func(t *testing.T) {
		called := false
		school := &models.School{SubscriptionStatus: models.StatusTrial, TrialEnd: &tomorrow, IsActive: true}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/students", nil), owner, school)
		rec := httptest.NewRecorder()

		middlewarectx.SubscriptionGuardMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired trial is rejected with its reason and message", func(t *testing.T) {
		called := false
		school := &models.School{SubscriptionStatus: models.StatusTrial, TrialEnd: &yesterday, IsActive: true}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/students", nil), owner, school)
		rec := httptest.NewRecorder()

		middlewarectx.SubscriptionGuardMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		resp := decodeResponse(t, rec)
		assert.Equal(t, "TRIAL_EXPIRED", resp.Reason)
		assert.Contains(t, resp.Message, "انتهت الفترة التجريبية")
	})

	t.Run("expired subscription is rejected", func(t *testing.T) {
		called := false
		school := &models.School{SubscriptionStatus: models.StatusActive, SubscriptionEnd: &yesterday, IsActive: true}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/students", nil), owner, school)
		rec := httptest.NewRecorder()

		middlewarectx.SubscriptionGuardMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "SUBSCRIPTION_EXPIRED", decodeResponse(t, rec).Reason)
	})

	t.Run("no tenant is rejected", func(t *testing.T) {
		called := false
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/students", nil), owner, nil)
		rec := httptest.NewRecorder()

		middlewarectx.SubscriptionGuardMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "NO_TENANT", decodeResponse(t, rec).Reason)
	})

	t.Run("super admin bypasses the guard with no tenant at all", func(t *testing.T) {
		called := false
		admin := &models.User{UID: "admin-1", Role: models.RoleSuperAdmin}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), admin, nil)
		rec := httptest.NewRecorder()

		middlewarectx.SubscriptionGuardMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.True(t, called)
	})
}

func TestAdminMiddleware(t *testing.T) {
	t.Run("school owner is rejected", func(t *testing.T) {
		called := false
		owner := &models.User{UID: "uid-1", Role: models.RoleSchoolOwner}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/admin/schools", nil), owner, nil)
		rec := httptest.NewRecorder()

		middlewarectx.AdminMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("super admin passes", func(t *testing.T) {
		called := false
		admin := &models.User{UID: "admin-1", Role: models.RoleSuperAdmin}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/admin/schools", nil), admin, nil)
		rec := httptest.NewRecorder()

		middlewarectx.AdminMiddleware(makeLogger())(okHandler(t, &called)).ServeHTTP(rec, req)

		assert.True(t, called)
	})
}
