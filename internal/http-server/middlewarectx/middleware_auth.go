// Package middlewarectx contains the HTTP middleware chain: bearer-token
// authentication, tenant resolution, the subscription guard and the
// admin-only gate. Each stage stores what it resolved in the request
// context for the handlers downstream.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/jwt"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/models"
)

// Key is the type for request-context keys set by this package.
type Key string

const (
	// UserUID is the authenticated account id.
	UserUID Key = "user_uid"
	// Role is the authenticated account role.
	Role Key = "role"
	// UserKey is the loaded *models.User.
	UserKey Key = "user"
	// SchoolKey is the resolved *models.School, possibly a nil pointer.
	SchoolKey Key = "school"
)

// TokenParser validates access tokens.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// JWTMiddleware checks the Bearer token in the Authorization header and
// stores the account id and role in the request context.
func JWTMiddleware(tokens TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user loaded by TenantMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// SchoolFromContext returns the school resolved by TenantMiddleware. The
// bool reports whether resolution ran, not whether a school was found;
// the pointer is nil for accounts without a tenant.
func SchoolFromContext(ctx context.Context) (*models.School, bool) {
	school, ok := ctx.Value(SchoolKey).(*models.School)
	return school, ok
}
