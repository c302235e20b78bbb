package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// UserProvider loads accounts by uid.
type UserProvider interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// SchoolResolver maps an owner account to its tenant, nil when none.
type SchoolResolver interface {
	ResolveSchool(ctx context.Context, ownerID string) *models.School
}

// TenantMiddleware loads the account behind the token and, for school
// owners, resolves their tenant. Both land in the request context before
// any guard or handler runs, so downstream code never sees a
// half-resolved identity. Resolution failure is not a denial here; the
// school key holds a nil pointer and the subscription guard decides.
func TenantMiddleware(users UserProvider, resolver SchoolResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.TenantMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := users.GetUser(r.Context(), userUID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					log.Error("account behind a valid token no longer exists",
						slog.String("user_uid", userUID))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("account not found"))
					return
				}
				log.Error("failed to load account", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			var school *models.School
			if !user.Role.IsSuperAdmin() {
				school = resolver.ResolveSchool(r.Context(), user.UID)
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, SchoolKey, school)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
