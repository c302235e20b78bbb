package middlewarectx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/access"
	"github.com/qalopay/school-payments/internal/http-server/response"
)

// SubscriptionGuardMiddleware evaluates the tenant's subscription state
// and rejects expired or suspended schools with 403. Super admins pass
// unconditionally. Runs after TenantMiddleware; a missing tenant is a
// denial with its own reason, not an error.
func SubscriptionGuardMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SubscriptionGuardMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if user, ok := UserFromContext(r.Context()); ok && user.Role.IsSuperAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			school, ok := SchoolFromContext(r.Context())
			if !ok {
				log.Error("tenant resolution did not run before the guard")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			decision := access.Evaluate(school, time.Now())
			if !decision.Allowed {
				log.Info("access denied",
					slog.String("reason", string(decision.Reason)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Denied(string(decision.Reason), decision.Reason.Message()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware lets only super admins through.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := UserFromContext(r.Context())
			if !ok || !user.Role.IsSuperAdmin() {
				log.Error("admin area requested without the super_admin role")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("super admin role required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
