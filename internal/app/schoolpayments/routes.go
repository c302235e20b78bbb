package schoolpayments

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/qalopay/school-payments/internal/http-server/handlers/admin/assignplan"
	"github.com/qalopay/school-payments/internal/http-server/handlers/admin/changeplan"
	"github.com/qalopay/school-payments/internal/http-server/handlers/admin/schoolcreate"
	"github.com/qalopay/school-payments/internal/http-server/handlers/admin/schoollist"
	adminstats "github.com/qalopay/school-payments/internal/http-server/handlers/admin/stats"
	"github.com/qalopay/school-payments/internal/http-server/handlers/admin/sublist"
	"github.com/qalopay/school-payments/internal/http-server/handlers/admin/toggleactive"
	"github.com/qalopay/school-payments/internal/http-server/handlers/auth/login"
	"github.com/qalopay/school-payments/internal/http-server/handlers/auth/logout"
	"github.com/qalopay/school-payments/internal/http-server/handlers/auth/register"
	sessionrestore "github.com/qalopay/school-payments/internal/http-server/handlers/auth/session"
	classcreate "github.com/qalopay/school-payments/internal/http-server/handlers/class/create"
	classlist "github.com/qalopay/school-payments/internal/http-server/handlers/class/list"
	classremove "github.com/qalopay/school-payments/internal/http-server/handlers/class/remove"
	dashboardstats "github.com/qalopay/school-payments/internal/http-server/handlers/dashboard/stats"
	"github.com/qalopay/school-payments/internal/http-server/handlers/health"
	invoicecreate "github.com/qalopay/school-payments/internal/http-server/handlers/invoice/create"
	invoicelist "github.com/qalopay/school-payments/internal/http-server/handlers/invoice/list"
	paymentcreate "github.com/qalopay/school-payments/internal/http-server/handlers/payment/create"
	paymentlist "github.com/qalopay/school-payments/internal/http-server/handlers/payment/list"
	planlist "github.com/qalopay/school-payments/internal/http-server/handlers/plan/list"
	schoolread "github.com/qalopay/school-payments/internal/http-server/handlers/school/read"
	schoolupdate "github.com/qalopay/school-payments/internal/http-server/handlers/school/update"
	studentcreate "github.com/qalopay/school-payments/internal/http-server/handlers/student/create"
	studentlist "github.com/qalopay/school-payments/internal/http-server/handlers/student/list"
	studentremove "github.com/qalopay/school-payments/internal/http-server/handlers/student/remove"
	studentupdate "github.com/qalopay/school-payments/internal/http-server/handlers/student/update"
	termcreate "github.com/qalopay/school-payments/internal/http-server/handlers/term/create"
	termlist "github.com/qalopay/school-payments/internal/http-server/handlers/term/list"
	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/lib/jwt"
	"github.com/qalopay/school-payments/internal/services/adminops"
	authservice "github.com/qalopay/school-payments/internal/services/auth"
	"github.com/qalopay/school-payments/internal/services/billing"
	"github.com/qalopay/school-payments/internal/services/roster"
	"github.com/qalopay/school-payments/internal/services/tenant"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// RegisterRoutes mounts every endpoint of the API server. The school
// area sits behind the JWT, tenant and subscription guards; the admin
// area swaps the subscription guard for the role check so an admin is
// never locked out by plan state.
func RegisterRoutes(r chi.Router, logger *slog.Logger, tokens jwt.Maker,
	db *repository.Storage, resolver *tenant.Resolver,
	authService *authservice.Auth, rosterService *roster.Roster,
	billingService *billing.Billing, adminService *adminops.AdminOps) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, authService).ServeHTTP)
		r.Get("/auth/session", sessionrestore.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger, adminService).ServeHTTP)

		// School area: owner endpoints, blocked when the subscription lapsed.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.TenantMiddleware(db, resolver, logger))
			r.Use(middlewarectx.SubscriptionGuardMiddleware(logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/students", studentcreate.New(logger, rosterService).ServeHTTP)
			r.Get("/students", studentlist.New(logger, rosterService).ServeHTTP)
			r.Put("/students/{id}", studentupdate.New(logger, rosterService).ServeHTTP)
			r.Delete("/students/{id}", studentremove.New(logger, rosterService).ServeHTTP)

			r.Post("/classes", classcreate.New(logger, rosterService).ServeHTTP)
			r.Get("/classes", classlist.New(logger, rosterService).ServeHTTP)
			r.Delete("/classes/{id}", classremove.New(logger, rosterService).ServeHTTP)

			r.Post("/terms", termcreate.New(logger, rosterService).ServeHTTP)
			r.Get("/terms", termlist.New(logger, rosterService).ServeHTTP)

			r.Post("/invoices", invoicecreate.New(logger, billingService).ServeHTTP)
			r.Get("/invoices", invoicelist.New(logger, billingService).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, billingService).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, billingService).ServeHTTP)

			r.Get("/dashboard/stats", dashboardstats.New(logger, billingService).ServeHTTP)

			r.Get("/school", schoolread.New(logger).ServeHTTP)
			r.Put("/school", schoolupdate.New(logger, db).ServeHTTP)
		})

		// Admin area: super admins only, no subscription guard.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.TenantMiddleware(db, resolver, logger))
			r.Use(middlewarectx.AdminMiddleware(logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/admin/schools", schoollist.New(logger, adminService).ServeHTTP)
			r.Post("/admin/schools", schoolcreate.New(logger, adminService).ServeHTTP)
			r.Post("/admin/schools/{id}/active", toggleactive.New(logger, adminService).ServeHTTP)
			r.Post("/admin/schools/{id}/plan", assignplan.New(logger, adminService).ServeHTTP)
			r.Get("/admin/subscriptions", sublist.New(logger, adminService).ServeHTTP)
			r.Post("/admin/subscriptions/{id}/plan", changeplan.New(logger, adminService).ServeHTTP)
			r.Get("/admin/stats", adminstats.New(logger, adminService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
