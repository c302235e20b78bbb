// Package stats aggregates the school dashboard counters.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/models"
)

// Service computes dashboard statistics.
type Service interface {
	DashboardStats(ctx context.Context, schoolID string) (*models.DashboardStats, error)
}

// Handler handles dashboard requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary School dashboard statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Response
// @Router /dashboard/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	school, ok := middlewarectx.SchoolFromContext(r.Context())
	if !ok || school == nil {
		log.Error("school missing from context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	stats, err := h.service.DashboardStats(r.Context(), school.ID)
	if err != nil {
		log.Error("failed to compute dashboard stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to compute stats"))
		return
	}

	log.Info("dashboard stats computed")
	render.JSON(w, r, response.StatusOKWithData(stats))
}
