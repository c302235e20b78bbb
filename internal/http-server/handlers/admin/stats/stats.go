// Package stats serves platform-wide counters for the admin dashboard.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/models"
)

// Service aggregates platform statistics.
type Service interface {
	Stats(ctx context.Context) (*models.PlatformStats, error)
}

// Handler handles platform stats.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Platform statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to load platform stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load platform stats"))
		return
	}

	log.Info("platform stats loaded")
	render.JSON(w, r, response.StatusOKWithData(stats))
}
