// Package schoollist returns all tenants for the admin dashboard.
package schoollist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/models"
)

// Service lists schools across tenants.
type Service interface {
	Schools(ctx context.Context, limit, offset int) ([]*models.School, error)
}

// Handler handles admin school listing.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List all schools
// @Tags Admin
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Response
// @Router /admin/schools [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.schoollist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	schools, err := h.service.Schools(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list schools", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list schools"))
		return
	}

	log.Info("schools listed", slog.Int("count", len(schools)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":   len(schools),
		"schools": schools,
	}))
}
