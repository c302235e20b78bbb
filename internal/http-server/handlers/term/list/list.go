// Package list returns the current school's academic terms.
package list

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

// Service lists terms.
type Service interface {
	Terms(ctx context.Context, schoolID string) ([]*models.AcademicTerm, error)
}

// Handler handles term listing.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List academic terms
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Response
// @Router /terms [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.term.list"

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

	terms, err := h.service.Terms(r.Context(), school.ID)
	if err != nil {
		log.Error("failed to list terms", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list terms"))
		return
	}

	log.Info("terms listed", slog.Int("count", len(terms)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count": len(terms),
		"terms": terms,
	}))
}
