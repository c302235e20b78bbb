// Package toggleactive suspends or reinstates a tenant.
package toggleactive

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// Request carries the desired activation state.
type Request struct {
	Active bool `json:"active"`
}

// Service flips school activation.
type Service interface {
	SetSchoolActive(ctx context.Context, schoolID string, active bool) error
}

// Handler handles activation toggles.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Activate or deactivate a school
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param request body Request true "Activation state"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/schools/{id}/active [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.toggleactive"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	schoolID := chi.URLParam(r, "id")
	if schoolID == "" {
		log.Error("missing school id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing school id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.SetSchoolActive(r.Context(), schoolID, req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("school not found", slog.String("school_id", schoolID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("school not found"))
			return
		}
		log.Error("failed to update school", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update school"))
		return
	}

	log.Info("school activation updated",
		slog.String("school_id", schoolID),
		slog.Bool("active", req.Active))
	render.JSON(w, r, response.OK())
}
