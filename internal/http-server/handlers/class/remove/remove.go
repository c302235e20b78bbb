// Package remove deletes a class; its students stay, unassigned.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/services/roster"
)

// Service removes classes.
type Service interface {
	RemoveClass(ctx context.Context, schoolID, classID string) error
}

// Handler handles class removal.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Remove a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Class not in this school"
// @Router /classes/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.class.remove"

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

	classID := chi.URLParam(r, "id")

	if err := h.service.RemoveClass(r.Context(), school.ID, classID); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			log.Error("class not found in this school", slog.String("class_id", classID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("class not found"))
			return
		}
		log.Error("failed to remove class", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove class"))
		return
	}

	log.Info("class removed", slog.String("class_id", classID))
	render.JSON(w, r, response.OK())
}
