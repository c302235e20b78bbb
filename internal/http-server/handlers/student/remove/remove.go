// Package remove deletes a student from the current school.
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

// Service removes students.
type Service interface {
	RemoveStudent(ctx context.Context, schoolID, studentID string) error
}

// Handler handles student removal.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Remove a student
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Student not in this school"
// @Router /students/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.student.remove"

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

	studentID := chi.URLParam(r, "id")

	if err := h.service.RemoveStudent(r.Context(), school.ID, studentID); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			log.Error("student not found in this school", slog.String("student_id", studentID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("student not found"))
			return
		}
		log.Error("failed to remove student", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove student"))
		return
	}

	log.Info("student removed", slog.String("student_id", studentID))
	render.JSON(w, r, response.OK())
}
