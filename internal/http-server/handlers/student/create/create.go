// Package create implements student enrollment for the current school.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
)

// Request is the enrollment form.
type Request struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	ClassID  string `json:"class_id" validate:"omitempty,uuid"`
}

// Service enrolls students.
type Service interface {
	AddStudent(ctx context.Context, schoolID, fullName, classID string) (string, error)
}

// Handler handles student creation.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Param request body Request true "Student form"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Malformed JSON"
// @Failure 422 {object} response.Response "Validation error"
// @Router /students [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.student.create"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.AddStudent(r.Context(), school.ID, req.FullName, req.ClassID)
	if err != nil {
		log.Error("failed to add student", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to add student"))
		return
	}

	log.Info("student added", slog.String("student_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"student_id": id,
	}))
}
