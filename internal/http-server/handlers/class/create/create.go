// Package create adds a class to the current school.
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

// Request is the class form.
type Request struct {
	Name string `json:"name" validate:"required,min=1"`
}

// Service creates classes.
type Service interface {
	AddClass(ctx context.Context, schoolID, name string) (string, error)
}

// Handler handles class creation.
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
// @Summary Add a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param request body Request true "Class form"
// @Success 200 {object} response.Response
// @Router /classes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.class.create"

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

	id, err := h.service.AddClass(r.Context(), school.ID, req.Name)
	if err != nil {
		log.Error("failed to add class", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to add class"))
		return
	}

	log.Info("class added", slog.String("class_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"class_id": id,
	}))
}
