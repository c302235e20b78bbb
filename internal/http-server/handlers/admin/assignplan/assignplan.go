// Package assignplan puts a tenant on a paid plan.
package assignplan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// Request names the plan to activate.
type Request struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// Service activates plans for schools.
type Service interface {
	AssignPlan(ctx context.Context, schoolID, planID, actorUID string) (time.Time, error)
}

// Handler handles plan assignment.
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
// @Summary Assign a paid plan to a school
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param request body Request true "Plan to activate"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/schools/{id}/plan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.assignplan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("actor missing from context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	endDate, err := h.service.AssignPlan(r.Context(), schoolID, req.PlanID, actor.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("school or plan not found", slog.String("school_id", schoolID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("school or plan not found"))
			return
		}
		log.Error("failed to assign plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to assign plan"))
		return
	}

	log.Info("plan assigned",
		slog.String("school_id", schoolID),
		slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_end": endDate,
	}))
}
