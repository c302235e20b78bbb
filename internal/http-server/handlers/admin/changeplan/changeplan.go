// Package changeplan moves an existing subscription to another plan.
package changeplan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// Request names the replacement plan.
type Request struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// Service switches subscriptions between plans.
type Service interface {
	ChangePlan(ctx context.Context, subscriptionID int, planID string) error
}

// Handler handles plan changes.
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
// @Summary Change the plan of a subscription
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Param request body Request true "Replacement plan"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/subscriptions/{id}/plan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.changeplan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriptionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid subscription id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
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

	if err := h.service.ChangePlan(r.Context(), subscriptionID, req.PlanID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("subscription or plan not found", slog.Int("subscription_id", subscriptionID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription or plan not found"))
			return
		}
		log.Error("failed to change plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to change plan"))
		return
	}

	log.Info("subscription plan changed",
		slog.Int("subscription_id", subscriptionID),
		slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.OK())
}
