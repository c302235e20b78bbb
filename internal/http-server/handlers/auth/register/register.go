// Package register implements the sign-up endpoint for a school owner.
// One request creates the owner account, the school and its trial
// subscription; the caller then logs in separately.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/services/auth"
)

// Request is the sign-up form.
type Request struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FullName   string `json:"full_name" validate:"required,min=2"`
	SchoolName string `json:"school_name" validate:"required,min=2"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PlanSlug   string `json:"plan"`
}

// Service registers a school owner.
type Service interface {
	Register(ctx context.Context, params auth.RegisterParams) (string, error)
}

// Handler handles sign-up requests.
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
// @Summary Register a school
// @Description Creates the owner account, the school and a trial subscription.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Sign-up form"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Malformed JSON"
// @Failure 409 {object} response.Response "Email already registered"
// @Failure 422 {object} response.Response "Validation error"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	schoolID, err := h.service.Register(r.Context(), auth.RegisterParams{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		SchoolName: req.SchoolName,
		Phone:      req.Phone,
		Address:    req.Address,
		PlanSlug:   req.PlanSlug,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			log.Error("email already registered")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Denied("EMAIL_TAKEN", auth.Message(err)))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("registration failed"))
		return
	}

	log.Info("school registered", slog.String("school_id", schoolID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"school_id": schoolID,
	}))
}
