// Package schoolcreate lets an admin add a tenant together with its
// owner account.
package schoolcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/services/adminops"
)

// Request is the admin school form.
type Request struct {
	SchoolName string `json:"school_name" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	OwnerName  string `json:"owner_name" validate:"required,min=2"`
	Password   string `json:"password" validate:"required,min=6"`
}

// Service creates schools on behalf of owners.
type Service interface {
	CreateSchool(ctx context.Context, params adminops.CreateSchoolParams, actorUID string) (string, error)
}

// Handler handles admin school creation.
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
// @Summary Create a school with its owner
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body Request true "School form"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response "Owner email already registered"
// @Router /admin/schools [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.schoolcreate"

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

	schoolID, err := h.service.CreateSchool(r.Context(), adminops.CreateSchoolParams{
		SchoolName: req.SchoolName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		OwnerName:  req.OwnerName,
		Password:   req.Password,
	}, actor.UID)
	if err != nil {
		if errors.Is(err, adminops.ErrEmailTaken) {
			log.Error("owner email already registered")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email already registered"))
			return
		}
		log.Error("failed to create school", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create school"))
		return
	}

	log.Info("school created", slog.String("school_id", schoolID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"school_id": schoolID,
	}))
}
