// Package create charges a student a fee.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/services/billing"
)

// Request is the invoice form; the due date uses the 2006-01-02 layout.
type Request struct {
	StudentID   string  `json:"student_id" validate:"required,uuid"`
	TotalAmount float64 `json:"total_amount" validate:"required,gt=0"`
	DueDate     string  `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// Service creates invoices.
type Service interface {
	CreateInvoice(ctx context.Context, schoolID, studentID string, totalAmount float64, dueDate time.Time) (string, error)
}

// Handler handles invoice creation.
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
// @Summary Create an invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body Request true "Invoice form"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response "Validation error"
// @Router /invoices [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.create"

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

	dueDate, _ := time.Parse("2006-01-02", req.DueDate)

	id, err := h.service.CreateInvoice(r.Context(), school.ID, req.StudentID, req.TotalAmount, dueDate)
	if err != nil {
		if errors.Is(err, billing.ErrNonPositiveAmount) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("amount must be positive"))
			return
		}
		log.Error("failed to create invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create invoice"))
		return
	}

	log.Info("invoice created", slog.String("invoice_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"invoice_id": id,
	}))
}
