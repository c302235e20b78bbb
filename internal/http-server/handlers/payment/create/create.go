// Package create records a payment against an invoice. The response
// carries the invoice's recalculated totals and status so the client can
// update in place.
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
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/services/billing"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// Request is the payment form; paid_at is optional and defaults to now.
type Request struct {
	InvoiceID     string  `json:"invoice_id" validate:"required,uuid"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash transfer card"`
	PaidAt        string  `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

// Service records payments.
type Service interface {
	RecordPayment(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error)
}

// Handler handles payment recording.
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
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body Request true "Payment form"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Invoice not in this school"
// @Failure 422 {object} response.Response "Validation error"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

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

	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, _ = time.Parse("2006-01-02", req.PaidAt)
	}

	payment, invoice, err := h.service.RecordPayment(r.Context(), school.ID, req.InvoiceID, req.Amount, req.PaymentMethod, paidAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("invoice not found in this school", slog.String("invoice_id", req.InvoiceID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("invoice not found"))
		case errors.Is(err, billing.ErrNonPositiveAmount):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("amount must be positive"))
		default:
			log.Error("failed to record payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to record payment"))
		}
		return
	}

	log.Info("payment recorded",
		slog.String("payment_id", payment.ID),
		slog.String("invoice_status", invoice.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id":     payment.ID,
		"invoice_id":     invoice.ID,
		"paid_amount":    invoice.PaidAmount,
		"invoice_status": invoice.Status,
	}))
}
