package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

type BillingServiceMock struct {
	mock.Mock
}

func (m *BillingServiceMock) RecordPayment(ctx context.Context, schoolID, invoiceID string, amount float64, method string, paidAt time.Time) (*models.Payment, *models.Invoice, error) {
	args := m.Called(ctx, schoolID, invoiceID, amount, method, paidAt)
	payment, _ := args.Get(0).(*models.Payment)
	invoice, _ := args.Get(1).(*models.Invoice)
	return payment, invoice, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPaymentCreateHandler_ServeHTTP(t *testing.T) {
	const invoiceID = "4f0c2ad6-9a38-4a3b-9a64-0f41a1b2c3d4"

	billingMock := new(BillingServiceMock)
	handler := New(newNoopLogger(), billingMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		withSchool     bool
		mockPayment    *models.Payment
		mockInvoice    *models.Invoice
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
		wantData       map[string]any
	}{
		{
			name: "payment recorded",
			requestBody: Request{
				InvoiceID:     invoiceID,
				Amount:        300,
				PaymentMethod: "cash",
			},
			withSchool:  true,
			mockPayment: &models.Payment{ID: "payment-1"},
			mockInvoice: &models.Invoice{
				ID:         invoiceID,
				PaidAmount: 300,
				Status:     models.InvoicePartiallyPaid,
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantData: map[string]any{
				"payment_id":     "payment-1",
				"invoice_id":     invoiceID,
				"paid_amount":    float64(300),
				"invoice_status": models.InvoicePartiallyPaid,
			},
		},
		{
			name: "invoice from another school",
			requestBody: Request{
				InvoiceID:     invoiceID,
				Amount:        300,
				PaymentMethod: "transfer",
			},
			withSchool:     true,
			mockErr:        repository.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "invoice not found",
		},
		{
			name: "unknown payment method",
			requestBody: Request{
				InvoiceID:     invoiceID,
				Amount:        300,
				PaymentMethod: "crypto",
			},
			withSchool:     true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field PaymentMethod must be one of: cash transfer card",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withSchool:     true,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name: "school missing from context",
			requestBody: Request{
				InvoiceID:     invoiceID,
				Amount:        300,
				PaymentMethod: "cash",
			},
			withSchool:     false,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal service error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			billingMock.ExpectedCalls = nil
			billingMock.Calls = nil

			if tt.mockPayment != nil || tt.mockErr != nil {
				billingMock.On("RecordPayment", mock.Anything, "school-1", invoiceID,
					mock.Anything, mock.Anything, mock.Anything).
					Return(tt.mockPayment, tt.mockInvoice, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withSchool {
				ctx = context.WithValue(ctx, middlewarectx.SchoolKey, &models.School{ID: "school-1"})
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			} else {
				assert.Nil(t, got["data"])
			}

			if tt.mockPayment != nil || tt.mockErr != nil {
				billingMock.AssertExpectations(t)
			}
		})
	}
}
