package assignplan

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

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qalopay/school-payments/internal/http-server/middlewarectx"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

type AdminServiceMock struct {
	mock.Mock
}

func (m *AdminServiceMock) AssignPlan(ctx context.Context, schoolID, planID, actorUID string) (time.Time, error) {
	args := m.Called(ctx, schoolID, planID, actorUID)
	end, _ := args.Get(0).(time.Time)
	return end, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAssignPlanHandler_ServeHTTP(t *testing.T) {
	adminMock := new(AdminServiceMock)
	handler := New(newNoopLogger(), adminMock)

	endDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockEnd        time.Time
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "plan assigned",
			requestBody:    Request{PlanID: "plan-1"},
			mockEnd:        endDate,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "unknown plan",
			requestBody:    Request{PlanID: "plan-missing"},
			mockErr:        repository.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "school or plan not found",
		},
		{
			name:           "validation error - missing plan",
			requestBody:    Request{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field PlanID is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adminMock.ExpectedCalls = nil
			adminMock.Calls = nil

			if !tt.mockEnd.IsZero() || tt.mockErr != nil {
				adminMock.On("AssignPlan", mock.Anything, "school-1",
					tt.requestBody.(Request).PlanID, "admin-1").
					Return(tt.mockEnd, tt.mockErr).Once()
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/admin/schools/school-1/plan", bytes.NewReader(bodyBytes))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "school-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserKey, &models.User{
				UID:  "admin-1",
				Role: models.RoleSuperAdmin,
			})
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
			if !tt.mockEnd.IsZero() && tt.mockErr == nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.NotEmpty(t, data["subscription_end"])
			}

			if !tt.mockEnd.IsZero() || tt.mockErr != nil {
				adminMock.AssertExpectations(t)
			}
		})
	}
}
