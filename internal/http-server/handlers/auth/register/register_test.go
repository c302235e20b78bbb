package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qalopay/school-payments/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, params auth.RegisterParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	validBody := Request{
		Email:      "owner@school.com",
		Password:   "password123",
		FullName:   "Owner",
		SchoolName: "Al Noor",
		PlanSlug:   "basic",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockSchoolID   string
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
		wantReason     string
		wantMessage    string
	}{
		{
			name:           "school registered",
			requestBody:    validBody,
			mockSchoolID:   "school-1",
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "duplicate email",
			requestBody:    validBody,
			mockErr:        auth.ErrEmailTaken,
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
			wantReason:     "EMAIL_TAKEN",
			wantMessage:    "هذا البريد الإلكتروني مسجل مسبقاً.",
		},
		{
			name: "validation error - short password",
			requestBody: Request{
				Email:      "owner@school.com",
				Password:   "123",
				FullName:   "Owner",
				SchoolName: "Al Noor",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Password is too short",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.mockSchoolID != "" || tt.mockErr != nil {
				authMock.On("Register", mock.Anything, mock.Anything).
					Return(tt.mockSchoolID, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

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
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, got["reason"])
				assert.Equal(t, tt.wantMessage, got["message"])
			}
			if tt.mockSchoolID != "" {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.mockSchoolID, data["school_id"])
			}

			if tt.mockSchoolID != "" || tt.mockErr != nil {
				authMock.AssertExpectations(t)
			}
		})
	}
}
