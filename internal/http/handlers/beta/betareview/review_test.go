package betareview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/services/beta"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Review(ctx context.Context, reviewerUID, userUID string, approve bool) (models.BetaStatus, error) {
	args := m.Called(ctx, reviewerUID, userUID, approve)
	return args.Get(0).(models.BetaStatus), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func boolPtr(b bool) *bool { return &b }

func TestBetaReviewHandler_ServeHTTP(t *testing.T) {
	admin := &models.Identity{UID: "admin123", Role: models.RoleAdmin}

	tests := []struct {
		name           string
		requestBody    interface{}
		identity       *models.Identity
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "одобрение заявки",
			requestBody: Request{UserUID: "user123", Approve: boolPtr(true)},
			identity:    admin,
			setupMocks: func(s *MockService) {
				s.On("Review", mock.Anything, "admin123", "user123", true).
					Return(models.BetaApproved, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"status":"approved"}}`,
		},
		{
			name:        "отклонение заявки",
			requestBody: Request{UserUID: "user123", Approve: boolPtr(false)},
			identity:    admin,
			setupMocks: func(s *MockService) {
				s.On("Review", mock.Anything, "admin123", "user123", false).
					Return(models.BetaRejected, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"status":"rejected"}}`,
		},
		{
			name:           "ревью запрещено обычной роли",
			requestBody:    Request{UserUID: "user123", Approve: boolPtr(true)},
			identity:       &models.Identity{UID: "user456", Role: models.RoleUser},
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"admin role required"}`,
		},
		{
			name:           "запрос без решения",
			requestBody:    Request{UserUID: "user123"},
			identity:       admin,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Approve is a required field"}`,
		},
		{
			name:        "pending-заявка не найдена",
			requestBody: Request{UserUID: "user123", Approve: boolPtr(true)},
			identity:    admin,
			setupMocks: func(s *MockService) {
				s.On("Review", mock.Anything, "admin123", "user123", true).
					Return(models.BetaNotApplied, beta.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"pending beta application not found"}`,
		},
		{
			name:        "ошибка хранилища",
			requestBody: Request{UserUID: "user123", Approve: boolPtr(true)},
			identity:    admin,
			setupMocks: func(s *MockService) {
				s.On("Review", mock.Anything, "admin123", "user123", true).
					Return(models.BetaNotApplied, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			handler := New(newNoopLogger(), service)

			tt.setupMocks(service)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/beta/review", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.IdentityKey, tt.identity)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())

			service.AssertExpectations(t)
		})
	}
}
