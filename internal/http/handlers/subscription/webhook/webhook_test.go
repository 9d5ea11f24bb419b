package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/services/subscription"
)

const testSecret = "webhook-secret"

type MockService struct {
	mock.Mock
}

func (m *MockService) SyncFromProvider(ctx context.Context, ev subscription.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	updatedEvent := []byte(`{
		"event": "customer.subscription.updated",
		"object": {
			"id": "sub_1",
			"status": "active",
			"cancel_at_period_end": false,
			"created_at": "2025-03-01T12:00:00Z",
			"metadata": {"user_uid": "user123"}
		}
	}`)

	tests := []struct {
		name           string
		body           []byte
		signature      string
		setupMocks     func(*MockService)
		expectedStatus int
	}{
		{
			name:      "событие обновления подписки применяется",
			body:      updatedEvent,
			signature: sign(testSecret, updatedEvent),
			setupMocks: func(s *MockService) {
				s.On("SyncFromProvider", mock.Anything, mock.MatchedBy(func(ev subscription.Event) bool {
					return ev.UserUID == "user123" &&
						ev.Status == models.SubscriptionActive &&
						!ev.CancelAtPeriodEnd &&
						!ev.OccurredAt.IsZero()
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "отсутствует подпись",
			body:           updatedEvent,
			signature:      "",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "неверная подпись",
			body:           updatedEvent,
			signature:      sign("wrong-secret", updatedEvent),
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "невалидное тело события",
			body:           []byte("not a json"),
			signature:      sign(testSecret, []byte("not a json")),
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "незнакомое событие игнорируется",
			body:           []byte(`{"event":"invoice.paid","object":{"id":"in_1"}}`),
			signature:      sign(testSecret, []byte(`{"event":"invoice.paid","object":{"id":"in_1"}}`)),
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "событие с неизвестным статусом отклоняется",
			body:      updatedEvent,
			signature: sign(testSecret, updatedEvent),
			setupMocks: func(s *MockService) {
				s.On("SyncFromProvider", mock.Anything, mock.Anything).
					Return(fmt.Errorf("%w: unknown status %q", subscription.ErrInvalidEvent, "golden")).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "ошибка применения события",
			body:      updatedEvent,
			signature: sign(testSecret, updatedEvent),
			setupMocks: func(s *MockService) {
				s.On("SyncFromProvider", mock.Anything, mock.Anything).
					Return(errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			handler := New(newNoopLogger(), service, testSecret)

			tt.setupMocks(service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("X-Api-Signature", tt.signature)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			service.AssertExpectations(t)
		})
	}
}
