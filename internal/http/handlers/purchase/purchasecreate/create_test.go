package purchasecreate

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

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/services/purchase"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Record(ctx context.Context, params purchase.RecordParams) (*models.Purchase, bool, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Purchase), args.Bool(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPurchaseCreateHandler_ServeHTTP(t *testing.T) {
	recorded := &models.Purchase{
		ID:        "purchase123",
		UserUID:   "user123",
		ProductID: "prod_1",
		PriceID:   "price_1",
		Status:    models.PurchaseCompleted,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная запись покупки",
			requestBody: Request{
				ProductID: "prod_1",
				PriceID:   "price_1",
			},
			userUID: "user123",
			setupMocks: func(s *MockService) {
				s.On("Record", mock.Anything, purchase.RecordParams{
					UserUID:   "user123",
					ProductID: "prod_1",
					PriceID:   "price_1",
					Status:    models.PurchaseCompleted,
				}).Return(recorded, true, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"status":"OK","data":{"id":"purchase123","user_uid":"user123","product_id":"prod_1","price_id":"price_1","status":"completed","created_at":"0001-01-01T00:00:00Z"}}`,
		},
		{
			name: "повторная покупка того же продукта",
			requestBody: Request{
				ProductID: "prod_1",
				PriceID:   "price_1",
			},
			userUID: "user123",
			setupMocks: func(s *MockService) {
				s.On("Record", mock.Anything, mock.Anything).Return(recorded, false, purchase.ErrAlreadyOwned).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"OK","data":{"id":"purchase123","user_uid":"user123","product_id":"prod_1","price_id":"price_1","status":"completed","created_at":"0001-01-01T00:00:00Z"}}`,
		},
		{
			name:           "невалидный JSON",
			requestBody:    "not a json",
			userUID:        "user123",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name: "пустой product_id",
			requestBody: Request{
				PriceID: "price_1",
			},
			userUID:        "user123",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field ProductID is a required field"}`,
		},
		{
			name: "запрос без идентичности",
			requestBody: Request{
				ProductID: "prod_1",
				PriceID:   "price_1",
			},
			userUID:        "",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name: "ошибка хранилища",
			requestBody: Request{
				ProductID: "prod_1",
				PriceID:   "price_1",
			},
			userUID: "user123",
			setupMocks: func(s *MockService) {
				s.On("Record", mock.Anything, mock.Anything).Return(nil, false, errors.New("db down")).Once()
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

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.IdentityKey, &models.Identity{
					UID:      tt.userUID,
					Username: "tester",
					Role:     models.RoleUser,
				})
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())

			service.AssertExpectations(t)
		})
	}
}
