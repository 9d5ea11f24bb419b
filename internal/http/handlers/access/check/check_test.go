package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-service/internal/entitlement"
	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Check(ctx context.Context, identity *models.Identity, resource entitlement.Resource) (entitlement.Verdict, error) {
	args := m.Called(ctx, identity, resource)
	return args.Get(0).(entitlement.Verdict), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAccessCheckHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		identity       *models.Identity
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "доступ разрешён",
			query:    "resource=product&product_id=prod_1",
			identity: &models.Identity{UID: "user123", Role: models.RoleUser},
			setupMocks: func(s *MockService) {
				s.On("Check", mock.Anything,
					&models.Identity{UID: "user123", Role: models.RoleUser},
					entitlement.Resource{Kind: entitlement.ResourceProduct, ProductID: "prod_1"},
				).Return(entitlement.Verdict{Decision: entitlement.DecisionAllow}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"decision":"allow"}}`,
		},
		{
			name:     "анонимный запрос перенаправляется на вход",
			query:    "resource=beta_portal",
			identity: nil,
			setupMocks: func(s *MockService) {
				s.On("Check", mock.Anything, (*models.Identity)(nil),
					entitlement.Resource{Kind: entitlement.ResourceBetaPortal},
				).Return(entitlement.Verdict{
					Decision: entitlement.DecisionRedirect,
					Redirect: entitlement.TargetLogin,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"decision":"redirect","redirect":"login"}}`,
		},
		{
			name:     "отказ в доступе в админку",
			query:    "resource=admin_area&restricted=true",
			identity: &models.Identity{UID: "user123", Role: models.RoleUser},
			setupMocks: func(s *MockService) {
				s.On("Check", mock.Anything,
					&models.Identity{UID: "user123", Role: models.RoleUser},
					entitlement.Resource{Kind: entitlement.ResourceAdminArea, Restricted: true},
				).Return(entitlement.Verdict{
					Decision: entitlement.DecisionDeny,
					Reason:   entitlement.ReasonInsufficientRole,
				}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"OK","data":{"decision":"deny","reason":"insufficient_role"}}`,
		},
		{
			name:           "неизвестный вид ресурса",
			query:          "resource=garage",
			identity:       &models.Identity{UID: "user123", Role: models.RoleUser},
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"unknown resource kind"}`,
		},
		{
			name:           "продукт без product_id",
			query:          "resource=product",
			identity:       &models.Identity{UID: "user123", Role: models.RoleUser},
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"product_id is required for product resources"}`,
		},
		{
			name:     "ошибка чтения состояния",
			query:    "resource=product&product_id=prod_1",
			identity: &models.Identity{UID: "user123", Role: models.RoleUser},
			setupMocks: func(s *MockService) {
				s.On("Check", mock.Anything, mock.Anything, mock.Anything).
					Return(entitlement.Verdict{}, errors.New("db down")).Once()
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

			req := httptest.NewRequest(http.MethodGet, "/api/v1/access/check?"+tt.query, nil)

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.identity != nil {
				ctx = context.WithValue(ctx, middlewarectx.IdentityKey, tt.identity)
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
