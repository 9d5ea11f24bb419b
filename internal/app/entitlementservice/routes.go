// Package entitlementservice собирает HTTP-приложение сервиса:
// маршруты, middleware и жизненный цикл сервера.
package entitlementservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/access/check"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/beta/betaapply"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/beta/betareview"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/beta/betastatus"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/purchase/purchasecreate"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/purchase/purchaselist"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/subscription/refresh"
	"github.com/magabrotheeeer/entitlement-service/internal/http/handlers/subscription/webhook"
	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/storage/repository"

	accessservice "github.com/magabrotheeeer/entitlement-service/internal/services/access"
	betaservice "github.com/magabrotheeeer/entitlement-service/internal/services/beta"
	purchaseservice "github.com/magabrotheeeer/entitlement-service/internal/services/purchase"
	subscriptionservice "github.com/magabrotheeeer/entitlement-service/internal/services/subscription"
)

// Services сервисы, нужные маршрутам приложения.
type Services struct {
	Access       *accessservice.Service
	Purchase     *purchaseservice.Service
	Beta         *betaservice.Service
	Subscription *subscriptionservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, storage *repository.Storage,
	services Services, tokenParser middlewarectx.TokenParser, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Webhook провайдера аутентифицируется подписью, не токеном
		r.Post("/subscriptions/webhook", webhook.New(logger, services.Subscription, webhookSecret).ServeHTTP)

		// Проверка доступа принимает и анонимные запросы:
		// вердикт для них — redirect на вход, а не 401
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/access/check", check.New(logger, services.Access).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/purchases", purchasecreate.New(logger, services.Purchase).ServeHTTP)
			r.Get("/purchases/list", purchaselist.New(logger, services.Purchase).ServeHTTP)
			r.Post("/beta/apply", betaapply.New(logger, services.Beta).ServeHTTP)
			r.Get("/beta/status", betastatus.New(logger, services.Beta).ServeHTTP)
			r.Post("/subscriptions/refresh", refresh.New(logger, services.Subscription).ServeHTTP)
			r.Post("/beta/review", betareview.New(logger, services.Beta).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
