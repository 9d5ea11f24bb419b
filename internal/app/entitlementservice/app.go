package entitlementservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/entitlement-service/internal/cache"
	"github.com/magabrotheeeer/entitlement-service/internal/config"
	"github.com/magabrotheeeer/entitlement-service/internal/entitlement"
	libjwt "github.com/magabrotheeeer/entitlement-service/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-service/internal/migrations"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/paymentprovider"
	"github.com/magabrotheeeer/entitlement-service/internal/rabbitmq"
	"github.com/magabrotheeeer/entitlement-service/internal/storage/repository"

	accessservice "github.com/magabrotheeeer/entitlement-service/internal/services/access"
	betaservice "github.com/magabrotheeeer/entitlement-service/internal/services/beta"
	purchaseservice "github.com/magabrotheeeer/entitlement-service/internal/services/purchase"
	subscriptionservice "github.com/magabrotheeeer/entitlement-service/internal/services/subscription"
)

// App HTTP-приложение сервиса вместе с его внешними соединениями.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

// New собирает приложение: хранилище, миграции, кеш, брокер,
// сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn)
	if err != nil {
		return nil, err
	}

	providerClient := paymentprovider.NewClient(cfg.ProviderAPIURL, cfg.ProviderAPIKey)

	purchaseService := purchaseservice.New(db, logger)
	subscriptionService := subscriptionservice.New(db, cacheRedis, providerClient, logger)
	betaService := betaservice.New(db, rabbitmq.NewPublisher(rabbitCh), logger)
	accessService := accessservice.New(betaService, subscriptionService,
		purchaseService, db, accessPolicy(cfg), logger)

	tokenParser := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, Services{
		Access:       accessService,
		Purchase:     purchaseService,
		Beta:         betaService,
		Subscription: subscriptionService,
	}, tokenParser, cfg.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// accessPolicy переводит роли из конфига в политику резолвера.
func accessPolicy(cfg *config.Config) entitlement.Policy {
	if len(cfg.RestrictedAdminRoles) == 0 {
		return entitlement.DefaultPolicy()
	}
	roles := make([]models.Role, 0, len(cfg.RestrictedAdminRoles))
	for _, r := range cfg.RestrictedAdminRoles {
		roles = append(roles, models.Role(r))
	}
	return entitlement.Policy{RestrictedAdminRoles: roles}
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
