// Package subscription ведёт актуальное состояние подписки каждого
// пользователя. Состояние обновляется событиями платёжного провайдера
// (webhook) и запросом к провайдеру по требованию; чтения идут через
// короткоживущий кеш.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/paymentprovider"
)

const statusCacheTTL = 5 * time.Minute

// ErrInvalidEvent означает событие провайдера без user_uid или с
// неизвестным статусом. Это ошибка входных данных, не сбой хранилища.
var ErrInvalidEvent = errors.New("invalid provider event")

// Repository определяет методы хранилища подписок.
type Repository interface {
	// GetSubscription возвращает действующую запись подписки пользователя.
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, bool, error)
	// UpsertSubscription вставляет или обновляет запись, побеждает поздний updated_at.
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
}

// Cache описывает методы кеширования статуса.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ProviderClient определяет клиент платёжного провайдера для
// обновления состояния по требованию.
type ProviderClient interface {
	GetSubscription(ctx context.Context, userUID string) (*paymentprovider.Subscription, error)
}

// Service реализует трекер состояния подписок.
type Service struct {
	repo     Repository
	cache    Cache
	provider ProviderClient
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, provider ProviderClient, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		provider: provider,
		log:      log,
	}
}

func cacheKey(userUID string) string {
	return fmt.Sprintf("subscription_status:%s", userUID)
}

// GetStatus возвращает последний известный статус подписки.
// Отсутствие записи — валидное состояние SubscriptionNone.
func (s *Service) GetStatus(ctx context.Context, userUID string) (models.SubscriptionStatus, error) {
	var cached models.SubscriptionStatus
	found, err := s.cache.Get(cacheKey(userUID), &cached)
	if err != nil {
		s.log.Warn("failed to read subscription status from cache",
			slog.String("user_uid", userUID), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	sub, exists, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		return models.SubscriptionNone, err
	}
	status := models.SubscriptionNone
	if exists {
		status = sub.Status
	}

	if err := s.cache.Set(cacheKey(userUID), status, statusCacheTTL); err != nil {
		s.log.Warn("failed to cache subscription status",
			slog.String("user_uid", userUID), slog.Any("err", err))
	}
	return status, nil
}

// Event событие провайдера об изменении подписки, уже прошедшее
// проверку подписи на границе.
type Event struct {
	UserUID           string
	Status            models.SubscriptionStatus
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	OccurredAt        time.Time
}

// SyncFromProvider применяет событие провайдера: запись обновляется
// по правилу "поздний updated_at побеждает", кеш статуса сбрасывается.
func (s *Service) SyncFromProvider(ctx context.Context, ev Event) error {
	if ev.UserUID == "" {
		return fmt.Errorf("%w: missing user_uid", ErrInvalidEvent)
	}
	if !ev.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, ev.Status)
	}
	occurredAt := ev.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	err := s.repo.UpsertSubscription(ctx, models.Subscription{
		UserUID:           ev.UserUID,
		Status:            ev.Status,
		CurrentPeriodEnd:  ev.CurrentPeriodEnd,
		CancelAtPeriodEnd: ev.CancelAtPeriodEnd,
		UpdatedAt:         occurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to sync subscription: %w", err)
	}

	if err := s.cache.Invalidate(cacheKey(ev.UserUID)); err != nil {
		s.log.Warn("failed to invalidate subscription status cache",
			slog.String("user_uid", ev.UserUID), slog.Any("err", err))
	}

	s.log.Info("synced subscription from provider",
		slog.String("user_uid", ev.UserUID),
		slog.String("status", string(ev.Status)))
	return nil
}

// Refresh запрашивает актуальное состояние у провайдера и сохраняет его.
func (s *Service) Refresh(ctx context.Context, userUID string) (models.SubscriptionStatus, error) {
	sub, err := s.provider.GetSubscription(ctx, userUID)
	if err != nil {
		return models.SubscriptionNone, fmt.Errorf("failed to refresh from provider: %w", err)
	}
	if sub == nil {
		return models.SubscriptionNone, nil
	}

	ev := Event{
		UserUID:           userUID,
		Status:            models.SubscriptionStatus(sub.Status),
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		OccurredAt:        time.Now(),
	}
	if err := s.SyncFromProvider(ctx, ev); err != nil {
		return models.SubscriptionNone, err
	}
	return ev.Status, nil
}
