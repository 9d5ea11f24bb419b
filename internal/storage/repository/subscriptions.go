package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// GetSubscription возвращает действующую запись подписки пользователя.
// Отсутствие записи — валидное состояние, не ошибка.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, bool, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, status, current_period_end, cancel_at_period_end, updated_at
			  FROM subscriptions
			  WHERE user_uid = $1`
	var sub models.Subscription
	var periodEnd sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&sub.UserUID, &sub.Status, &periodEnd, &sub.CancelAtPeriodEnd, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return &sub, true, nil
}

// UpsertSubscription вставляет или обновляет запись подписки.
// При конфликте побеждает более поздний updated_at: запоздавшее
// событие провайдера не затирает более свежее состояние.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, status, current_period_end, cancel_at_period_end, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET status = EXCLUDED.status,
			      current_period_end = EXCLUDED.current_period_end,
			      cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			      updated_at = EXCLUDED.updated_at
			  WHERE subscriptions.updated_at <= EXCLUDED.updated_at`
	_, err := s.DB.ExecContext(ctx, query,
		sub.UserUID, sub.Status, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
