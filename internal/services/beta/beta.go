// Package beta управляет жизненным циклом заявок на бета-доступ:
// подача, повторная подача после отказа, решение ревьюера.
package beta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/rabbitmq"
	"github.com/magabrotheeeer/entitlement-service/internal/storage/repository"
)

// ErrAlreadyApplied означает, что у пользователя уже есть заявка в
// статусе pending или approved; новая подача в этих состояниях запрещена.
var ErrAlreadyApplied = errors.New("beta application already exists")

// ErrNotFound означает, что заявки на ревью не существует либо она
// уже рассмотрена.
var ErrNotFound = errors.New("pending beta application not found")

// Repository определяет методы хранилища заявок.
type Repository interface {
	// GetBetaApplication возвращает заявку пользователя.
	GetBetaApplication(ctx context.Context, userUID string) (*models.BetaApplication, bool, error)
	// CreateBetaApplication сохраняет новую заявку.
	CreateBetaApplication(ctx context.Context, app models.BetaApplication) (*models.BetaApplication, error)
	// ReopenBetaApplication возвращает отклонённую заявку в pending.
	ReopenBetaApplication(ctx context.Context, userUID, email, motivation string) (int, error)
	// UpdateBetaStatus фиксирует решение ревьюера.
	UpdateBetaStatus(ctx context.Context, userUID string, status models.BetaStatus, reviewerUID string) (int, error)
}

// Publisher публикует уведомление о решении в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует бизнес-логику бета-заявок.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// GetStatus возвращает статус заявки пользователя.
// Отсутствие записи эквивалентно BetaNotApplied.
func (s *Service) GetStatus(ctx context.Context, userUID string) (models.BetaStatus, error) {
	app, found, err := s.repo.GetBetaApplication(ctx, userUID)
	if err != nil {
		return models.BetaNotApplied, fmt.Errorf("failed to get beta application: %w", err)
	}
	if !found {
		return models.BetaNotApplied, nil
	}
	return app.Status, nil
}

// Submit подаёт заявку на бета-доступ. Отклонённая заявка возвращается
// в pending с новой мотивацией; pending и approved блокируют подачу.
func (s *Service) Submit(ctx context.Context, userUID, email, motivation string) (*models.BetaApplication, error) {
	existing, found, err := s.repo.GetBetaApplication(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}

	if found {
		switch existing.Status {
		case models.BetaPending, models.BetaApproved:
			return nil, fmt.Errorf("%w: status %s", ErrAlreadyApplied, existing.Status)
		case models.BetaRejected:
			count, err := s.repo.ReopenBetaApplication(ctx, userUID, email, motivation)
			if err != nil {
				return nil, fmt.Errorf("failed to reopen application: %w", err)
			}
			if count == 0 {
				// Конкурентное ревью успело изменить статус.
				return nil, fmt.Errorf("%w: status changed concurrently", ErrAlreadyApplied)
			}
			s.log.Info("reopened rejected beta application", slog.String("user_uid", userUID))
			app, _, err := s.repo.GetBetaApplication(ctx, userUID)
			if err != nil {
				return nil, fmt.Errorf("failed to read reopened application: %w", err)
			}
			return app, nil
		}
	}

	app, err := s.repo.CreateBetaApplication(ctx, models.BetaApplication{
		UserUID:    userUID,
		Email:      email,
		Motivation: motivation,
		Status:     models.BetaPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateBetaApplication) {
			// Гонка проиграна: конкурентная подача успела первой.
			s.log.Info("beta application insert lost uniqueness race",
				slog.String("user_uid", userUID))
			return nil, fmt.Errorf("%w: concurrent submission", ErrAlreadyApplied)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.log.Info("submitted beta application", slog.String("user_uid", userUID))
	return app, nil
}

// Review фиксирует решение ревьюера по pending-заявке и публикует
// уведомление для отправки письма заявителю. Недоставленное
// уведомление не откатывает решение.
func (s *Service) Review(ctx context.Context, reviewerUID, userUID string, approve bool) (models.BetaStatus, error) {
	app, found, err := s.repo.GetBetaApplication(ctx, userUID)
	if err != nil {
		return models.BetaNotApplied, fmt.Errorf("failed to get application: %w", err)
	}
	if !found || app.Status != models.BetaPending {
		return models.BetaNotApplied, ErrNotFound
	}

	status := models.BetaRejected
	if approve {
		status = models.BetaApproved
	}

	count, err := s.repo.UpdateBetaStatus(ctx, userUID, status, reviewerUID)
	if err != nil {
		return models.BetaNotApplied, fmt.Errorf("failed to update application status: %w", err)
	}
	if count == 0 {
		return models.BetaNotApplied, ErrNotFound
	}

	notification := models.BetaDecisionNotification{
		UserUID: userUID,
		Email:   app.Email,
		Status:  status,
	}
	if err := s.publisher.Publish(rabbitmq.BetaDecisionRoutingKey, notification); err != nil {
		s.log.Warn("failed to publish beta decision notification",
			slog.String("user_uid", userUID), slog.Any("err", err))
	}

	s.log.Info("reviewed beta application",
		slog.String("user_uid", userUID),
		slog.String("reviewer_uid", reviewerUID),
		slog.String("status", string(status)))
	return status, nil
}
