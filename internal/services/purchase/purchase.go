// Package purchase реализует идемпотентный реестр покупок.
// Запись о покупке создаётся ровно один раз на пару пользователь/продукт,
// сколько бы раз и насколько бы конкурентно её ни пытались создать.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/storage/repository"
)

// ErrAlreadyOwned означает, что пользователь уже владеет продуктом.
// Это не сбой, а идемпотентный исход; на границе HTTP он отличим от
// свежей записи (409 против 201).
var ErrAlreadyOwned = errors.New("product already owned")

// ErrValidation означает пустые обязательные поля запроса.
var ErrValidation = errors.New("invalid purchase params")

// Repository определяет методы реестра в хранилище.
type Repository interface {
	// FindPurchase возвращает запись пары (userUID, productID), если она есть.
	FindPurchase(ctx context.Context, userUID, productID string) (*models.Purchase, bool, error)
	// CreatePurchase вставляет запись; при проигрыше гонки за ограничение
	// уникальности возвращает repository.ErrDuplicatePurchase.
	CreatePurchase(ctx context.Context, p models.Purchase) (*models.Purchase, error)
	// ListPurchases возвращает все покупки пользователя.
	ListPurchases(ctx context.Context, userUID string) ([]*models.Purchase, error)
}

// Service реализует бизнес-логику реестра покупок.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// RecordParams параметры записи о покупке.
type RecordParams struct {
	UserUID   string
	ProductID string
	PriceID   string
	Status    models.PurchaseStatus
}

// Record записывает покупку. Возвращает созданную или уже существующую
// запись и признак свежего создания. Предварительная проверка на
// существование лишь оптимизация дружелюбного ответа: настоящую
// корректность под конкурентными повторами обеспечивает ограничение
// уникальности в хранилище, проигрыш этой гонки тоже даёт ErrAlreadyOwned.
func (s *Service) Record(ctx context.Context, params RecordParams) (*models.Purchase, bool, error) {
	if params.UserUID == "" || params.ProductID == "" || params.PriceID == "" {
		return nil, false, fmt.Errorf("%w: user_uid, product_id and price_id are required", ErrValidation)
	}
	if params.Status == "" {
		params.Status = models.PurchaseCompleted
	}

	existing, found, err := s.repo.FindPurchase(ctx, params.UserUID, params.ProductID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find purchase: %w", err)
	}
	if found {
		return existing, false, ErrAlreadyOwned
	}

	created, err := s.repo.CreatePurchase(ctx, models.Purchase{
		ID:        uuid.New().String(),
		UserUID:   params.UserUID,
		ProductID: params.ProductID,
		PriceID:   params.PriceID,
		Status:    params.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePurchase) {
			// Гонка проиграна: конкурентный запрос успел первым.
			// Исход для вызывающей стороны тот же, что и при пре-чеке.
			s.log.Info("purchase insert lost uniqueness race",
				slog.String("user_uid", params.UserUID),
				slog.String("product_id", params.ProductID))
			existing, found, findErr := s.repo.FindPurchase(ctx, params.UserUID, params.ProductID)
			if findErr != nil || !found {
				return nil, false, ErrAlreadyOwned
			}
			return existing, false, ErrAlreadyOwned
		}
		return nil, false, fmt.Errorf("failed to create purchase: %w", err)
	}

	s.log.Info("recorded new purchase",
		slog.String("user_uid", created.UserUID),
		slog.String("product_id", created.ProductID))
	return created, true, nil
}

// Owns сообщает, содержит ли реестр пару (userUID, productID).
func (s *Service) Owns(ctx context.Context, userUID, productID string) (bool, error) {
	_, found, err := s.repo.FindPurchase(ctx, userUID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return found, nil
}

// List возвращает библиотеку пользователя.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Purchase, error) {
	return s.repo.ListPurchases(ctx, userUID)
}
