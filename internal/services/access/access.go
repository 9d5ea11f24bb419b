// Package access реализует точку принятия решений о доступе: собирает
// состояния из трекеров и реестра покупок и передаёт их чистому
// резолверу. Сам никогда не пишет — только читает.
package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/entitlement-service/internal/entitlement"
	"github.com/magabrotheeeer/entitlement-service/internal/metrics"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// BetaProvider отдаёт статус бета-заявки пользователя.
type BetaProvider interface {
	GetStatus(ctx context.Context, userUID string) (models.BetaStatus, error)
}

// SubscriptionProvider отдаёт последний известный статус подписки.
type SubscriptionProvider interface {
	GetStatus(ctx context.Context, userUID string) (models.SubscriptionStatus, error)
}

// OwnershipProvider проверяет владение продуктом по реестру покупок.
type OwnershipProvider interface {
	Owns(ctx context.Context, userUID, productID string) (bool, error)
}

// ProductPolicyProvider сообщает, входит ли продукт в подписку.
type ProductPolicyProvider interface {
	IsSubscriptionIncluded(ctx context.Context, productID string) (bool, error)
}

// Service собирает входы резолвера и выносит вердикт.
type Service struct {
	beta          BetaProvider
	subscriptions SubscriptionProvider
	ownership     OwnershipProvider
	products      ProductPolicyProvider
	policy        entitlement.Policy
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(beta BetaProvider, subscriptions SubscriptionProvider,
	ownership OwnershipProvider, products ProductPolicyProvider,
	policy entitlement.Policy, log *slog.Logger) *Service {
	return &Service{
		beta:          beta,
		subscriptions: subscriptions,
		ownership:     ownership,
		products:      products,
		policy:        policy,
		log:           log,
	}
}

// Check выносит вердикт доступа identity к ресурсу. Загружаются только
// состояния, нужные для данного вида ресурса; ошибка хранилища
// возвращается как ошибка, а не превращается в отказ.
func (s *Service) Check(ctx context.Context, identity *models.Identity, resource entitlement.Resource) (entitlement.Verdict, error) {
	in := entitlement.Input{
		Identity: identity,
		Resource: resource,
		Policy:   s.policy,
	}

	// Анонимный запрос решается без обращений к хранилищу.
	if identity != nil && identity.UID != "" {
		switch resource.Kind {
		case entitlement.ResourceBetaPortal:
			betaStatus, err := s.beta.GetStatus(ctx, identity.UID)
			if err != nil {
				return entitlement.Verdict{}, fmt.Errorf("failed to load beta status: %w", err)
			}
			in.Beta = betaStatus

		case entitlement.ResourceProduct:
			owns, err := s.ownership.Owns(ctx, identity.UID, resource.ProductID)
			if err != nil {
				return entitlement.Verdict{}, fmt.Errorf("failed to load ownership: %w", err)
			}
			in.OwnsProduct = owns

			if !owns {
				subStatus, err := s.subscriptions.GetStatus(ctx, identity.UID)
				if err != nil {
					return entitlement.Verdict{}, fmt.Errorf("failed to load subscription status: %w", err)
				}
				in.Subscription = subStatus

				included, err := s.products.IsSubscriptionIncluded(ctx, resource.ProductID)
				if err != nil {
					return entitlement.Verdict{}, fmt.Errorf("failed to load product policy: %w", err)
				}
				in.SubscriptionIncluded = included
			}
		}
	}

	verdict := entitlement.Resolve(in)
	metrics.VerdictsTotal.WithLabelValues(string(resource.Kind), string(verdict.Decision)).Inc()

	s.log.Debug("resolved access verdict",
		slog.String("resource", string(resource.Kind)),
		slog.String("decision", string(verdict.Decision)))
	return verdict, nil
}
