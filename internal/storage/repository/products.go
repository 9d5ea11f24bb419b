package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// GetProduct возвращает продукт каталога по ID.
func (s *Storage) GetProduct(ctx context.Context, productID string) (*models.Product, bool, error) {
	const op = "storage.GetProduct"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, subscription_included, created_at
			  FROM products
			  WHERE id = $1`
	var p models.Product
	err := s.DB.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Title, &p.SubscriptionIncluded, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &p, true, nil
}

// IsSubscriptionIncluded сообщает, входит ли продукт в подписку.
// Неизвестный продукт считается не входящим.
func (s *Storage) IsSubscriptionIncluded(ctx context.Context, productID string) (bool, error) {
	p, found, err := s.GetProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return p.SubscriptionIncluded, nil
}
