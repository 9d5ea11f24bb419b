package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// FindPurchase возвращает запись о покупке пары (user_uid, product_id),
// если она есть. Отсутствие записи не является ошибкой.
func (s *Storage) FindPurchase(ctx context.Context, userUID, productID string) (*models.Purchase, bool, error) {
	const op = "storage.FindPurchase"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, product_id, price_id, status, created_at
			  FROM purchases
			  WHERE user_uid = $1 AND product_id = $2`
	var p models.Purchase
	err := s.DB.QueryRowContext(ctx, query, userUID, productID).Scan(
		&p.ID, &p.UserUID, &p.ProductID, &p.PriceID, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &p, true, nil
}

// CreatePurchase вставляет новую запись о покупке и возвращает её с
// заполненным created_at. Ограничение уникальности по (user_uid,
// product_id) — единственная точка сериализации конкурентных попыток:
// проигравшая вставка получает ErrDuplicatePurchase.
func (s *Storage) CreatePurchase(ctx context.Context, p models.Purchase) (*models.Purchase, error) {
	const op = "storage.CreatePurchase"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO purchases (id, user_uid, product_id, price_id, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING created_at`
	err := s.DB.QueryRowContext(ctx, query,
		p.ID, p.UserUID, p.ProductID, p.PriceID, p.Status).Scan(&p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicatePurchase)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// ListPurchases возвращает все покупки пользователя, свежие первыми.
func (s *Storage) ListPurchases(ctx context.Context, userUID string) ([]*models.Purchase, error) {
	const op = "storage.ListPurchases"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, product_id, price_id, status, created_at
			  FROM purchases
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.Purchase
	for rows.Next() {
		var item models.Purchase
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ProductID,
			&item.PriceID, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
