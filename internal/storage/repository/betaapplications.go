package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// GetBetaApplication возвращает заявку пользователя на бета-доступ.
func (s *Storage) GetBetaApplication(ctx context.Context, userUID string) (*models.BetaApplication, bool, error) {
	const op = "storage.GetBetaApplication"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, email, motivation, status, created_at, reviewed_at, reviewer_uid
			  FROM beta_applications
			  WHERE user_uid = $1`
	var app models.BetaApplication
	var reviewedAt sql.NullTime
	var reviewerUID sql.NullString
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&app.UserUID, &app.Email, &app.Motivation, &app.Status,
		&app.CreatedAt, &reviewedAt, &reviewerUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if reviewedAt.Valid {
		app.ReviewedAt = &reviewedAt.Time
	}
	if reviewerUID.Valid {
		app.ReviewerUID = &reviewerUID.String
	}
	return &app, true, nil
}

// CreateBetaApplication сохраняет новую заявку со статусом pending.
// Проигрыш гонки за первичный ключ user_uid отдаётся как
// ErrDuplicateBetaApplication.
func (s *Storage) CreateBetaApplication(ctx context.Context, app models.BetaApplication) (*models.BetaApplication, error) {
	const op = "storage.CreateBetaApplication"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO beta_applications (user_uid, email, motivation, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING created_at`
	err := s.DB.QueryRowContext(ctx, query,
		app.UserUID, app.Email, app.Motivation, app.Status).Scan(&app.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateBetaApplication)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &app, nil
}

// ReopenBetaApplication возвращает отклонённую заявку в pending с новой
// мотивацией и сбрасывает отметки ревью. Возвращает число изменённых строк.
func (s *Storage) ReopenBetaApplication(ctx context.Context, userUID, email, motivation string) (int, error) {
	const op = "storage.ReopenBetaApplication"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE beta_applications
			  SET email = $2, motivation = $3, status = 'pending',
			      reviewed_at = NULL, reviewer_uid = NULL
			  WHERE user_uid = $1 AND status = 'rejected'`
	result, err := s.DB.ExecContext(ctx, query, userUID, email, motivation)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateBetaStatus фиксирует решение ревьюера по заявке.
// Возвращает число изменённых строк.
func (s *Storage) UpdateBetaStatus(ctx context.Context, userUID string, status models.BetaStatus, reviewerUID string) (int, error) {
	const op = "storage.UpdateBetaStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE beta_applications
			  SET status = $2, reviewed_at = $3, reviewer_uid = $4
			  WHERE user_uid = $1 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, userUID, status, time.Now(), reviewerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
