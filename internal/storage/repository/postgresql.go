// Package repository реализует хранилище данных на основе PostgreSQL
// для реестра покупок, состояний подписок и бета-заявок, а также
// чтения каталога продуктов.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrDuplicatePurchase возвращается из CreatePurchase, когда вставка
// проиграла гонку за ограничение уникальности (user_uid, product_id).
// Для вызывающей стороны это не сбой: запись уже существует.
var ErrDuplicatePurchase = errors.New("purchase already exists")

// ErrDuplicateBetaApplication возвращается из CreateBetaApplication,
// когда вставка проиграла гонку за первичный ключ user_uid:
// конкурентная подача успела создать заявку первой.
var ErrDuplicateBetaApplication = errors.New("beta application already exists")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных: таблица purchases
// с ограничением уникальности должна существовать до старта сервиса.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'purchases'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table purchases missing or query error: %w", err)
	}
	return nil
}
