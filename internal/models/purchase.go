package models

import "time"

// PurchaseStatus статус записи о покупке.
type PurchaseStatus string

// Статусы покупки. Возвраты моделируются отдельным статусом,
// запись никогда не удаляется.
const (
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

// Purchase запись о владении продуктом. Пара (UserUID, ProductID)
// уникальна на уровне хранилища: пользователь владеет продуктом не
// более одного раза независимо от числа попыток покупки.
type Purchase struct {
	ID        string         `json:"id"`
	UserUID   string         `json:"user_uid"`
	ProductID string         `json:"product_id"`
	PriceID   string         `json:"price_id"`
	Status    PurchaseStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
