package models

import "time"

// Product продаваемая единица контента (выпуск, арка, бандл).
// Сервис читает каталог, но не управляет им.
type Product struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	SubscriptionIncluded bool      `json:"subscription_included"`
	CreatedAt            time.Time `json:"created_at"`
}
