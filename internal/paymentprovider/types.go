// Package paymentprovider реализует клиент платёжного провайдера.
// Сервис использует его только для чтения актуального состояния
// подписки по требованию; выставление счетов и вебхуки остаются
// на стороне провайдера.
package paymentprovider

import "time"

// Subscription состояние подписки в ответе провайдера.
type Subscription struct {
	ID                string     `json:"id"`
	UserUID           string     `json:"user_uid"`
	Status            string     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

// WebhookPayload тело события провайдера об изменении подписки.
type WebhookPayload struct {
	Event  string `json:"event"`
	Object struct {
		ID                string            `json:"id"`
		Status            string            `json:"status"`
		CurrentPeriodEnd  *time.Time        `json:"current_period_end,omitempty"`
		CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
		CreatedAt         *time.Time        `json:"created_at,omitempty"`
		Metadata          map[string]string `json:"metadata"`
	} `json:"object"`
}
