package models

import "time"

// SubscriptionStatus статус подписки в терминах платёжного провайдера.
type SubscriptionStatus string

// Статусы подписки, приходящие от провайдера.
const (
	SubscriptionNone              SubscriptionStatus = ""
	SubscriptionIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionTrialing          SubscriptionStatus = "trialing"
	SubscriptionActive            SubscriptionStatus = "active"
	SubscriptionPastDue           SubscriptionStatus = "past_due"
	SubscriptionCanceled          SubscriptionStatus = "canceled"
	SubscriptionUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionPaused            SubscriptionStatus = "paused"
)

// GrantsAccess сообщает, открывает ли статус доступ к контенту,
// входящему в подписку.
func (s SubscriptionStatus) GrantsAccess() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// Valid проверяет, что статус входит в известный набор провайдера.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionIncomplete, SubscriptionIncompleteExpired, SubscriptionTrialing,
		SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled,
		SubscriptionUnpaid, SubscriptionPaused:
		return true
	}
	return false
}

// Subscription актуальное состояние подписки пользователя.
// На пользователя существует не более одной действующей записи,
// при конфликте побеждает запись с более поздним UpdatedAt.
type Subscription struct {
	UserUID           string             `json:"user_uid"`
	Status            SubscriptionStatus `json:"status"`
	CurrentPeriodEnd  *time.Time         `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
