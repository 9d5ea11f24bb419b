package models

import "time"

// BetaStatus статус заявки пользователя на бета-доступ.
type BetaStatus string

// Жизненный цикл заявки: отсутствие записи эквивалентно BetaNotApplied,
// терминальные статусы — approved и rejected, при этом rejected может
// вернуться в pending при повторной подаче.
const (
	BetaNotApplied BetaStatus = "not_applied"
	BetaPending    BetaStatus = "pending"
	BetaApproved   BetaStatus = "approved"
	BetaRejected   BetaStatus = "rejected"
)

// BetaApplication заявка пользователя на участие в бета-чтении.
type BetaApplication struct {
	UserUID     string     `json:"user_uid"`
	Email       string     `json:"email"`
	Motivation  string     `json:"motivation"`
	Status      BetaStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewerUID *string    `json:"reviewer_uid,omitempty"`
}

// BetaDecisionNotification сообщение для очереди уведомлений
// о решении по заявке.
type BetaDecisionNotification struct {
	UserUID  string     `json:"user_uid"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Status   BetaStatus `json:"status"`
}
