// Package webhook принимает события платёжного провайдера об
// изменении подписок.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/entitlement-service/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/paymentprovider"
	"github.com/magabrotheeeer/entitlement-service/internal/services/subscription"
)

// Service определяет интерфейс трекера подписок.
type Service interface {
	SyncFromProvider(ctx context.Context, ev subscription.Event) error
}

// Handler обрабатывает вебхуки провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// Проверка подписи webhook (X-Api-Signature)
func (h *Handler) verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Применяет событие об изменении подписки; подпись обязательна
// @Tags Subscriptions
// @Accept  json
// @Success 200 "Событие применено или проигнорировано"
// @Failure 400 "Невалидное тело события"
// @Failure 401 "Неверная подпись"
// @Failure 500 "Ошибка применения события"
// @Router /subscriptions/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(h.webhookSecret, body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload paymentprovider.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Обрабатываем только события подписок
	const (
		SubscriptionCreated = "customer.subscription.created"
		SubscriptionUpdated = "customer.subscription.updated"
		SubscriptionDeleted = "customer.subscription.deleted"
	)

	switch strings.ToLower(payload.Event) {
	case SubscriptionCreated, SubscriptionUpdated, SubscriptionDeleted:
		ev := subscription.Event{
			UserUID:           payload.Object.Metadata["user_uid"],
			Status:            models.SubscriptionStatus(payload.Object.Status),
			CurrentPeriodEnd:  payload.Object.CurrentPeriodEnd,
			CancelAtPeriodEnd: payload.Object.CancelAtPeriodEnd,
		}
		if payload.Object.CreatedAt != nil {
			ev.OccurredAt = *payload.Object.CreatedAt
		} else {
			ev.OccurredAt = time.Now()
		}
		if err := h.service.SyncFromProvider(r.Context(), ev); err != nil {
			if errors.Is(err, subscription.ErrInvalidEvent) {
				log.Error("invalid subscription event", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			log.Error("failed to sync subscription event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		log.Info("ignored webhook event", slog.String("event", payload.Event))
	}

	log.Info("webhook processed successfully",
		slog.String("event", payload.Event),
		slog.String("subscription_id", payload.Object.ID))
	w.WriteHeader(http.StatusOK)
}
