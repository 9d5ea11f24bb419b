// Package refresh обрабатывает обновление состояния подписки по
// требованию: актуальный статус запрашивается у платёжного провайдера
// и сохраняется в хранилище.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/http/response"
	"github.com/magabrotheeeer/entitlement-service/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// Service определяет интерфейс трекера подписок.
type Service interface {
	Refresh(ctx context.Context, userUID string) (models.SubscriptionStatus, error)
}

// Handler обрабатывает запросы обновления подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Обновить состояние подписки
// @Description Запрашивает актуальное состояние у платёжного провайдера и сохраняет его
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Актуальный статус подписки"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера или хранилища"
// @Router /subscriptions/refresh [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.refresh"
	log := h.log.With(slog.String("op", op))

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status, err := h.service.Refresh(r.Context(), identity.UID)
	if err != nil {
		log.Error("failed to refresh subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("subscription refreshed",
		slog.String("user_uid", identity.UID),
		slog.String("status", string(status)))

	render.JSON(w, r, response.OKWithData(map[string]string{"status": string(status)}))
}
