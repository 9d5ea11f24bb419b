// Package betastatus обрабатывает запрос статуса бета-заявки.
package betastatus

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

// Service определяет интерфейс сервиса бета-заявок.
type Service interface {
	GetStatus(ctx context.Context, userUID string) (models.BetaStatus, error)
}

// Handler обрабатывает запросы статуса заявки.
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
// @Summary Статус бета-заявки
// @Description Возвращает статус заявки текущего пользователя; not_applied если заявки нет
// @Tags Beta
// @Produce  json
// @Success 200 {object} response.Response "Статус заявки"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /beta/status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.beta.status"
	log := h.log.With(slog.String("op", op))

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status, err := h.service.GetStatus(r.Context(), identity.UID)
	if err != nil {
		log.Error("failed to get beta status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]string{"status": string(status)}))
}
