// Package purchaselist обрабатывает получение списка покупок пользователя.
package purchaselist

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

// Service определяет интерфейс сервиса покупок.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Purchase, error)
}

// Handler обрабатывает запросы списка покупок.
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
// @Summary Список покупок
// @Description Возвращает все покупки текущего пользователя
// @Tags Purchases
// @Produce  json
// @Success 200 {object} response.Response "Список покупок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /purchases/list [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.list"
	log := h.log.With(slog.String("op", op))

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	purchases, err := h.service.List(r.Context(), identity.UID)
	if err != nil {
		log.Error("failed to list purchases", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("purchases listed",
		slog.String("user_uid", identity.UID),
		slog.Int("count", len(purchases)))

	render.JSON(w, r, response.OKWithData(purchases))
}
