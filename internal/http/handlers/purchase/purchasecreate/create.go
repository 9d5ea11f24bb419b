// Package purchasecreate обрабатывает запись покупки продукта.
package purchasecreate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/http/response"
	"github.com/magabrotheeeer/entitlement-service/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-service/internal/metrics"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/services/purchase"
)

// Request описывает тело запроса на запись покупки.
type Request struct {
	ProductID string `json:"product_id" validate:"required"`
	PriceID   string `json:"price_id" validate:"required"`
}

// Service определяет интерфейс сервиса покупок.
type Service interface {
	Record(ctx context.Context, params purchase.RecordParams) (*models.Purchase, bool, error)
}

// Handler обрабатывает запросы записи покупок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Записать покупку
// @Description Идемпотентно записывает покупку продукта текущим пользователем
// @Tags Purchases
// @Accept  json
// @Produce  json
// @Param request body Request true "Продукт и цена"
// @Success 201 {object} response.Response "Покупка записана"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.Response "Продукт уже куплен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /purchases [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.create"
	log := h.log.With(slog.String("op", op))

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeValidation).Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		errors.As(err, &validateErr)
		log.Error("invalid request", sl.Err(err))
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeValidation).Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	result, _, err := h.service.Record(r.Context(), purchase.RecordParams{
		UserUID:   identity.UID,
		ProductID: req.ProductID,
		PriceID:   req.PriceID,
		Status:    models.PurchaseCompleted,
	})
	switch {
	case errors.Is(err, purchase.ErrAlreadyOwned):
		log.Info("purchase already recorded",
			slog.String("user_uid", identity.UID),
			slog.String("product_id", req.ProductID))
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeAlreadyOwned).Inc()
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.OKWithData(result))
		return
	case errors.Is(err, purchase.ErrValidation):
		log.Error("invalid purchase params", sl.Err(err))
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeValidation).Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid purchase params"))
		return
	case err != nil:
		log.Error("failed to record purchase", sl.Err(err))
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeStoreError).Inc()
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("purchase recorded",
		slog.String("user_uid", identity.UID),
		slog.String("product_id", req.ProductID))
	metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeCreated).Inc()

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(result))
}
