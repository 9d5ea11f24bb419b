// Package betareview обрабатывает решение ревьюера по бета-заявке.
package betareview

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
	"github.com/magabrotheeeer/entitlement-service/internal/models"
	"github.com/magabrotheeeer/entitlement-service/internal/services/beta"
)

// Request описывает тело решения по заявке.
type Request struct {
	UserUID string `json:"user_uid" validate:"required"`
	Approve *bool  `json:"approve" validate:"required"`
}

// Service определяет интерфейс сервиса бета-заявок.
type Service interface {
	Review(ctx context.Context, reviewerUID, userUID string, approve bool) (models.BetaStatus, error)
}

// Handler обрабатывает запросы ревью заявок.
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
// @Summary Решение по бета-заявке
// @Description Одобряет или отклоняет pending-заявку; доступно только админским ролям
// @Tags Beta
// @Accept  json
// @Produce  json
// @Param request body Request true "UID заявителя и решение"
// @Success 200 {object} response.Response "Итоговый статус заявки"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Pending-заявка не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /beta/review [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.beta.review"
	log := h.log.With(slog.String("op", op))

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	if !identity.Role.IsAdmin() {
		log.Warn("review denied for non-admin role",
			slog.String("user_uid", identity.UID),
			slog.String("role", string(identity.Role)))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("admin role required"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		errors.As(err, &validateErr)
		log.Error("invalid request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	status, err := h.service.Review(r.Context(), identity.UID, req.UserUID, *req.Approve)
	switch {
	case errors.Is(err, beta.ErrNotFound):
		log.Info("pending application not found", slog.String("user_uid", req.UserUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("pending beta application not found"))
		return
	case err != nil:
		log.Error("failed to review beta application", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("beta application reviewed",
		slog.String("user_uid", req.UserUID),
		slog.String("status", string(status)))
	render.JSON(w, r, response.OKWithData(map[string]string{"status": string(status)}))
}
