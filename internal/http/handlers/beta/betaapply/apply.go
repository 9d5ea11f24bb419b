// Package betaapply обрабатывает подачу заявки на бета-доступ.
package betaapply

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

// Request описывает тело заявки на бета-доступ.
type Request struct {
	Email      string `json:"email" validate:"required,email"`
	Motivation string `json:"motivation" validate:"required"`
}

// Service определяет интерфейс сервиса бета-заявок.
type Service interface {
	Submit(ctx context.Context, userUID, email, motivation string) (*models.BetaApplication, error)
}

// Handler обрабатывает запросы подачи заявок.
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
// @Summary Подать заявку на бета-доступ
// @Description Создаёт заявку в статусе pending; отклонённую заявку открывает заново
// @Tags Beta
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и мотивация"
// @Success 201 {object} response.Response "Заявка создана"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Заявка уже существует"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /beta/apply [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.beta.apply"
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

	app, err := h.service.Submit(r.Context(), identity.UID, req.Email, req.Motivation)
	switch {
	case errors.Is(err, beta.ErrAlreadyApplied):
		log.Info("beta application already exists", slog.String("user_uid", identity.UID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("beta application already exists"))
		return
	case err != nil:
		log.Error("failed to submit beta application", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("beta application submitted", slog.String("user_uid", identity.UID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(app))
}
