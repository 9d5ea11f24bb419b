// Package check обрабатывает проверку доступа к ресурсу.
package check

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-service/internal/entitlement"
	"github.com/magabrotheeeer/entitlement-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-service/internal/http/response"
	"github.com/magabrotheeeer/entitlement-service/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// Service определяет интерфейс точки принятия решений о доступе.
type Service interface {
	Check(ctx context.Context, identity *models.Identity, resource entitlement.Resource) (entitlement.Verdict, error)
}

// Handler обрабатывает запросы проверки доступа.
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
// @Summary Проверить доступ к ресурсу
// @Description Выносит вердикт доступа текущего пользователя к запрошенному ресурсу
// @Tags Access
// @Produce  json
// @Param resource query string true "Вид ресурса: admin_area, beta_portal, product, public"
// @Param product_id query string false "ID продукта для resource=product"
// @Param restricted query string false "true для служебных разделов админки"
// @Success 200 {object} response.Response "Вердикт allow или redirect"
// @Failure 400 {object} response.ErrorResponse "Неизвестный вид ресурса"
// @Failure 403 {object} response.Response "Вердикт deny с причиной"
// @Failure 500 {object} response.ErrorResponse "Ошибка чтения состояния"
// @Router /access/check [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.check"
	log := h.log.With(slog.String("op", op))

	resource, ok := parseResource(r)
	if !ok {
		log.Error("unknown resource kind", slog.String("resource", r.URL.Query().Get("resource")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown resource kind"))
		return
	}
	if resource.Kind == entitlement.ResourceProduct && resource.ProductID == "" {
		log.Error("product resource without product_id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("product_id is required for product resources"))
		return
	}

	identity := middlewarectx.IdentityFromContext(r.Context())

	verdict, err := h.service.Check(r.Context(), identity, resource)
	if err != nil {
		log.Error("failed to resolve access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	if verdict.Decision == entitlement.DecisionDeny {
		w.WriteHeader(http.StatusForbidden)
	}
	render.JSON(w, r, response.OKWithData(verdict))
}

func parseResource(r *http.Request) (entitlement.Resource, bool) {
	q := r.URL.Query()
	kind := entitlement.ResourceKind(q.Get("resource"))
	switch kind {
	case entitlement.ResourceAdminArea, entitlement.ResourceBetaPortal,
		entitlement.ResourceProduct, entitlement.ResourcePublic:
	default:
		return entitlement.Resource{}, false
	}
	return entitlement.Resource{
		Kind:       kind,
		ProductID:  q.Get("product_id"),
		Restricted: q.Get("restricted") == "true",
	}, true
}
