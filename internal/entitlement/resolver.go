// Package entitlement реализует чистую функцию вычисления вердикта
// доступа. Resolve не выполняет I/O: все состояния (роль, подписка,
// бета-заявка, владение продуктом) уже загружены вызывающей стороной.
package entitlement

import "github.com/magabrotheeeer/entitlement-service/internal/models"

// ResourceKind тип защищаемого ресурса.
type ResourceKind string

// Виды ресурсов, известные резолверу.
const (
	ResourceAdminArea  ResourceKind = "admin_area"
	ResourceBetaPortal ResourceKind = "beta_portal"
	ResourceProduct    ResourceKind = "product"
	ResourcePublic     ResourceKind = "public"
)

// Resource описывает запрошенный ресурс. Restricted помечает
// служебные разделы админки, открытые также для support/accountant.
type Resource struct {
	Kind       ResourceKind
	ProductID  string
	Restricted bool
}

// Decision итоговое решение по доступу.
type Decision string

// Возможные решения.
const (
	DecisionAllow    Decision = "allow"
	DecisionDeny     Decision = "deny"
	DecisionRedirect Decision = "redirect"
)

// Reason машиночитаемая причина отказа.
type Reason string

// Причины отказов. Отказ всегда отличим от системной ошибки:
// ошибка хранилища до резолвера не доходит.
const (
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonNotOwned         Reason = "not_owned"
)

// Target именованная цель перенаправления.
type Target string

// Цели перенаправлений.
const (
	TargetLogin        Target = "login"
	TargetBetaForm     Target = "beta_application_form"
	TargetBetaStatus   Target = "beta_status_page"
	TargetPurchasePage Target = "purchase_page"
)

// Verdict вердикт проверки доступа. Для Deny заполнена Reason,
// для Redirect — целевая страница. Deny по продукту дополнительно
// несёт Redirect на страницу покупки как подсказку клиенту.
type Verdict struct {
	Decision Decision `json:"decision"`
	Reason   Reason   `json:"reason,omitempty"`
	Redirect Target   `json:"redirect,omitempty"`
}

// Allowed сообщает, разрешён ли доступ.
func (v Verdict) Allowed() bool { return v.Decision == DecisionAllow }

// Policy настраиваемая часть правил: набор ролей, допущенных в
// служебные разделы админки.
type Policy struct {
	RestrictedAdminRoles []models.Role
}

// DefaultPolicy возвращает политику по умолчанию: служебные разделы
// открыты для support, accountant и администраторов.
func DefaultPolicy() Policy {
	return Policy{
		RestrictedAdminRoles: []models.Role{
			models.RoleSupport,
			models.RoleAccountant,
			models.RoleAdmin,
			models.RoleSuperAdmin,
		},
	}
}

func (p Policy) allowsRestricted(role models.Role) bool {
	for _, r := range p.RestrictedAdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Input собранное состояние для одного вычисления вердикта.
// Identity == nil означает неаутентифицированный запрос.
type Input struct {
	Identity             *models.Identity
	Resource             Resource
	Beta                 models.BetaStatus
	Subscription         models.SubscriptionStatus
	OwnsProduct          bool
	SubscriptionIncluded bool
	Policy               Policy
}

// Resolve вычисляет вердикт доступа. Правила применяются строго по
// порядку, первое сработавшее решает: аутентификация раньше роли,
// роль раньше состояния фич — так пользователь получает самое
// полезное указание (сначала "войдите", а не "не куплено").
func Resolve(in Input) Verdict {
	if in.Identity == nil || in.Identity.UID == "" {
		return Verdict{Decision: DecisionRedirect, Redirect: TargetLogin}
	}

	switch in.Resource.Kind {
	case ResourceAdminArea:
		if in.Resource.Restricted {
			if in.Policy.allowsRestricted(in.Identity.Role) {
				return Verdict{Decision: DecisionAllow}
			}
			return Verdict{Decision: DecisionDeny, Reason: ReasonInsufficientRole}
		}
		if in.Identity.Role.IsAdmin() {
			return Verdict{Decision: DecisionAllow}
		}
		return Verdict{Decision: DecisionDeny, Reason: ReasonInsufficientRole}

	case ResourceBetaPortal:
		switch in.Beta {
		case models.BetaApproved:
			return Verdict{Decision: DecisionAllow}
		case models.BetaPending, models.BetaRejected:
			return Verdict{Decision: DecisionRedirect, Redirect: TargetBetaStatus}
		default:
			return Verdict{Decision: DecisionRedirect, Redirect: TargetBetaForm}
		}

	case ResourceProduct:
		if in.OwnsProduct {
			return Verdict{Decision: DecisionAllow}
		}
		if in.Subscription.GrantsAccess() && in.SubscriptionIncluded {
			return Verdict{Decision: DecisionAllow}
		}
		return Verdict{
			Decision: DecisionDeny,
			Reason:   ReasonNotOwned,
			Redirect: TargetPurchasePage,
		}
	}

	// Публичный ресурс.
	return Verdict{Decision: DecisionAllow}
}
