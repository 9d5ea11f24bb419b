// Package metrics регистрирует счётчики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VerdictsTotal считает вынесенные вердикты по виду ресурса и решению.
var VerdictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "entitlement_verdicts_total",
		Help: "Access verdicts by resource kind and decision.",
	},
	[]string{"resource", "decision"},
)

// PurchasesTotal считает исходы записи покупок.
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "purchase_records_total",
		Help: "Purchase recording outcomes.",
	},
	[]string{"outcome"},
)

// Исходы записи покупки для метки outcome.
const (
	OutcomeCreated      = "created"
	OutcomeAlreadyOwned = "already_owned"
	OutcomeValidation   = "validation_error"
	OutcomeStoreError   = "store_error"
)
