// Package metrics объявляет Prometheus-метрики сервиса. Метрики регистрируются
// в реестре по умолчанию и отдаются обработчиком promhttp на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

var (
	// GateRefusals отказы в действиях с правами записи, по причине.
	GateRefusals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_refusals_total",
		Help:      "Write actions refused by the authorization policy.",
	}, []string{"reason"})

	// IdentityUploads загрузки документов, по результату.
	IdentityUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_uploads_total",
		Help:      "Identity document uploads by result.",
	}, []string{"result"})

	// BlobCollisions коллизии имён в blob-хранилище.
	BlobCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_collisions_total",
		Help:      "Blob store name collisions observed on upload.",
	})

	// ReviewDecisions решения администраторов по итоговому статусу.
	ReviewDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_decisions_total",
		Help:      "Committed admin review decisions by identity status.",
	}, []string{"identity_status", "result"})

	// EntitlementChecks проверки доступа к контенту.
	EntitlementChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entitlement_checks_total",
		Help:      "Content access checks by outcome.",
	}, []string{"result"})

	// EntitlementGrants выданные права доступа по покупкам.
	EntitlementGrants = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entitlement_grants_total",
		Help:      "Purchase entitlements created from payment callbacks.",
	})

	// OutboxPublished публикации событий из outbox.
	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Outbox events handed to the broker by result.",
	}, []string{"result"})
)
