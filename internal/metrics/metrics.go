package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	kindLabel   = "kind"
	fromLabel   = "from_status"
	toLabel     = "to_status"
	reasonLabel = "reason"
)

var (
	// TransitionsTotal counts successfully applied transitions per kind and edge.
	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_transitions_total",
		Help: "Number of successfully applied status transitions",
	}, []string{kindLabel, fromLabel, toLabel})

	// TransitionsRejected counts refused transition attempts by rejection reason.
	TransitionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_transitions_rejected_total",
		Help: "Number of rejected status transition attempts",
	}, []string{kindLabel, reasonLabel})

	// EntitiesCreated counts entities created and persisted, per kind.
	EntitiesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_entities_created_total",
		Help: "Number of entities created",
	}, []string{kindLabel})

	// EscalationsTotal counts entities promoted by the escalation sweep.
	EscalationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_escalations_total",
		Help: "Number of entities escalated by the stale sweep",
	}, []string{kindLabel})
)

func init() {
	prometheus.MustRegister(
		TransitionsTotal,
		TransitionsRejected,
		EntitiesCreated,
		EscalationsTotal,
	)
}
