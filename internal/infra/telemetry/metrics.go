package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AdmissionMetrics counts admission-control outcomes.
type AdmissionMetrics struct {
	Decisions    *prometheus.CounterVec
	Unidentified *prometheus.CounterVec
}

// NewAdmissionMetrics registers admission counters with the provided
// registerer (or the default one when nil).
func NewAdmissionMetrics(reg prometheus.Registerer) *AdmissionMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &AdmissionMetrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indigo",
			Subsystem: "admission",
			Name:      "decisions_total",
			Help:      "Admission decisions partitioned by scope and outcome.",
		}, []string{"scope", "outcome"}),
		Unidentified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indigo",
			Subsystem: "admission",
			Name:      "unidentified_total",
			Help:      "Requests admitted fail-open because no identifier could be resolved.",
		}, []string{"scope"}),
	}
}
