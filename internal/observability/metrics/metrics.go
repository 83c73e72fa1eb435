package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters/histograms for the assessment pipeline.
type TriageMetrics struct {
	assessmentsTotal *prometheus.CounterVec
	assessLatency    *prometheus.HistogramVec
	auditFailures    prometheus.Counter
	activeSessions   prometheus.Gauge
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetsupport",
			Subsystem: "triage",
			Name:      "assessments_total",
			Help:      "Total message assessments",
		}, []string{"level", "intervention", "degraded"}),
		assessLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vetsupport",
			Subsystem: "triage",
			Name:      "assessment_latency_seconds",
			Help:      "Latency of synchronous message assessments",
			Buckets:   prometheus.DefBuckets,
		}, []string{"level"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vetsupport",
			Subsystem: "triage",
			Name:      "audit_emit_failures_total",
			Help:      "Audit records that failed to reach a sink",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vetsupport",
			Subsystem: "triage",
			Name:      "active_sessions",
			Help:      "Conversation windows currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.assessmentsTotal, m.assessLatency, m.auditFailures, m.activeSessions)
	return m
}

func (m *TriageMetrics) ObserveAssessment(level, intervention string, degraded bool, seconds float64) {
	if m == nil {
		return
	}
	flag := "false"
	if degraded {
		flag = "true"
	}
	m.assessmentsTotal.WithLabelValues(level, intervention, flag).Inc()
	m.assessLatency.WithLabelValues(level).Observe(seconds)
}

func (m *TriageMetrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

func (m *TriageMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
