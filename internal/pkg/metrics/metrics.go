package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fraud_review"

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	WebhookRequests *prometheus.CounterVec
	WebhookDuration prometheus.Histogram
	Decisions       *prometheus.CounterVec
	OrderActions    *prometheus.CounterVec
	CaseJobs        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhookRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Inbound case update callbacks by outcome",
		}, []string{"outcome"}),
		WebhookDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_duration_seconds",
			Help:      "Time spent handling an inbound case update",
			Buckets:   prometheus.DefBuckets,
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Decision engine verdicts",
		}, []string{"decision"}),
		OrderActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_actions_total",
			Help:      "Approve and cancel transitions by result",
		}, []string{"action", "result"}),
		CaseJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "case_jobs_total",
			Help:      "Case creation jobs by result",
		}, []string{"result"}),
	}

	reg.MustRegister(m.WebhookRequests, m.WebhookDuration, m.Decisions, m.OrderActions, m.CaseJobs)
	return m
}

// NewNop returns collectors registered on a throwaway registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveWebhook records one handled callback
func (m *Metrics) ObserveWebhook(outcome string, started time.Time) {
	m.WebhookRequests.WithLabelValues(outcome).Inc()
	m.WebhookDuration.Observe(time.Since(started).Seconds())
}

// RecordDecision counts a verdict
func (m *Metrics) RecordDecision(decision string) {
	m.Decisions.WithLabelValues(decision).Inc()
}

// RecordOrderAction counts an approve or cancel attempt
func (m *Metrics) RecordOrderAction(action string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.OrderActions.WithLabelValues(action, result).Inc()
}

// RecordCaseJob counts a processed case creation job
func (m *Metrics) RecordCaseJob(result string) {
	m.CaseJobs.WithLabelValues(result).Inc()
}
