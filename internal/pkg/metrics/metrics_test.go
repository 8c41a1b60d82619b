package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveWebhook("ok", time.Now())
	m.ObserveWebhook("ok", time.Now())
	m.ObserveWebhook("unauthorized", time.Now())
	m.RecordDecision("approve")
	m.RecordOrderAction("cancel", nil)
	m.RecordOrderAction("approve", errors.New("boom"))
	m.RecordCaseJob("submitted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WebhookRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookRequests.WithLabelValues("unauthorized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderActions.WithLabelValues("cancel", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderActions.WithLabelValues("approve", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaseJobs.WithLabelValues("submitted")))
}

func TestNew_PanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
