package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObservePollDuration("Main", time.Second)
	r.IncPollDecision("Main", "no_changes")
	r.ObserveCheckoutDuration("Main", time.Second, true)
	r.IncCheckoutResult(false)
}

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncPollDecision("Main", "significant_changes")
	r.IncPollDecision("Main", "significant_changes")
	r.IncCheckoutResult(true)

	if got := testutil.ToFloat64(r.pollDecisions.WithLabelValues("Main", "significant_changes")); got != 2 {
		t.Errorf("expected 2 poll decisions, got %v", got)
	}
	if got := testutil.ToFloat64(r.checkoutResults.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 checkout success, got %v", got)
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObservePollDuration("Main", time.Second)
	r.IncPollDecision("Main", "no_changes")
	r.ObserveCheckoutDuration("Main", time.Second, false)
	r.IncCheckoutResult(true)
}
