package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	pollDuration     *prom.HistogramVec
	pollDecisions    *prom.CounterVec
	checkoutDuration *prom.HistogramVec
	checkoutResults  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.pollDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "storewatch",
			Name:      "poll_duration_seconds",
			Help:      "Duration of repository polling operations",
			Buckets:   prom.DefBuckets,
		}, []string{"repository"})
		pr.pollDecisions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "storewatch",
			Name:      "poll_decisions_total",
			Help:      "Polling decisions by repository and outcome",
		}, []string{"repository", "decision"})
		pr.checkoutDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "storewatch",
			Name:      "checkout_duration_seconds",
			Help:      "Duration of checkout operations",
			Buckets:   prom.DefBuckets,
		}, []string{"repository", "result"})
		pr.checkoutResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "storewatch",
			Name:      "checkout_results_total",
			Help:      "Checkout results by success/failure",
		}, []string{"result"})
		reg.MustRegister(pr.pollDuration, pr.pollDecisions, pr.checkoutDuration, pr.checkoutResults)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePollDuration(repository string, d time.Duration) {
	if p == nil || p.pollDuration == nil {
		return
	}
	p.pollDuration.WithLabelValues(repository).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPollDecision(repository, decision string) {
	if p == nil || p.pollDecisions == nil {
		return
	}
	p.pollDecisions.WithLabelValues(repository, decision).Inc()
}

func (p *PrometheusRecorder) ObserveCheckoutDuration(repository string, d time.Duration, success bool) {
	if p == nil || p.checkoutDuration == nil {
		return
	}
	p.checkoutDuration.WithLabelValues(repository, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCheckoutResult(success bool) {
	if p == nil || p.checkoutResults == nil {
		return
	}
	p.checkoutResults.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
