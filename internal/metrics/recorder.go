// Package metrics defines observability hooks for poll and checkout
// operations, with a Prometheus implementation and a no-op fallback.
package metrics

import "time"

// Recorder defines observability hooks for polling and checkout metrics.
// All methods must be safe on the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObservePollDuration(repository string, d time.Duration)
	IncPollDecision(repository, decision string)
	ObserveCheckoutDuration(repository string, d time.Duration, success bool)
	IncCheckoutResult(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePollDuration(string, time.Duration)           {}
func (NoopRecorder) IncPollDecision(string, string)                      {}
func (NoopRecorder) ObserveCheckoutDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncCheckoutResult(bool)                              {}
