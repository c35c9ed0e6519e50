package qrwlock

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink receives the telemetry every guarded operation emits: counters
// for requests/acquisitions/releases/errors, gauges for in-flight
// waiters/holders, and timing observations for wait and hold duration.
// Labels are always {lock, op, task} and never carry user data.
type Sink interface {
	IncAwaitCounter(lock string, op Op, task string)
	IncAwaitGauge(lock string, op Op, task string)
	DecAwaitGauge(lock string, op Op, task string)
	ObserveAwaitDuration(lock string, op Op, task string, d time.Duration)

	IncHeldCounter(lock string, op Op, task string)
	IncHeldGauge(lock string, op Op, task string)
	DecHeldGauge(lock string, op Op, task string)
	ObserveHeldDuration(lock string, op Op, task string, d time.Duration)

	IncReleaseCounter(lock string, op Op, task string)
	IncErrorCounter(lock string, op Op, task string, kind Kind)
}

// noopSink discards every observation. It is the package default so
// that qrwlock has zero telemetry overhead until a caller opts in.
type noopSink struct{}

func (noopSink) IncAwaitCounter(string, Op, string) {}
func (noopSink) IncAwaitGauge(string, Op, string) {}
func (noopSink) DecAwaitGauge(string, Op, string) {}
func (noopSink) ObserveAwaitDuration(string, Op, string, time.Duration) {}
func (noopSink) IncHeldCounter(string, Op, string) {}
func (noopSink) IncHeldGauge(string, Op, string) {}
func (noopSink) DecHeldGauge(string, Op, string) {}
func (noopSink) ObserveHeldDuration(string, Op, string, time.Duration) {}
func (noopSink) IncReleaseCounter(string, Op, string) {}
func (noopSink) IncErrorCounter(string, Op, string, Kind) {}

// DefaultSink is used by every primitive that isn't explicitly given a
// Sink. Replace it (e.g. with NewPrometheusSink) once, at process
// startup, before any locks are used.
var DefaultSink Sink = noopSink{}

// prometheusSink implements Sink on top of prometheus/client_golang,
// matching the counter/gauge/histogram names the detector's telemetry
// contract specifies. Grounded on the teacher's own Prometheus usage
// (advanced/metrics/prometheus.go hand-rolled the exposition format
// this package instead imports the real client library for, per
// mauriciomferz-Gauth_go's pkg/metrics/prometheus.go CounterVec/
// GaugeVec/HistogramVec pattern).
type prometheusSink struct {
	awaitCounter  *prometheus.CounterVec
	awaitGauge    *prometheus.GaugeVec
	awaitDuration *prometheus.HistogramVec

	heldCounter  *prometheus.CounterVec
	heldGauge    *prometheus.GaugeVec
	heldDuration *prometheus.HistogramVec

	releaseCounter *prometheus.CounterVec
	errorCounter   *prometheus.CounterVec
}

// NewPrometheusSink creates and registers the qrwlock metric family
// against reg. Pass prometheus.DefaultRegisterer for the global
// registry.
func NewPrometheusSink(reg prometheus.Registerer) Sink {
	labels := []string{"lock", "op", "task"}

	s := &prometheusSink{
		awaitCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_await_counter", Help: "Lock acquisition attempts started.",
		}, labels),
		awaitGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lock_await_gauge", Help: "Lock acquisition attempts currently in flight.",
		}, labels),
		awaitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "lock_await_ms", Help: "Time spent waiting to acquire a lock, in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 14),
		}, labels),
		heldCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_held_counter", Help: "Lock acquisitions granted.",
		}, labels),
		heldGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lock_held_gauge", Help: "Locks currently held.",
		}, labels),
		heldDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "lock_held_ms", Help: "Time a lock was held before release, in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 18),
		}, labels),
		releaseCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_release_counter", Help: "Lock releases.",
		}, labels),
		errorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_error_count", Help: "Guarded operations that returned an error.",
		}, append(labels, "kind")),
	}

	reg.MustRegister(
		s.awaitCounter, s.awaitGauge, s.awaitDuration,
		s.heldCounter, s.heldGauge, s.heldDuration,
		s.releaseCounter, s.errorCounter,
	)
	return s
}

func (s *prometheusSink) IncAwaitCounter(lock string, op Op, task string) {
	s.awaitCounter.WithLabelValues(lock, op.String(), task).Inc()
}
func (s *prometheusSink) IncAwaitGauge(lock string, op Op, task string) {
	s.awaitGauge.WithLabelValues(lock, op.String(), task).Inc()
}
func (s *prometheusSink) DecAwaitGauge(lock string, op Op, task string) {
	s.awaitGauge.WithLabelValues(lock, op.String(), task).Dec()
}
func (s *prometheusSink) ObserveAwaitDuration(lock string, op Op, task string, d time.Duration) {
	s.awaitDuration.WithLabelValues(lock, op.String(), task).Observe(float64(d.Microseconds()) / 1000)
}
func (s *prometheusSink) IncHeldCounter(lock string, op Op, task string) {
	s.heldCounter.WithLabelValues(lock, op.String(), task).Inc()
}
func (s *prometheusSink) IncHeldGauge(lock string, op Op, task string) {
	s.heldGauge.WithLabelValues(lock, op.String(), task).Inc()
}
func (s *prometheusSink) DecHeldGauge(lock string, op Op, task string) {
	s.heldGauge.WithLabelValues(lock, op.String(), task).Dec()
}
func (s *prometheusSink) ObserveHeldDuration(lock string, op Op, task string, d time.Duration) {
	s.heldDuration.WithLabelValues(lock, op.String(), task).Observe(float64(d.Microseconds()) / 1000)
}
func (s *prometheusSink) IncReleaseCounter(lock string, op Op, task string) {
	s.releaseCounter.WithLabelValues(lock, op.String(), task).Inc()
}
func (s *prometheusSink) IncErrorCounter(lock string, op Op, task string, kind Kind) {
	s.errorCounter.WithLabelValues(lock, op.String(), task, kind.String()).Inc()
}
