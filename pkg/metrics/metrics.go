package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SinkMetrics records append outcomes against the tabular sink.
type SinkMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewSinkMetrics registers the sink metrics on the provided registerer.
func NewSinkMetrics(reg prometheus.Registerer) *SinkMetrics {
	if reg == nil {
		return &SinkMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sheet_append_duration_seconds",
		Help:    "Duration of sheet append calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"origin"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_append_success",
		Help: "Successful sheet appends.",
	}, []string{"origin"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_append_failure",
		Help: "Failed sheet appends.",
	}, []string{"origin"})
	reg.MustRegister(duration, success, failure)
	return &SinkMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named origin (form/order).
func (s *SinkMetrics) ObserveDuration(origin string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(origin)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named origin.
func (s *SinkMetrics) IncSuccess(origin string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(origin)).Inc()
}

// IncFailure increments the failure counter for the named origin.
func (s *SinkMetrics) IncFailure(origin string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(origin)).Inc()
}

func normalizeLabel(origin string) string {
	if origin == "" {
		return "unknown"
	}
	return origin
}
