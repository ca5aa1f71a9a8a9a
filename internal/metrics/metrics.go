// Package metrics records credential operation counts and latencies with
// Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/systmms/dskeyring/pkg/backend"
)

// Operation names used as the "operation" label.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpSelect = "select"
)

// Outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeNotFound      = "not_found"
	OutcomeRetrieval     = "retrieval_error"
	OutcomeSave          = "save_error"
	OutcomeNotSupported  = "not_supported"
	OutcomeUnknownFailed = "error"
)

// Recorder records credential operations. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them on reg. A nil reg
// leaves them unregistered. When reg already holds the collectors from an
// earlier recorder, the new recorder shares them.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		operations: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dskeyring_operations_total",
				Help: "Total number of credential operations by backend, operation and outcome",
			},
			[]string{"backend", "operation", "outcome"},
		)),
		duration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dskeyring_operation_duration_seconds",
				Help:    "Duration of credential operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"backend", "operation"},
		)),
	}
}

// register adds c to reg, returning the collector reg already holds for the
// same descriptor if there is one. Any other registration error panics, as
// with MustRegister.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Observe records one operation that started at start and ended with err.
func (r *Recorder) Observe(id backend.ID, operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(id.String(), operation, Outcome(err)).Inc()
	r.duration.WithLabelValues(id.String(), operation).Observe(time.Since(start).Seconds())
}

// Operations returns the operation counter.
func (r *Recorder) Operations() *prometheus.CounterVec {
	return r.operations
}

// Duration returns the latency histogram.
func (r *Recorder) Duration() *prometheus.HistogramVec {
	return r.duration
}

// Outcome classifies err into an outcome label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, backend.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, backend.ErrPasswordRetrieval):
		return OutcomeRetrieval
	case errors.Is(err, backend.ErrPasswordSave):
		return OutcomeSave
	case errors.Is(err, backend.ErrBackendNotSupported):
		return OutcomeNotSupported
	default:
		return OutcomeUnknownFailed
	}
}
