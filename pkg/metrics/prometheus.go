package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	records     *prometheus.CounterVec
	rateFetch   *prometheus.CounterVec
	partitions  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on reg. Collectors already registered on reg
// are reused, so building several recorders against one registry is safe.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		records: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancypulse_records_total",
				Help: "Input records by normalization outcome",
			},
			[]string{"outcome"},
		)),
		rateFetch: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancypulse_rate_fetch_total",
				Help: "Monthly exchange rate lookups by result",
			},
			[]string{"result"},
		)),
		partitions: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancypulse_partitions_total",
				Help: "Year partition aggregation tasks by result",
			},
			[]string{"result"},
		)),
		errorsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancypulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		)),
		latency: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vacancypulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RecordOutcome counts one input record as accepted, rejected or unresolved.
func (r *Recorder) RecordOutcome(outcome string) {
	r.records.WithLabelValues(outcome).Inc()
}

// RecordRateFetch counts one monthly lookup as ok, cached or failed.
func (r *Recorder) RecordRateFetch(result string) {
	r.rateFetch.WithLabelValues(result).Inc()
}

// RecordPartition counts one partition task.
func (r *Recorder) RecordPartition(result string) {
	r.partitions.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordOutcome(string)          {}
func (Nop) RecordRateFetch(string)        {}
func (Nop) RecordPartition(string)        {}
func (Nop) RecordError(string)            {}
func (Nop) RecordLatency(string, float64) {}
