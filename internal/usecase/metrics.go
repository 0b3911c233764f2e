package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline outcomes per stage and times each stage.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors on reg. A nil reg gives
// unregistered collectors, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resume",
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Pipeline stage executions by outcome.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "resume",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes, m.duration)
	}
	return m
}

func (m *Metrics) observe(stage string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = errorOutcome(err)
	}
	m.outcomes.WithLabelValues(stage, outcome).Inc()
	m.duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
