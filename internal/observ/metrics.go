package observ

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics counts sessions and resolved calls on a private registry.
// It satisfies session.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	sessionsTotal   *prometheus.CounterVec
	callsTotal      *prometheus.CounterVec
	rejectedTotal   *prometheus.CounterVec
	sessionCalls    prometheus.Histogram
	sessionDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callmodel",
			Subsystem: "session",
			Name:      "opened_total",
			Help:      "Sessions opened by module kind",
		}, []string{"module_kind"}),
		callsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callmodel",
			Subsystem: "session",
			Name:      "calls_total",
			Help:      "Calls recorded by call kind",
		}, []string{"kind"}),
		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callmodel",
			Subsystem: "session",
			Name:      "rejected_total",
			Help:      "Rejected resolutions by diagnostic code",
		}, []string{"code"}),
		sessionCalls: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "callmodel",
			Subsystem: "session",
			Name:      "calls",
			Help:      "Calls held by a session when it closed",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 64, 256},
		}),
		sessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "callmodel",
			Subsystem: "session",
			Name:      "lifetime_seconds",
			Help:      "Time from session open to close",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

func (m *Metrics) SessionOpened(moduleKind string) {
	m.sessionsTotal.WithLabelValues(moduleKind).Inc()
}

func (m *Metrics) CallRecorded(kind string) {
	m.callsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) CallRejected(code string) {
	m.rejectedTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) SessionClosed(calls int, age time.Duration) {
	m.sessionCalls.Observe(float64(calls))
	m.sessionDuration.Observe(age.Seconds())
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteText writes every metric in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
