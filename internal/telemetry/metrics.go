package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the experiment service
type Metrics struct {
	Exposures       *prometheus.CounterVec
	FailOpen        *prometheus.CounterVec
	Completions     *prometheus.CounterVec
	EventsRecorded  *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	ResultsSaved    *prometheus.CounterVec
	ActiveInModule  *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers the collectors once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			Exposures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_exposures_total",
					Help: "Layout lookups by module and served variant role",
				},
				[]string{"module", "variant", "first_exposure"},
			),
			FailOpen: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_fail_open_total",
					Help: "Layout lookups answered with the baseline configuration instead of a variant",
				},
				[]string{"reason"},
			),
			Completions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_completions_total",
					Help: "Completion reports by outcome",
				},
				[]string{"recorded"},
			),
			EventsRecorded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_events_total",
					Help: "Metric events by type and outcome",
				},
				[]string{"metric_type", "recorded"},
			),
			Transitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_lifecycle_transitions_total",
					Help: "Experiment status transitions",
				},
				[]string{"from", "to"},
			),
			ResultsSaved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_results_saved_total",
					Help: "Result snapshots written by winner",
				},
				[]string{"winner"},
			),
			ActiveInModule: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "abtest_active_experiment_id",
					Help: "Id of the active experiment per module, 0 when none",
				},
				[]string{"module"},
			),
			HTTPRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "abtest_http_requests_total",
					Help: "HTTP requests by route and status",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestTime: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "abtest_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})

	return sharedMetrics
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func (m *Metrics) RecordExposure(module string, variant string, firstExposure bool) {
	m.Exposures.WithLabelValues(module, variant, boolLabel(firstExposure)).Inc()
}

func (m *Metrics) RecordFailOpen(reason string) {
	m.FailOpen.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordCompletion(recorded bool) {
	m.Completions.WithLabelValues(boolLabel(recorded)).Inc()
}

func (m *Metrics) RecordEvent(metricType string, recorded bool) {
	m.EventsRecorded.WithLabelValues(metricType, boolLabel(recorded)).Inc()
}

func (m *Metrics) RecordTransition(from, to string) {
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordResultSaved(winner string) {
	m.ResultsSaved.WithLabelValues(winner).Inc()
}

func (m *Metrics) SetActiveExperiment(module string, id int64) {
	m.ActiveInModule.WithLabelValues(module).Set(float64(id))
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestTime.WithLabelValues(method, route).Observe(seconds)
}
