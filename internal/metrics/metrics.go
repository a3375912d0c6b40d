// Package metrics exposes Prometheus metrics for compliance scoring, the
// notification scheduler and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every touchline metric. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	complianceLights *prometheus.CounterVec

	passesTotal       prometheus.Counter
	passDuration      prometheus.Histogram
	candidatesTotal   prometheus.Counter
	suppressedTotal   prometheus.Counter
	deliveriesTotal   *prometheus.CounterVec
	expiredTotal      prometheus.Counter
	logWriteFailures  prometheus.Counter
	ruleFailures      *prometheus.CounterVec
	lastPassUnix      prometheus.Gauge
	lastPassLocalHour prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a Manager registered on its own registry unless
// WithRegistry supplies one.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "touchline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	f := promauto.With(m.registry)

	m.complianceLights = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "compliance",
		Name:      "results_total",
		Help:      "Compliance results computed, by traffic light.",
	}, []string{"light"})

	m.passesTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "passes_total",
		Help:      "Notification scheduler passes run.",
	})
	m.passDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "pass_duration_seconds",
		Help:      "Wall time of one notification pass.",
		Buckets:   m.histogramBuckets,
	})
	m.candidatesTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "candidates_total",
		Help:      "Notifications generated and not suppressed by the sent log.",
	})
	m.suppressedTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "suppressed_total",
		Help:      "Notifications dropped because they were already sent today.",
	})
	m.deliveriesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "deliveries_total",
		Help:      "Push delivery attempts, by outcome.",
	}, []string{"outcome"})
	m.expiredTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "expired_subscriptions_total",
		Help:      "Subscriptions removed after the push service reported them gone.",
	})
	m.logWriteFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "log_write_failures_total",
		Help:      "Failed writes of the notification sent log.",
	})
	m.ruleFailures = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "rule_failures_total",
		Help:      "Rule data fetches that failed, by rule.",
	}, []string{"rule"})
	m.lastPassUnix = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "last_pass_timestamp_seconds",
		Help:      "Unix time of the last completed pass.",
	})
	m.lastPassLocalHour = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notifications",
		Name:      "last_pass_local_hour",
		Help:      "Local hour the last pass used for window decisions.",
	})

	m.httpRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, by method and status code.",
	}, []string{"method", "code"})
	m.httpRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   m.histogramBuckets,
	}, []string{"method"})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) off() bool {
	return m == nil || !m.enabled
}

// ObserveCompliance counts one computed compliance light.
func (m *Manager) ObserveCompliance(light string) {
	if m.off() {
		return
	}
	m.complianceLights.WithLabelValues(light).Inc()
}

// PassStats summarizes one notification pass for recording.
type PassStats struct {
	Candidates int
	Suppressed int
	Expired    int
	LocalHour  int
	Duration   time.Duration
	Finished   time.Time
}

// ObservePass records the totals of a finished notification pass.
func (m *Manager) ObservePass(s PassStats) {
	if m.off() {
		return
	}
	m.passesTotal.Inc()
	m.passDuration.Observe(s.Duration.Seconds())
	m.candidatesTotal.Add(float64(s.Candidates))
	m.suppressedTotal.Add(float64(s.Suppressed))
	m.expiredTotal.Add(float64(s.Expired))
	m.lastPassUnix.Set(float64(s.Finished.Unix()))
	m.lastPassLocalHour.Set(float64(s.LocalHour))
}

// ObserveDelivery counts one push delivery attempt.
func (m *Manager) ObserveDelivery(outcome string) {
	if m.off() {
		return
	}
	m.deliveriesTotal.WithLabelValues(outcome).Inc()
}

func (m *Manager) ObserveRuleFailure(rule string) {
	if m.off() {
		return
	}
	m.ruleFailures.WithLabelValues(rule).Inc()
}

func (m *Manager) ObserveLogWriteFailure() {
	if m.off() {
		return
	}
	m.logWriteFailures.Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Manager) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if m.off() {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
