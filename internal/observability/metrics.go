package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voltai"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpErrors     *prometheus.CounterVec
	customerWrites *prometheus.CounterVec
	highUsage      prometheus.Counter
	bills          prometheus.Counter
	anomalyChecks  *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// NewMetrics initializes and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "route"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP requests that ended in an error response, by error code.",
		}, []string{"method", "route", "code"}),
		customerWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "customers",
			Name:      "writes_total",
			Help:      "Customer registry writes by operation.",
		}, []string{"operation"}),
		highUsage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "customers",
			Name:      "high_usage_alerts_total",
			Help:      "Writes that left a customer above the high usage threshold.",
		}),
		bills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "bills_calculated_total",
			Help:      "Bills calculated.",
		}),
		anomalyChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "anomaly_checks_total",
			Help:      "Anomaly checks by outcome.",
		}, []string{"anomaly"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "deliveries_total",
			Help:      "Event deliveries by notifier and result.",
		}, []string{"notifier", "result"}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.customerWrites,
		m.highUsage,
		m.bills,
		m.anomalyChecks,
		m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(method, route, code).Inc()
}

// RecordCustomerWrite counts a registry mutation.
func (m *Metrics) RecordCustomerWrite(operation string) {
	if m == nil {
		return
	}
	m.customerWrites.WithLabelValues(operation).Inc()
}

// RecordHighUsage counts a write that left a customer above the threshold.
func (m *Metrics) RecordHighUsage() {
	if m == nil {
		return
	}
	m.highUsage.Inc()
}

// RecordBill counts a calculated bill.
func (m *Metrics) RecordBill() {
	if m == nil {
		return
	}
	m.bills.Inc()
}

// RecordAnomalyCheck counts an anomaly check by outcome.
func (m *Metrics) RecordAnomalyCheck(anomaly bool) {
	if m == nil {
		return
	}
	m.anomalyChecks.WithLabelValues(strconv.FormatBool(anomaly)).Inc()
}

// RecordNotification counts an event delivery attempt.
func (m *Metrics) RecordNotification(notifier string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(notifier, result).Inc()
}
