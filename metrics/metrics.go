// Package metrics holds the Prometheus collectors for scans and HTTP traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricScansTotal          = "wcag_scans_total"
	MetricScanDuration        = "wcag_scan_duration_seconds"
	MetricIssuesTotal         = "wcag_issues_total"
	MetricRuleFailures        = "wcag_rule_failures_total"
	MetricCacheLookups        = "wcag_cache_lookups_total"
	MetricHTTPRequestsTotal   = "http_requests_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
)

// Metrics contains the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	scansTotal          *prometheus.CounterVec
	scanDuration        *prometheus.HistogramVec
	issuesTotal         *prometheus.CounterVec
	ruleFailures        *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors. Call Register to expose them.
func New() *Metrics {
	return &Metrics{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricScansTotal,
				Help: "Total number of scans by snapshot source and outcome",
			},
			[]string{"source", "outcome"},
		),
		scanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricScanDuration,
				Help:    "Scan duration in seconds, snapshot acquisition included",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
			},
			[]string{"source"},
		),
		issuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricIssuesTotal,
				Help: "Total number of reported issues by rule and severity",
			},
			[]string{"rule", "severity"},
		),
		ruleFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRuleFailures,
				Help: "Total number of rule runs that failed and contributed no issues",
			},
			[]string{"rule"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCacheLookups,
				Help: "Report cache lookups by result",
			},
			[]string{"result"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.scansTotal,
		m.scanDuration,
		m.issuesTotal,
		m.ruleFailures,
		m.cacheLookups,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveScan records one finished scan.
func (m *Metrics) ObserveScan(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(source, outcome).Inc()
	m.scanDuration.WithLabelValues(source).Observe(d.Seconds())
}

// AddIssues adds n issues for rule at severity.
func (m *Metrics) AddIssues(rule, severity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.issuesTotal.WithLabelValues(rule, severity).Add(float64(n))
}

// IncRuleFailure counts a failed rule run.
func (m *Metrics) IncRuleFailure(rule string) {
	if m == nil {
		return
	}
	m.ruleFailures.WithLabelValues(rule).Inc()
}

// IncCache counts a cache lookup; hit selects the result label.
func (m *Metrics) IncCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
