// Package metrics exposes Prometheus metrics for audits, platform queries and
// report storage. All metric names are prefixed with the service name.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Audit outcome labels
const (
	StatusSuccess     = "success"
	StatusValidation  = "validation"
	StatusRateLimited = "rate_limited"
	StatusAggregation = "aggregation"
	StatusCancelled   = "cancelled"
)

// Platform query outcome labels
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeMock     = "mock"
)

// Recorder records service metrics. A nil *Recorder is valid and records nothing,
// so components can be used without a registry in tests and CLIs.
type Recorder struct {
	serviceName string

	auditsTotal           *prometheus.CounterVec
	auditDuration         prometheus.Histogram
	auditsInProgress      prometheus.Gauge
	visibilityScore       prometheus.Histogram
	platformQueriesTotal  *prometheus.CounterVec
	platformQueryDuration *prometheus.HistogramVec
	hallucinationsTotal   *prometheus.CounterVec
	storeErrorsTotal      *prometheus.CounterVec
}

// New creates a Recorder and registers its metrics with reg.
// It panics if registration fails (e.g. duplicate metric names).
func New(serviceName string, reg prometheus.Registerer) *Recorder {
	r := &Recorder{serviceName: serviceName}

	r.auditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_audits_total", serviceName),
			Help: "Total audit runs by outcome",
		},
		[]string{"status"},
	)

	r.auditDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_audit_duration_seconds", serviceName),
			Help:    "Duration of audit runs",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	r.auditsInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_audits_in_progress", serviceName),
			Help: "Audit runs currently in progress",
		},
	)

	r.visibilityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_visibility_score", serviceName),
			Help:    "Distribution of computed visibility scores",
			Buckets: prometheus.LinearBuckets(20, 20, 4), // grade band edges
		},
	)

	r.platformQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_platform_queries_total", serviceName),
			Help: "Platform queries by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)

	r.platformQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_platform_query_duration_seconds", serviceName),
			Help:    "Duration of platform queries including the retry",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)

	r.hallucinationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_hallucination_alerts_total", serviceName),
			Help: "Hallucination alerts raised by severity",
		},
		[]string{"severity"},
	)

	r.storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_store_errors_total", serviceName),
			Help: "Report store failures by operation",
		},
		[]string{"operation"},
	)

	reg.MustRegister(
		r.auditsTotal,
		r.auditDuration,
		r.auditsInProgress,
		r.visibilityScore,
		r.platformQueriesTotal,
		r.platformQueryDuration,
		r.hallucinationsTotal,
		r.storeErrorsTotal,
	)

	return r
}

// StartAudit increments the in-progress gauge; pair with EndAudit
func (r *Recorder) StartAudit() {
	if r == nil {
		return
	}
	r.auditsInProgress.Inc()
}

// EndAudit records the outcome and duration of an audit run
func (r *Recorder) EndAudit(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.auditsInProgress.Dec()
	r.auditsTotal.WithLabelValues(status).Inc()
	r.auditDuration.Observe(duration.Seconds())
}

// RecordScore observes a computed visibility score
func (r *Recorder) RecordScore(score int) {
	if r == nil {
		return
	}
	r.visibilityScore.Observe(float64(score))
}

// RecordPlatformQuery records one dispatched platform query
func (r *Recorder) RecordPlatformQuery(platform, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.platformQueriesTotal.WithLabelValues(platform, outcome).Inc()
	r.platformQueryDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordHallucination counts one hallucination alert
func (r *Recorder) RecordHallucination(severity string) {
	if r == nil {
		return
	}
	r.hallucinationsTotal.WithLabelValues(severity).Inc()
}

// RecordStoreError counts one failed store operation
func (r *Recorder) RecordStoreError(operation string) {
	if r == nil {
		return
	}
	r.storeErrorsTotal.WithLabelValues(operation).Inc()
}
