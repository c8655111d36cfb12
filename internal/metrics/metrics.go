package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// OpenOccurrences is the number of unresolved occurrences by priority bucket (all, critical).
	OpenOccurrences = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vigil_open_occurrences",
			Help: "Number of unresolved occurrences",
		},
		[]string{"priority"},
	)

	// ActiveRounds is the number of started or in-progress rounds.
	ActiveRounds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_active_rounds",
			Help: "Number of rounds currently started or in progress",
		},
	)

	// ActiveShifts is the number of active shifts.
	ActiveShifts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_active_shifts",
			Help: "Number of shifts currently active",
		},
	)

	// OccurrencesCreated counts reported occurrences by type.
	OccurrencesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_occurrences_created_total",
			Help: "Total number of occurrences reported",
		},
		[]string{"type"},
	)

	// AuditWriteFailures counts audit entries that could not be stored.
	AuditWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_audit_write_failures_total",
			Help: "Total number of audit log writes that failed",
		},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, OpenOccurrences, ActiveRounds, ActiveShifts, OccurrencesCreated, AuditWriteFailures)
	})
}

// RecordRequest records duration and count for an HTTP request. route must be
// a bounded label such as the matched route pattern, never the raw URL path.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

// SetDomainGauges publishes the point-in-time counts computed by the scheduler.
func SetDomainGauges(open, criticalOpen, activeRounds, activeShifts int) {
	OpenOccurrences.WithLabelValues("all").Set(float64(open))
	OpenOccurrences.WithLabelValues("critical").Set(float64(criticalOpen))
	ActiveRounds.Set(float64(activeRounds))
	ActiveShifts.Set(float64(activeShifts))
}

// IncOccurrencesCreated increments the created counter for typ.
func IncOccurrencesCreated(typ string) {
	OccurrencesCreated.WithLabelValues(typ).Inc()
}

// IncAuditWriteFailures increments the audit failure counter.
func IncAuditWriteFailures() {
	AuditWriteFailures.Inc()
}
