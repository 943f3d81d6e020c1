// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Normalization metrics
	EventsNormalized  prometheus.Counter
	EventsRejected    *prometheus.CounterVec
	DuplicatesDropped prometheus.Counter

	// Series metrics
	SeriesPointsBuilt *prometheus.CounterVec
	SeriesBuildTime   prometheus.Histogram

	// Analysis metrics
	MarketsAnalyzed     *prometheus.CounterVec
	TradersScored       *prometheus.CounterVec
	AnalysisDuration    *prometheus.HistogramVec
	PositionCacheHits   prometheus.Counter
	PositionCacheMisses prometheus.Counter
	ReportsGenerated    prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the Prometheus default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "polymarket_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Normalization metrics
		EventsNormalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "events_normalized_total",
			Help:      "Total number of raw trades accepted as canonical events",
		}),
		EventsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "events_rejected_total",
			Help:      "Total number of raw trades rejected by offending field",
		}, []string{"field"}),
		DuplicatesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "duplicates_dropped_total",
			Help:      "Total number of exact duplicate trades collapsed",
		}),

		// Series metrics
		SeriesPointsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "points_built_total",
			Help:      "Total number of series samples reconstructed by fill policy",
		}, []string{"fill_policy"}),
		SeriesBuildTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "build_duration_seconds",
			Help:      "Series reconstruction duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Analysis metrics
		MarketsAnalyzed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "markets_analyzed_total",
			Help:      "Total number of market analyses by status",
		}, []string{"status"}),
		TradersScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "traders_scored_total",
			Help:      "Total number of trader strategy reports by state",
		}, []string{"state"}),
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis phase duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"phase"}),
		PositionCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attribution",
			Name:      "position_cache_hits_total",
			Help:      "Total number of position cache hits",
		}),
		PositionCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attribution",
			Name:      "position_cache_misses_total",
			Help:      "Total number of position cache misses",
		}),
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of store call errors",
		}, []string{"store", "operation"}),

		// Health metrics
		LastSuccessfulAnalysis: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful market analysis",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordNormalization records the outcome of one normalizer pass.
func RecordNormalization(accepted, duplicates int, rejectedFields []string) {
	DefaultMetrics.EventsNormalized.Add(float64(accepted))
	DefaultMetrics.DuplicatesDropped.Add(float64(duplicates))
	for _, field := range rejectedFields {
		if field == "" {
			field = "record"
		}
		DefaultMetrics.EventsRejected.WithLabelValues(field).Inc()
	}
}

// RecordSeriesBuilt records a reconstructed series.
func RecordSeriesBuilt(fillPolicy string, points int, duration time.Duration) {
	DefaultMetrics.SeriesPointsBuilt.WithLabelValues(fillPolicy).Add(float64(points))
	DefaultMetrics.SeriesBuildTime.Observe(duration.Seconds())
}

// RecordMarketAnalyzed records a finished market analysis.
func RecordMarketAnalyzed(status string) {
	DefaultMetrics.MarketsAnalyzed.WithLabelValues(status).Inc()
	if status == "success" {
		DefaultMetrics.LastSuccessfulAnalysis.SetToCurrentTime()
	}
}

// RecordTraderScored records one strategy report by state.
func RecordTraderScored(state string) {
	DefaultMetrics.TradersScored.WithLabelValues(state).Inc()
}

// RecordAnalysisPhase records the duration of an analysis phase.
func RecordAnalysisPhase(phase string, duration time.Duration) {
	DefaultMetrics.AnalysisDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordPositionCache records a position cache lookup.
func RecordPositionCache(hit bool) {
	if hit {
		DefaultMetrics.PositionCacheHits.Inc()
		return
	}
	DefaultMetrics.PositionCacheMisses.Inc()
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordStoreCall records a store call duration and error.
func RecordStoreCall(store, operation string, start time.Time, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(store, operation).Inc()
	}
}
