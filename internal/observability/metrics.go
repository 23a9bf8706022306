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
	// Ingestion metrics
	ArticlesFetched   *prometheus.CounterVec
	ArticlesStored    *prometheus.CounterVec
	ArticlesDuplicate *prometheus.CounterVec
	ArticlesSkipped   *prometheus.CounterVec
	PriceBarsStored   prometheus.Counter
	ProviderErrors    *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec
	RateLimitWait     *prometheus.HistogramVec
	StreamMessages    prometheus.Counter

	// Analysis metrics
	CorrelationRowsWritten prometheus.Counter
	SnapshotsBuilt         *prometheus.CounterVec
	ScoringFallbacks       prometheus.Counter

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulPipeline  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "news_impact_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ArticlesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "articles_fetched_total",
			Help:      "Total number of raw articles returned by providers",
		}, []string{"provider"}),
		ArticlesStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "articles_stored_total",
			Help:      "Total number of new news items stored",
		}, []string{"provider"}),
		ArticlesDuplicate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "articles_duplicate_total",
			Help:      "Total number of articles ignored as already stored",
		}, []string{"provider"}),
		ArticlesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "articles_skipped_total",
			Help:      "Total number of malformed articles skipped by the adapter",
		}, []string{"provider"}),
		PriceBarsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "price_bars_stored_total",
			Help:      "Total number of daily price bars upserted",
		}),
		ProviderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "provider_errors_total",
			Help:      "Total number of provider call failures",
		}, []string{"provider"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "provider_call_duration_seconds",
			Help:      "Provider call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		RateLimitWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for a provider class token",
			Buckets:   []float64{0.001, 0.01, 0.1, 1, 5, 15, 60},
		}, []string{"class"}),
		StreamMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "stream_messages_total",
			Help:      "Total number of news messages received from the websocket stream",
		}),

		CorrelationRowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "correlation_rows_written_total",
			Help:      "Total number of daily correlation rows upserted",
		}),
		SnapshotsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "sector_snapshots_total",
			Help:      "Total number of sector snapshots built",
		}, []string{"sector"}),
		ScoringFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "sentiment_fallbacks_total",
			Help:      "Total number of sentiment scoring failures degraded to neutral",
		}),

		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by phase and status",
		}, []string{"phase", "status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline phase duration",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}, []string{"phase"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulIngestion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of the last successful ingestion",
		}),
		LastSuccessfulPipeline: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of the last successful full run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordArticles records the outcome of one provider fetch for a symbol.
func RecordArticles(provider string, fetched, stored, duplicate, skipped int) {
	DefaultMetrics.ArticlesFetched.WithLabelValues(provider).Add(float64(fetched))
	DefaultMetrics.ArticlesStored.WithLabelValues(provider).Add(float64(stored))
	DefaultMetrics.ArticlesDuplicate.WithLabelValues(provider).Add(float64(duplicate))
	DefaultMetrics.ArticlesSkipped.WithLabelValues(provider).Add(float64(skipped))
	if stored > 0 {
		DefaultMetrics.LastSuccessfulIngestion.Set(float64(time.Now().Unix()))
	}
}

// RecordPriceBars increments the price bars stored counter.
func RecordPriceBars(n int) {
	DefaultMetrics.PriceBarsStored.Add(float64(n))
}

// RecordProviderCall records provider latency and, on failure, an error.
func RecordProviderCall(provider string, seconds float64, err error) {
	DefaultMetrics.ProviderLatency.WithLabelValues(provider).Observe(seconds)
	if err != nil {
		DefaultMetrics.ProviderErrors.WithLabelValues(provider).Inc()
	}
}

// RecordRateLimitWait records time spent waiting on a limiter.
func RecordRateLimitWait(class string, seconds float64) {
	DefaultMetrics.RateLimitWait.WithLabelValues(class).Observe(seconds)
}

// RecordStreamMessage increments the websocket message counter.
func RecordStreamMessage() {
	DefaultMetrics.StreamMessages.Inc()
}

// RecordCorrelationRows increments the correlation rows counter.
func RecordCorrelationRows(n int) {
	DefaultMetrics.CorrelationRowsWritten.Add(float64(n))
}

// RecordSnapshot increments the snapshots counter for a sector.
func RecordSnapshot(sector string) {
	DefaultMetrics.SnapshotsBuilt.WithLabelValues(sector).Inc()
}

// RecordScoringFallback increments the sentiment fallback counter.
func RecordScoringFallback() {
	DefaultMetrics.ScoringFallbacks.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
	if phase == "full" && status == "success" {
		DefaultMetrics.LastSuccessfulPipeline.Set(float64(time.Now().Unix()))
	}
}
