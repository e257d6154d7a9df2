// Package metrics provides Prometheus metrics for the videprinter goal feed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics - what really matters for a goal feed
	goalsEmitted      prometheus.Counter
	duplicatesSkipped prometheus.Counter
	eventsDiscarded   prometheus.Counter
	pollTicks         prometheus.Counter
	pollErrors        prometheus.Counter
	quietSkips        prometheus.Counter
	pollDuration      prometheus.Histogram

	// Upstream provider metrics
	providerRequests prometheus.Counter
	providerErrors   prometheus.Counter
	quotaRemaining   prometheus.Gauge
	breakerState     *prometheus.GaugeVec

	// Enrichment metrics
	enrichmentHits   prometheus.Counter
	enrichmentMisses prometheus.Counter
	enrichmentErrors prometheus.Counter
	rosterPlayers    prometheus.Gauge
	rosterTeams      prometheus.Gauge

	// Delivery metrics
	subscriberCount prometheus.Gauge
	replaySize      prometheus.Gauge
	persistErrors   prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "videprinter",
		subsystem:        "feed",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.goalsEmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_emitted_total",
		Help:      "Total number of goal events published to subscribers",
	})
	m.duplicatesSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicates_skipped_total",
		Help:      "Total number of goal events skipped as duplicates",
	})
	m.eventsDiscarded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_discarded_total",
		Help:      "Total number of raw events discarded during normalization",
	})
	m.pollTicks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "poll_ticks_total",
		Help:      "Total number of completed poll ticks",
	})
	m.pollErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "poll_errors_total",
		Help:      "Total number of poll ticks that ended with an error",
	})
	m.quietSkips = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quiet_skips_total",
		Help:      "Total number of poll ticks skipped during quiet hours",
	})
	m.pollDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "poll_duration_ms",
		Help:      "Poll tick duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.providerRequests = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_requests_total",
		Help:      "Total number of external provider requests initiated",
	})
	m.providerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_errors_total",
		Help:      "Total number of failed provider requests",
	})
	m.quotaRemaining = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quota_remaining",
		Help:      "External requests remaining today (-1 when unbounded)",
	})
	m.breakerState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	m.enrichmentHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_hits_total",
		Help:      "Total number of goal events annotated with roster matches",
	})
	m.enrichmentMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_misses_total",
		Help:      "Total number of goal events with no roster match",
	})
	m.enrichmentErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_errors_total",
		Help:      "Total number of enrichment failures (event passed through)",
	})
	m.rosterPlayers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_players_loaded",
		Help:      "Number of player entries in the roster index",
	})
	m.rosterTeams = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_teams_loaded",
		Help:      "Number of goalkeeper team entries in the roster index",
	})

	m.subscriberCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subscribers",
		Help:      "Number of live subscribers",
	})
	m.replaySize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_size",
		Help:      "Number of events currently held in the replay buffer",
	})
	m.persistErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Total number of failed persistence writes",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current allocated heap memory in bytes",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// Pipeline helpers.

func RecordGoalEmitted() {
	globalManager.goalsEmitted.Inc()
}

func RecordDuplicateSkipped() {
	globalManager.duplicatesSkipped.Inc()
}

func RecordEventDiscarded() {
	globalManager.eventsDiscarded.Inc()
}

func RecordPollTick() {
	globalManager.pollTicks.Inc()
}

func RecordPollError() {
	globalManager.pollErrors.Inc()
}

func RecordQuietSkip() {
	globalManager.quietSkips.Inc()
}

func RecordPollDuration(durationMs float64) {
	globalManager.pollDuration.Observe(durationMs)
}

// Provider helpers.

func RecordProviderRequest() {
	globalManager.providerRequests.Inc()
}

func RecordProviderError() {
	globalManager.providerErrors.Inc()
}

func UpdateQuotaRemaining(remaining int) {
	globalManager.quotaRemaining.Set(float64(remaining))
}

func UpdateBreakerState(name string, state float64) {
	globalManager.breakerState.WithLabelValues(name).Set(state)
}

// Enrichment helpers.

func RecordEnrichmentHit() {
	globalManager.enrichmentHits.Inc()
}

func RecordEnrichmentMiss() {
	globalManager.enrichmentMisses.Inc()
}

func RecordEnrichmentError() {
	globalManager.enrichmentErrors.Inc()
}

func UpdateRosterLoaded(players, teams int) {
	globalManager.rosterPlayers.Set(float64(players))
	globalManager.rosterTeams.Set(float64(teams))
}

// Delivery helpers.

func UpdateSubscriberCount(count int) {
	globalManager.subscriberCount.Set(float64(count))
}

func UpdateReplaySize(size int) {
	globalManager.replaySize.Set(float64(size))
}

func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// HTTP helpers.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// System helpers.

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
