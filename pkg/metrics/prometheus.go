// Package metrics provides Prometheus metrics for the keyrace session service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Keystroke outcome label values.
const (
	KeystrokeCorrect   = "correct"
	KeystrokeIncorrect = "incorrect"
	KeystrokeRejected  = "rejected"
)

// Manager manages all Prometheus metrics for the keyrace service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Round lifecycle
	roundsStarted    prometheus.Counter
	roundLocks       prometheus.Counter
	resultsPublished prometheus.Counter
	currentRound     prometheus.Gauge

	// Scoring
	keystrokes       *prometheus.CounterVec
	completions      prometheus.Counter
	duplicateFinish  prometheus.Counter
	winnerScore      prometheus.Gauge
	scoreboardSize   prometheus.Gauge
	hostMigrations   prometheus.Counter
	sessionResets    prometheus.Counter
	participants     prometheus.Gauge
	connections      prometheus.Gauge
	droppedClients   prometheus.Counter
	broadcastsByType *prometheus.CounterVec

	// Command queue and session worker
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejections *prometheus.CounterVec
	commandLatency  *prometheus.HistogramVec
	commandErrors   *prometheus.CounterVec

	// Score store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "keyrace",
		subsystem:        "session",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.roundsStarted = m.counter("rounds_started_total", "Total number of rounds started by the host")
	m.roundLocks = m.counter("round_locks_total", "Total number of rounds locked by a first finisher")
	m.resultsPublished = m.counter("results_published_total", "Total number of round results broadcast")
	m.currentRound = m.gauge("current_round", "Current round number")

	m.keystrokes = m.counterVec("keystrokes_total", "Keystrokes received by outcome", "outcome")
	m.completions = m.counter("completions_total", "Completion signals scored")
	m.duplicateFinish = m.counter("completions_duplicate_total", "Completion signals ignored because the participant already submitted")
	m.winnerScore = m.gauge("winner_score", "Score of the current round leader")
	m.scoreboardSize = m.gauge("scoreboard_size", "Number of snapshots on the current round scoreboard")
	m.hostMigrations = m.counter("host_migrations_total", "Host role transfers after the host disconnected")
	m.sessionResets = m.counter("session_resets_total", "Full session resets after the last participant left")
	m.participants = m.gauge("participants", "Number of registered participants")
	m.connections = m.gauge("connections", "Number of open websocket connections")
	m.droppedClients = m.counter("dropped_clients_total", "Clients dropped because their outbox was full")
	m.broadcastsByType = m.counterVec("notifications_total", "Notifications emitted by type and audience", "type", "audience")

	m.queueSize = m.gauge("queue_size", "Commands waiting for the session worker")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the session command queue")
	m.queueRejections = m.counterVec("queue_rejections_total", "Commands rejected by the queue", "reason")
	m.commandLatency = m.histogramVec("command_latency_milliseconds", "Time spent applying a session command", "command")
	m.commandErrors = m.counterVec("command_errors_total", "Session commands that returned an error", "command", "error")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Score store operation latency", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Score store operation failures", "op")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRoundStarted increments the rounds counter and sets the current round gauge.
func RecordRoundStarted(round int) {
	globalManager.roundsStarted.Inc()
	globalManager.currentRound.Set(float64(round))
}

// UpdateCurrentRound sets the current round gauge, e.g. after a reset.
func UpdateCurrentRound(round int) {
	globalManager.currentRound.Set(float64(round))
}

// RecordRoundLocked increments the lock counter.
func RecordRoundLocked() {
	globalManager.roundLocks.Inc()
}

// RecordResultPublished increments the published results counter.
func RecordResultPublished() {
	globalManager.resultsPublished.Inc()
}

// RecordKeystroke counts a keystroke by outcome.
func RecordKeystroke(outcome string) {
	globalManager.keystrokes.WithLabelValues(outcome).Inc()
}

// RecordCompletion counts a scored completion signal.
func RecordCompletion() {
	globalManager.completions.Inc()
}

// RecordDuplicateCompletion counts an ignored repeat completion.
func RecordDuplicateCompletion() {
	globalManager.duplicateFinish.Inc()
}

// UpdateLeader sets the current leader score and scoreboard size.
func UpdateLeader(score, scoreboardSize int) {
	globalManager.winnerScore.Set(float64(score))
	globalManager.scoreboardSize.Set(float64(scoreboardSize))
}

// RecordHostMigration counts a host transfer.
func RecordHostMigration() {
	globalManager.hostMigrations.Inc()
}

// RecordSessionReset counts a full session reset.
func RecordSessionReset() {
	globalManager.sessionResets.Inc()
}

// UpdateParticipants sets the registered participants gauge.
func UpdateParticipants(count int) {
	globalManager.participants.Set(float64(count))
}

// UpdateConnections sets the open connections gauge.
func UpdateConnections(count int) {
	globalManager.connections.Set(float64(count))
}

// RecordDroppedClient counts a slow client dropped by the hub.
func RecordDroppedClient() {
	globalManager.droppedClients.Inc()
}

// RecordNotification counts an emitted notification.
func RecordNotification(kind, audience string) {
	globalManager.broadcastsByType.WithLabelValues(kind, audience).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejection counts a command that could not be enqueued.
func RecordQueueRejection(reason string) {
	globalManager.queueRejections.WithLabelValues(reason).Inc()
}

// RecordCommandLatency records how long the worker spent on a command.
func RecordCommandLatency(command string, latencyMs float64) {
	globalManager.commandLatency.WithLabelValues(command).Observe(latencyMs)
}

// RecordCommandError counts a command failure.
func RecordCommandError(command, errorType string) {
	globalManager.commandErrors.WithLabelValues(command, errorType).Inc()
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a store operation failure.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
