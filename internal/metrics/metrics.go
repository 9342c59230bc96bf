package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vaultIndexer/internal/entity"
)

// Metrics holds Prometheus counters for the projection pipeline.
type Metrics struct {
	logsProcessed   prometheus.Counter
	entitiesSaved   *prometheus.CounterVec
	decodeFailures  prometheus.Counter
	blocksProcessed prometheus.Counter
	errors          prometheus.Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// Init initializes global metrics on the default registry (idempotent).
func Init() *Metrics {
	once.Do(func() {
		metrics = New(prometheus.DefaultRegisterer)
	})
	return metrics
}

// New builds counters and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_indexer_logs_processed_total",
			Help: "Total number of raw logs read",
		}),
		entitiesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_indexer_entities_saved_total",
			Help: "Total number of entities saved, by kind",
		}, []string{"kind"}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_indexer_decode_failures_total",
			Help: "Total number of logs that failed to decode",
		}),
		blocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_indexer_blocks_processed_total",
			Help: "Total number of blocks committed",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_indexer_errors_total",
			Help: "Total number of errors encountered",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.logsProcessed,
			m.entitiesSaved,
			m.decodeFailures,
			m.blocksProcessed,
			m.errors,
		)
	}
	return m
}

// LogsProcessed increments the logs processed counter.
func (m *Metrics) LogsProcessed() {
	if m != nil {
		m.logsProcessed.Inc()
	}
}

// EntitySaved increments the saved counter for kind.
func (m *Metrics) EntitySaved(kind entity.Kind) {
	if m != nil {
		m.entitiesSaved.WithLabelValues(string(kind)).Inc()
	}
}

// DecodeFailures increments the decode failures counter.
func (m *Metrics) DecodeFailures() {
	if m != nil {
		m.decodeFailures.Inc()
	}
}

// BlocksProcessed increments the blocks processed counter.
func (m *Metrics) BlocksProcessed() {
	if m != nil {
		m.blocksProcessed.Inc()
	}
}

// Errors increments the errors counter.
func (m *Metrics) Errors() {
	if m != nil {
		m.errors.Inc()
	}
}

// Handler returns an HTTP handler for /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
