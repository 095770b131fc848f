package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActiveSimulations         prometheus.Gauge
	SimulationsStarted        prometheus.Counter
	SimulationsEnded          *prometheus.CounterVec
	MessagesProcessed         prometheus.Counter
	MessageProcessingDuration prometheus.Histogram
	LLMRequestDuration        *prometheus.HistogramVec
	QualityScore              prometheus.Histogram
	SentimentScore            prometheus.Histogram
	CallsTransferred          *prometheus.CounterVec
	EventsPublished           *prometheus.CounterVec
	StreamEventsProcessed     *prometheus.CounterVec
}

// NewMetrics registers all collectors with reg. The server passes its own
// prometheus.Registry, which also carries the Go and process collectors and
// backs /metrics; tests pass a fresh registry each.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)

	return &Metrics{
		ActiveSimulations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "active_simulations",
			Help: "Current number of active call simulations",
		}),
		SimulationsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "simulations_started_total",
			Help: "Total number of call simulations started",
		}),
		SimulationsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simulations_ended_total",
			Help: "Total number of call simulations ended",
		}, []string{"reason"}),
		MessagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "simulation_messages_processed_total",
			Help: "Total number of caller messages processed",
		}),
		MessageProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulation_message_duration_seconds",
			Help:    "Time taken to process a caller message including the model reply",
			Buckets: prometheus.DefBuckets,
		}),
		LLMRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Time taken for language model requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		QualityScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulation_quality_score",
			Help:    "Simulated call quality score after each processed message",
			Buckets: scoreBuckets,
		}),
		SentimentScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulation_sentiment_score",
			Help:    "Caller sentiment score after each processed message",
			Buckets: scoreBuckets,
		}),
		CallsTransferred: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_transfers_total",
			Help: "Total number of calls transferred to an agent",
		}, []string{"agent_id"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_events_published_total",
			Help: "Total number of lifecycle events handed to the event stream",
		}, []string{"status"}),
		StreamEventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_stream_events_processed_total",
			Help: "Total number of lifecycle events consumed from the event stream",
		}, []string{"type", "status"}),
	}
}
