package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal      *prometheus.CounterVec
	commandsTotal     *prometheus.CounterVec
	subscribers       prometheus.Gauge
	signalsDetected   *prometheus.GaugeVec
	broadcastDuration prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptointel_source_fetches_total",
				Help: "Upstream fetches by source and result",
			},
			[]string{"source", "result"},
		),
		commandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptointel_subscriber_commands_total",
				Help: "Subscriber commands by name",
			},
			[]string{"command"},
		),
		subscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cryptointel_subscribers",
				Help: "Currently connected subscribers",
			},
		),
		signalsDetected: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cryptointel_signals_detected",
				Help: "Signals emitted by the last detection pass, by kind",
			},
			[]string{"kind"},
		),
		broadcastDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cryptointel_broadcast_duration_seconds",
				Help:    "Duration of one broadcast tick",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordFetch records one upstream fetch attempt.
func (r *Recorder) RecordFetch(source, result string) {
	r.fetchesTotal.WithLabelValues(source, result).Inc()
}

// RecordCommand records one subscriber command.
func (r *Recorder) RecordCommand(command string) {
	r.commandsTotal.WithLabelValues(command).Inc()
}

// SetSubscribers records the current subscriber count.
func (r *Recorder) SetSubscribers(n int) {
	r.subscribers.Set(float64(n))
}

// RecordSignals records per-kind signal counts for a detection pass.
func (r *Recorder) RecordSignals(kind string, count int) {
	r.signalsDetected.WithLabelValues(kind).Set(float64(count))
}

// RecordBroadcastDuration records one broadcast tick duration in seconds.
func (r *Recorder) RecordBroadcastDuration(seconds float64) {
	r.broadcastDuration.Observe(seconds)
}
