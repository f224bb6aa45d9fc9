package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksIngested   *prometheus.CounterVec
	barsResampled   *prometheus.CounterVec
	alertsTriggered *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_ticks_ingested_total",
				Help: "Total number of ticks ingested into the store",
			},
			[]string{"symbol"},
		),
		barsResampled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_bars_resampled_total",
				Help: "Total number of bars produced by resampling",
			},
			[]string{"timeframe"},
		),
		alertsTriggered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_alerts_triggered_total",
				Help: "Total number of alert triggers",
			},
			[]string{"alert"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pairscope_last_price",
				Help: "Last observed trade price per symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairscope_operation_latency_seconds",
				Help:    "Latency of core operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

func (r *Recorder) RecordTickIngested(symbol string) {
	r.ticksIngested.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordBarsResampled(tf string, n int) {
	r.barsResampled.WithLabelValues(tf).Add(float64(n))
}

func (r *Recorder) RecordAlertTriggered(name string) {
	r.alertsTriggered.WithLabelValues(name).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
