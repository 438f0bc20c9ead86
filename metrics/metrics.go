// Package metrics exposes session and round counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memory-match/game"
)

const namespace = "memory_match"

// Recorder implements game.TelemetrySink.
type Recorder struct {
	SessionsActive  prometheus.Gauge
	RoundsStarted   prometheus.Counter
	RoundsCompleted *prometheus.CounterVec
	Flips           *prometheus.CounterVec
	RoundDuration   prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of running game sessions",
		}),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Total number of rounds dealt",
		}),
		RoundsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Total number of rounds that reached game over, by winner",
		}, []string{"winner"}),
		Flips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flips_total",
			Help:      "Card flips by outcome",
		}, []string{"outcome"}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Time from deal to game over",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8),
		}),
	}

	reg.MustRegister(
		r.SessionsActive,
		r.RoundsStarted,
		r.RoundsCompleted,
		r.Flips,
		r.RoundDuration,
	)
	return r
}

func (r *Recorder) SessionStarted(string) {
	r.SessionsActive.Inc()
}

func (r *Recorder) SessionEnded(string) {
	r.SessionsActive.Dec()
}

func (r *Recorder) RoundStarted(string, uint64) {
	r.RoundsStarted.Inc()
}

func (r *Recorder) CardFlipped(_ string, kind game.OutcomeKind) {
	r.Flips.WithLabelValues(kind.String()).Inc()
}

func (r *Recorder) RoundFinished(_ string, result game.RoundResult, d time.Duration) {
	r.RoundsCompleted.WithLabelValues(result.Winner.String()).Inc()
	r.RoundDuration.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ game.TelemetrySink = (*Recorder)(nil)
