package tunnel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tunnelctl"

// Metrics instruments tunnel sessions. A nil *Metrics records nothing.
type Metrics struct {
	ProcessesStarted  *prometheus.CounterVec
	ProcessFailures   *prometheus.CounterVec
	URLsDiscovered    *prometheus.CounterVec
	ForcedKills       *prometheus.CounterVec
	DiscoveryTimeouts prometheus.Counter
	SessionsRunning   prometheus.Gauge
	DiscoveryDuration prometheus.Histogram
}

// NewMetrics creates the session metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProcessesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "processes_started_total",
			Help:      "Tunnel commands launched, by tunnel name.",
		}, []string{"tunnel"}),
		ProcessFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "process_failures_total",
			Help:      "Tunnel commands that failed to launch or to stream output, by tunnel name.",
		}, []string{"tunnel"}),
		URLsDiscovered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "urls_discovered_total",
			Help:      "Public URLs extracted from tunnel output, by tunnel name.",
		}, []string{"tunnel"}),
		ForcedKills: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "forced_kills_total",
			Help:      "Tunnel commands killed after the grace period, by tunnel name.",
		}, []string{"tunnel"}),
		DiscoveryTimeouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "discovery_timeouts_total",
			Help:      "Sessions that published a partial URL list after the discovery timeout.",
		}),
		SessionsRunning: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_running",
			Help:      "Tunnel sessions currently running.",
		}),
		DiscoveryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "discovery_duration_seconds",
			Help:      "Time from session start until the URL list was published.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
	}
}

func (m *Metrics) processStarted(name string) {
	if m != nil {
		m.ProcessesStarted.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) processFailed(name string) {
	if m != nil {
		m.ProcessFailures.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) urlDiscovered(name string) {
	if m != nil {
		m.URLsDiscovered.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) forcedKill(name string) {
	if m != nil {
		m.ForcedKills.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) discoveryTimeout() {
	if m != nil {
		m.DiscoveryTimeouts.Inc()
	}
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.SessionsRunning.Inc()
	}
}

func (m *Metrics) sessionStopped() {
	if m != nil {
		m.SessionsRunning.Dec()
	}
}

func (m *Metrics) published(since time.Duration) {
	if m != nil {
		m.DiscoveryDuration.Observe(since.Seconds())
	}
}
