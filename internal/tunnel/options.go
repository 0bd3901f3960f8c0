package tunnel

import (
	"time"

	"tunnelctl/pkg/logging"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultTimeout bounds how long the aggregator waits for every URL.
	DefaultTimeout = 60 * time.Second
	// DefaultPollInterval is the interval of every readiness and completeness poll.
	DefaultPollInterval = time.Second
)

// SessionCallback receives the published URL list once per session.
type SessionCallback func(urls []DiscoveredURL)

// Option configures a Tunnel.
type Option func(*Tunnel)

// WithCheckLocalPort gates tunnel launch and URL collection on the local
// port condition. Enabled by default.
func WithCheckLocalPort(enabled bool) Option {
	return func(t *Tunnel) { t.checkLocalPort = enabled }
}

// WithPortCondition selects whether the gate waits for the port to become
// bound (default) or free.
func WithPortCondition(cond PortCondition) Option {
	return func(t *Tunnel) { t.portCondition = cond }
}

// WithDebug lowers the console level of the default logger to debug.
func WithDebug(debug bool) Option {
	return func(t *Tunnel) { t.debug = debug }
}

// WithTimeout bounds URL discovery. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(t *Tunnel) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithLogDir sets where tunnel_<name>.log files are written.
func WithLogDir(dir string) Option {
	return func(t *Tunnel) { t.logDir = dir }
}

// WithCallback registers the session callback.
func WithCallback(cb SessionCallback) Option {
	return func(t *Tunnel) { t.callback = cb }
}

// WithLogger replaces the console logger. Per-tunnel children derive from it.
func WithLogger(l *logging.Logger) Option {
	return func(t *Tunnel) { t.logger = l }
}

// WithMetrics records session metrics.
func WithMetrics(m *Metrics) Option {
	return func(t *Tunnel) { t.metrics = m }
}

// WithGracePeriod sets how long Stop waits after the graceful signal.
func WithGracePeriod(d time.Duration) Option {
	return func(t *Tunnel) {
		if d > 0 {
			t.grace = d
		}
	}
}

// WithPollInterval sets the interval of readiness and completeness polls,
// which is also the latency of cancellation.
func WithPollInterval(d time.Duration) Option {
	return func(t *Tunnel) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithClock drives all polling from clk.
func WithClock(clk clock.Clock) Option {
	return func(t *Tunnel) { t.poller = Poller{Clock: clk} }
}
