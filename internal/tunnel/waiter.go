package tunnel

import (
	"time"

	"github.com/benbjohnson/clock"
)

// NoTimeout makes WaitUntil poll until the condition holds.
const NoTimeout time.Duration = 0

// MinPollInterval is the smallest sleep between two condition checks.
const MinPollInterval = 10 * time.Millisecond

// Poller repeatedly evaluates a condition on a clock.
type Poller struct {
	Clock clock.Clock
}

var defaultPoller = Poller{Clock: clock.New()}

// WaitUntil polls cond using the wall clock. See Poller.WaitUntil.
func WaitUntil(cond func() bool, interval, timeout time.Duration) bool {
	return defaultPoller.WaitUntil(cond, interval, timeout)
}

// WaitUntil checks cond immediately and then every interval until it holds.
// With a positive timeout the sleep shrinks as the deadline approaches so the
// last check lands at or before it, and false is returned once the deadline
// passes. A timeout <= 0 polls forever; cancellation has to be part of cond.
func (p Poller) WaitUntil(cond func() bool, interval, timeout time.Duration) bool {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}

	start := clk.Now()
	checks := 0
	for {
		if cond() {
			return true
		}
		checks++

		next := interval
		if timeout > 0 {
			remaining := timeout - clk.Since(start)
			if remaining <= 0 {
				return false
			}
			// Spread what is left over the checks still to come.
			if spread := remaining / time.Duration(checks+1); spread < next {
				next = spread
			}
			if next < MinPollInterval {
				next = MinPollInterval
			}
			if next > remaining {
				next = remaining
			}
		}
		clk.Sleep(next)
	}
}
