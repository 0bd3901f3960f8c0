package tunnel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"tunnelctl/pkg/logging"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Tunnel supervises a set of tunnel commands for one local port. It is idle
// until started, running until stopped, and may be started again after Stop.
type Tunnel struct {
	port           int
	checkLocalPort bool
	portCondition  PortCondition
	debug          bool
	timeout        time.Duration
	grace          time.Duration
	pollInterval   time.Duration
	logDir         string
	callback       SessionCallback
	logger         *logging.Logger
	metrics        *Metrics
	poller         Poller

	registry *Registry

	// lifecycle serialises start, stop and reset. Accessors that callbacks
	// may use while Stop joins the workers must not take it.
	lifecycle sync.Mutex
	running   atomic.Bool
	sessionID atomic.Pointer[string]
	startedAt time.Time
	portCheck bool

	urls urlList

	procMu    sync.Mutex
	processes []*process

	workers   sync.WaitGroup
	cancel    *Event
	completed *Event
}

// New returns an idle Tunnel for port. Tunnels are added with AddTunnel.
func New(port int, opts ...Option) *Tunnel {
	t := &Tunnel{
		port:           port,
		checkLocalPort: true,
		portCondition:  WaitPortBound,
		timeout:        DefaultTimeout,
		grace:          DefaultGracePeriod,
		pollInterval:   DefaultPollInterval,
		poller:         defaultPoller,
		registry:       &Registry{},
		cancel:         NewEvent(),
		completed:      NewEvent(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.logDir == "" {
		if wd, err := os.Getwd(); err == nil {
			t.logDir = wd
		} else {
			t.logDir = "."
		}
	}
	if t.logger == nil {
		level := logging.LevelInfo
		if t.debug {
			level = logging.LevelDebug
		}
		t.logger = logging.New(level, os.Stderr)
	}
	t.logger = t.logger.With("Tunnel")
	return t
}

// NewWithTunnels returns a Tunnel with defs registered. It fails without
// constructing anything if any definition is invalid.
func NewWithTunnels(port int, defs []Definition, opts ...Option) (*Tunnel, error) {
	registry, err := NewRegistry(defs...)
	if err != nil {
		return nil, err
	}
	t := New(port, opts...)
	t.registry = registry
	return t, nil
}

// AddTunnel registers one tunnel definition.
func (t *Tunnel) AddTunnel(def Definition) error {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()
	if t.running.Load() {
		return ErrAlreadyRunning
	}
	return t.registry.Add(def)
}

// Port returns the local port the tunnels forward to.
func (t *Tunnel) Port() int {
	return t.port
}

// Specs returns the registered tunnel specs in registration order.
func (t *Tunnel) Specs() []Spec {
	return t.registry.Specs()
}

// IsRunning reports whether a session is active.
func (t *Tunnel) IsRunning() bool {
	return t.running.Load()
}

// SessionID identifies the active session. It is empty while idle.
func (t *Tunnel) SessionID() string {
	if id := t.sessionID.Load(); id != nil {
		return *id
	}
	return ""
}

// URLs returns the URLs discovered so far, in discovery order.
func (t *Tunnel) URLs() []DiscoveredURL {
	return t.urls.snapshot()
}

// Done returns a channel that is closed once the session has published its
// URL list. The channel belongs to the current session.
func (t *Tunnel) Done() <-chan struct{} {
	return t.completed.Done()
}

// StartAsync starts a session and returns immediately. Workers wait for the
// local port first when the port check is enabled.
func (t *Tunnel) StartAsync() error {
	_, _, err := t.start(t.checkLocalPort)
	return err
}

// Start starts a session and blocks until the URL list is published or ctx
// is done. The port check is skipped for sessions started this way since the
// caller cannot bring its service up while blocked here. When ctx ends first
// the session is stopped and ctx.Err() is returned.
func (t *Tunnel) Start(ctx context.Context) error {
	completed, cancelled, err := t.start(false)
	if err != nil {
		return err
	}

	select {
	case <-completed:
		return nil
	case <-cancelled:
		return ErrNotRunning
	case <-ctx.Done():
		t.logger.Warn("Interrupt detected, stopping tunnel")
		if err := t.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
			return err
		}
		return ctx.Err()
	}
}

// Wait blocks until the active session publishes its URL list, the session
// is stopped, or ctx is done.
func (t *Tunnel) Wait(ctx context.Context) error {
	if !t.running.Load() {
		return ErrNotRunning
	}
	completed, cancelled := t.completed.Done(), t.cancel.Done()
	// The events are cleared only after running drops, so channels read
	// while still running belong to a live session.
	if !t.running.Load() {
		return ErrNotRunning
	}

	select {
	case <-completed:
		return nil
	case <-cancelled:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tunnel) start(portCheck bool) (completed, cancelled <-chan struct{}, err error) {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if t.running.Load() {
		return nil, nil, ErrAlreadyRunning
	}
	specs := t.registry.Specs()
	if len(specs) == 0 {
		return nil, nil, ErrNoTunnels
	}
	if err := os.MkdirAll(t.logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", t.logDir, err)
	}

	id := uuid.NewString()
	t.sessionID.Store(&id)
	t.startedAt = time.Now()
	t.portCheck = portCheck
	t.logger.Info("Tunnel started (session %s, %d tunnels, port %d)", id, len(specs), t.port)

	t.workers.Add(1)
	go t.aggregate(len(specs))

	for _, spec := range specs {
		t.workers.Add(1)
		go t.runWorker(spec)
	}

	t.running.Store(true)
	t.metrics.sessionStarted()
	return t.completed.Done(), t.cancel.Done(), nil
}

// Stop cancels the session, terminates every tunnel command, waits for all
// workers and resets the instance. Processes that ignore the graceful
// request are killed after the grace period.
func (t *Tunnel) Stop() error {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if !t.running.Load() {
		return ErrNotRunning
	}

	t.logger.Info("Stopping tunnel")
	t.cancel.Set()

	// Workers that register after this snapshot see the cancellation and
	// terminate their own process.
	t.procMu.Lock()
	procs := make([]*process, len(t.processes))
	copy(procs, t.processes)
	t.procMu.Unlock()

	errs := make([]error, len(procs))
	var g errgroup.Group
	for i, p := range procs {
		i, p := i, p
		g.Go(func() error {
			t.logger.Debug("Stopping %s (pid %d)", p.name, p.Pid())
			killed, err := p.terminate(t.grace)
			if killed {
				t.logger.Warn("%s did not exit within %s, killed", p.name, t.grace)
				t.metrics.forcedKill(p.name)
			}
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()
	if err := multierr.Combine(errs...); err != nil {
		t.logger.Error(err, "Errors while stopping tunnel processes")
	}

	t.logger.Debug("Waiting for tunnel workers")
	t.workers.Wait()

	t.metrics.sessionStopped()
	t.resetLocked()
	return nil
}

// Reset clears all session state. It fails while a session is running.
func (t *Tunnel) Reset() error {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()
	if t.running.Load() {
		return ErrAlreadyRunning
	}
	t.resetLocked()
	return nil
}

func (t *Tunnel) resetLocked() {
	t.running.Store(false)
	t.urls.reset()
	t.procMu.Lock()
	t.processes = nil
	t.procMu.Unlock()
	t.cancel.Clear()
	t.completed.Clear()
	t.sessionID.Store(nil)
	t.startedAt = time.Time{}
}

// Session starts the tunnel, runs fn, and always stops the tunnel again,
// also when fn panics. The result is fn's error combined with any stop error.
func (t *Tunnel) Session(ctx context.Context, fn func(ctx context.Context, t *Tunnel) error) (err error) {
	if err := t.StartAsync(); err != nil {
		return err
	}
	defer func() {
		if serr := t.Stop(); serr != nil && !errors.Is(serr, ErrNotRunning) {
			err = multierr.Append(err, serr)
		}
	}()
	return fn(ctx, t)
}

// register records a started process so Stop can find it. It returns false
// when the session is already being cancelled; the caller then owns cleanup.
func (t *Tunnel) register(p *process) bool {
	t.procMu.Lock()
	defer t.procMu.Unlock()
	if t.cancel.IsSet() {
		return false
	}
	t.processes = append(t.processes, p)
	return true
}

func (t *Tunnel) processCount() int {
	t.procMu.Lock()
	defer t.procMu.Unlock()
	return len(t.processes)
}

func (t *Tunnel) waitForPort() {
	t.poller.WaitUntil(func() bool {
		return t.cancel.IsSet() || portConditionMet(t.port, t.portCondition)
	}, t.pollInterval, NoTimeout)
}
