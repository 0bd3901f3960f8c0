//go:build !windows

package tunnel

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"tunnelctl/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestTunnel(t *testing.T, opts ...Option) (*Tunnel, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	base := []Option{
		WithCheckLocalPort(false),
		WithLogDir(t.TempDir()),
		WithLogger(logging.New(logging.LevelDebug, logs)),
		WithPollInterval(20 * time.Millisecond),
		WithTimeout(5 * time.Second),
		WithGracePeriod(2 * time.Second),
	}
	return New(9999, append(base, opts...)...), logs
}

func stopTunnel(t *testing.T, tun *Tunnel) {
	t.Helper()
	if tun.IsRunning() {
		require.NoError(t, tun.Stop())
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestStartPublishesEchoedURL(t *testing.T) {
	var published []DiscoveredURL
	tun, _ := newTestTunnel(t, WithCallback(func(urls []DiscoveredURL) { published = urls }))
	require.NoError(t, tun.AddTunnel(Definition{
		Command: "echo http://abc.ngrok.io",
		Pattern: `https?://\S+`,
		Name:    "t1",
	}))
	defer stopTunnel(t, tun)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, tun.Start(ctx))

	urls := tun.URLs()
	require.Len(t, urls, 1)
	assert.Equal(t, "http://abc.ngrok.io", urls[0].URL)
	assert.Equal(t, "t1", urls[0].Name)
	assert.Equal(t, urls, published)
	assert.True(t, tun.IsRunning())
}

func TestMatchWithoutSchemeGetsHTTPPrefix(t *testing.T) {
	tun, _ := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{
		Command: `echo "tunnel.example.com ready"`,
		Pattern: `\S+\.example\.com`,
		Name:    "example",
		Note:    "(example)",
	}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	require.NoError(t, tun.Wait(context.Background()))

	urls := tun.URLs()
	require.Len(t, urls, 1)
	assert.Equal(t, DiscoveredURL{URL: "http://tunnel.example.com", Note: "(example)", Name: "example"}, urls[0])
}

func TestAllTunnelsPublished(t *testing.T) {
	published := make(chan []DiscoveredURL, 1)
	var mu sync.Mutex
	perTunnel := map[string]string{}

	defs := []Definition{
		{Command: "echo https://one.trycloudflare.com", Pattern: `\S+\.trycloudflare\.com`, Name: "one"},
		{Command: "sh -c 'echo starting; echo two.lhr.life'", Pattern: `[\w-]+\.lhr\.life`, Name: "two", Note: "note-two"},
		{Command: "echo listening on bore.pub:4242", Pattern: `bore\.pub:\d+`, Name: "three"},
	}
	for i := range defs {
		defs[i].Callback = func(url, note string) {
			mu.Lock()
			defer mu.Unlock()
			perTunnel[url] = note
		}
	}

	tun, err := NewWithTunnels(9999, defs,
		WithCheckLocalPort(false),
		WithLogDir(t.TempDir()),
		WithLogger(logging.Discard()),
		WithPollInterval(20*time.Millisecond),
		WithCallback(func(urls []DiscoveredURL) { published <- urls }),
	)
	require.NoError(t, err)
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())

	select {
	case urls := <-published:
		require.Len(t, urls, 3)
		for _, u := range urls {
			assert.True(t, strings.HasPrefix(u.URL, "http://") || strings.HasPrefix(u.URL, "https://"), u.URL)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("URLs were not published")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]string{
		"https://one.trycloudflare.com": "",
		"http://two.lhr.life":           "note-two",
		"http://bore.pub:4242":          "",
	}, perTunnel)
}

func TestTimeoutPublishesPartialResult(t *testing.T) {
	timeout := 300 * time.Millisecond
	tun, logs := newTestTunnel(t, WithTimeout(timeout))
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo fast.example.com", Pattern: `\S+\.example\.com`, Name: "fast"}))
	require.NoError(t, tun.AddTunnel(Definition{Command: "sleep 30", Pattern: `never`, Name: "slow"}))
	defer stopTunnel(t, tun)

	start := time.Now()
	require.NoError(t, tun.StartAsync())
	require.NoError(t, tun.Wait(context.Background()))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, 3*time.Second)

	urls := tun.URLs()
	require.Len(t, urls, 1)
	assert.Equal(t, "http://fast.example.com", urls[0].URL)

	require.NoError(t, tun.Stop())
	assert.Equal(t, 1, strings.Count(logs.String(), "Timeout while getting tunnel URLs"))
}

func TestStopWhenIdle(t *testing.T) {
	tun, _ := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo x", Pattern: "x", Name: "x"}))

	assert.ErrorIs(t, tun.Stop(), ErrNotRunning)
	assert.False(t, tun.IsRunning())
	assert.Len(t, tun.Specs(), 1)
	assert.Empty(t, tun.URLs())
}

func TestStartTwice(t *testing.T) {
	tun, _ := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{Command: "sleep 30", Pattern: "x", Name: "x"}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	assert.ErrorIs(t, tun.StartAsync(), ErrAlreadyRunning)
	assert.ErrorIs(t, tun.Start(context.Background()), ErrAlreadyRunning)
	assert.ErrorIs(t, tun.AddTunnel(Definition{Command: "echo y", Pattern: "y", Name: "y"}), ErrAlreadyRunning)
	assert.ErrorIs(t, tun.Reset(), ErrAlreadyRunning)
}

func TestStartWithoutTunnels(t *testing.T) {
	tun, _ := newTestTunnel(t)

	err := tun.StartAsync()
	assert.ErrorIs(t, err, ErrNoTunnels)
	assert.True(t, IsValidationError(err))
	assert.False(t, tun.IsRunning())
	assert.Equal(t, 0, tun.processCount())

	assert.ErrorIs(t, tun.Start(context.Background()), ErrNoTunnels)
}

func TestStopResetsStateAndAllowsRestart(t *testing.T) {
	tun, _ := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{
		Command: "sh -c 'echo https://again.example.com; sleep 30'",
		Pattern: `https://\S+`,
		Name:    "again",
	}))

	for round := 0; round < 2; round++ {
		require.NoError(t, tun.StartAsync())
		require.NoError(t, tun.Wait(context.Background()))
		assert.NotEmpty(t, tun.SessionID())
		require.Len(t, tun.URLs(), 1)
		assert.Equal(t, 1, tun.processCount())

		require.NoError(t, tun.Stop())

		assert.False(t, tun.IsRunning())
		assert.Empty(t, tun.URLs())
		assert.Equal(t, 0, tun.processCount())
		assert.False(t, tun.cancel.IsSet())
		assert.False(t, tun.completed.IsSet())
		assert.Empty(t, tun.SessionID())
		assert.Len(t, tun.Specs(), 1)
	}
}

func TestStopKillsProcessIgnoringTerm(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	tun, _ := newTestTunnel(t, WithGracePeriod(200*time.Millisecond), WithMetrics(metrics))
	require.NoError(t, tun.AddTunnel(Definition{
		Command: `sh -c 'trap "" TERM; echo stubborn.example.com; sleep 30'`,
		Pattern: `\S+\.example\.com`,
		Name:    "stubborn",
	}))

	require.NoError(t, tun.StartAsync())
	require.NoError(t, tun.Wait(context.Background()))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionsRunning))

	start := time.Now()
	require.NoError(t, tun.Stop())
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ForcedKills.WithLabelValues("stubborn")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ProcessesStarted.WithLabelValues("stubborn")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.URLsDiscovered.WithLabelValues("stubborn")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.SessionsRunning))
}

func TestLogFileCapturesOutputAndIsTruncated(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, LogFileName("verbose"))
	require.NoError(t, os.WriteFile(logPath, []byte("stale content from an earlier run\n"), 0o644))

	logs := &syncBuffer{}
	tun := New(9999,
		WithCheckLocalPort(false),
		WithLogDir(dir),
		WithLogger(logging.New(logging.LevelInfo, logs)),
		WithPollInterval(20*time.Millisecond),
	)
	require.NoError(t, tun.AddTunnel(Definition{
		Command: "sh -c 'echo first line; echo url.example.com; echo after the url; sleep 30'",
		Pattern: `\S+\.example\.com`,
		Name:    "verbose",
	}))

	require.NoError(t, tun.StartAsync())
	require.NoError(t, tun.Wait(context.Background()))
	require.Eventually(t, func() bool {
		data, _ := os.ReadFile(logPath)
		return strings.Contains(string(data), "after the url")
	}, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, tun.Stop())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, content, "stale content")
	assert.Contains(t, content, "first line")
	assert.Contains(t, content, "url.example.com")
	assert.Contains(t, content, "after the url")

	// Raw lines are debug records and stay out of an info-level console.
	assert.NotContains(t, logs.String(), "first line")
	assert.Contains(t, logs.String(), "Running on: http://url.example.com")
}

func TestPortGateDelaysLaunch(t *testing.T) {
	port := freePort(t)
	tun := New(port,
		WithLogDir(t.TempDir()),
		WithLogger(logging.Discard()),
		WithPollInterval(20*time.Millisecond),
	)
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo gated.example.com", Pattern: `\S+\.example\.com`, Name: "gated"}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, tun.processCount(), "command must not start before the port is bound")
	assert.Empty(t, tun.URLs())

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, tun.Wait(ctx))
	require.Len(t, tun.URLs(), 1)
}

func TestStopWhileWaitingForPort(t *testing.T) {
	port := freePort(t)
	tun := New(port,
		WithLogDir(t.TempDir()),
		WithLogger(logging.Discard()),
		WithPollInterval(20*time.Millisecond),
	)
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo x.example.com", Pattern: `\S+\.example\.com`, Name: "x"}))

	require.NoError(t, tun.StartAsync())
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, tun.Stop())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, tun.URLs())
	assert.Equal(t, 0, tun.processCount())
}

func TestPortConditionFree(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port

	tun := New(port,
		WithPortCondition(WaitPortFree),
		WithLogDir(t.TempDir()),
		WithLogger(logging.Discard()),
		WithPollInterval(20*time.Millisecond),
	)
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo freed.example.com", Pattern: `\S+\.example\.com`, Name: "freed"}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, tun.processCount())

	require.NoError(t, ln.Close())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, tun.Wait(ctx))
	assert.Len(t, tun.URLs(), 1)
}

func TestBlockingStartSkipsPortGate(t *testing.T) {
	port := freePort(t)
	tun := New(port,
		WithLogDir(t.TempDir()),
		WithLogger(logging.Discard()),
		WithPollInterval(20*time.Millisecond),
	)
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo early.example.com", Pattern: `\S+\.example\.com`, Name: "early"}))
	defer stopTunnel(t, tun)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, tun.Start(ctx))
	assert.Len(t, tun.URLs(), 1)
}

func TestStartInterruptedByContext(t *testing.T) {
	tun, logs := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{Command: "sleep 30", Pattern: "never", Name: "idle"}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := tun.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, tun.IsRunning())
	assert.Equal(t, 0, tun.processCount())
	assert.Contains(t, logs.String(), "Interrupt detected")
}

func TestLaunchFailureDoesNotAbortOtherTunnels(t *testing.T) {
	tun, logs := newTestTunnel(t, WithTimeout(500*time.Millisecond))
	require.NoError(t, tun.AddTunnel(Definition{Command: "/non/existent/tunnel-binary --port {port}", Pattern: "x", Name: "broken"}))
	require.NoError(t, tun.AddTunnel(Definition{Command: "echo ok.example.com", Pattern: `\S+\.example\.com`, Name: "ok"}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	require.NoError(t, tun.Wait(context.Background()))

	urls := tun.URLs()
	require.Len(t, urls, 1)
	assert.Equal(t, "ok", urls[0].Name)
	assert.Contains(t, logs.String(), "An error occurred while running the command: /non/existent/tunnel-binary --port 9999")
}

func TestCallbackPanicIsContained(t *testing.T) {
	tun, logs := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{
		Command:  "echo boom.example.com",
		Pattern:  `\S+\.example\.com`,
		Name:     "boom",
		Callback: func(url, note string) { panic("callback exploded") },
	}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	require.NoError(t, tun.Wait(context.Background()))
	assert.Len(t, tun.URLs(), 1)
	assert.Contains(t, logs.String(), "callback exploded")
}

func TestSessionAlwaysStops(t *testing.T) {
	tun, _ := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{Command: "sh -c 'echo s.example.com; sleep 30'", Pattern: `\S+\.example\.com`, Name: "s"}))

	sentinel := errors.New("caller failed")
	err := tun.Session(context.Background(), func(ctx context.Context, tt *Tunnel) error {
		require.NoError(t, tt.Wait(ctx))
		assert.Len(t, tt.URLs(), 1)
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, tun.IsRunning())

	assert.Panics(t, func() {
		_ = tun.Session(context.Background(), func(ctx context.Context, tt *Tunnel) error {
			panic("caller panicked")
		})
	})
	assert.False(t, tun.IsRunning())
	assert.Equal(t, 0, tun.processCount())
}

func TestSessionWhileRunning(t *testing.T) {
	tun, _ := newTestTunnel(t)
	require.NoError(t, tun.AddTunnel(Definition{Command: "sleep 30", Pattern: "never", Name: "n"}))
	defer stopTunnel(t, tun)

	require.NoError(t, tun.StartAsync())
	called := false
	err := tun.Session(context.Background(), func(ctx context.Context, tt *Tunnel) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.False(t, called)
	assert.True(t, tun.IsRunning())
}

func TestWaitWhenIdle(t *testing.T) {
	tun, _ := newTestTunnel(t)
	assert.ErrorIs(t, tun.Wait(context.Background()), ErrNotRunning)
}

func TestCallbackReadsStateWhileStopping(t *testing.T) {
	tun, _ := newTestTunnel(t)
	matched := make(chan struct{})
	seenID := make(chan string, 1)
	waitErr := make(chan error, 1)
	require.NoError(t, tun.AddTunnel(Definition{
		Command: "sh -c 'echo https://slow.example.com; sleep 30'",
		Pattern: `https://\S+`,
		Name:    "slow",
		Callback: func(url, note string) {
			close(matched)
			time.Sleep(300 * time.Millisecond)
			seenID <- tun.SessionID()
			waitErr <- tun.Wait(context.Background())
		},
	}))

	require.NoError(t, tun.StartAsync())
	id := tun.SessionID()
	require.NotEmpty(t, id)

	select {
	case <-matched:
	case <-time.After(5 * time.Second):
		t.Fatal("URL was not discovered")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- tun.Stop() }()
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return while a callback read tunnel state")
	}

	assert.Equal(t, id, <-seenID)
	err := <-waitErr
	assert.True(t, err == nil || errors.Is(err, ErrNotRunning), "unexpected Wait error: %v", err)
	assert.Empty(t, tun.SessionID())
	assert.ErrorIs(t, tun.Wait(context.Background()), ErrNotRunning)
}
