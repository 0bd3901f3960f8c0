package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO for unknown
	}
}

func levelFromSlog(l slog.Level) LogLevel {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// LogEntry is the structured log entry passed to the TUI.
type LogEntry struct {
	Timestamp  time.Time
	Level      LogLevel
	Subsystem  string
	Message    string
	Err        error
	Attributes []slog.Attr
}

const tuiChannelBufferSize = 2048

var defaultLogger = New(LevelInfo, os.Stderr)

// InitForCLI initializes the package-level logger for CLI mode.
// Logs are written as text to output.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	defaultLogger = New(filterLevel, output)
	slog.SetDefault(defaultLogger.slog)
}

// InitForTUI initializes the package-level logger for TUI mode.
// It returns the channel the TUI listens to for log entries.
func InitForTUI(filterLevel LogLevel) <-chan LogEntry {
	l, ch := NewChannel(filterLevel, tuiChannelBufferSize)
	defaultLogger = l
	return ch
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	defaultLogger.With(subsystem).log(LevelDebug, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	defaultLogger.With(subsystem).log(LevelInfo, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	defaultLogger.With(subsystem).log(LevelWarn, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	defaultLogger.With(subsystem).log(LevelError, err, messageFmt, args...)
}

// Logger is an explicit logger instance. Components that own a logger pass it
// down and derive children per subsystem instead of relying on global state.
type Logger struct {
	slog      *slog.Logger
	subsystem string
}

// New returns a Logger writing text records at or above level to w.
func New(level LogLevel, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	return &Logger{slog: slog.New(slog.NewTextHandler(w, opts))}
}

// NewChannel returns a Logger that delivers entries on a buffered channel.
// Sends block once the buffer is full so entries stay in FIFO order.
func NewChannel(level LogLevel, bufferSize int) (*Logger, <-chan LogEntry) {
	if bufferSize <= 0 {
		bufferSize = tuiChannelBufferSize
	}
	ch := make(chan LogEntry, bufferSize)
	h := &channelHandler{level: level.SlogLevel(), ch: ch}
	return &Logger{slog: slog.New(h)}, ch
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(LevelError, io.Discard)
}

// With returns a child logger tagged with subsystem.
func (l *Logger) With(subsystem string) *Logger {
	if l == nil {
		l = defaultLogger
	}
	return &Logger{slog: l.slog, subsystem: subsystem}
}

// WithFile returns a child logger that writes to both the parent's handler,
// filtered at the parent's level, and to w at debug level.
func (l *Logger) WithFile(subsystem string, w io.Writer) *Logger {
	if l == nil {
		l = defaultLogger
	}
	file := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{
		slog:      slog.New(&fanoutHandler{handlers: []slog.Handler{l.slog.Handler(), file}}),
		subsystem: subsystem,
	}
}

// Subsystem returns the subsystem this logger tags records with.
func (l *Logger) Subsystem() string {
	return l.subsystem
}

func (l *Logger) Debug(messageFmt string, args ...interface{}) {
	l.log(LevelDebug, nil, messageFmt, args...)
}

func (l *Logger) Info(messageFmt string, args ...interface{}) {
	l.log(LevelInfo, nil, messageFmt, args...)
}

func (l *Logger) Warn(messageFmt string, args ...interface{}) {
	l.log(LevelWarn, nil, messageFmt, args...)
}

func (l *Logger) Error(err error, messageFmt string, args ...interface{}) {
	l.log(LevelError, err, messageFmt, args...)
}

func (l *Logger) log(level LogLevel, err error, messageFmt string, args ...interface{}) {
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	var attrs []slog.Attr
	if l.subsystem != "" {
		attrs = append(attrs, slog.String("subsystem", l.subsystem))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.slog.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// fanoutHandler dispatches every record to each handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// channelHandler turns slog records into LogEntry values for the TUI.
type channelHandler struct {
	level slog.Level
	ch    chan<- LogEntry
	attrs []slog.Attr
}

func (h *channelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *channelHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp: r.Time,
		Level:     levelFromSlog(r.Level),
		Message:   r.Message,
	}
	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "subsystem":
			entry.Subsystem = a.Value.String()
		case "error":
			entry.Err = errors.New(a.Value.String())
		default:
			entry.Attributes = append(entry.Attributes, a)
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)
	h.ch <- entry
	return nil
}

func (h *channelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &channelHandler{level: h.level, ch: h.ch, attrs: merged}
}

func (h *channelHandler) WithGroup(string) slog.Handler {
	return h
}
