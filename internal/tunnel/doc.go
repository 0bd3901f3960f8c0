// Package tunnel supervises external tunnel commands and collects the public
// URLs they print.
//
// A Tunnel owns one local port and a registry of tunnel definitions. Each
// definition names a command (with an optional {port} placeholder), a
// regular expression that recognises the URL in the command's output, and an
// optional note and callback.
//
// # Session Lifecycle
//
// A session runs from StartAsync (or the blocking Start) until Stop:
//
//   - one worker goroutine per definition waits for the local port, launches
//     the command with stdout and stderr merged, and scans the output until
//     the first URL is found, then keeps draining it
//   - one aggregator goroutine waits until every worker reported a URL or the
//     timeout passed, then logs the URLs, calls the session callback and
//     signals completion
//   - Stop raises the cancellation event, terminates every command (SIGTERM to
//     the process group, SIGKILL after the grace period), joins all goroutines
//     and resets the instance so it can be started again
//
// Session wraps StartAsync and Stop around a function so commands are never
// leaked.
//
// # Cancellation
//
// Cancellation is cooperative. Goroutines poll the cancellation event, so
// the latency of Stop is bounded by the poll interval plus the grace period.
// A worker blocked reading output is released when Stop terminates its
// command.
//
// # Logging
//
// Every tunnel writes its raw output and its own log records to
// tunnel_<name>.log in the log directory at debug level, independent of the
// console level. The file is truncated at the start of every session.
//
// # Errors
//
// Only lifecycle misuse (ErrAlreadyRunning, ErrNotRunning) and invalid
// definitions (*ValidationError, ErrNoTunnels) are returned to callers.
// Launch failures, read errors and discovery timeouts are logged and degrade
// to a partial URL list.
package tunnel
