package tunnel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// DefaultGracePeriod is how long a child gets to exit after the graceful
// signal before it is killed.
const DefaultGracePeriod = 15 * time.Second

// execCommand is swapped in tests.
var execCommand = exec.Command

// process is one running tunnel command. Its stdout and stderr share a single
// pipe so lines keep the order the child wrote them in.
type process struct {
	name   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output *os.File

	done    chan struct{}
	waitErr error

	closeStdin sync.Once
}

// startProcess launches command with merged output and a piped stdin.
func startProcess(name, command string) (*process, error) {
	cmd, err := buildCommand(command)
	if err != nil {
		return nil, err
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe for %s: %w", name, err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	stdin, err := cmd.StdinPipe()
	if err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("stdin pipe for %s: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("failed to start %s (%s): %w", name, command, err)
	}
	// The child holds its own copy of the write end.
	pw.Close()

	p := &process{
		name:   name,
		cmd:    cmd,
		stdin:  stdin,
		output: pr,
		done:   make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// Pid returns the child's process id.
func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

// Exited reports whether the child has been reaped.
func (p *process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitErr returns the result of Wait once the child has exited.
func (p *process) ExitErr() error {
	<-p.done
	return p.waitErr
}

func (p *process) shutdownStdin() {
	p.closeStdin.Do(func() {
		_ = p.stdin.Close()
	})
}

// terminate stops the child in two tiers: a graceful request first, then a
// forced kill if it is still alive after grace. It reports whether the kill
// tier was needed.
func (p *process) terminate(grace time.Duration) (killed bool, err error) {
	p.shutdownStdin()
	if p.Exited() {
		// Descendants may still hold the output pipe open.
		_ = killTree(p)
		return false, nil
	}

	if gerr := signalGraceful(p); gerr != nil && !errors.Is(gerr, os.ErrProcessDone) {
		err = fmt.Errorf("graceful stop of %s (pid %d): %w", p.name, p.Pid(), gerr)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.done:
		_ = killTree(p)
		return false, err
	case <-timer.C:
	}

	if kerr := killTree(p); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
		err = multierr.Append(err, fmt.Errorf("kill %s (pid %d): %w", p.name, p.Pid(), kerr))
	}
	<-p.done
	return true, err
}
