package tunnel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tunnelctl/pkg/logging"
)

// maxLineLength caps the part of a line that is matched and logged. The rest
// of an overlong line is read and dropped.
const maxLineLength = 1024 * 1024

// LogFileName returns the per-tunnel log file name for name.
func LogFileName(name string) string {
	return fmt.Sprintf("tunnel_%s.log", name)
}

// runWorker owns one tunnel command for the whole session: it waits for the
// port, launches the command, extracts the first URL and keeps draining the
// output until the command exits or the session is cancelled.
func (t *Tunnel) runWorker(spec Spec) {
	defer t.workers.Done()

	log := t.logger.With(spec.Name)
	logPath := filepath.Join(t.logDir, LogFileName(spec.Name))
	if f, err := os.Create(logPath); err != nil {
		log.Error(err, "Could not open log file %s, tunnel output goes to the console only", logPath)
	} else {
		defer f.Close()
		log = t.logger.WithFile(spec.Name, f)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("panic: %v", r), "Tunnel worker %s crashed", spec.Name)
		}
	}()

	command := spec.RenderCommand(t.port)

	if t.portCheck {
		log.Debug("Wait until port %d is %s before running the command for %s", t.port, t.portCondition, spec.Name)
		t.waitForPort()
		if t.cancel.IsSet() {
			return
		}
	}

	proc, err := startProcess(spec.Name, command)
	if err != nil {
		log.Error(err, "An error occurred while running the command: %s", command)
		t.metrics.processFailed(spec.Name)
		return
	}
	defer proc.output.Close()

	if !t.register(proc) {
		log.Debug("Session cancelled while %s was starting, stopping it", spec.Name)
		if _, err := proc.terminate(t.grace); err != nil {
			log.Error(err, "Failed to stop %s", spec.Name)
		}
		return
	}
	t.metrics.processStarted(spec.Name)
	log.Debug("Started %s (pid %d): %s", spec.Name, proc.Pid(), command)

	t.drain(spec, proc, log)
}

func (t *Tunnel) drain(spec Spec, proc *process, log *logging.Logger) {
	reader := bufio.NewReaderSize(proc.output, 64*1024)

	extracted := false
	for {
		line, err := nextLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) && !t.cancel.IsSet() {
				log.Error(err, "An error occurred while reading the output of %s", spec.Name)
				t.metrics.processFailed(spec.Name)
				return
			}
			break
		}
		if !extracted {
			extracted = t.processLine(spec, line, log)
		}
		log.Debug("%s", line)
		if t.cancel.IsSet() {
			return
		}
	}

	if proc.Exited() {
		if err := proc.ExitErr(); err != nil && !t.cancel.IsSet() {
			log.Warn("%s exited: %v", spec.Name, err)
		} else {
			log.Debug("%s exited", spec.Name)
		}
	}
}

// nextLine returns the next line without its terminator, truncated to
// maxLineLength. A final line without a newline is returned before io.EOF.
func nextLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if len(line) > 0 && errors.Is(err, io.EOF) {
				return string(line), nil
			}
			return "", err
		}
		if room := maxLineLength - len(line); room > 0 {
			line = append(line, chunk[:min(len(chunk), room)]...)
		}
		if !isPrefix {
			return string(line), nil
		}
	}
}

// processLine matches line against the spec's pattern. On a match the URL is
// recorded and the spec callback is invoked outside the list lock.
func (t *Tunnel) processLine(spec Spec, line string, log *logging.Logger) bool {
	loc := spec.Pattern.FindStringIndex(line)
	if loc == nil || loc[0] == loc[1] {
		return false
	}

	found := DiscoveredURL{
		URL:  NormalizeURL(line[loc[0]:loc[1]]),
		Note: spec.Note,
		Name: spec.Name,
	}
	n := t.urls.append(found)
	t.metrics.urlDiscovered(spec.Name)
	log.Debug("Found URL %s (%d discovered)", found.URL, n)

	if spec.Callback != nil {
		safeCall(log, spec.Name+" callback", func() { spec.Callback(found.URL, found.Note) })
	}
	return true
}

// safeCall runs user code and logs instead of propagating a panic.
func safeCall(log *logging.Logger, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("panic: %v", r), "%s failed", what)
		}
	}()
	fn()
}
