package tunnel

import "time"

// aggregate waits for the port and for every tunnel to report a URL, or for
// the timeout, and then publishes the list once. Nothing is published when
// the session is cancelled first.
func (t *Tunnel) aggregate(total int) {
	defer t.workers.Done()

	log := t.logger
	log.Info("Getting URLs")

	if t.portCheck {
		log.Info("Wait until port %d is %s before printing URLs", t.port, t.portCondition)
		t.waitForPort()
		if !t.cancel.IsSet() {
			log.Info("Port %d is %s, waiting for tunnel URLs (timeout: %s)", t.port, t.portCondition, t.timeout)
		}
	}

	complete := t.poller.WaitUntil(func() bool {
		return t.cancel.IsSet() || t.urls.len() >= total
	}, t.pollInterval, t.timeout)
	if !complete {
		log.Warn("Timeout while getting tunnel URLs, printing available URLs")
		t.metrics.discoveryTimeout()
	}

	if t.cancel.IsSet() {
		return
	}

	urls := t.urls.snapshot()
	for _, u := range urls {
		log.Info("* Running on: %s", u)
	}
	t.metrics.published(time.Since(t.startedAt))

	if t.callback != nil {
		safeCall(log, "session callback", func() { t.callback(urls) })
	}
	t.completed.Set()
}
