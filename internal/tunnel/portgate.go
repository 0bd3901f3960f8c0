package tunnel

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// PortCondition selects which port state the gate waits for before tunnels
// start and before URLs are collected.
type PortCondition int

const (
	// WaitPortBound waits until a local service listens on the port.
	WaitPortBound PortCondition = iota
	// WaitPortFree waits until nothing listens on the port any more.
	WaitPortFree
)

func (c PortCondition) String() string {
	switch c {
	case WaitPortBound:
		return "bound"
	case WaitPortFree:
		return "free"
	default:
		return "unknown"
	}
}

// ParsePortCondition parses "bound" or "free". The empty string means bound.
func ParsePortCondition(s string) (PortCondition, error) {
	switch s {
	case "", "bound":
		return WaitPortBound, nil
	case "free":
		return WaitPortFree, nil
	default:
		return WaitPortBound, fmt.Errorf("unknown port condition %q (want \"bound\" or \"free\")", s)
	}
}

const portProbeTimeout = time.Second

// dialTimeout is swapped in tests.
var dialTimeout = net.DialTimeout

// IsPortAvailable reports whether nothing accepts TCP connections on
// localhost:port. A successful connect means the port is taken; any dial
// error means nothing answered within the probe window.
func IsPortAvailable(port int) bool {
	conn, err := dialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), portProbeTimeout)
	if err != nil {
		return true
	}
	_ = conn.Close()
	return false
}

// IsPortBound reports whether a local service accepts connections on port.
func IsPortBound(port int) bool {
	return !IsPortAvailable(port)
}

// portConditionMet evaluates cond for port once.
func portConditionMet(port int, cond PortCondition) bool {
	if cond == WaitPortFree {
		return IsPortAvailable(port)
	}
	return IsPortBound(port)
}
