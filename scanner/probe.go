package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"syscall"
	"time"
)

// State is the classified result of a single probe.
type State int

const (
	// StateClosed covers refused, reset, unreachable and timed out handshakes.
	StateClosed State = iota
	// StateOpen means the handshake completed before the deadline.
	StateOpen
	// StateFailed means the probe never dialed, e.g. the address did not parse.
	StateFailed
	// StateExhausted means the local host ran out of descriptors or buffers.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the per-port result of a probe.
type Outcome struct {
	Target   Target
	Endpoint netip.AddrPort
	State    State
	Err      error
	RTT      time.Duration
}

// Dialer is the TCP connect primitive probes are built on. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// probe performs one bounded handshake against t.
func probe(ctx context.Context, dialer Dialer, t Target, timeout time.Duration) Outcome {
	out := Outcome{Target: t}

	endpoint, err := t.Endpoint()
	if err != nil {
		out.State = StateFailed
		out.Err = err
		return out
	}
	out.Endpoint = endpoint

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := dialer.DialContext(probeCtx, "tcp", endpoint.String())
	out.RTT = time.Since(start)

	if err != nil {
		out.State = Classify(err)
		if out.State == StateExhausted {
			out.Err = fmt.Errorf("%w: %w", ErrResourceExhausted, err)
		} else {
			out.Err = err
		}
		return out
	}

	// Nothing is exchanged on the connection; a close error does not change the verdict.
	_ = conn.Close()
	out.State = StateOpen

	return out
}

// Classify maps a dial error to a probe state. A nil error is StateOpen.
// Descriptor, buffer and ephemeral port shortages are StateExhausted; every
// other failure, timeouts included, is StateClosed.
func Classify(err error) State {
	if err == nil {
		return StateOpen
	}
	if isResourceExhaustion(err) {
		return StateExhausted
	}
	return StateClosed
}

func isResourceExhaustion(err error) bool {
	if errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.ENOBUFS) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EADDRNOTAVAIL) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too many open files") ||
		strings.Contains(msg, "no buffer space available") ||
		strings.Contains(msg, "cannot assign requested address")
}
