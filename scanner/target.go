package scanner

import (
	"errors"
	"net/netip"
	"strings"
)

// MaxPort is the highest valid TCP port.
const MaxPort = 65535

// Target is a single host/port pair handed to one probe.
type Target struct {
	Host string
	Port int
}

// Endpoint resolves the target into a connectable socket address.
func (t Target) Endpoint() (netip.AddrPort, error) {
	return ParseEndpoint(t.Host, t.Port)
}

var (
	errPortOutOfRange = errors.New("port out of range")
	errEmptyAddr      = errors.New("empty address")
)

// ParseEndpoint builds a socket address from an IP literal and a port.
// IPv6 hosts may be given with or without brackets. Names are not resolved.
func ParseEndpoint(host string, port int) (netip.AddrPort, error) {
	if port < 0 || port > MaxPort {
		return netip.AddrPort{}, &AddressError{Host: host, Port: port, Err: errPortOutOfRange}
	}

	literal := strings.TrimSpace(host)
	if strings.HasPrefix(literal, "[") && strings.HasSuffix(literal, "]") {
		literal = literal[1 : len(literal)-1]
	}
	if literal == "" {
		return netip.AddrPort{}, &AddressError{Host: host, Port: port, Err: errEmptyAddr}
	}

	addr, err := netip.ParseAddr(literal)
	if err != nil {
		return netip.AddrPort{}, &AddressError{Host: host, Port: port, Err: err}
	}

	return netip.AddrPortFrom(addr.Unmap(), uint16(port)), nil // #nosec G115 - bounds checked above
}
