package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyHost is returned when a request carries no target host.
	ErrEmptyHost = errors.New("host must not be empty")
	// ErrInvalidRange is returned when port bounds are reversed or outside 0-65536.
	ErrInvalidRange = errors.New("invalid port range")
	// ErrInvalidBatch is returned for a negative batch width, or a zero width on ScanBatched.
	ErrInvalidBatch = errors.New("invalid batch width")

	// ErrAddressParse marks a host+port pair that cannot become a socket address.
	ErrAddressParse = errors.New("unable to convert to socket address")
	// ErrResourceExhausted marks a probe dropped because the local host ran out of
	// descriptors or buffers.
	ErrResourceExhausted = errors.New("local resources exhausted")
)

// AddressError describes a host+port pair that could not be parsed into an endpoint.
type AddressError struct {
	Host string
	Port int
	Err  error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: %s port %d: %v", ErrAddressParse, e.Host, e.Port, e.Err)
}

func (e *AddressError) Unwrap() []error {
	return []error{ErrAddressParse, e.Err}
}
