package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"

	"tcpsweep/logging"
)

// DefaultTimeout is used when a Scanner is built with a non-positive timeout.
const DefaultTimeout = time.Second

// Request describes one scan run over the half-open range [PortStart, PortEnd).
// A BatchWidth of zero scans the whole range in a single batch.
type Request struct {
	Host       string
	PortStart  int
	PortEnd    int
	BatchWidth int
}

// Validate rejects requests that must not reach the network.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return ErrEmptyHost
	}
	if r.PortStart < 0 || r.PortEnd > MaxPort+1 || r.PortStart > r.PortEnd {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, r.PortStart, r.PortEnd)
	}
	if r.BatchWidth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatch, r.BatchWidth)
	}
	return nil
}

// Report summarizes a run. Open is ordered by batch; within a batch it
// follows completion order.
type Report struct {
	Open      []netip.AddrPort
	Probed    int
	Closed    int
	Failed    int
	Exhausted int
	Batches   int
	Elapsed   time.Duration
}

// Scanner probes TCP ports with a fixed per-connection timeout.
type Scanner struct {
	timeout time.Duration
	dialer  Dialer
	logger  *slog.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithDialer replaces the connect primitive used by every probe.
func WithDialer(d Dialer) Option {
	return func(s *Scanner) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a Scanner whose probes each give up after timeout.
func New(timeout time.Duration, opts ...Option) *Scanner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s := &Scanner{
		timeout: timeout,
		dialer:  &net.Dialer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Logger()
	}

	return s
}

// Timeout returns the per-probe deadline.
func (s *Scanner) Timeout() time.Duration {
	return s.timeout
}

// Scan probes every port in [portStart, portEnd) at once and returns the open endpoints.
func (s *Scanner) Scan(ctx context.Context, host string, portStart, portEnd int) ([]netip.AddrPort, error) {
	report, err := s.Run(ctx, Request{Host: host, PortStart: portStart, PortEnd: portEnd})
	if report == nil {
		return nil, err
	}
	return report.Open, err
}

// ScanBatched probes [portStart, portEnd) in sequential batches of batchWidth ports,
// so at most batchWidth connections are in flight at any time.
func (s *Scanner) ScanBatched(ctx context.Context, host string, portStart, portEnd, batchWidth int) ([]netip.AddrPort, error) {
	if batchWidth <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatch, batchWidth)
	}

	report, err := s.Run(ctx, Request{Host: host, PortStart: portStart, PortEnd: portEnd, BatchWidth: batchWidth})
	if report == nil {
		return nil, err
	}
	return report.Open, err
}

// Run executes req batch by batch. Probe failures never abort the run; the only
// errors are an invalid request, reported before any probing, and cancellation
// of ctx, which stops further batches and is returned with the partial report.
func (s *Scanner) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	host := strings.TrimSpace(req.Host)
	start := time.Now()
	report := &Report{Open: []netip.AddrPort{}}

	for _, batch := range Plan(req.PortStart, req.PortEnd, req.BatchWidth) {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		for _, out := range execute(ctx, s.dialer, s.logger, host, batch, s.timeout) {
			report.Probed++
			switch out.State {
			case StateOpen:
				report.Open = append(report.Open, out.Endpoint)
			case StateClosed:
				report.Closed++
			case StateFailed:
				report.Failed++
			case StateExhausted:
				report.Exhausted++
			}
		}
		report.Batches++
	}

	report.Elapsed = time.Since(start)
	if report.Exhausted > 0 {
		s.logger.Warn("scan finished with dropped probes",
			"host", host,
			"exhausted", report.Exhausted,
			"hint", "lower the batch width or raise the descriptor limit",
		)
	}

	return report, ctx.Err()
}
