package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tcpsweep/scanner"
)

var errMissingPorts = errors.New("either ports or port_start and port_end are required")

// parsePortRange converts an inclusive "start-end" expression into a half-open range.
func parsePortRange(portRange string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(portRange), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid port range format. Use startPort-endPort")
	}

	startPort, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("start port is not a number: %s", parts[0])
	}

	endPort, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("end port is not a number: %s", parts[1])
	}

	if startPort < 0 || startPort > scanner.MaxPort || endPort < 0 || endPort > scanner.MaxPort {
		return 0, 0, fmt.Errorf("ports must be within 0-65535 range")
	}

	if startPort > endPort {
		return 0, 0, fmt.Errorf("start port must be less than or equal to end port")
	}

	return startPort, endPort + 1, nil
}

// scanLimits bounds what clients may request.
type scanLimits struct {
	defaultBatch int
	maxBatch     int
}

// resolveRequest turns a client payload into a validated scanner request.
func resolveRequest(req CreateScanRequest, limits scanLimits) (scanner.Request, error) {
	out := scanner.Request{
		Host:       strings.TrimSpace(req.Host),
		BatchWidth: limits.defaultBatch,
	}

	switch {
	case req.Ports != "":
		start, end, err := parsePortRange(req.Ports)
		if err != nil {
			return scanner.Request{}, err
		}
		out.PortStart, out.PortEnd = start, end
	case req.PortStart != nil && req.PortEnd != nil:
		out.PortStart, out.PortEnd = *req.PortStart, *req.PortEnd
	default:
		return scanner.Request{}, errMissingPorts
	}

	if req.BatchWidth != nil {
		out.BatchWidth = *req.BatchWidth
	}
	if limits.maxBatch > 0 && out.BatchWidth > limits.maxBatch {
		return scanner.Request{}, fmt.Errorf("%w: %d exceeds the limit of %d", scanner.ErrInvalidBatch, out.BatchWidth, limits.maxBatch)
	}

	if err := out.Validate(); err != nil {
		return scanner.Request{}, err
	}
	if _, err := scanner.ParseEndpoint(out.Host, 0); err != nil {
		return scanner.Request{}, fmt.Errorf("host must be an IP literal: %w", err)
	}

	return out, nil
}
