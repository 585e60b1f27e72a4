package api

import (
	"time"
)

// Task lifecycle states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanTask represents a scanning job managed by the API service.
type ScanTask struct {
	// ID is the immutable identifier of the scan task (UUID v4).
	ID string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678" description:"Immutable UUIDv4 identifier assigned when the task is accepted. Reuse it when polling."`
	// Status reflects the asynchronous lifecycle state of the task.
	Status string `json:"status" enums:"pending,running,completed,failed" example:"pending" description:"pending while queued, running while probing, completed once every batch finished, failed when the worker could not run the scan."`
	// Host is the IP literal being probed.
	Host string `json:"host" example:"127.0.0.1" description:"IPv4 or IPv6 literal. Names are not resolved."`
	// PortStart is the first port of the half-open range.
	PortStart int `json:"port_start" example:"8000" description:"First port probed (inclusive)."`
	// PortEnd is the exclusive end of the range.
	PortEnd int `json:"port_end" example:"8100" description:"End of the range (exclusive). Use 65536 to include port 65535."`
	// BatchWidth caps how many probes are in flight at once; zero means unbatched.
	BatchWidth int `json:"batch_width" example:"256" description:"Ports probed concurrently per batch. Batches run strictly one after another. Zero probes the whole range at once."`
	// Open lists the endpoints that accepted a connection.
	Open []string `json:"open" example:"[\"127.0.0.1:8080\",\"127.0.0.1:8081\"]" description:"Reachable endpoints, ordered by batch. Null until the task completed, then always a list, possibly empty."`
	// Summary carries per-outcome counters once the task completed.
	Summary *ScanSummary `json:"summary,omitempty"`
	// CreatedAt records when the task was created.
	CreatedAt time.Time `json:"created_at" format:"date-time" example:"2024-01-02T15:04:05Z"`
	// StartedAt is set when a worker picks the task up.
	StartedAt *time.Time `json:"started_at,omitempty" format:"date-time" example:"2024-01-02T15:04:06Z"`
	// CompletedAt is set once the task transitions to a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty" format:"date-time" example:"2024-01-02T15:06:30Z"`
	// Error contains context when a task fails.
	Error string `json:"error,omitempty" example:"invalid port range" description:"Why the task entered the failed status."`
}

// ScanSummary mirrors scanner.Report counters.
type ScanSummary struct {
	Probed     int   `json:"probed" example:"100"`
	Closed     int   `json:"closed" example:"98"`
	Failed     int   `json:"failed" example:"0"`
	Exhausted  int   `json:"exhausted" example:"0" description:"Probes dropped because the scanner ran out of file descriptors or buffers. Non-zero values suggest a smaller batch width."`
	Batches    int   `json:"batches" example:"4"`
	DurationMS int64 `json:"duration_ms" example:"1012"`
}

// CreateScanRequest is the payload for creating new scan tasks.
type CreateScanRequest struct {
	// Host is the IP literal to scan.
	Host string `json:"host" binding:"required" example:"127.0.0.1" description:"IPv4 or IPv6 literal to probe."`
	// PortStart is the inclusive start of the range. Required unless Ports is given.
	PortStart *int `json:"port_start,omitempty" example:"8000"`
	// PortEnd is the exclusive end of the range. Required unless Ports is given.
	PortEnd *int `json:"port_end,omitempty" example:"8100"`
	// Ports is an inclusive "start-end" alternative to PortStart/PortEnd.
	Ports string `json:"ports,omitempty" example:"8000-8099" description:"Inclusive range such as 1-1024. Takes precedence over port_start/port_end."`
	// BatchWidth overrides the service default batch width.
	BatchWidth *int `json:"batch_width,omitempty" example:"256"`
}

// ScanAcceptedResponse captures the asynchronous acknowledgement returned after job submission.
type ScanAcceptedResponse struct {
	ID     string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	Status string `json:"status" enums:"pending" example:"pending"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"ok"`
}

// ErrorResponse provides a consistent structure for API error payloads.
type ErrorResponse struct {
	Error string `json:"error" example:"task not found"`
}
