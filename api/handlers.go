package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server bundles dependencies for HTTP handlers.
type Server struct {
	store  TaskStore
	limits scanLimits
}

// NewServer creates a new API server instance. defaultBatch applies when a request
// names no batch width; maxBatch caps explicit widths.
func NewServer(store TaskStore, defaultBatch, maxBatch int) *Server {
	return &Server{store: store, limits: scanLimits{defaultBatch: defaultBatch, maxBatch: maxBatch}}
}

// RegisterRoutes attaches scan handlers to the provided Gin router group.
func (s *Server) RegisterRoutes(routes gin.IRoutes) {
	routes.POST("/scans", s.createScanHandler)
	routes.GET("/scans/:id", s.getScanHandler)
}

// @Summary      Create a new scan task
// @Description  Submit a host and a port range and let the service probe it asynchronously. The handler validates input, persists the task, and enqueues it for background workers before returning a UUID.
// @Description  **Lifecycle**: POST /scans answers with HTTP 202 Accepted plus the task identifier. Poll GET /scans/{id} to observe pending → running → completed/failed. Open endpoints are attached only after completion.
// @Description  **Ranges**: port_end is exclusive. The ports field accepts an inclusive start-end expression instead.
// @Tags         Scans
// @Accept       json
// @Produce      json
// @Param        scanRequest  body      CreateScanRequest     true  "Scan request parameters"
// @Success      202          {object}  ScanAcceptedResponse  "Scan accepted"
// @Failure      400          {object}  ErrorResponse         "Malformed JSON body or failed validation"
// @Failure      401          {object}  ErrorResponse         "Missing or incorrect API key"
// @Failure      429          {object}  ErrorResponse         "Rate limit exceeded"
// @Failure      500          {object}  ErrorResponse         "Internal error while persisting or queueing the task"
// @Security     ApiKeyAuth
// @Router       /scans [post]
func (s *Server) createScanHandler(c *gin.Context) {
	var req CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request payload: %v", err)})
		return
	}

	scanReq, err := resolveRequest(req, s.limits)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	taskID, err := uuid.NewRandom()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate task id"})
		return
	}

	ctx := c.Request.Context()
	task := &ScanTask{
		ID:         taskID.String(),
		Status:     StatusPending,
		Host:       scanReq.Host,
		PortStart:  scanReq.PortStart,
		PortEnd:    scanReq.PortEnd,
		BatchWidth: scanReq.BatchWidth,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist task"})
		return
	}

	if err := s.store.PushToQueue(ctx, task.ID); err != nil {
		task.Status = StatusFailed
		task.Error = "failed to queue task"
		now := time.Now().UTC()
		task.CompletedAt = &now
		_ = s.store.UpdateTask(ctx, task)

		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to queue task"})
		return
	}

	c.JSON(http.StatusAccepted, ScanAcceptedResponse{ID: task.ID, Status: task.Status})
}

// @Summary      Get scan status and results
// @Description  Retrieve a snapshot of a scan task. Poll until the status is completed or failed.
// @Tags         Scans
// @Produce      json
// @Param        id   path      string         true  "Scan Task ID (UUID v4)"
// @Success      200  {object}  ScanTask       "Current task snapshot including open endpoints when completed"
// @Failure      400  {object}  ErrorResponse  "Malformed task identifier"
// @Failure      401  {object}  ErrorResponse  "Missing or incorrect API key"
// @Failure      404  {object}  ErrorResponse  "Task with the provided ID does not exist"
// @Failure      429  {object}  ErrorResponse  "Rate limit exceeded"
// @Failure      500  {object}  ErrorResponse  "Internal error when loading the task"
// @Security     ApiKeyAuth
// @Router       /scans/{id} [get]
func (s *Server) getScanHandler(c *gin.Context) {
	id := c.Param("id")
	if parsed, err := uuid.Parse(id); err != nil || parsed.Version() != 4 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id format"})
		return
	}

	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// @Summary      Liveness and store connectivity
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /healthz [get]
func (s *Server) healthHandler(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: err.Error()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Store: "ok"})
}
