package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tcpsweep/scanner"
)

const (
	popWait    = 5 * time.Second
	errBackoff = time.Second
)

// Workers pull queued task IDs and run the scans they describe.
type Workers struct {
	store   TaskStore
	scanner *scanner.Scanner
	logger  *slog.Logger
	count   int
}

// NewWorkers builds a pool of count workers sharing one scanner.
func NewWorkers(store TaskStore, sc *scanner.Scanner, logger *slog.Logger, count int) *Workers {
	if count <= 0 {
		count = 1
	}
	return &Workers{store: store, scanner: sc, logger: logger, count: count}
}

// Run blocks until ctx is done. A scan interrupted by cancellation is reset to
// pending and pushed back onto the queue for the next worker to pick up.
func (w *Workers) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.count; i++ {
		id := i
		g.Go(func() error {
			w.loop(ctx, id)
			return nil
		})
	}
	return g.Wait()
}

func (w *Workers) loop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker", workerID)
	for {
		if ctx.Err() != nil {
			return
		}

		taskID, err := w.store.PopFromQueue(ctx, popWait)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logger.Error("worker failed to pop task", "error", err)
			sleepCtx(ctx, errBackoff)
			continue
		}

		w.process(ctx, logger, taskID)
	}
}

// process runs a single task to a terminal state, or requeues it when ctx ends
// mid-scan. Task bookkeeping uses a context detached from shutdown so the
// status is always written.
func (w *Workers) process(ctx context.Context, logger *slog.Logger, taskID string) {
	storeCtx := context.WithoutCancel(ctx)

	task, err := w.store.GetTask(storeCtx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			logger.Warn("worker task disappeared", "task_id", taskID)
			return
		}
		logger.Error("worker failed to load task", "task_id", taskID, "error", err)
		return
	}

	started := time.Now().UTC()
	task.Status = StatusRunning
	task.Error = ""
	task.Open = nil
	task.Summary = nil
	task.StartedAt = &started
	task.CompletedAt = nil
	if err := w.store.UpdateTask(storeCtx, task); err != nil {
		logger.Error("worker failed to mark task running", "task_id", taskID, "error", err)
		return
	}

	logger.Info("scan started",
		"task_id", task.ID,
		"host", task.Host,
		"port_start", task.PortStart,
		"port_end", task.PortEnd,
		"batch_width", task.BatchWidth,
	)

	report, err := w.scanner.Run(ctx, scanner.Request{
		Host:       task.Host,
		PortStart:  task.PortStart,
		PortEnd:    task.PortEnd,
		BatchWidth: task.BatchWidth,
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			requeueTask(storeCtx, logger, w.store, task)
			return
		}
		failTask(storeCtx, logger, w.store, task, err)
		return
	}

	task.Status = StatusCompleted
	task.Open = make([]string, 0, len(report.Open))
	for _, ep := range report.Open {
		task.Open = append(task.Open, ep.String())
	}
	task.Summary = &ScanSummary{
		Probed:     report.Probed,
		Closed:     report.Closed,
		Failed:     report.Failed,
		Exhausted:  report.Exhausted,
		Batches:    report.Batches,
		DurationMS: report.Elapsed.Milliseconds(),
	}
	now := time.Now().UTC()
	task.CompletedAt = &now

	if err := w.store.UpdateTask(storeCtx, task); err != nil {
		logger.Error("worker failed to update task", "task_id", task.ID, "error", err)
		return
	}

	logger.Info("scan completed",
		"task_id", task.ID,
		"open", len(task.Open),
		"exhausted", report.Exhausted,
		"duration_ms", task.Summary.DurationMS,
	)
}

func failTask(ctx context.Context, logger *slog.Logger, store TaskStore, task *ScanTask, err error) {
	logger.Error("worker task failed", "task_id", task.ID, "error", err)
	task.Status = StatusFailed
	task.Error = err.Error()
	task.Open = nil
	task.Summary = nil
	now := time.Now().UTC()
	task.CompletedAt = &now
	if updateErr := store.UpdateTask(ctx, task); updateErr != nil {
		logger.Error("worker failed to persist failed task", "task_id", task.ID, "error", updateErr)
	}
}

func requeueTask(ctx context.Context, logger *slog.Logger, store TaskStore, task *ScanTask) {
	task.Status = StatusPending
	task.Error = ""
	task.Open = nil
	task.Summary = nil
	task.StartedAt = nil
	task.CompletedAt = nil
	if err := store.UpdateTask(ctx, task); err != nil {
		logger.Error("worker failed to reset interrupted task", "task_id", task.ID, "error", err)
		return
	}
	if err := store.PushToQueue(ctx, task.ID); err != nil {
		failTask(ctx, logger, store, task, fmt.Errorf("requeue interrupted scan: %w", err))
		return
	}
	logger.Info("scan interrupted, task requeued", "task_id", task.ID)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
