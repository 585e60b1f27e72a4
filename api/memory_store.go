package api

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process TaskStore for tests and single-node runs without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]ScanTask
	queue chan string
}

// NewMemoryStore creates a store whose queue holds up to capacity pending IDs.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryStore{
		tasks: make(map[string]ScanTask),
		queue: make(chan string, capacity),
	}
}

// CreateTask stores a copy of task.
func (m *MemoryStore) CreateTask(_ context.Context, task *ScanTask) error {
	m.put(task)
	return nil
}

// GetTask returns a copy of the stored task.
func (m *MemoryStore) GetTask(_ context.Context, id string) (*ScanTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	task.Open = cloneOpen(task.Open)
	if task.Summary != nil {
		summary := *task.Summary
		task.Summary = &summary
	}
	return &task, nil
}

// UpdateTask replaces the stored task.
func (m *MemoryStore) UpdateTask(_ context.Context, task *ScanTask) error {
	m.put(task)
	return nil
}

func (m *MemoryStore) put(task *ScanTask) {
	stored := *task
	stored.Open = cloneOpen(task.Open)
	if task.Summary != nil {
		summary := *task.Summary
		stored.Summary = &summary
	}
	m.mu.Lock()
	m.tasks[task.ID] = stored
	m.mu.Unlock()
}

// PushToQueue enqueues a task ID, blocking while the queue is full.
func (m *MemoryStore) PushToQueue(ctx context.Context, taskID string) error {
	select {
	case m.queue <- taskID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PopFromQueue waits up to wait for a task ID.
func (m *MemoryStore) PopFromQueue(ctx context.Context, wait time.Duration) (string, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case id := <-m.queue:
		return id, nil
	case <-timer.C:
		return "", ErrQueueEmpty
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// cloneOpen copies open, keeping an empty result distinct from a missing one.
func cloneOpen(open []string) []string {
	if open == nil {
		return nil
	}
	return append([]string{}, open...)
}
