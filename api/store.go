package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TaskStore defines persistence operations for scan tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task *ScanTask) error
	GetTask(ctx context.Context, id string) (*ScanTask, error)
	UpdateTask(ctx context.Context, task *ScanTask) error
	PushToQueue(ctx context.Context, taskID string) error
	// PopFromQueue waits up to wait for a task ID and returns ErrQueueEmpty when none arrived.
	PopFromQueue(ctx context.Context, wait time.Duration) (string, error)
	Ping(ctx context.Context) error
}

var (
	// ErrTaskNotFound indicates the requested task doesn't exist in the store.
	ErrTaskNotFound = errors.New("task not found")
	// ErrQueueEmpty indicates no task was queued within the wait period.
	ErrQueueEmpty = errors.New("queue empty")
)

const queueKey = "scans:queue"

// RedisStore implements TaskStore using Redis as backend. Task hashes expire
// after ttl so finished scans do not accumulate.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed task store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) taskKey(id string) string {
	return fmt.Sprintf("scan:%s", id)
}

// CreateTask persists a new scan task in Redis.
func (s *RedisStore) CreateTask(ctx context.Context, task *ScanTask) error {
	return s.write(ctx, task)
}

// GetTask retrieves a task by ID.
func (s *RedisStore) GetTask(ctx context.Context, id string) (*ScanTask, error) {
	res, err := s.client.HGetAll(ctx, s.taskKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrTaskNotFound
	}
	return deserializeTask(res)
}

// UpdateTask updates an existing task in Redis and refreshes its expiry.
func (s *RedisStore) UpdateTask(ctx context.Context, task *ScanTask) error {
	return s.write(ctx, task)
}

func (s *RedisStore) write(ctx context.Context, task *ScanTask) error {
	data, err := serializeTask(task)
	if err != nil {
		return err
	}

	key := s.taskKey(task.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// PushToQueue enqueues a task ID for workers to process.
func (s *RedisStore) PushToQueue(ctx context.Context, taskID string) error {
	return s.client.LPush(ctx, queueKey, taskID).Err()
}

// PopFromQueue blocks until a task ID is available or wait elapses.
func (s *RedisStore) PopFromQueue(ctx context.Context, wait time.Duration) (string, error) {
	res, err := s.client.BRPop(ctx, wait, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(res) != 2 {
		return "", errors.New("unexpected response size from BRPOP")
	}
	return res[1], nil
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func serializeTask(task *ScanTask) (map[string]interface{}, error) {
	var openData string
	if task.Open != nil {
		encoded, err := json.Marshal(task.Open)
		if err != nil {
			return nil, err
		}
		openData = string(encoded)
	}

	var summaryData string
	if task.Summary != nil {
		encoded, err := json.Marshal(task.Summary)
		if err != nil {
			return nil, err
		}
		summaryData = string(encoded)
	}

	return map[string]interface{}{
		"id":           task.ID,
		"status":       task.Status,
		"host":         task.Host,
		"port_start":   task.PortStart,
		"port_end":     task.PortEnd,
		"batch_width":  task.BatchWidth,
		"open":         openData,
		"summary":      summaryData,
		"created_at":   task.CreatedAt.Format(time.RFC3339Nano),
		"started_at":   formatTime(task.StartedAt),
		"completed_at": formatTime(task.CompletedAt),
		"error":        task.Error,
	}, nil
}

func deserializeTask(data map[string]string) (*ScanTask, error) {
	task := &ScanTask{
		ID:     data["id"],
		Status: data["status"],
		Host:   data["host"],
		Error:  data["error"],
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"port_start", &task.PortStart},
		{"port_end", &task.PortEnd},
		{"batch_width", &task.BatchWidth},
	}
	for _, f := range ints {
		raw := data[f.field]
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.field, err)
		}
		*f.dst = n
	}

	if raw := data["open"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &task.Open); err != nil {
			return nil, fmt.Errorf("decode open: %w", err)
		}
	}

	if raw := data["summary"]; raw != "" {
		task.Summary = &ScanSummary{}
		if err := json.Unmarshal([]byte(raw), task.Summary); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
	}

	var err error
	if raw := data["created_at"]; raw != "" {
		if task.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, err
		}
	}
	if task.StartedAt, err = parseTime(data["started_at"]); err != nil {
		return nil, err
	}
	if task.CompletedAt, err = parseTime(data["completed_at"]); err != nil {
		return nil, err
	}

	return task, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
