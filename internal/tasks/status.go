package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	StateQueued    = "queued"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

var ErrRunNotFound = errors.New("tasks: run not found")

// RunStatus is the poll-able state of one background run.
type RunStatus struct {
	RunID     uuid.UUID      `json:"run_id"`
	Kind      string         `json:"kind"`
	State     string         `json:"state"`
	Done      int            `json:"done"`
	Total     int            `json:"total"`
	Report    map[string]int `json:"report,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StatusStore keeps run records in redis under a TTL; finished runs age out
// on their own.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusStore(client *redis.Client, ttl time.Duration) *StatusStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StatusStore{client: client, ttl: ttl}
}

func statusKey(runID uuid.UUID) string {
	return "runs:" + runID.String()
}

func (s *StatusStore) Set(ctx context.Context, status RunStatus) error {
	status.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusKey(status.RunID), b, s.ttl).Err()
}

func (s *StatusStore) Get(ctx context.Context, runID uuid.UUID) (RunStatus, error) {
	b, err := s.client.Get(ctx, statusKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return RunStatus{}, ErrRunNotFound
		}
		return RunStatus{}, err
	}

	var status RunStatus
	if err := json.Unmarshal(b, &status); err != nil {
		return RunStatus{}, err
	}
	return status, nil
}
