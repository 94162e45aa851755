// Package tasks is the redis-backed work queue between the HTTP layer and
// the runner. Triggers enqueue a typed task and return immediately; the
// runner consumes the queue one task at a time and keeps a status record per
// run so callers can poll progress.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindMatchPosting   = "match_posting"
	KindMatchProfile   = "match_profile"
	KindSyncProfile    = "sync_profile"
	KindSyncConnector  = "sync_connector"
	KindNotifyPosting  = "notify_posting"
	KindMatchAndNotify = "match_and_notify"
)

// Task is one unit of background work. RunID doubles as the status record
// key.
type Task struct {
	RunID       uuid.UUID `json:"run_id"`
	Kind        string    `json:"kind"`
	PostingID   uuid.UUID `json:"posting_id,omitempty"`
	ProfileID   uuid.UUID `json:"profile_id,omitempty"`
	ConnectorID uuid.UUID `json:"connector_id,omitempty"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

func NewTask(kind string) Task {
	return Task{
		RunID:      uuid.New(),
		Kind:       kind,
		EnqueuedAt: time.Now().UTC(),
	}
}
