package ws

import (
	"encoding/json"
	"time"

	"refermatch/internal/tasks"
)

// RunEvent is the wire shape of one run status broadcast.
type RunEvent struct {
	Type      string         `json:"type"`
	RunID     string         `json:"run_id"`
	Kind      string         `json:"kind"`
	State     string         `json:"state"`
	Done      int            `json:"done,omitempty"`
	Total     int            `json:"total,omitempty"`
	Report    map[string]int `json:"report,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// PublishRunStatus converts a status transition into a broadcast. Wired into
// the worker's Publish hook.
func PublishRunStatus(hub *Hub) func(status tasks.RunStatus) {
	return func(status tasks.RunStatus) {
		evt := RunEvent{
			Type:      "run_status",
			RunID:     status.RunID.String(),
			Kind:      status.Kind,
			State:     status.State,
			Done:      status.Done,
			Total:     status.Total,
			Report:    status.Report,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		b, err := json.Marshal(evt)
		if err != nil {
			return
		}
		hub.Broadcast(b)
	}
}
