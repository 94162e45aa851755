package dto

import (
	"time"

	"github.com/google/uuid"
)

type RunQueuedResponse struct {
	RunID uuid.UUID `json:"run_id"`
	Kind  string    `json:"kind"`
	State string    `json:"state"`
}

type RunStatusResponse struct {
	RunID     uuid.UUID      `json:"run_id"`
	Kind      string         `json:"kind"`
	State     string         `json:"state"`
	Done      int            `json:"done"`
	Total     int            `json:"total"`
	Report    map[string]int `json:"report,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
