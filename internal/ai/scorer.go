// Package ai defines the external scorer contract used by match
// orchestration. Implementations must fail fast with an error when the
// provider cannot answer; a zero score is a valid answer, not a failure.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"refermatch/internal/domain/scoring"
)

var (
	ErrScorerUnavailable = errors.New("ai: scorer unavailable")
)

// Assessment is the scorer's verdict for one (posting, profile) pair.
type Assessment struct {
	Score     float64
	Summary   string
	StrongFit []string
	Gaps      []string
	Raw       string
}

type Scorer interface {
	Score(ctx context.Context, posting scoring.Posting, profile scoring.Profile, history []scoring.HistoryEntry) (*Assessment, error)
}

// MalformedResponseError marks provider output that could not be parsed into
// an Assessment.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai: malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ai: malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RateLimitError marks provider refusals that warrant an extended pause
// before the next call.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("ai: rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a rate-limit refusal, either typed or
// recognizable from the provider's message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
