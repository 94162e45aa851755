package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"refermatch/internal/config"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type scriptedOrchestrator struct {
	outcomes map[uuid.UUID]MatchOutcome
	errs     map[uuid.UUID]error
	order    []uuid.UUID
	calls    int
}

func (s *scriptedOrchestrator) ScorePair(_ context.Context, postingID, profileID uuid.UUID) (MatchOutcome, error) {
	s.calls++
	s.order = append(s.order, profileID)
	if err, ok := s.errs[profileID]; ok {
		return MatchOutcome{}, err
	}
	if outcome, ok := s.outcomes[profileID]; ok {
		return outcome, nil
	}
	return MatchOutcome{PostingID: postingID, ProfileID: profileID, Score: 50, Source: SourceFallback}, nil
}

func batchConfig() config.MatchingConfig {
	return config.MatchingConfig{
		BatchSize:        2,
		InterItemDelay:   500 * time.Millisecond,
		InterBatchDelay:  3 * time.Second,
		RateLimitBackoff: 30 * time.Second,
	}
}

func newTestBatch(orch MatchUsecase, postings mockPostingRepo, profiles mockProfileRepo) (*BatchMatch, *[]time.Duration) {
	b := NewBatchMatchUsecase(orch, postings, profiles, batchConfig(), zap.NewNop())
	var slept []time.Duration
	b.sleep = func(_ context.Context, d time.Duration) {
		slept = append(slept, d)
	}
	return b, &slept
}

func TestBatchMatch_PacingAndOrder(t *testing.T) {
	postingID := uuid.New()
	profileIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	postings := mockPostingRepo{postings: map[uuid.UUID]repository.Posting{postingID: {ID: postingID}}}
	profiles := mockProfileRepo{ids: profileIDs}
	orch := &scriptedOrchestrator{}
	b, slept := newTestBatch(orch, postings, profiles)

	report, err := b.MatchPosting(context.Background(), postingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Attempted != 5 || report.Succeeded != 5 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	for i, id := range orch.order {
		if id != profileIDs[i] {
			t.Fatalf("pairs processed out of input order at %d", i)
		}
	}

	// Groups of two: item, batch, item, batch pauses between five pairs.
	want := []time.Duration{
		500 * time.Millisecond,
		3 * time.Second,
		500 * time.Millisecond,
		3 * time.Second,
	}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Fatalf("pause %d = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestBatchMatch_FailureIsolation(t *testing.T) {
	postingID := uuid.New()
	bad := uuid.New()
	good := uuid.New()

	postings := mockPostingRepo{postings: map[uuid.UUID]repository.Posting{postingID: {ID: postingID}}}
	profiles := mockProfileRepo{ids: []uuid.UUID{bad, good}}
	orch := &scriptedOrchestrator{errs: map[uuid.UUID]error{bad: errors.New("boom")}}
	b, _ := newTestBatch(orch, postings, profiles)

	report, err := b.MatchPosting(context.Background(), postingID)
	if err != nil {
		t.Fatalf("one bad pair must not abort the batch: %v", err)
	}
	if report.Attempted != 2 || report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestBatchMatch_ScoredCountsNonZeroOnly(t *testing.T) {
	postingID := uuid.New()
	zero := uuid.New()
	high := uuid.New()

	postings := mockPostingRepo{postings: map[uuid.UUID]repository.Posting{postingID: {ID: postingID}}}
	profiles := mockProfileRepo{ids: []uuid.UUID{zero, high}}
	orch := &scriptedOrchestrator{outcomes: map[uuid.UUID]MatchOutcome{
		zero: {ProfileID: zero, Score: 0, Source: SourceFallback},
		high: {ProfileID: high, Score: 82, Source: SourceExternal},
	}}
	b, _ := newTestBatch(orch, postings, profiles)

	report, err := b.MatchPosting(context.Background(), postingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scored != 1 {
		t.Fatalf("scored = %d, want 1", report.Scored)
	}
	if report.Succeeded != 2 {
		t.Fatalf("a zero score still succeeds, got %+v", report)
	}
}

func TestBatchMatch_RateLimitBackoffAndRetry(t *testing.T) {
	postingID := uuid.New()
	limited := uuid.New()

	postings := mockPostingRepo{postings: map[uuid.UUID]repository.Posting{postingID: {ID: postingID}}}
	profiles := mockProfileRepo{ids: []uuid.UUID{limited}}
	orch := &scriptedOrchestrator{outcomes: map[uuid.UUID]MatchOutcome{
		limited: {ProfileID: limited, Score: 40, Source: SourceFallback, RateLimited: true},
	}}
	b, slept := newTestBatch(orch, postings, profiles)

	report, err := b.MatchPosting(context.Background(), postingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 0 {
		t.Fatalf("rate limiting is not a failure, got %+v", report)
	}
	if orch.calls != 2 {
		t.Fatalf("expected one paced retry, got %d calls", orch.calls)
	}

	found := false
	for _, d := range *slept {
		if d == 30*time.Second {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected extended backoff pause, slept %v", *slept)
	}
}

func TestBatchMatch_PostingNotFoundAborts(t *testing.T) {
	b, _ := newTestBatch(&scriptedOrchestrator{}, mockPostingRepo{}, mockProfileRepo{})
	if _, err := b.MatchPosting(context.Background(), uuid.New()); !errors.Is(err, repository.ErrPostingNotFound) {
		t.Fatalf("expected posting lookup failure, got %v", err)
	}
}

func TestBatchMatch_MatchProfileDirection(t *testing.T) {
	profileID := uuid.New()
	postingIDs := []uuid.UUID{uuid.New(), uuid.New()}

	postings := mockPostingRepo{ids: postingIDs}
	profiles := mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{profileID: {ID: profileID}}}
	orch := &scriptedOrchestrator{}
	b, _ := newTestBatch(orch, postings, profiles)

	report, err := b.MatchProfile(context.Background(), profileID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Attempted != 2 {
		t.Fatalf("expected one attempt per active posting, got %+v", report)
	}
}
