package usecase

import (
	"context"
	"strings"
	"testing"

	"refermatch/internal/repository"

	"github.com/google/uuid"
)

func TestEligibility_IntersectionAndOrder(t *testing.T) {
	postingID := uuid.New()
	connectorID := uuid.New()
	known1 := uuid.New()
	known2 := uuid.New()
	stranger := uuid.New()

	matches := mockMatchRepo{matches: []repository.Match{
		{PostingID: postingID, ProfileID: known1, Score: 91},
		{PostingID: postingID, ProfileID: stranger, Score: 85},
		{PostingID: postingID, ProfileID: known2, Score: 74},
	}}
	rels := mockRelationshipRepo{rels: []repository.Relationship{
		{ConnectorID: connectorID, ProfileID: known1, Confidence: 80, CompanyName: "Rappi", OverlapMonths: 10},
		{ConnectorID: connectorID, ProfileID: known2, Confidence: 100, CompanyName: "Kavak", OverlapMonths: 24},
		{ConnectorID: uuid.New(), ProfileID: stranger, Confidence: 90},
	}}

	uc := NewEligibilityUsecase(matches, rels)
	got, err := uc.Resolve(context.Background(), postingID, connectorID, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected two eligible profiles, got %d", len(got))
	}
	if got[0].ProfileID != known1 || got[1].ProfileID != known2 {
		t.Fatalf("results must keep score order, got %+v", got)
	}
	if !strings.Contains(got[0].Evidence, "Rappi") {
		t.Fatalf("evidence should name the shared company, got %q", got[0].Evidence)
	}
}

func TestEligibility_ThresholdBoundary(t *testing.T) {
	postingID := uuid.New()
	connectorID := uuid.New()
	profileID := uuid.New()

	rels := mockRelationshipRepo{rels: []repository.Relationship{
		{ConnectorID: connectorID, ProfileID: profileID, Confidence: 80},
	}}

	above := mockMatchRepo{matches: []repository.Match{
		{PostingID: postingID, ProfileID: profileID, Score: 75},
	}}
	got, err := NewEligibilityUsecase(above, rels).Resolve(context.Background(), postingID, connectorID, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("score 75 at threshold 70 should qualify")
	}

	below := mockMatchRepo{matches: []repository.Match{
		{PostingID: postingID, ProfileID: profileID, Score: 65},
	}}
	got, err = NewEligibilityUsecase(below, rels).Resolve(context.Background(), postingID, connectorID, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("score 65 at threshold 70 must be excluded")
	}
}

func TestEligibility_NoMatchesMeansNoAccess(t *testing.T) {
	postingID := uuid.New()
	connectorID := uuid.New()

	rels := mockRelationshipRepo{rels: []repository.Relationship{
		{ConnectorID: connectorID, ProfileID: uuid.New(), Confidence: 100},
	}}

	got, err := NewEligibilityUsecase(mockMatchRepo{}, rels).Resolve(context.Background(), postingID, connectorID, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no scored matches must mean no eligibility, got %+v", got)
	}
}

func TestEligibility_BestEdgePerProfileWins(t *testing.T) {
	postingID := uuid.New()
	connectorID := uuid.New()
	profileID := uuid.New()

	matches := mockMatchRepo{matches: []repository.Match{
		{PostingID: postingID, ProfileID: profileID, Score: 80},
	}}
	rels := mockRelationshipRepo{rels: []repository.Relationship{
		{ConnectorID: connectorID, ProfileID: profileID, Source: "work_overlap", Confidence: 40, CompanyName: "Globant"},
		{ConnectorID: connectorID, ProfileID: profileID, Source: "manual", Confidence: 95, CompanyName: "Stripe"},
	}}

	got, err := NewEligibilityUsecase(matches, rels).Resolve(context.Background(), postingID, connectorID, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Confidence != 95 {
		t.Fatalf("highest-confidence edge should win, got %+v", got)
	}
}
