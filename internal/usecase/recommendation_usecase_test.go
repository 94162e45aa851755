package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"refermatch/internal/domain/linktoken"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recFixture struct {
	postingID   uuid.UUID
	connectorID uuid.UUID
	profileID   uuid.UUID
	codec       *linktoken.Codec
	postings    mockPostingRepo
	profiles    mockProfileRepo
	connectors  mockConnectorRepo
	matches     mockMatchRepo
	rels        mockRelationshipRepo
	created     []repository.Recommendation
	used        []string
}

func newRecFixture() *recFixture {
	f := &recFixture{
		postingID:   uuid.New(),
		connectorID: uuid.New(),
		profileID:   uuid.New(),
		codec:       &linktoken.Codec{Secret: "s", MaxAge: 90 * 24 * time.Hour, FutureSkew: time.Hour},
	}
	f.postings = mockPostingRepo{postings: map[uuid.UUID]repository.Posting{
		f.postingID: {ID: f.postingID, Title: "Staff Engineer", Organization: "Kavak"},
	}}
	f.profiles = mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{
		f.profileID: {ID: f.profileID, FullName: "Ana Torres"},
	}}
	f.connectors = mockConnectorRepo{connectors: map[uuid.UUID]repository.Connector{
		f.connectorID: {ID: f.connectorID, Name: "Luis Mendez"},
	}}
	f.matches = mockMatchRepo{matches: []repository.Match{
		{PostingID: f.postingID, ProfileID: f.profileID, Score: 55},
	}}
	f.rels = mockRelationshipRepo{rels: []repository.Relationship{
		{ConnectorID: f.connectorID, ProfileID: f.profileID, Confidence: 80, CompanyName: "Rappi"},
	}}
	return f
}

func (f *recFixture) usecase() *Recommendation {
	return NewRecommendationUsecase(
		f.postings,
		f.profiles,
		f.connectors,
		mockRecommendationRepo{created: &f.created},
		mockLinkRepo{used: &f.used},
		NewEligibilityUsecase(f.matches, f.rels),
		f.codec,
		40,
		zap.NewNop(),
	)
}

func (f *recFixture) token() string {
	return f.codec.Generate(f.connectorID.String(), f.postingID.String(), time.Now())
}

func TestRecommendation_View(t *testing.T) {
	f := newRecFixture()
	u := f.usecase()

	view, err := u.View(context.Background(), f.token())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Posting.ID != f.postingID {
		t.Fatalf("unexpected posting %+v", view.Posting)
	}
	if view.ConnectorName != "Luis Mendez" {
		t.Fatalf("unexpected connector %q", view.ConnectorName)
	}
	if len(view.Candidates) != 1 || view.Candidates[0].ProfileID != f.profileID {
		t.Fatalf("expected the eligible candidate, got %+v", view.Candidates)
	}
	if len(view.Profiles) != 1 || view.Profiles[0].FullName != "Ana Torres" {
		t.Fatalf("expected candidate profile detail, got %+v", view.Profiles)
	}
}

func TestRecommendation_ViewListingThreshold(t *testing.T) {
	// Score 55 clears the listing threshold (40) but not the fan-out one: the
	// on-demand view is deliberately looser than outbound notification.
	f := newRecFixture()
	u := f.usecase()

	view, err := u.View(context.Background(), f.token())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Candidates) != 1 {
		t.Fatalf("score 55 should clear the listing threshold, got %+v", view.Candidates)
	}
}

func TestRecommendation_InvalidToken(t *testing.T) {
	f := newRecFixture()
	u := f.usecase()

	for _, token := range []string{
		"garbage",
		f.codec.Generate(f.connectorID.String(), f.postingID.String(), time.Now().Add(-120*24*time.Hour)),
		(&linktoken.Codec{Secret: "other", MaxAge: time.Hour, FutureSkew: time.Hour}).Generate(f.connectorID.String(), f.postingID.String(), time.Now()),
	} {
		if _, err := u.View(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func TestRecommendation_SubmitRecordsAndStampsLink(t *testing.T) {
	f := newRecFixture()
	u := f.usecase()
	token := f.token()

	rec, err := u.Submit(context.Background(), token, f.profileID, "great engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PostingID != f.postingID || rec.ConnectorID != f.connectorID || rec.ProfileID != f.profileID {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if len(f.created) != 1 {
		t.Fatalf("expected one stored recommendation, got %d", len(f.created))
	}
	if len(f.used) != 1 || f.used[0] != token {
		t.Fatalf("expected the link record to be stamped, got %v", f.used)
	}
}

func TestRecommendation_SubmitRejectsIneligibleProfile(t *testing.T) {
	f := newRecFixture()
	u := f.usecase()

	if _, err := u.Submit(context.Background(), f.token(), uuid.New(), ""); !errors.Is(err, ErrProfileNotEligible) {
		t.Fatalf("expected ErrProfileNotEligible, got %v", err)
	}
	if len(f.created) != 0 {
		t.Fatalf("ineligible submissions must not be stored")
	}
}
