package usecase

import (
	"context"
	"time"

	"refermatch/internal/ai"
	"refermatch/internal/domain/scoring"
	"refermatch/internal/repository"

	"github.com/google/uuid"
)

type mockPostingRepo struct {
	postings map[uuid.UUID]repository.Posting
	ids      []uuid.UUID
	err      error
}

func (m mockPostingRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Posting, error) {
	if m.err != nil {
		return repository.Posting{}, m.err
	}
	if p, ok := m.postings[id]; ok {
		return p, nil
	}
	return repository.Posting{}, repository.ErrPostingNotFound
}

func (m mockPostingRepo) ListActiveIDs(context.Context) ([]uuid.UUID, error) {
	return m.ids, m.err
}

type mockProfileRepo struct {
	profiles map[uuid.UUID]repository.Profile
	ids      []uuid.UUID
	err      error
}

func (m mockProfileRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Profile, error) {
	if m.err != nil {
		return repository.Profile{}, m.err
	}
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return repository.Profile{}, repository.ErrProfileNotFound
}

func (m mockProfileRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]repository.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]repository.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m mockProfileRepo) ListIDs(context.Context) ([]uuid.UUID, error) {
	return m.ids, m.err
}

type mockWorkHistoryRepo struct {
	byProfile map[uuid.UUID][]repository.WorkHistoryEntry
	err       error
}

func (m mockWorkHistoryRepo) FindByProfileID(_ context.Context, id uuid.UUID) ([]repository.WorkHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byProfile[id], nil
}

type mockConnectorRepo struct {
	connectors map[uuid.UUID]repository.Connector
	linked     []repository.Connector
	err        error
}

func (m mockConnectorRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Connector, error) {
	if m.err != nil {
		return repository.Connector{}, m.err
	}
	if c, ok := m.connectors[id]; ok {
		return c, nil
	}
	return repository.Connector{}, repository.ErrConnectorNotFound
}

func (m mockConnectorRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]repository.Connector, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]repository.Connector, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.connectors[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m mockConnectorRepo) ListWithLinkedProfile(context.Context) ([]repository.Connector, error) {
	return m.linked, m.err
}

type mockMatchRepo struct {
	upserts *[]repository.MatchUpsert
	matches []repository.Match
	err     error
}

func (m mockMatchRepo) Upsert(_ context.Context, up repository.MatchUpsert) error {
	if m.err != nil {
		return m.err
	}
	if m.upserts != nil {
		*m.upserts = append(*m.upserts, up)
	}
	return nil
}

func (m mockMatchRepo) ListByPostingMinScore(_ context.Context, postingID uuid.UUID, minScore float64) ([]repository.Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]repository.Match, 0)
	for _, match := range m.matches {
		if match.PostingID == postingID && match.Score >= minScore {
			out = append(out, match)
		}
	}
	return out, nil
}

type mockRelationshipRepo struct {
	inserts  *[]repository.Relationship
	existing map[string]bool
	rels     []repository.Relationship
	err      error
}

func relKey(connectorID, profileID uuid.UUID, source string) string {
	return connectorID.String() + "|" + profileID.String() + "|" + source
}

func (m mockRelationshipRepo) InsertIfAbsent(_ context.Context, rel repository.Relationship) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.existing[relKey(rel.ConnectorID, rel.ProfileID, rel.Source)] {
		return false, nil
	}
	if m.inserts != nil {
		*m.inserts = append(*m.inserts, rel)
	}
	return true, nil
}

func (m mockRelationshipRepo) ListByConnector(_ context.Context, connectorID uuid.UUID) ([]repository.Relationship, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]repository.Relationship, 0)
	for _, rel := range m.rels {
		if rel.ConnectorID == connectorID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m mockRelationshipRepo) ConnectorIDsForProfiles(_ context.Context, profileIDs []uuid.UUID) ([]uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	wanted := make(map[uuid.UUID]struct{}, len(profileIDs))
	for _, id := range profileIDs {
		wanted[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{})
	out := make([]uuid.UUID, 0)
	for _, rel := range m.rels {
		if _, ok := wanted[rel.ProfileID]; !ok {
			continue
		}
		if _, ok := seen[rel.ConnectorID]; !ok {
			seen[rel.ConnectorID] = struct{}{}
			out = append(out, rel.ConnectorID)
		}
	}
	return out, nil
}

type mockRecommendationRepo struct {
	created *[]repository.Recommendation
	err     error
}

func (m mockRecommendationRepo) Create(_ context.Context, rec repository.Recommendation) (repository.Recommendation, error) {
	if m.err != nil {
		return repository.Recommendation{}, m.err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if m.created != nil {
		*m.created = append(*m.created, rec)
	}
	return rec, nil
}

type mockLinkRepo struct {
	created *[]repository.RecommendationLink
	used    *[]string
	err     error
}

func (m mockLinkRepo) Create(_ context.Context, link repository.RecommendationLink) error {
	if m.err != nil {
		return m.err
	}
	if m.created != nil {
		*m.created = append(*m.created, link)
	}
	return nil
}

func (m mockLinkRepo) MarkUsed(_ context.Context, token string, _ time.Time) error {
	if m.err != nil {
		return m.err
	}
	if m.used != nil {
		*m.used = append(*m.used, token)
	}
	return nil
}

type mockScorer struct {
	assessment *ai.Assessment
	err        error
	calls      int
}

func (m *mockScorer) Score(context.Context, scoring.Posting, scoring.Profile, []scoring.HistoryEntry) (*ai.Assessment, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.assessment, nil
}
