package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func historyEntry(profileID uuid.UUID, company, start, end string) repository.WorkHistoryEntry {
	parse := func(s string) *time.Time {
		if s == "" {
			return nil
		}
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic(err)
		}
		return &ts
	}
	return repository.WorkHistoryEntry{
		ID:          uuid.New(),
		ProfileID:   profileID,
		CompanyName: company,
		StartDate:   parse(start),
		EndDate:     parse(end),
	}
}

func TestRelationshipSync_CreatesEdgeFromOverlap(t *testing.T) {
	connectorProfileID := uuid.New()
	candidateID := uuid.New()
	connector := repository.Connector{ID: uuid.New(), ProfileID: &connectorProfileID}

	profiles := mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{
		candidateID: {ID: candidateID},
	}}
	history := mockWorkHistoryRepo{byProfile: map[uuid.UUID][]repository.WorkHistoryEntry{
		connectorProfileID: {historyEntry(connectorProfileID, "Rappi S.A.", "2019-01-01", "2021-01-01")},
		candidateID:        {historyEntry(candidateID, "rappi", "2019-06-01", "2020-06-01")},
	}}
	connectors := mockConnectorRepo{linked: []repository.Connector{connector}}

	var inserts []repository.Relationship
	uc := NewRelationshipSyncUsecase(connectors, profiles, history, mockRelationshipRepo{inserts: &inserts}, zap.NewNop())

	report, err := uc.SyncProfile(context.Background(), candidateID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(inserts) != 1 {
		t.Fatalf("expected one edge, got %d", len(inserts))
	}

	edge := inserts[0]
	if edge.ConnectorID != connector.ID || edge.ProfileID != candidateID {
		t.Fatalf("unexpected edge %+v", edge)
	}
	if edge.Source != SourceWorkOverlap {
		t.Fatalf("source = %q, want %q", edge.Source, SourceWorkOverlap)
	}
	if edge.Confidence != 100 {
		t.Fatalf("twelve months of overlap should saturate confidence, got %d", edge.Confidence)
	}
}

func TestRelationshipSync_IdempotentRerun(t *testing.T) {
	connectorProfileID := uuid.New()
	candidateID := uuid.New()
	connector := repository.Connector{ID: uuid.New(), ProfileID: &connectorProfileID}

	profiles := mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{candidateID: {ID: candidateID}}}
	history := mockWorkHistoryRepo{byProfile: map[uuid.UUID][]repository.WorkHistoryEntry{
		connectorProfileID: {historyEntry(connectorProfileID, "Kavak", "2020-01-01", "2022-01-01")},
		candidateID:        {historyEntry(candidateID, "Kavak", "2020-06-01", "2021-06-01")},
	}}
	connectors := mockConnectorRepo{linked: []repository.Connector{connector}}

	repo := mockRelationshipRepo{existing: map[string]bool{
		relKey(connector.ID, candidateID, SourceWorkOverlap): true,
	}}
	uc := NewRelationshipSyncUsecase(connectors, profiles, history, repo, zap.NewNop())

	report, err := uc.SyncProfile(context.Background(), candidateID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 0 || report.Existing != 1 {
		t.Fatalf("rerun must not duplicate edges, got %+v", report)
	}
}

func TestRelationshipSync_NoOverlapNoEdge(t *testing.T) {
	connectorProfileID := uuid.New()
	candidateID := uuid.New()
	connector := repository.Connector{ID: uuid.New(), ProfileID: &connectorProfileID}

	profiles := mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{candidateID: {ID: candidateID}}}
	history := mockWorkHistoryRepo{byProfile: map[uuid.UUID][]repository.WorkHistoryEntry{
		connectorProfileID: {historyEntry(connectorProfileID, "Globant", "2015-01-01", "2016-01-01")},
		candidateID:        {historyEntry(candidateID, "Globant", "2018-01-01", "2019-01-01")},
	}}
	connectors := mockConnectorRepo{linked: []repository.Connector{connector}}

	var inserts []repository.Relationship
	uc := NewRelationshipSyncUsecase(connectors, profiles, history, mockRelationshipRepo{inserts: &inserts}, zap.NewNop())

	report, err := uc.SyncProfile(context.Background(), candidateID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 0 || len(inserts) != 0 {
		t.Fatalf("disjoint intervals must not create edges, got %+v", report)
	}
}

func TestRelationshipSync_SkipsSelfPair(t *testing.T) {
	profileID := uuid.New()
	connector := repository.Connector{ID: uuid.New(), ProfileID: &profileID}

	profiles := mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{profileID: {ID: profileID}}}
	connectors := mockConnectorRepo{linked: []repository.Connector{connector}}
	uc := NewRelationshipSyncUsecase(connectors, profiles, mockWorkHistoryRepo{}, mockRelationshipRepo{}, zap.NewNop())

	report, err := uc.SyncProfile(context.Background(), profileID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Examined != 0 {
		t.Fatalf("a connector must not pair with its own profile, got %+v", report)
	}
}

func TestRelationshipSync_WriteFailureCounted(t *testing.T) {
	connectorProfileID := uuid.New()
	candidateID := uuid.New()
	connector := repository.Connector{ID: uuid.New(), ProfileID: &connectorProfileID}

	profiles := mockProfileRepo{profiles: map[uuid.UUID]repository.Profile{candidateID: {ID: candidateID}}}
	history := mockWorkHistoryRepo{byProfile: map[uuid.UUID][]repository.WorkHistoryEntry{
		connectorProfileID: {historyEntry(connectorProfileID, "Nubank", "2020-01-01", "2022-01-01")},
		candidateID:        {historyEntry(candidateID, "Nubank", "2020-01-01", "2022-01-01")},
	}}
	connectors := mockConnectorRepo{linked: []repository.Connector{connector}}

	uc := NewRelationshipSyncUsecase(connectors, profiles, history, mockRelationshipRepo{err: errors.New("db down")}, zap.NewNop())

	report, err := uc.SyncProfile(context.Background(), candidateID)
	if err != nil {
		t.Fatalf("per-pair failures must not abort the run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("expected the failure to be counted, got %+v", report)
	}
}

func TestRelationshipSync_ConnectorWithoutProfile(t *testing.T) {
	connectorID := uuid.New()
	connectors := mockConnectorRepo{connectors: map[uuid.UUID]repository.Connector{
		connectorID: {ID: connectorID},
	}}
	uc := NewRelationshipSyncUsecase(connectors, mockProfileRepo{}, mockWorkHistoryRepo{}, mockRelationshipRepo{}, zap.NewNop())

	if _, err := uc.SyncConnector(context.Background(), connectorID); !errors.Is(err, ErrConnectorNoProfile) {
		t.Fatalf("expected ErrConnectorNoProfile, got %v", err)
	}
}
