package usecase

import (
	"context"
	"errors"
	"time"

	"refermatch/internal/domain/overlap"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrConnectorNotFound  = errors.New("connector not found")
	ErrConnectorNoProfile = errors.New("connector has no linked profile")
)

// SourceWorkOverlap tags edges inferred from overlapping employment.
const SourceWorkOverlap = "work_overlap"

// SyncReport aggregates one relationship inference run.
type SyncReport struct {
	Examined int
	Created  int
	Existing int
	Failed   int
}

type RelationshipSyncUsecase interface {
	SyncProfile(ctx context.Context, profileID uuid.UUID) (SyncReport, error)
	SyncConnector(ctx context.Context, connectorID uuid.UUID) (SyncReport, error)
}

// RelationshipSync infers connector-profile edges from overlapping work
// history. Writes are additive: only the best overlap per pair is kept, and a
// pair already asserted for the same source is left untouched.
type RelationshipSync struct {
	connectors    repository.ConnectorRepository
	profiles      repository.ProfileRepository
	history       repository.WorkHistoryRepository
	relationships repository.RelationshipRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewRelationshipSyncUsecase(
	connectors repository.ConnectorRepository,
	profiles repository.ProfileRepository,
	history repository.WorkHistoryRepository,
	relationships repository.RelationshipRepository,
	logger *zap.Logger,
) *RelationshipSync {
	return &RelationshipSync{
		connectors:    connectors,
		profiles:      profiles,
		history:       history,
		relationships: relationships,
		logger:        logger,
		now:           time.Now,
	}
}

// SyncProfile pairs one profile against every connector with a linked
// profile of its own.
func (u *RelationshipSync) SyncProfile(ctx context.Context, profileID uuid.UUID) (SyncReport, error) {
	if _, err := u.profiles.FindByID(ctx, profileID); err != nil {
		return SyncReport{}, err
	}
	candidateHistory, err := u.history.FindByProfileID(ctx, profileID)
	if err != nil {
		return SyncReport{}, err
	}

	connectors, err := u.connectors.ListWithLinkedProfile(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	var report SyncReport
	candidate := toOverlapHistory(candidateHistory)
	for _, connector := range connectors {
		if connector.ProfileID == nil || *connector.ProfileID == profileID {
			continue
		}
		report.Examined++
		u.syncPair(ctx, connector, *connector.ProfileID, profileID, nil, candidate, &report)
	}

	u.logSummary("relationship sync for profile", profileID, report)
	return report, nil
}

// SyncConnector pairs one connector against every other profile.
func (u *RelationshipSync) SyncConnector(ctx context.Context, connectorID uuid.UUID) (SyncReport, error) {
	connector, err := u.connectors.FindByID(ctx, connectorID)
	if err != nil {
		if errors.Is(err, repository.ErrConnectorNotFound) {
			return SyncReport{}, ErrConnectorNotFound
		}
		return SyncReport{}, err
	}
	if connector.ProfileID == nil {
		return SyncReport{}, ErrConnectorNoProfile
	}

	connectorHistory, err := u.history.FindByProfileID(ctx, *connector.ProfileID)
	if err != nil {
		return SyncReport{}, err
	}
	own := toOverlapHistory(connectorHistory)

	profileIDs, err := u.profiles.ListIDs(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	var report SyncReport
	for _, profileID := range profileIDs {
		if profileID == *connector.ProfileID {
			continue
		}
		report.Examined++
		u.syncPair(ctx, connector, *connector.ProfileID, profileID, own, nil, &report)
	}

	u.logSummary("relationship sync for connector", connectorID, report)
	return report, nil
}

// syncPair computes the best overlap for one (connector, profile) pair and
// writes the edge when one qualifies. Histories already fetched by the caller
// are passed in; nil means fetch here. Errors are counted, not propagated.
func (u *RelationshipSync) syncPair(
	ctx context.Context,
	connector repository.Connector,
	connectorProfileID, profileID uuid.UUID,
	connectorHistory, candidateHistory []overlap.Employment,
	report *SyncReport,
) {
	var err error
	if connectorHistory == nil {
		var entries []repository.WorkHistoryEntry
		if entries, err = u.history.FindByProfileID(ctx, connectorProfileID); err == nil {
			connectorHistory = toOverlapHistory(entries)
		}
	}
	if err == nil && candidateHistory == nil {
		var entries []repository.WorkHistoryEntry
		if entries, err = u.history.FindByProfileID(ctx, profileID); err == nil {
			candidateHistory = toOverlapHistory(entries)
		}
	}
	if err != nil {
		report.Failed++
		u.logger.Warn("relationship pair skipped",
			zap.String("connector_id", connector.ID.String()),
			zap.String("profile_id", profileID.String()),
			zap.Error(err),
		)
		return
	}

	evidence := overlap.Best(connectorHistory, candidateHistory, u.now())
	if evidence == nil {
		return
	}

	inserted, err := u.relationships.InsertIfAbsent(ctx, repository.Relationship{
		ConnectorID:   connector.ID,
		ProfileID:     profileID,
		Source:        SourceWorkOverlap,
		CompanyName:   evidence.CompanyName,
		OverlapMonths: evidence.OverlapMonths,
		Confidence:    evidence.Confidence,
	})
	if err != nil {
		report.Failed++
		u.logger.Warn("relationship write failed",
			zap.String("connector_id", connector.ID.String()),
			zap.String("profile_id", profileID.String()),
			zap.Error(err),
		)
		return
	}
	if inserted {
		report.Created++
	} else {
		report.Existing++
	}
}

func (u *RelationshipSync) logSummary(msg string, id uuid.UUID, report SyncReport) {
	u.logger.Info(msg,
		zap.String("id", id.String()),
		zap.Int("examined", report.Examined),
		zap.Int("created", report.Created),
		zap.Int("existing", report.Existing),
		zap.Int("failed", report.Failed),
	)
}
