package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"refermatch/internal/config"
	"refermatch/internal/domain/linktoken"
	"refermatch/internal/notify"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifyReport aggregates one fan-out run over a posting's connectors.
type NotifyReport struct {
	Connectors int
	Notified   int
	Skipped    int
	Failed     int
}

type NotifyUsecase interface {
	FanoutPosting(ctx context.Context, postingID uuid.UUID) (NotifyReport, error)
}

// Notify fans a posting out to every connector who knows at least one
// well-scored profile. Each connector is handled independently: a send
// failure is counted and the run moves on.
type Notify struct {
	postings      repository.PostingRepository
	profiles      repository.ProfileRepository
	connectors    repository.ConnectorRepository
	matches       repository.MatchRepository
	relationships repository.RelationshipRepository
	links         repository.RecommendationLinkRepository
	eligibility   EligibilityUsecase
	tokens        *linktoken.Codec
	router        *notify.Router
	matchCfg      config.MatchingConfig
	notifyCfg     config.NotifyConfig
	baseURL       string
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotifyUsecase(
	postings repository.PostingRepository,
	profiles repository.ProfileRepository,
	connectors repository.ConnectorRepository,
	matches repository.MatchRepository,
	relationships repository.RelationshipRepository,
	links repository.RecommendationLinkRepository,
	eligibility EligibilityUsecase,
	tokens *linktoken.Codec,
	router *notify.Router,
	matchCfg config.MatchingConfig,
	notifyCfg config.NotifyConfig,
	baseURL string,
	logger *zap.Logger,
) *Notify {
	return &Notify{
		postings:      postings,
		profiles:      profiles,
		connectors:    connectors,
		matches:       matches,
		relationships: relationships,
		links:         links,
		eligibility:   eligibility,
		tokens:        tokens,
		router:        router,
		matchCfg:      matchCfg,
		notifyCfg:     notifyCfg,
		baseURL:       baseURL,
		logger:        logger,
		now:           time.Now,
	}
}

func (u *Notify) FanoutPosting(ctx context.Context, postingID uuid.UUID) (NotifyReport, error) {
	posting, err := u.postings.FindByID(ctx, postingID)
	if err != nil {
		if errors.Is(err, repository.ErrPostingNotFound) {
			return NotifyReport{}, ErrPostingNotFound
		}
		return NotifyReport{}, err
	}

	scored, err := u.matches.ListByPostingMinScore(ctx, postingID, u.matchCfg.FanoutMinScore)
	if err != nil {
		return NotifyReport{}, err
	}
	profileIDs := distinctProfileIDs(scored)
	if len(profileIDs) == 0 {
		u.logger.Info("no profiles above fan-out threshold",
			zap.String("posting_id", postingID.String()),
			zap.Float64("threshold", u.matchCfg.FanoutMinScore),
		)
		return NotifyReport{}, nil
	}

	connectorIDs, err := u.connectorsForProfiles(ctx, profileIDs)
	if err != nil {
		return NotifyReport{}, err
	}
	connectors, err := u.connectors.FindByIDs(ctx, connectorIDs)
	if err != nil {
		return NotifyReport{}, err
	}

	report := NotifyReport{Connectors: len(connectors)}
	for _, connector := range connectors {
		switch u.notifyConnector(ctx, posting, connector) {
		case fanoutNotified:
			report.Notified++
		case fanoutSkipped:
			report.Skipped++
		case fanoutFailed:
			report.Failed++
		}
	}

	u.logger.Info("fan-out finished",
		zap.String("posting_id", postingID.String()),
		zap.Int("connectors", report.Connectors),
		zap.Int("notified", report.Notified),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// connectorsForProfiles resolves connectors in bounded lookup batches so one
// posting with thousands of matches cannot produce an unbounded IN clause.
func (u *Notify) connectorsForProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]uuid.UUID, error) {
	batchSize := u.matchCfg.LookupBatchSize
	if batchSize <= 0 {
		batchSize = len(profileIDs)
	}

	seen := make(map[uuid.UUID]struct{})
	out := make([]uuid.UUID, 0)
	for start := 0; start < len(profileIDs); start += batchSize {
		end := start + batchSize
		if end > len(profileIDs) {
			end = len(profileIDs)
		}
		ids, err := u.relationships.ConnectorIDsForProfiles(ctx, profileIDs[start:end])
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

type fanoutOutcome int

const (
	fanoutNotified fanoutOutcome = iota
	fanoutSkipped
	fanoutFailed
)

func (u *Notify) notifyConnector(ctx context.Context, posting repository.Posting, connector repository.Connector) fanoutOutcome {
	address := u.resolveAddress(ctx, connector)
	if address == "" {
		u.logger.Warn("connector skipped, no deliverable address",
			zap.String("connector_id", connector.ID.String()),
		)
		return fanoutSkipped
	}

	eligible, err := u.eligibility.Resolve(ctx, posting.ID, connector.ID, u.matchCfg.FanoutMinScore)
	if err != nil {
		u.logger.Warn("eligibility lookup failed",
			zap.String("connector_id", connector.ID.String()),
			zap.Error(err),
		)
		return fanoutFailed
	}
	if len(eligible) == 0 {
		return fanoutSkipped
	}

	candidates, err := u.candidateList(ctx, eligible)
	if err != nil {
		u.logger.Warn("candidate lookup failed",
			zap.String("connector_id", connector.ID.String()),
			zap.Error(err),
		)
		return fanoutFailed
	}

	token := u.tokens.Generate(connector.ID.String(), posting.ID.String(), u.now())
	if err := u.links.Create(ctx, repository.RecommendationLink{
		Token:       token,
		ConnectorID: connector.ID,
		PostingID:   posting.ID,
	}); err != nil {
		// Tracking only; the token works regardless.
		u.logger.Warn("recommendation link record not stored", zap.Error(err))
	}

	payload := notify.Payload{
		PostingTitle:   posting.Title,
		Organization:   posting.Organization,
		RequesterName:  posting.Organization,
		NonNegotiables: posting.NonNegotiables,
		Candidates:     candidates,
		DeepLink:       fmt.Sprintf("%s/recommend/%s", u.baseURL, token),
	}

	delivery, err := u.router.Send(ctx, address, payload.Subject(), payload.Render())
	if err != nil {
		u.logger.Warn("notification send failed",
			zap.String("connector_id", connector.ID.String()),
			zap.Error(err),
		)
		return fanoutFailed
	}

	u.logger.Info("connector notified",
		zap.String("connector_id", connector.ID.String()),
		zap.String("delivery_id", delivery.ID),
		zap.Int("candidates", len(candidates)),
	)
	return fanoutNotified
}

// resolveAddress walks the fallback chain: the connector's own contact info,
// then the linked profile's, then the configured default.
func (u *Notify) resolveAddress(ctx context.Context, connector repository.Connector) string {
	if connector.Phone != "" {
		return connector.Phone
	}
	if connector.Email != "" {
		return connector.Email
	}
	if connector.ProfileID != nil {
		if profile, err := u.profiles.FindByID(ctx, *connector.ProfileID); err == nil {
			if profile.Phone != "" {
				return profile.Phone
			}
			if profile.Email != "" {
				return profile.Email
			}
		}
	}
	return u.notifyCfg.DefaultAddress
}

func (u *Notify) candidateList(ctx context.Context, eligible []EligibleProfile) ([]notify.Candidate, error) {
	ids := make([]uuid.UUID, 0, len(eligible))
	for _, e := range eligible {
		ids = append(ids, e.ProfileID)
	}
	profiles, err := u.profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.FullName
	}

	out := make([]notify.Candidate, 0, len(eligible))
	for _, e := range eligible {
		name := names[e.ProfileID]
		if name == "" {
			name = "A contact of yours"
		}
		out = append(out, notify.Candidate{
			Name:            name,
			Score:           e.Score,
			EvidenceCompany: e.Company,
		})
	}
	return out, nil
}

func distinctProfileIDs(matches []repository.Match) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(matches))
	out := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.ProfileID]; !ok {
			seen[m.ProfileID] = struct{}{}
			out = append(out, m.ProfileID)
		}
	}
	return out
}
