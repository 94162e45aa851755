package usecase

import (
	"context"
	"errors"
	"time"

	"refermatch/internal/domain/linktoken"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTokenInvalid       = errors.New("recommendation token invalid")
	ErrProfileNotEligible = errors.New("profile not eligible for this recommendation")
)

// RecommendationView is what a connector sees after opening a deep link.
type RecommendationView struct {
	Posting       repository.Posting
	ConnectorID   uuid.UUID
	ConnectorName string
	Candidates    []EligibleProfile
	Profiles      []repository.Profile
}

type RecommendationUsecase interface {
	View(ctx context.Context, token string) (RecommendationView, error)
	Submit(ctx context.Context, token string, profileID uuid.UUID, note string) (repository.Recommendation, error)
}

// Recommendation resolves deep-link tokens into a recommendable candidate
// list and records submitted recommendations.
type Recommendation struct {
	postings        repository.PostingRepository
	profiles        repository.ProfileRepository
	connectors      repository.ConnectorRepository
	recommendations repository.RecommendationRepository
	links           repository.RecommendationLinkRepository
	eligibility     EligibilityUsecase
	tokens          *linktoken.Codec
	listingMinScore float64
	logger          *zap.Logger
	now             func() time.Time
}

func NewRecommendationUsecase(
	postings repository.PostingRepository,
	profiles repository.ProfileRepository,
	connectors repository.ConnectorRepository,
	recommendations repository.RecommendationRepository,
	links repository.RecommendationLinkRepository,
	eligibility EligibilityUsecase,
	tokens *linktoken.Codec,
	listingMinScore float64,
	logger *zap.Logger,
) *Recommendation {
	return &Recommendation{
		postings:        postings,
		profiles:        profiles,
		connectors:      connectors,
		recommendations: recommendations,
		links:           links,
		eligibility:     eligibility,
		tokens:          tokens,
		listingMinScore: listingMinScore,
		logger:          logger,
		now:             time.Now,
	}
}

func (u *Recommendation) View(ctx context.Context, token string) (RecommendationView, error) {
	payload, err := u.validateToken(token)
	if err != nil {
		return RecommendationView{}, err
	}

	connectorID, postingID, err := parseTokenIDs(payload)
	if err != nil {
		return RecommendationView{}, err
	}

	posting, err := u.postings.FindByID(ctx, postingID)
	if err != nil {
		if errors.Is(err, repository.ErrPostingNotFound) {
			return RecommendationView{}, ErrPostingNotFound
		}
		return RecommendationView{}, err
	}
	connector, err := u.connectors.FindByID(ctx, connectorID)
	if err != nil {
		if errors.Is(err, repository.ErrConnectorNotFound) {
			return RecommendationView{}, ErrConnectorNotFound
		}
		return RecommendationView{}, err
	}

	candidates, err := u.eligibility.Resolve(ctx, postingID, connectorID, u.listingMinScore)
	if err != nil {
		return RecommendationView{}, err
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ProfileID)
	}
	profiles, err := u.profiles.FindByIDs(ctx, ids)
	if err != nil {
		return RecommendationView{}, err
	}

	return RecommendationView{
		Posting:       posting,
		ConnectorID:   connector.ID,
		ConnectorName: connector.Name,
		Candidates:    candidates,
		Profiles:      profiles,
	}, nil
}

func (u *Recommendation) Submit(ctx context.Context, token string, profileID uuid.UUID, note string) (repository.Recommendation, error) {
	payload, err := u.validateToken(token)
	if err != nil {
		return repository.Recommendation{}, err
	}

	connectorID, postingID, err := parseTokenIDs(payload)
	if err != nil {
		return repository.Recommendation{}, err
	}

	candidates, err := u.eligibility.Resolve(ctx, postingID, connectorID, u.listingMinScore)
	if err != nil {
		return repository.Recommendation{}, err
	}
	eligible := false
	for _, c := range candidates {
		if c.ProfileID == profileID {
			eligible = true
			break
		}
	}
	if !eligible {
		return repository.Recommendation{}, ErrProfileNotEligible
	}

	rec, err := u.recommendations.Create(ctx, repository.Recommendation{
		PostingID:   postingID,
		ConnectorID: connectorID,
		ProfileID:   profileID,
		Note:        note,
	})
	if err != nil {
		return repository.Recommendation{}, err
	}

	// Analytics only; a failed stamp never fails the submission.
	if err := u.links.MarkUsed(ctx, token, u.now().UTC()); err != nil {
		u.logger.Warn("recommendation link not stamped", zap.Error(err))
	}

	u.logger.Info("recommendation submitted",
		zap.String("posting_id", postingID.String()),
		zap.String("connector_id", connectorID.String()),
		zap.String("profile_id", profileID.String()),
	)
	return rec, nil
}

// validateToken distinguishes expiry from tampering in the logs so secret
// rotation problems are visible, while callers see one terminal error.
func (u *Recommendation) validateToken(token string) (linktoken.Payload, error) {
	payload, err := u.tokens.Validate(token, u.now())
	if err != nil {
		switch {
		case errors.Is(err, linktoken.ErrExpired):
			u.logger.Warn("recommendation token expired")
		case errors.Is(err, linktoken.ErrTampered):
			u.logger.Warn("recommendation token signature mismatch")
		default:
			u.logger.Warn("recommendation token malformed")
		}
		return linktoken.Payload{}, ErrTokenInvalid
	}
	if payload.UsedPreviousSecret {
		u.logger.Warn("recommendation token accepted", zap.String("secret", "previous"))
	}
	return payload, nil
}

func parseTokenIDs(payload linktoken.Payload) (connectorID, postingID uuid.UUID, err error) {
	connectorID, err = uuid.Parse(payload.ConnectorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrTokenInvalid
	}
	postingID, err = uuid.Parse(payload.PostingID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrTokenInvalid
	}
	return connectorID, postingID, nil
}
