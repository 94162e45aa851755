package usecase

import (
	"context"
	"errors"
	"time"

	"refermatch/internal/ai"
	"refermatch/internal/domain/scoring"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPostingNotFound = errors.New("posting not found")
	ErrProfileNotFound = errors.New("profile not found")
)

const (
	// Source tags recorded on match rows.
	SourceExternal = "gemini"
	SourceFallback = "rules"
)

// MatchOutcome reports how one pair was scored. RateLimited is set when the
// external attempt was refused for quota so the caller can pace itself.
type MatchOutcome struct {
	PostingID   uuid.UUID
	ProfileID   uuid.UUID
	Score       float64
	Source      string
	RateLimited bool
}

type MatchUsecase interface {
	ScorePair(ctx context.Context, postingID, profileID uuid.UUID) (MatchOutcome, error)
}

// Match scores one (posting, profile) pair: it tries the external scorer
// once, falls back to the deterministic model on any failure, and upserts the
// result keyed by the pair.
type Match struct {
	postings      repository.PostingRepository
	profiles      repository.ProfileRepository
	history       repository.WorkHistoryRepository
	matches       repository.MatchRepository
	scorer        ai.Scorer
	scorerTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewMatchUsecase(
	postings repository.PostingRepository,
	profiles repository.ProfileRepository,
	history repository.WorkHistoryRepository,
	matches repository.MatchRepository,
	scorer ai.Scorer,
	scorerTimeout time.Duration,
	logger *zap.Logger,
) *Match {
	return &Match{
		postings:      postings,
		profiles:      profiles,
		history:       history,
		matches:       matches,
		scorer:        scorer,
		scorerTimeout: scorerTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

func (u *Match) ScorePair(ctx context.Context, postingID, profileID uuid.UUID) (MatchOutcome, error) {
	posting, err := u.postings.FindByID(ctx, postingID)
	if err != nil {
		if errors.Is(err, repository.ErrPostingNotFound) {
			return MatchOutcome{}, ErrPostingNotFound
		}
		return MatchOutcome{}, err
	}
	profile, err := u.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return MatchOutcome{}, ErrProfileNotFound
		}
		return MatchOutcome{}, err
	}
	entries, err := u.history.FindByProfileID(ctx, profileID)
	if err != nil {
		return MatchOutcome{}, err
	}

	sp := toScoringPosting(posting)
	spp := toScoringProfile(profile)
	sh := toScoringHistory(entries)

	outcome := MatchOutcome{PostingID: postingID, ProfileID: profileID}
	upsert := repository.MatchUpsert{
		PostingID: postingID,
		ProfileID: profileID,
		ScoredAt:  u.now().UTC(),
	}

	if assessment := u.tryExternal(ctx, sp, spp, sh, &outcome); assessment != nil {
		upsert.Score = assessment.Score
		upsert.Summary = assessment.Summary
		upsert.StrongFit = assessment.StrongFit
		upsert.Gaps = assessment.Gaps
		upsert.Source = SourceExternal
	} else {
		result := scoring.Compute(sp, spp, sh)
		upsert.Score = result.Score
		upsert.Summary = result.Summary
		upsert.StrongFit = result.StrongFit
		upsert.Gaps = result.Gaps
		upsert.Source = SourceFallback
	}

	if err := u.matches.Upsert(ctx, upsert); err != nil {
		return MatchOutcome{}, err
	}

	outcome.Score = upsert.Score
	outcome.Source = upsert.Source
	return outcome, nil
}

// tryExternal makes a single bounded attempt against the external scorer.
// It never retries; any failure means the deterministic model decides.
func (u *Match) tryExternal(ctx context.Context, posting scoring.Posting, profile scoring.Profile, history []scoring.HistoryEntry, outcome *MatchOutcome) *ai.Assessment {
	if u.scorer == nil {
		return nil
	}

	callCtx := ctx
	if u.scorerTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, u.scorerTimeout)
		defer cancel()
	}

	assessment, err := u.scorer.Score(callCtx, posting, profile, history)
	if err != nil {
		if ai.IsRateLimited(err) {
			outcome.RateLimited = true
		}
		u.logger.Warn("external scorer failed, using deterministic model",
			zap.String("posting_id", outcome.PostingID.String()),
			zap.String("profile_id", outcome.ProfileID.String()),
			zap.Bool("rate_limited", outcome.RateLimited),
			zap.Error(err),
		)
		return nil
	}
	return assessment
}
