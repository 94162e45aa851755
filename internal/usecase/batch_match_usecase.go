package usecase

import (
	"context"
	"time"

	"refermatch/internal/config"
	"refermatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchReport aggregates one batch run. Scored counts pairs that ended with a
// non-zero score regardless of which scorer produced it.
type BatchReport struct {
	Attempted int
	Succeeded int
	Failed    int
	Scored    int
}

type BatchMatchUsecase interface {
	MatchPosting(ctx context.Context, postingID uuid.UUID) (BatchReport, error)
	MatchProfile(ctx context.Context, profileID uuid.UUID) (BatchReport, error)
}

// BatchMatch drives the match orchestrator over a counterpart set in small
// sequential groups. Pacing is deliberate: one pair at a time, a short pause
// between pairs, a longer one between groups, and an extended backoff after a
// rate-limited call. A failing pair is counted and skipped, never fatal.
type BatchMatch struct {
	orchestrator MatchUsecase
	postings     repository.PostingRepository
	profiles     repository.ProfileRepository
	cfg          config.MatchingConfig
	logger       *zap.Logger
	sleep        func(ctx context.Context, d time.Duration)

	// Progress, when set, is called after every processed pair.
	Progress func(done, total int)
}

func NewBatchMatchUsecase(
	orchestrator MatchUsecase,
	postings repository.PostingRepository,
	profiles repository.ProfileRepository,
	cfg config.MatchingConfig,
	logger *zap.Logger,
) *BatchMatch {
	return &BatchMatch{
		orchestrator: orchestrator,
		postings:     postings,
		profiles:     profiles,
		cfg:          cfg,
		logger:       logger,
		sleep:        sleepCtx,
	}
}

// MatchPosting scores the posting against every profile.
func (u *BatchMatch) MatchPosting(ctx context.Context, postingID uuid.UUID) (BatchReport, error) {
	if _, err := u.postings.FindByID(ctx, postingID); err != nil {
		return BatchReport{}, err
	}
	profileIDs, err := u.profiles.ListIDs(ctx)
	if err != nil {
		return BatchReport{}, err
	}

	pairs := make([]pair, 0, len(profileIDs))
	for _, id := range profileIDs {
		pairs = append(pairs, pair{postingID: postingID, profileID: id})
	}
	return u.run(ctx, pairs), nil
}

// MatchProfile scores the profile against every active posting.
func (u *BatchMatch) MatchProfile(ctx context.Context, profileID uuid.UUID) (BatchReport, error) {
	if _, err := u.profiles.FindByID(ctx, profileID); err != nil {
		return BatchReport{}, err
	}
	postingIDs, err := u.postings.ListActiveIDs(ctx)
	if err != nil {
		return BatchReport{}, err
	}

	pairs := make([]pair, 0, len(postingIDs))
	for _, id := range postingIDs {
		pairs = append(pairs, pair{postingID: id, profileID: profileID})
	}
	return u.run(ctx, pairs), nil
}

type pair struct {
	postingID uuid.UUID
	profileID uuid.UUID
}

func (u *BatchMatch) run(ctx context.Context, pairs []pair) BatchReport {
	var report BatchReport
	batchSize := u.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	for i, p := range pairs {
		if i > 0 {
			if i%batchSize == 0 {
				u.sleep(ctx, u.cfg.InterBatchDelay)
			} else {
				u.sleep(ctx, u.cfg.InterItemDelay)
			}
		}

		report.Attempted++
		outcome, err := u.orchestrator.ScorePair(ctx, p.postingID, p.profileID)
		if err == nil && outcome.RateLimited {
			// One paced retry gives the external scorer a chance before
			// the fallback result is left standing.
			u.logger.Warn("rate limited, backing off",
				zap.String("posting_id", p.postingID.String()),
				zap.String("profile_id", p.profileID.String()),
				zap.Duration("backoff", u.cfg.RateLimitBackoff),
			)
			u.sleep(ctx, u.cfg.RateLimitBackoff)
			if retried, retryErr := u.orchestrator.ScorePair(ctx, p.postingID, p.profileID); retryErr == nil {
				outcome = retried
			}
		}
		if err != nil {
			report.Failed++
			u.logger.Warn("pair scoring failed",
				zap.String("posting_id", p.postingID.String()),
				zap.String("profile_id", p.profileID.String()),
				zap.Error(err),
			)
		} else {
			report.Succeeded++
			if outcome.Score > 0 {
				report.Scored++
			}
		}

		if u.Progress != nil {
			u.Progress(i+1, len(pairs))
		}
	}

	u.logger.Info("batch match finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("scored", report.Scored),
	)
	return report
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
