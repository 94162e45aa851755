package repository

import (
	"context"
	"time"

	"refermatch/internal/database"

	"github.com/google/uuid"
)

type MatchUpsert struct {
	PostingID uuid.UUID
	ProfileID uuid.UUID
	Score     float64
	Summary   string
	StrongFit []string
	Gaps      []string
	Source    string
	ScoredAt  time.Time
}

type Match struct {
	PostingID uuid.UUID
	ProfileID uuid.UUID
	Score     float64
	Summary   string
	StrongFit []string
	Gaps      []string
	Source    string
	ScoredAt  time.Time
}

type MatchRepository interface {
	Upsert(ctx context.Context, m MatchUpsert) error
	ListByPostingMinScore(ctx context.Context, postingID uuid.UUID, minScore float64) ([]Match, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

func (r *PostgresMatchRepository) Upsert(ctx context.Context, m MatchUpsert) error {
	if m.PostingID == uuid.Nil || m.ProfileID == uuid.Nil {
		return nil
	}
	if m.ScoredAt.IsZero() {
		m.ScoredAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO matches (id, posting_id, profile_id, score, summary, strong_fit, gaps, source, scored_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (posting_id, profile_id) DO UPDATE SET
			score = EXCLUDED.score,
			summary = EXCLUDED.summary,
			strong_fit = EXCLUDED.strong_fit,
			gaps = EXCLUDED.gaps,
			source = EXCLUDED.source,
			scored_at = EXCLUDED.scored_at`,
		uuid.New(),
		m.PostingID,
		m.ProfileID,
		m.Score,
		m.Summary,
		m.StrongFit,
		m.Gaps,
		m.Source,
		m.ScoredAt,
	)
	return err
}

// ListByPostingMinScore returns the posting's matches at or above minScore,
// best first.
func (r *PostgresMatchRepository) ListByPostingMinScore(ctx context.Context, postingID uuid.UUID, minScore float64) ([]Match, error) {
	rows, err := r.db.Query(ctx,
		`SELECT posting_id, profile_id, score, COALESCE(summary, ''),
		        COALESCE(strong_fit, '{}'), COALESCE(gaps, '{}'), COALESCE(source, ''), scored_at
		 FROM matches
		 WHERE posting_id = $1 AND score >= $2
		 ORDER BY score DESC, scored_at ASC`,
		postingID, minScore,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Match, 0)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.PostingID, &m.ProfileID, &m.Score, &m.Summary, &m.StrongFit, &m.Gaps, &m.Source, &m.ScoredAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
