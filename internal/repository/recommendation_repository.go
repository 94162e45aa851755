package repository

import (
	"context"
	"time"

	"refermatch/internal/database"

	"github.com/google/uuid"
)

type Recommendation struct {
	ID          uuid.UUID
	PostingID   uuid.UUID
	ConnectorID uuid.UUID
	ProfileID   uuid.UUID
	Note        string
	CreatedAt   time.Time
}

type RecommendationRepository interface {
	Create(ctx context.Context, rec Recommendation) (Recommendation, error)
}

type PostgresRecommendationRepository struct {
	db database.DB
}

func NewPostgresRecommendationRepository(db database.DB) *PostgresRecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

func (r *PostgresRecommendationRepository) Create(ctx context.Context, rec Recommendation) (Recommendation, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO recommendations (id, posting_id, connector_id, profile_id, note, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID,
		rec.PostingID,
		rec.ConnectorID,
		rec.ProfileID,
		rec.Note,
		rec.CreatedAt,
	)
	if err != nil {
		return Recommendation{}, err
	}
	return rec, nil
}
