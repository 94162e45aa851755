package repository

import (
	"context"
	"time"

	"refermatch/internal/database"

	"github.com/google/uuid"
)

// RecommendationLink mirrors an issued deep-link token for analytics. Token
// validation never reads this table; a missing row is not an error.
type RecommendationLink struct {
	ID          uuid.UUID
	Token       string
	ConnectorID uuid.UUID
	PostingID   uuid.UUID
	CreatedAt   time.Time
	UsedAt      *time.Time
}

type RecommendationLinkRepository interface {
	Create(ctx context.Context, link RecommendationLink) error
	MarkUsed(ctx context.Context, token string, usedAt time.Time) error
}

type PostgresRecommendationLinkRepository struct {
	db database.DB
}

func NewPostgresRecommendationLinkRepository(db database.DB) *PostgresRecommendationLinkRepository {
	return &PostgresRecommendationLinkRepository{db: db}
}

func (r *PostgresRecommendationLinkRepository) Create(ctx context.Context, link RecommendationLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO recommendation_links (id, token, connector_id, posting_id, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (token) DO NOTHING`,
		link.ID,
		link.Token,
		link.ConnectorID,
		link.PostingID,
		link.CreatedAt,
	)
	return err
}

func (r *PostgresRecommendationLinkRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE recommendation_links SET used_at = $2 WHERE token = $1 AND used_at IS NULL`,
		token, usedAt,
	)
	return err
}
