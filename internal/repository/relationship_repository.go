package repository

import (
	"context"
	"time"

	"refermatch/internal/database"

	"github.com/google/uuid"
)

type Relationship struct {
	ID            uuid.UUID
	ConnectorID   uuid.UUID
	ProfileID     uuid.UUID
	Source        string
	CompanyName   string
	OverlapMonths float64
	Confidence    int
	CreatedAt     time.Time
}

type RelationshipRepository interface {
	InsertIfAbsent(ctx context.Context, rel Relationship) (bool, error)
	ListByConnector(ctx context.Context, connectorID uuid.UUID) ([]Relationship, error)
	ConnectorIDsForProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]uuid.UUID, error)
}

type PostgresRelationshipRepository struct {
	db database.DB
}

func NewPostgresRelationshipRepository(db database.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// InsertIfAbsent writes the edge unless one already exists for the same
// (connector, profile, source). It reports whether a row was inserted.
func (r *PostgresRelationshipRepository) InsertIfAbsent(ctx context.Context, rel Relationship) (bool, error) {
	if rel.ConnectorID == uuid.Nil || rel.ProfileID == uuid.Nil {
		return false, nil
	}
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now().UTC()
	}

	affected, err := r.db.Exec(ctx,
		`INSERT INTO relationships (id, connector_id, profile_id, source, company_name, overlap_months, confidence, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (connector_id, profile_id, source) DO NOTHING`,
		uuid.New(),
		rel.ConnectorID,
		rel.ProfileID,
		rel.Source,
		rel.CompanyName,
		rel.OverlapMonths,
		rel.Confidence,
		rel.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresRelationshipRepository) ListByConnector(ctx context.Context, connectorID uuid.UUID) ([]Relationship, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, connector_id, profile_id, COALESCE(source, ''), COALESCE(company_name, ''),
		        COALESCE(overlap_months, 0), COALESCE(confidence, 0), created_at
		 FROM relationships
		 WHERE connector_id = $1`,
		connectorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Relationship, 0)
	for rows.Next() {
		var rel Relationship
		if err := rows.Scan(&rel.ID, &rel.ConnectorID, &rel.ProfileID, &rel.Source, &rel.CompanyName, &rel.OverlapMonths, &rel.Confidence, &rel.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

// ConnectorIDsForProfiles returns the distinct connectors holding at least one
// edge to any of the given profiles. Callers bound the slice size themselves.
func (r *PostgresRelationshipRepository) ConnectorIDsForProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(profileIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT connector_id FROM relationships WHERE profile_id = ANY($1)`,
		profileIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
