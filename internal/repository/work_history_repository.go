package repository

import (
	"context"
	"time"

	"refermatch/internal/database"

	"github.com/google/uuid"
)

type WorkHistoryEntry struct {
	ID          uuid.UUID
	ProfileID   uuid.UUID
	CompanyName string
	Title       string
	Location    string
	StartDate   *time.Time
	EndDate     *time.Time
}

type WorkHistoryRepository interface {
	FindByProfileID(ctx context.Context, profileID uuid.UUID) ([]WorkHistoryEntry, error)
}

type PostgresWorkHistoryRepository struct {
	db database.DB
}

func NewPostgresWorkHistoryRepository(db database.DB) *PostgresWorkHistoryRepository {
	return &PostgresWorkHistoryRepository{db: db}
}

func (r *PostgresWorkHistoryRepository) FindByProfileID(ctx context.Context, profileID uuid.UUID) ([]WorkHistoryEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, profile_id, COALESCE(company_name, ''), COALESCE(title, ''),
		        COALESCE(location, ''), start_date, end_date
		 FROM work_history
		 WHERE profile_id = $1
		 ORDER BY start_date ASC NULLS LAST`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WorkHistoryEntry, 0)
	for rows.Next() {
		var e WorkHistoryEntry
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.CompanyName, &e.Title, &e.Location, &e.StartDate, &e.EndDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
