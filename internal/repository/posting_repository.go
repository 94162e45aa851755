package repository

import (
	"context"
	"database/sql"
	"errors"

	"refermatch/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrPostingNotFound = errors.New("posting not found")
)

type Posting struct {
	ID               uuid.UUID
	Organization     string
	Title            string
	Description      string
	Seniority        string
	RemoteAllowed    bool
	MustHaveSkills   []string
	NiceToHaveSkills []string
	Industries       []string
	Languages        []string
	Locations        []string
	NonNegotiables   []string
	Status           string
}

type PostingRepository interface {
	FindByID(ctx context.Context, postingID uuid.UUID) (Posting, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PostgresPostingRepository struct {
	db database.DB
}

func NewPostgresPostingRepository(db database.DB) *PostgresPostingRepository {
	return &PostgresPostingRepository{db: db}
}

func (r *PostgresPostingRepository) FindByID(ctx context.Context, postingID uuid.UUID) (Posting, error) {
	var p Posting
	row := r.db.QueryRow(ctx,
		`SELECT id, COALESCE(organization, ''), COALESCE(title, ''), COALESCE(description, ''),
		        COALESCE(seniority, ''), COALESCE(remote_allowed, FALSE),
		        COALESCE(must_have_skills, '{}'), COALESCE(nice_to_have_skills, '{}'),
		        COALESCE(industries, '{}'), COALESCE(languages, '{}'),
		        COALESCE(locations, '{}'), COALESCE(non_negotiables, '{}'),
		        COALESCE(status, 'active')
		 FROM postings
		 WHERE id = $1`,
		postingID,
	)
	err := row.Scan(
		&p.ID, &p.Organization, &p.Title, &p.Description,
		&p.Seniority, &p.RemoteAllowed,
		&p.MustHaveSkills, &p.NiceToHaveSkills,
		&p.Industries, &p.Languages,
		&p.Locations, &p.NonNegotiables,
		&p.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Posting{}, ErrPostingNotFound
		}
		return Posting{}, err
	}
	return p, nil
}

func (r *PostgresPostingRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM postings WHERE COALESCE(status, 'active') = 'active' ORDER BY created_at ASC`,
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
