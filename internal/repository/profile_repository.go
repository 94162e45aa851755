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
	ErrProfileNotFound = errors.New("profile not found")
)

type Profile struct {
	ID               uuid.UUID
	FullName         string
	CurrentTitle     string
	CurrentCompany   string
	Industry         string
	Seniority        string
	Country          string
	Languages        []string
	RemotePreference bool
	Email            string
	Phone            string
}

type ProfileRepository interface {
	FindByID(ctx context.Context, profileID uuid.UUID) (Profile, error)
	FindByIDs(ctx context.Context, profileIDs []uuid.UUID) ([]Profile, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `id, COALESCE(full_name, ''), COALESCE(current_title, ''),
	COALESCE(current_company, ''), COALESCE(industry, ''), COALESCE(seniority, ''),
	COALESCE(country, ''), COALESCE(languages, '{}'), COALESCE(remote_preference, FALSE),
	COALESCE(email, ''), COALESCE(phone, '')`

func (r *PostgresProfileRepository) FindByID(ctx context.Context, profileID uuid.UUID) (Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`,
		profileID,
	)
	p, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) FindByIDs(ctx context.Context, profileIDs []uuid.UUID) ([]Profile, error) {
	if len(profileIDs) == 0 {
		return []Profile{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`,
		profileIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Profile, 0, len(profileIDs))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProfileRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM profiles ORDER BY created_at ASC`)
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

func scanProfile(row database.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.FullName, &p.CurrentTitle,
		&p.CurrentCompany, &p.Industry, &p.Seniority,
		&p.Country, &p.Languages, &p.RemotePreference,
		&p.Email, &p.Phone,
	)
	return p, err
}
