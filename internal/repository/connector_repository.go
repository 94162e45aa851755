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
	ErrConnectorNotFound = errors.New("connector not found")
)

type Connector struct {
	ID        uuid.UUID
	Name      string
	ProfileID *uuid.UUID
	Email     string
	Phone     string
}

type ConnectorRepository interface {
	FindByID(ctx context.Context, connectorID uuid.UUID) (Connector, error)
	FindByIDs(ctx context.Context, connectorIDs []uuid.UUID) ([]Connector, error)
	ListWithLinkedProfile(ctx context.Context) ([]Connector, error)
}

type PostgresConnectorRepository struct {
	db database.DB
}

func NewPostgresConnectorRepository(db database.DB) *PostgresConnectorRepository {
	return &PostgresConnectorRepository{db: db}
}

const connectorColumns = `id, COALESCE(name, ''), profile_id, COALESCE(email, ''), COALESCE(phone, '')`

func (r *PostgresConnectorRepository) FindByID(ctx context.Context, connectorID uuid.UUID) (Connector, error) {
	var c Connector
	row := r.db.QueryRow(ctx,
		`SELECT `+connectorColumns+` FROM connectors WHERE id = $1`,
		connectorID,
	)
	if err := row.Scan(&c.ID, &c.Name, &c.ProfileID, &c.Email, &c.Phone); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Connector{}, ErrConnectorNotFound
		}
		return Connector{}, err
	}
	return c, nil
}

func (r *PostgresConnectorRepository) FindByIDs(ctx context.Context, connectorIDs []uuid.UUID) ([]Connector, error) {
	if len(connectorIDs) == 0 {
		return []Connector{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+connectorColumns+` FROM connectors WHERE id = ANY($1)`,
		connectorIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConnectors(rows)
}

// ListWithLinkedProfile returns the connectors whose work history can feed
// relationship inference.
func (r *PostgresConnectorRepository) ListWithLinkedProfile(ctx context.Context) ([]Connector, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+connectorColumns+` FROM connectors WHERE profile_id IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConnectors(rows)
}

func collectConnectors(rows database.Rows) ([]Connector, error) {
	out := make([]Connector, 0)
	for rows.Next() {
		var c Connector
		if err := rows.Scan(&c.ID, &c.Name, &c.ProfileID, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
