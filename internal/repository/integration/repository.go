package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/sqltime"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	domain "github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
)

const columns = `id, website_origin, website_name, is_active,
	access_token, refresh_token, authorization_token, created_at, updated_at`

type row struct {
	ID                 int64          `db:"id"`
	Origin             string         `db:"website_origin"`
	Name               sql.NullString `db:"website_name"`
	IsActive           bool           `db:"is_active"`
	AccessToken        sql.NullString `db:"access_token"`
	RefreshToken       sql.NullString `db:"refresh_token"`
	AuthorizationToken sql.NullString `db:"authorization_token"`
	CreatedAt          string         `db:"created_at"`
	UpdatedAt          string         `db:"updated_at"`
}

func (r row) toDomain() domain.Integration {
	return domain.Integration{
		ID:                 r.ID,
		Origin:             r.Origin,
		Name:               nullString(r.Name),
		IsActive:           r.IsActive,
		AccessToken:        nullString(r.AccessToken),
		RefreshToken:       nullString(r.RefreshToken),
		AuthorizationToken: nullString(r.AuthorizationToken),
		CreatedAt:          sqltime.Parse(r.CreatedAt),
		UpdatedAt:          sqltime.Parse(r.UpdatedAt),
	}
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Integration, error) {
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+columns+` FROM integrations ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	out := make([]domain.Integration, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.toDomain())
	}
	return out, nil
}

// GetByOrigin returns the integration for origin whether or not it is active.
func (r *Repository) GetByOrigin(ctx context.Context, origin string) (*domain.Integration, error) {
	var rw row
	err := r.db.GetContext(ctx, &rw, r.db.Rebind(`SELECT `+columns+` FROM integrations WHERE website_origin = ?`), origin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError(origin)
	}
	if err != nil {
		return nil, fmt.Errorf("get integration: %w", err)
	}
	in := rw.toDomain()
	return &in, nil
}

// Upsert creates or replaces the integration for in.Origin and fills in its
// ID and timestamps.
func (r *Repository) Upsert(ctx context.Context, in *domain.Integration) error {
	if in.Origin == "" {
		return apperror.New(apperror.Validation, "website origin is required")
	}
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO integrations
		(website_origin, website_name, is_active, access_token, refresh_token, authorization_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (website_origin) DO UPDATE SET
			website_name = excluded.website_name,
			is_active = excluded.is_active,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			authorization_token = excluded.authorization_token,
			updated_at = excluded.updated_at
		RETURNING id, created_at`)

	var created string
	err := r.db.QueryRowxContext(ctx, query,
		in.Origin, in.Name, in.IsActive,
		in.AccessToken, in.RefreshToken, in.AuthorizationToken,
		sqltime.Format(now), sqltime.Format(now),
	).Scan(&in.ID, &created)
	if err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	in.CreatedAt = sqltime.Parse(created)
	in.UpdatedAt = now
	return nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
