package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/sqltime"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	domain "github.com/ahmethakanbesel/scraper-sdk/pkg/job"
)

const selectJobs = `SELECT j.id, j.integration_id, j.status, j.started_at, j.finished_at,
		j.duration, j.new_records, j.updated_records, j.archived_records,
		j.created_at, j.updated_at,
		i.website_origin, i.website_name
	FROM jobs j
	JOIN integrations i ON i.id = j.integration_id`

type row struct {
	ID              int64          `db:"id"`
	IntegrationID   int64          `db:"integration_id"`
	Status          string         `db:"status"`
	StartedAt       sql.NullString `db:"started_at"`
	FinishedAt      sql.NullString `db:"finished_at"`
	Duration        sql.NullInt64  `db:"duration"`
	NewRecords      int64          `db:"new_records"`
	UpdatedRecords  int64          `db:"updated_records"`
	ArchivedRecords int64          `db:"archived_records"`
	CreatedAt       string         `db:"created_at"`
	UpdatedAt       string         `db:"updated_at"`
	Origin          string         `db:"website_origin"`
	Name            sql.NullString `db:"website_name"`
}

func (r row) toDomain() domain.Job {
	j := domain.Job{
		ID:              r.ID,
		IntegrationID:   r.IntegrationID,
		Status:          domain.Status(r.Status),
		StartedAt:       sqltime.FromNull(r.StartedAt),
		FinishedAt:      sqltime.FromNull(r.FinishedAt),
		NewRecords:      r.NewRecords,
		UpdatedRecords:  r.UpdatedRecords,
		ArchivedRecords: r.ArchivedRecords,
		CreatedAt:       sqltime.Parse(r.CreatedAt),
		UpdatedAt:       sqltime.Parse(r.UpdatedAt),
		Integration:     &domain.IntegrationRef{ID: r.IntegrationID, Origin: r.Origin},
	}
	if r.Duration.Valid {
		d := r.Duration.Int64
		j.Duration = &d
	}
	if r.Name.Valid {
		n := r.Name.String
		j.Integration.Name = &n
	}
	return j
}

type Repository struct {
	db *sqlx.DB
}

var _ domain.Repository = (*Repository)(nil)

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts j; IntegrationID must be set. ID and timestamps are filled
// in from the database.
func (r *Repository) Create(ctx context.Context, j *domain.Job) error {
	now := time.Now().UTC()
	if j.Status == "" {
		j.Status = domain.StatusPending
	}
	query := r.db.Rebind(`INSERT INTO jobs
		(integration_id, status, started_at, finished_at, duration,
		 new_records, updated_records, archived_records, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		j.IntegrationID, string(j.Status),
		sqltime.Null(j.StartedAt), sqltime.Null(j.FinishedAt), j.Duration,
		j.NewRecords, j.UpdatedRecords, j.ArchivedRecords,
		sqltime.Format(now), sqltime.Format(now),
	).Scan(&j.ID)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	j.CreatedAt = now
	j.UpdatedAt = now
	return nil
}

// Update writes every mutable column of j.
func (r *Repository) Update(ctx context.Context, j *domain.Job) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`UPDATE jobs SET status = ?, started_at = ?, finished_at = ?, duration = ?,
		new_records = ?, updated_records = ?, archived_records = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		string(j.Status), sqltime.Null(j.StartedAt), sqltime.Null(j.FinishedAt), j.Duration,
		j.NewRecords, j.UpdatedRecords, j.ArchivedRecords, sqltime.Format(now),
		j.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.New(apperror.NotFound, "job not found")
	}
	j.UpdatedAt = now
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Job, error) {
	var rw row
	err := r.db.GetContext(ctx, &rw, r.db.Rebind(selectJobs+` WHERE j.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.NotFound, "job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	j := rw.toDomain()
	return &j, nil
}

func (r *Repository) List(ctx context.Context, f domain.Filter) ([]domain.Job, error) {
	query := selectJobs + ` WHERE 1=1`
	var args []any
	if f.Origin != "" {
		query += " AND i.website_origin = ?"
		args = append(args, f.Origin)
	}
	if f.Status != "" {
		query += " AND j.status = ?"
		args = append(args, string(f.Status))
	}
	query += " ORDER BY j.id DESC LIMIT 100"

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]domain.Job, 0, len(rows))
	for _, rw := range rows {
		jobs = append(jobs, rw.toDomain())
	}
	return jobs, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM jobs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.New(apperror.NotFound, "job not found")
	}
	return nil
}
