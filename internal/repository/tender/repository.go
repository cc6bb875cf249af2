package tender

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/sqltime"
	domain "github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
)

type row struct {
	domain.Item
	DocumentURLsJSON string `db:"document_urls"`
	LotsJSON         string `db:"lots"`
	Archived         bool   `db:"archived"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores items for origin keyed by tender number in one transaction
// and reports how many were new and how many already existed. Upserting an
// archived tender revives it.
func (r *Repository) Upsert(ctx context.Context, origin string, items []domain.Item) (domain.Stats, error) {
	var stats domain.Stats

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("upsert tenders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists := tx.Rebind(`SELECT id FROM tenders WHERE website_origin = ? AND number = ?`)
	upsert := tx.Rebind(`INSERT INTO tenders
		(website_origin, number, name, documents, sum, submission_end, bidding_begin,
		 customer, broker, status, participants, best_sum, document_urls, lots,
		 archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (website_origin, number) DO UPDATE SET
			name = excluded.name,
			documents = excluded.documents,
			sum = excluded.sum,
			submission_end = excluded.submission_end,
			bidding_begin = excluded.bidding_begin,
			customer = excluded.customer,
			broker = excluded.broker,
			status = excluded.status,
			participants = excluded.participants,
			best_sum = excluded.best_sum,
			document_urls = excluded.document_urls,
			lots = excluded.lots,
			archived = excluded.archived,
			updated_at = excluded.updated_at`)

	now := sqltime.Format(time.Now())
	for _, it := range items {
		var id int64
		err := tx.QueryRowxContext(ctx, exists, origin, it.Number).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			stats.New++
		case err != nil:
			return domain.Stats{}, fmt.Errorf("upsert tenders: lookup %s: %w", it.Number, err)
		default:
			stats.Updated++
		}

		urls, lots, err := encodeLists(it)
		if err != nil {
			return domain.Stats{}, err
		}
		if _, err := tx.ExecContext(ctx, upsert,
			origin, it.Number, it.Name, it.Documents, it.Sum, it.SubmissionEnd, it.BiddingBegin,
			it.Customer, it.Broker, it.Status, it.Participants, it.BestSum, urls, lots,
			false, now, now,
		); err != nil {
			return domain.Stats{}, fmt.Errorf("upsert tenders: write %s: %w", it.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Stats{}, fmt.Errorf("upsert tenders: commit: %w", err)
	}
	return stats, nil
}

// Archive flags the given tenders of origin as archived and returns how many
// rows matched.
func (r *Repository) Archive(ctx context.Context, origin string, items []domain.Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	numbers := make([]string, 0, len(items))
	for _, it := range items {
		numbers = append(numbers, it.Number)
	}

	query, args, err := sqlx.In(`UPDATE tenders SET archived = ?, updated_at = ?
		WHERE website_origin = ? AND number IN (?)`,
		true, sqltime.Format(time.Now()), origin, numbers)
	if err != nil {
		return 0, fmt.Errorf("archive tenders: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("archive tenders: %w", err)
	}
	return res.RowsAffected()
}

// List returns the tenders stored for origin ordered by number. Archived
// tenders are included only when archived is true.
func (r *Repository) List(ctx context.Context, origin string, archived bool) ([]domain.Item, error) {
	query := `SELECT number, name, documents, sum, submission_end, bidding_begin,
		customer, broker, status, participants, best_sum, document_urls, lots, archived
		FROM tenders WHERE website_origin = ?`
	if !archived {
		query += ` AND archived = ?`
	}
	query += ` ORDER BY number`

	args := []any{origin}
	if !archived {
		args = append(args, false)
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list tenders: %w", err)
	}
	out := make([]domain.Item, 0, len(rows))
	for _, rw := range rows {
		it := rw.Item
		if err := json.Unmarshal([]byte(rw.DocumentURLsJSON), &it.DocumentURLs); err != nil {
			return nil, fmt.Errorf("list tenders: decode document urls of %s: %w", it.Number, err)
		}
		if err := json.Unmarshal([]byte(rw.LotsJSON), &it.Lots); err != nil {
			return nil, fmt.Errorf("list tenders: decode lots of %s: %w", it.Number, err)
		}
		if len(it.DocumentURLs) == 0 {
			it.DocumentURLs = nil
		}
		if len(it.Lots) == 0 {
			it.Lots = nil
		}
		out = append(out, it)
	}
	return out, nil
}

func encodeLists(it domain.Item) (string, string, error) {
	urls := it.DocumentURLs
	if urls == nil {
		urls = []string{}
	}
	u, err := json.Marshal(urls)
	if err != nil {
		return "", "", fmt.Errorf("encode document urls of %s: %w", it.Number, err)
	}
	lots := it.Lots
	if lots == nil {
		lots = []json.RawMessage{}
	}
	l, err := json.Marshal(lots)
	if err != nil {
		return "", "", fmt.Errorf("encode lots of %s: %w", it.Number, err)
	}
	return string(u), string(l), nil
}
