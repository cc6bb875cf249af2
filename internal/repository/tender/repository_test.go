package tender

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/sqlite"
	domain "github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db.DB)
}

func TestUpsert_CountsNewAndUpdated(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	stats, err := repo.Upsert(ctx, "example.com", []domain.Item{
		{Number: "A-1", Name: "Road works"},
		{Number: "A-2", Name: "Bridge", DocumentURLs: []string{"https://cdn.example/a.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{New: 2}, stats)

	stats, err = repo.Upsert(ctx, "example.com", []domain.Item{
		{Number: "A-2", Name: "Bridge repair", Lots: []json.RawMessage{json.RawMessage(`{"n":1}`)}},
		{Number: "A-3", Name: "Tunnel"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{New: 1, Updated: 1}, stats)

	// Same number under another origin is a different tender.
	stats, err = repo.Upsert(ctx, "other.example", []domain.Item{{Number: "A-1", Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{New: 1}, stats)

	items, err := repo.List(ctx, "example.com", false)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Bridge repair", items[1].Name)
	assert.Nil(t, items[1].DocumentURLs)
	require.Len(t, items[1].Lots, 1)
	assert.JSONEq(t, `{"n":1}`, string(items[1].Lots[0]))
}

func TestUpsert_IsIdempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	batch := []domain.Item{{Number: "A-1", Name: "Road"}, {Number: "A-2", Name: "Bridge"}}

	_, err := repo.Upsert(ctx, "example.com", batch)
	require.NoError(t, err)
	stats, err := repo.Upsert(ctx, "example.com", batch)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Updated: 2}, stats)

	items, err := repo.List(ctx, "example.com", true)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestArchive(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "example.com", []domain.Item{
		{Number: "A-1", Name: "Road"}, {Number: "A-2", Name: "Bridge"},
	})
	require.NoError(t, err)

	n, err := repo.Archive(ctx, "example.com", []domain.Item{{Number: "A-1"}, {Number: "missing"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := repo.List(ctx, "example.com", false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A-2", active[0].Number)

	n, err = repo.Archive(ctx, "example.com", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpsert_RollsBackOnError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = raw.Close() }()
	repo := NewRepository(sqlx.NewDb(raw, "postgres"))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM tenders`).WithArgs("example.com", "A-1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = repo.Upsert(context.Background(), "example.com", []domain.Item{{Number: "A-1", Name: "x"}})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
