package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/sqlite"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	domain "github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestUpsert_And_GetByOrigin(t *testing.T) {
	repo := NewRepository(setupTestDB(t).DB)
	ctx := context.Background()

	in := &domain.Integration{Origin: "example.com", Name: strPtr("Example"), IsActive: true}
	require.NoError(t, repo.Upsert(ctx, in))
	assert.NotZero(t, in.ID)

	got, err := repo.GetByOrigin(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, "Example", got.DisplayName())
	assert.True(t, got.IsActive)
	assert.Nil(t, got.AccessToken)
	assert.False(t, got.CreatedAt.IsZero())

	// Second upsert keeps the id and applies the change.
	again := &domain.Integration{Origin: "example.com", IsActive: false, AccessToken: strPtr("tok")}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, in.ID, again.ID)

	got, err = repo.GetByOrigin(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "tok", *got.AccessToken)
	assert.Nil(t, got.Name)
}

func TestGetByOrigin_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t).DB)
	_, err := repo.GetByOrigin(context.Background(), "nowhere.example")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestList(t *testing.T) {
	repo := NewRepository(setupTestDB(t).DB)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &domain.Integration{Origin: "a.example", IsActive: true}))
	require.NoError(t, repo.Upsert(ctx, &domain.Integration{Origin: "b.example"}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.example", got[0].Origin)
	assert.Equal(t, "b.example", got[1].Origin)
}

func TestUpsert_RequiresOrigin(t *testing.T) {
	repo := NewRepository(setupTestDB(t).DB)
	err := repo.Upsert(context.Background(), &domain.Integration{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestList_DriverError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = raw.Close() }()
	repo := NewRepository(sqlx.NewDb(raw, "postgres"))

	mock.ExpectQuery("SELECT (.+) FROM integrations").WillReturnError(errors.New("connection reset"))
	_, err = repo.List(context.Background())
	assert.ErrorContains(t, err, "list integrations: connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByOrigin_UsesPostgresPlaceholders(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = raw.Close() }()
	repo := NewRepository(sqlx.NewDb(raw, "postgres"))

	mock.ExpectQuery(`WHERE website_origin = \$1`).
		WithArgs("example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "website_origin", "website_name", "is_active",
			"access_token", "refresh_token", "authorization_token", "created_at", "updated_at",
		}).AddRow(7, "example.com", nil, true, nil, nil, nil, "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"))

	got, err := repo.GetByOrigin(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
