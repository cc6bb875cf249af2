package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

func newTestService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewService(transport.New(transport.Config{BaseURL: ts.URL, Retries: -1}))
}

func TestList(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/integrations", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 7, "website_origin": "example.com", "is_active": true, "website_name": "Example"},
			{"id": 8, "website_origin": "inactive.example", "is_active": false, "website_name": null}
		]`))
	})

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Example", got[0].DisplayName())
	assert.Equal(t, "inactive.example", got[1].DisplayName())
	assert.False(t, got[1].IsActive)
}

func TestGetByOrigin(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/integrations/example.com":
			_, _ = w.Write([]byte(`{"id": 7, "website_origin": "example.com", "is_active": true}`))
		case "/api/integrations/inactive.example":
			_, _ = w.Write([]byte(`{"id": 8, "website_origin": "inactive.example", "is_active": false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"integration not found"}`))
		}
	})
	ctx := context.Background()

	t.Run("active", func(t *testing.T) {
		got, err := svc.GetByOrigin(ctx, "example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("inactive", func(t *testing.T) {
		_, err := svc.GetByOrigin(ctx, "inactive.example")
		assert.ErrorIs(t, err, apperror.ErrInactive)
		assert.EqualError(t, err, "Integration is not active for website origin: inactive.example")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.GetByOrigin(ctx, "nowhere.example")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.EqualError(t, err, "Integration not found for website origin: nowhere.example")
	})

	t.Run("empty origin", func(t *testing.T) {
		_, err := svc.GetByOrigin(ctx, "")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestGetByOrigin_TransportFailurePassesThrough(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	})

	_, err := svc.GetByOrigin(context.Background(), "example.com")
	var ae *apperror.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.Transport, ae.Code())
	assert.Equal(t, http.StatusUnauthorized, ae.Status())
}
