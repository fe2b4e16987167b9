package apifootball

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
	"github.com/arieljmnz/quiniela-backend/internal/platform/resilience"
)

const fixturesPayload = `{
	"get": "fixtures",
	"errors": [],
	"results": 2,
	"response": [
		{
			"fixture": {"id": 2001, "date": "2025-09-13T21:00:00+00:00", "status": {"short": "NS"}},
			"league": {"id": 262, "name": "Liga MX"},
			"teams": {"home": {"name": "Club America"}, "away": {"name": "Chivas"}},
			"goals": {"home": null, "away": null}
		},
		{
			"fixture": {"id": 2000, "date": "2025-09-12T19:00:00+00:00", "status": {"short": "FT"}},
			"league": {"id": 262, "name": "Liga MX"},
			"teams": {"home": {"name": "Cruz Azul"}, "away": {"name": "Pumas UNAM"}},
			"goals": {"home": 2, "away": 1}
		}
	]
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  logging.NewNop(),
	})
	return client, server
}

func TestFetchFixturesByLeague(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	var gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fixtures", r.URL.Path)
		gotKey = r.Header.Get(apiKeyHeader)
		gotQuery = map[string]string{
			"league":   r.URL.Query().Get("league"),
			"season":   r.URL.Query().Get("season"),
			"from":     r.URL.Query().Get("from"),
			"to":       r.URL.Query().Get("to"),
			"timezone": r.URL.Query().Get("timezone"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixturesPayload))
	}))

	from := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)
	fixtures, err := client.FetchFixturesByLeague(context.Background(), 262, 2025, from, to)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, map[string]string{
		"league":   "262",
		"season":   "2025",
		"from":     "2025-09-08",
		"to":       "2025-09-14",
		"timezone": "UTC",
	}, gotQuery)

	require.Len(t, fixtures, 2)
	// sorted by kickoff
	assert.Equal(t, int64(2000), fixtures[0].ExternalID)
	assert.Equal(t, "Cruz Azul", fixtures[0].HomeTeam)
	require.NotNil(t, fixtures[0].HomeScore)
	assert.Equal(t, 2, *fixtures[0].HomeScore)
	assert.Equal(t, int64(2001), fixtures[1].ExternalID)
	assert.Equal(t, "Liga MX", fixtures[1].LeagueName)
	assert.Nil(t, fixtures[1].HomeScore)
}

func TestFetchFixturesProviderErrors(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors": {"token": "Error/Missing application key."}, "response": []}`))
	}))

	_, err := client.FetchFixturesByLeague(context.Background(), 262, 2025, time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing application key")
	assert.False(t, IsTransient(err))
}

func TestFetchFixturesServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))

	_, err := client.FetchFixturesByLeague(context.Background(), 262, 2025, time.Now(), time.Now())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchFixturesByLeague(context.Background(), 262, 2025, time.Now(), time.Now())
		require.Error(t, err)
	}
	_, err := client.FetchFixturesByLeague(context.Background(), 262, 2025, time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, 2, hits)
}

func TestPing(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/status", r.URL.Path)
			_, _ = w.Write([]byte(`{"errors": [], "response": {"account": {"email": "x@y.mx"}, "subscription": {"active": true}}}`))
		}))
		require.NoError(t, client.Ping(context.Background()))
	})

	t.Run("bad credential", func(t *testing.T) {
		t.Parallel()
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"errors": {"token": "invalid"}, "response": {}}`))
		}))
		require.Error(t, client.Ping(context.Background()))
	})
}

func TestQuota(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"errors": [], "response": {"account": {"email": "x@y.mx"}, "subscription": {"active": true}, "requests": {"current": 37, "limit_day": 100}}}`))
	}))

	used, limit, err := client.Quota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 37, used)
	assert.Equal(t, 100, limit)
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	out := sanitizeSensitiveText("dial failed key=super-secret", "super-secret")
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "REDACTED")
}

func TestSampleMatchesLandInCurrentWeek(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	samples := SampleMatches(now)
	require.NotEmpty(t, samples)

	monday := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	nextMonday := monday.AddDate(0, 0, 7)
	for _, m := range samples {
		assert.False(t, m.KickoffAt.Before(monday), "kickoff %s before monday", m.KickoffAt)
		assert.True(t, m.KickoffAt.Before(nextMonday), "kickoff %s after sunday", m.KickoffAt)
		assert.NotEmpty(t, m.ID)
	}
}
