package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totw-tracker/internal/store"
	"totw-tracker/internal/types"
)

func testScraperConfig(baseURL string) store.ScraperConfig {
	cfg := store.DefaultConfig().Scraper
	cfg.BaseURL = baseURL
	cfg.SquadsURL = baseURL + "/squads"
	cfg.ElementTimeoutSeconds = 2
	cfg.NavigationTimeoutSeconds = 2
	cfg.RateLimit.IntervalMillis = 0
	cfg.Retry.MaxRetries = 2
	cfg.Retry.InitialBackoffMillis = 1
	cfg.Retry.MaxBackoffMillis = 2
	return cfg
}

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `<html><body><div id="cardlid1">ok</div></body></html>`)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `<html><body><p>loading</p></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRenderFindsSelector(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	ctx := context.Background()

	sess, err := NewCollyFetcher(testScraperConfig(srv.URL)).NewSession(ctx)
	require.NoError(t, err)
	defer sess.Close()

	doc, err := sess.Render(ctx, srv.URL+"/ready", "div[id^='cardlid']")
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("#cardlid1").Text())
	assert.Equal(t, int32(1), hits.Load())
}

func TestRenderRetriesUntilElementTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	ctx := context.Background()

	sess, err := NewCollyFetcher(testScraperConfig(srv.URL)).NewSession(ctx)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Render(ctx, srv.URL+"/empty", "table")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrElementNotFound))
	assert.Equal(t, int32(3), hits.Load(), "one attempt plus two retries")
}

func TestRenderNotFoundIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	ctx := context.Background()

	sess, err := NewCollyFetcher(testScraperConfig(srv.URL)).NewSession(ctx)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Render(ctx, srv.URL+"/missing", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNavigation))
	assert.Equal(t, int32(1), hits.Load())
}

func TestRenderAfterClose(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	ctx := context.Background()

	sess, err := NewCollyFetcher(testScraperConfig(srv.URL)).NewSession(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	_, err = sess.Render(ctx, srv.URL+"/ready", "")
	assert.True(t, errors.Is(err, ErrSessionClosed))
	assert.Equal(t, int32(0), hits.Load())
}

func TestNewSessionCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollyFetcher(testScraperConfig("http://127.0.0.1")).NewSession(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScraperFetchPlayerStatsAbsorbsErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	ctx := context.Background()
	cfg := testScraperConfig(srv.URL)

	sess, err := NewCollyFetcher(cfg).NewSession(ctx)
	require.NoError(t, err)
	defer sess.Close()

	// /missing maps to /missing?platform=pc, which 404s
	_, ok := New(cfg).FetchPlayerStats(ctx, sess, types.PlayerRef{Name: "Ghost", URL: srv.URL + "/missing"}, fixedNow)
	assert.False(t, ok)
}
