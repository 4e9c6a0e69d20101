package cacheworker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dmarakov/storypin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, upstream string) (*Worker, *CacheStore) {
	t.Helper()
	_, store := openTestStore(t)
	w, err := NewWorker(upstream, store, "test-v1", "/index.html", logging.Nop{})
	require.NoError(t, err)
	return w, store
}

func TestInstall_PrecachesManifest(t *testing.T) {
	var sawNoCache atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") == "no-cache" {
			sawNoCache.Store(true)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("content of " + r.URL.Path))
	}))
	defer srv.Close()

	worker, store := newTestWorker(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, worker.Install(ctx, []string{"/", "/index.html", "/app.js"}))

	assert.True(t, sawNoCache.Load(), "precache fetches must bypass intermediate caches")
	got, err := store.Get(ctx, "test-v1", "/index.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("content of /index.html"), got.Body)
}

func TestInstall_SkipsFailedAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.css" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	worker, store := newTestWorker(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, worker.Install(ctx, []string{"/index.html", "/broken.css"}))

	_, err := store.Get(ctx, "test-v1", "/index.html")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "test-v1", "/broken.css")
	assert.Error(t, err)
}

func TestInstall_AllAssetsFailingIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	worker, _ := newTestWorker(t, srv.URL)
	assert.Error(t, worker.Install(context.Background(), []string{"/a", "/b"}))
}

func TestActivate_SweepsOldVersions(t *testing.T) {
	ctx := context.Background()
	worker, store := newTestWorker(t, "http://upstream.invalid")

	require.NoError(t, store.Put(ctx, entry("old-v0", "/index.html")))
	require.NoError(t, store.Put(ctx, entry("test-v1", "/index.html")))

	require.NoError(t, worker.Activate(ctx))

	_, err := store.Get(ctx, "old-v0", "/index.html")
	assert.Error(t, err)
	_, err = store.Get(ctx, "test-v1", "/index.html")
	assert.NoError(t, err)
}

func TestServeHTTP_CacheFirst(t *testing.T) {
	var upstreamHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		upstreamHits.Add(1)
		_, _ = w.Write([]byte("from network"))
	}))
	defer srv.Close()

	worker, store := newTestWorker(t, srv.URL)
	cached := entry("test-v1", "/app.js")
	cached.Body = []byte("from cache")
	require.NoError(t, store.Put(context.Background(), cached))

	rec := httptest.NewRecorder()
	worker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	assert.Equal(t, "from cache", rec.Body.String())
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Zero(t, upstreamHits.Load())
}

func TestServeHTTP_MissFetchesAndStoresOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	worker, store := newTestWorker(t, srv.URL)

	rec := httptest.NewRecorder()
	worker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stories?size=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"ok":true}`, rec.Body.String())

	got, err := store.Get(context.Background(), "test-v1", "/v1/stories?size=10")
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.ContentType)
}

func TestServeHTTP_Non200IsServedButNotStored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	worker, store := newTestWorker(t, srv.URL)

	rec := httptest.NewRecorder()
	worker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, err := store.Get(context.Background(), "test-v1", "/missing")
	assert.Error(t, err)
}

func TestServeHTTP_NetworkFailureServesShellForHTML(t *testing.T) {
	// Unresolvable upstream: every network fetch fails.
	worker, store := newTestWorker(t, "http://storypin-upstream.invalid")

	shell := entry("test-v1", "/index.html")
	shell.Body = []byte("<html>shell</html>")
	require.NoError(t, store.Put(context.Background(), shell))

	req := httptest.NewRequest(http.MethodGet, "/stories/42", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	worker.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())
}

func TestServeHTTP_NetworkFailureWithoutHTMLAcceptIs502(t *testing.T) {
	worker, _ := newTestWorker(t, "http://storypin-upstream.invalid")

	req := httptest.NewRequest(http.MethodGet, "/v1/stories", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	worker.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServeHTTP_NonGETPassesThroughUncached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	worker, store := newTestWorker(t, srv.URL)

	rec := httptest.NewRecorder()
	worker.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/stories", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	_, err := store.Get(context.Background(), "test-v1", "/v1/stories")
	assert.Error(t, err, "writes must never be cached")
}
