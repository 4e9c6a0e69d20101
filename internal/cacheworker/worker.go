package cacheworker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmarakov/storypin/internal/logging"
)

// maxCachedBody caps what a single cache entry may hold.
const maxCachedBody = 8 << 20

// DefaultPrecacheManifest is the app shell cached on install when the
// configuration does not list its own assets.
var DefaultPrecacheManifest = []string{
	"/",
	"/index.html",
	"/styles/styles.css",
	"/app.bundle.js",
	"/images/icon-192x192.png",
	"/images/icon-512x512.png",
	"/images/icon-72x72.png",
	"/manifest.json",
	"/404.html",
}

// Worker is the caching proxy between the app and its upstream. Only GET
// traffic is intercepted; everything else passes straight through.
type Worker struct {
	upstream  *url.URL
	client    *http.Client
	store     *CacheStore
	cacheName string
	shellPath string
	log       logging.Logger
}

func NewWorker(upstream string, store *CacheStore, cacheName, shellPath string, log logging.Logger) (*Worker, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	return &Worker{
		upstream:  u,
		client:    &http.Client{Timeout: 30 * time.Second},
		store:     store,
		cacheName: cacheName,
		shellPath: shellPath,
		log:       log.With("component", "cacheworker"),
	}, nil
}

// Install precaches the manifest: every path is fetched fresh (the request
// bypasses intermediate HTTP caches) and stored under the worker's cache
// name. A path that fails to fetch is logged and skipped; installation is
// best effort.
func (w *Worker) Install(ctx context.Context, manifest []string) error {
	w.log.Info(ctx, "installing", "cache", w.cacheName, "assets", len(manifest))

	var failed int
	for _, path := range manifest {
		if err := w.precache(ctx, path); err != nil {
			w.log.Warn(ctx, "precache failed", "path", path, "error", err)
			failed++
		}
	}
	if failed == len(manifest) && len(manifest) > 0 {
		return fmt.Errorf("precache failed for all %d assets", failed)
	}
	return nil
}

// Activate sweeps every cache entry left by previous versions, keeping only
// the current cache name.
func (w *Worker) Activate(ctx context.Context) error {
	swept, err := w.store.DeleteOtherCaches(ctx, w.cacheName)
	if err != nil {
		return err
	}
	w.log.Info(ctx, "activated", "cache", w.cacheName, "swept", swept)
	return nil
}

// ServeHTTP implements the GET interception policy: cache first, then
// network with store-on-200, then the HTML shell for navigation requests
// that could not be satisfied at all.
func (w *Worker) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.passthrough(rw, req)
		return
	}

	ctx := req.Context()
	key := req.URL.RequestURI()

	if cached, err := w.store.Get(ctx, w.cacheName, key); err == nil {
		w.log.Debug(ctx, "serving from cache", "url", key)
		writeCached(rw, cached)
		return
	}

	resp, err := w.fetch(ctx, key, false)
	if err != nil {
		w.log.Warn(ctx, "network fetch failed", "url", key, "error", err)
		w.serveShellFallback(rw, req)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody))
	if err != nil {
		w.serveShellFallback(rw, req)
		return
	}

	if resp.StatusCode == http.StatusOK {
		entry := &CachedResponse{
			CacheName:   w.cacheName,
			URL:         key,
			Status:      resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
			StoredAt:    time.Now().UTC(),
		}
		if err := w.store.Put(ctx, entry); err != nil {
			w.log.Warn(ctx, "failed to cache response", "url", key, "error", err)
		}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		rw.Header().Set("Content-Type", ct)
	}
	rw.WriteHeader(resp.StatusCode)
	_, _ = rw.Write(body)
}

func (w *Worker) precache(ctx context.Context, path string) error {
	resp, err := w.fetch(ctx, path, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody))
	if err != nil {
		return err
	}

	return w.store.Put(ctx, &CachedResponse{
		CacheName:   w.cacheName,
		URL:         path,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		StoredAt:    time.Now().UTC(),
	})
}

func (w *Worker) fetch(ctx context.Context, path string, bypassCaches bool) (*http.Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	target := w.upstream.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	if bypassCaches {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}
	return w.client.Do(req)
}

// serveShellFallback answers navigation requests with the cached app shell;
// anything else gets a plain gateway error.
func (w *Worker) serveShellFallback(rw http.ResponseWriter, req *http.Request) {
	if strings.Contains(req.Header.Get("Accept"), "text/html") {
		if shell, err := w.store.Get(req.Context(), w.cacheName, w.shellPath); err == nil {
			writeCached(rw, shell)
			return
		}
	}
	http.Error(rw, "upstream unreachable", http.StatusBadGateway)
}

// passthrough forwards a non-GET request unchanged and streams the answer
// back without touching the cache.
func (w *Worker) passthrough(rw http.ResponseWriter, req *http.Request) {
	target := w.upstream.ResolveReference(&url.URL{Path: req.URL.Path, RawQuery: req.URL.RawQuery})

	out, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), req.Body)
	if err != nil {
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}
	out.Header = req.Header.Clone()

	resp, err := w.client.Do(out)
	if err != nil {
		http.Error(rw, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, vals := range resp.Header {
		for _, v := range vals {
			rw.Header().Add(k, v)
		}
	}
	rw.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(rw, resp.Body)
}

func writeCached(rw http.ResponseWriter, c *CachedResponse) {
	if c.ContentType != "" {
		rw.Header().Set("Content-Type", c.ContentType)
	}
	rw.Header().Set("X-Cache", "HIT")
	rw.WriteHeader(c.Status)
	_, _ = rw.Write(c.Body)
}
