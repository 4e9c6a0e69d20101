// Command cacheworker runs the offline cache worker: a caching proxy in
// front of the story frontend with a versioned response cache and a push
// notification listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmarakov/storypin/internal/cacheworker"
	"github.com/dmarakov/storypin/internal/client/config"
	"github.com/dmarakov/storypin/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		upstream   = flag.String("upstream", "", "upstream base URL (overrides config api.base_url)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *upstream == "" {
		*upstream = cfg.API.BaseURL
	}

	log := logging.NewDefault(cfg.LogLevel)

	db, store, err := cacheworker.OpenStore(ctx, cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	worker, err := cacheworker.NewWorker(*upstream, store, cfg.Cache.Name, cfg.Cache.ShellPath, log)
	if err != nil {
		return err
	}

	manifest := cfg.Cache.Precache
	if len(manifest) == 0 {
		manifest = cacheworker.DefaultPrecacheManifest
	}
	if err := worker.Install(ctx, manifest); err != nil {
		log.Warn(ctx, "install incomplete, serving anyway", "error", err)
	}
	if err := worker.Activate(ctx); err != nil {
		return err
	}

	if cfg.Cache.PushURL != "" {
		dispatcher := cacheworker.NewDispatcher(logNotifier{log: log}, nil, log)
		listener := cacheworker.NewListener(cfg.Cache.PushURL, dispatcher.HandlePush, log)
		go func() {
			if err := listener.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "push listener stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Cache.ListenAddr,
		Handler:           worker,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info(ctx, "cache worker listening", "addr", cfg.Cache.ListenAddr, "upstream", *upstream)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logNotifier renders notifications into the structured log. A desktop
// integration would replace it.
type logNotifier struct {
	log logging.Logger
}

func (n logNotifier) Show(ctx context.Context, p cacheworker.PushPayload) error {
	n.log.Info(ctx, "push notification", "title", p.Title, "body", p.Body, "url", p.URL)
	return nil
}
