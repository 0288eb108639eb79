package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docserve/internal/api"
	"github.com/dgallion1/docserve/internal/config"
	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/docs"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/stats"
	"github.com/dgallion1/docserve/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if info, err := os.Stat(cfg.DocsDir); err != nil || !info.IsDir() {
		log.Error("docs directory not readable", "dir", cfg.DocsDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize corpus, renderer and search.
	c := corpus.Open(cfg.DocsDir, log)
	renderer := render.NewRenderer(render.NewChroma(), log)

	var searcher search.Searcher = search.NewScanner(c, log)
	var index *search.Index
	if cfg.SearchIndex {
		index = search.NewIndex(c, log)
		searcher = index
	}
	svc := docs.NewService(c, renderer, searcher, stats.NewWindow(cfg.StatsWindow), log)

	// Initialize HTTP server.
	srv, err := api.NewServer(svc, log, cfg)
	if err != nil {
		log.Error("server setup failed", "error", err)
		os.Exit(1)
	}
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// The scanner reads the corpus per query; only the index needs telling.
	if cfg.WatchDocs && index != nil {
		w, err := watch.New(cfg.DocsDir,
			watch.WithLogger(log),
			watch.WithOnChange(func() {
				log.Info("docs changed, invalidating search index")
				index.Invalidate()
			}),
		)
		if err != nil {
			log.Error("watcher setup failed", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	g.Go(func() error {
		log.Info("starting docserve", "port", cfg.Port, "mode", cfg.Mode, "docs", cfg.DocsDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if categories, err := svc.Categories(); err != nil {
		log.Warn("could not list categories", "error", err)
	} else {
		announce(os.Stdout, log, "http://localhost:"+cfg.Port, categories)
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
