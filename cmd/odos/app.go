package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/config"
	"github.com/claude/odos/internal/inventory"
	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/plan"
	"github.com/claude/odos/internal/recommend"
	"github.com/claude/odos/internal/session"
	"github.com/claude/odos/internal/storage"
)

// app is every component wired from one config.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	metrics   *metrics.Manager
	catalog   *catalog.Store
	inventory *inventory.Store
	history   *storage.DB
	tracker   *session.Tracker
	planner   *plan.Planner
}

// newLogger writes to stderr so stdout stays free for command output and
// the MCP stdio transport.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := newLogger(cfg.Log)

	m := metrics.NewManager("odos", "", prometheus.NewRegistry())

	db, err := storage.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	cat := catalog.NewStore(
		catalog.NewFetcher(cfg.Catalog.URL, cfg.Catalog.ImageBaseURL, cfg.Catalog.Timeout, cfg.Catalog.Attempts),
		log, m,
	)

	var rec recommend.Recommender = recommend.Disabled{}
	if cfg.Recommender.Enabled {
		rec = recommend.NewClient(cfg.Recommender.RecommendConfig(), recommend.NewMetricsObserver(log, m))
	}

	return &app{
		cfg:       cfg,
		log:       log,
		metrics:   m,
		catalog:   cat,
		inventory: inventory.New(cfg.Inventory.Exercises...),
		history:   db,
		tracker:   session.NewTracker(db, log, m, session.WithPreviousLookup(db)),
		planner:   plan.New(cat, rec, cfg.Planner.PlanConfig(), log, m),
	}, nil
}

// close stops background plan generation, then closes history.
func (a *app) close() error {
	a.planner.Close()
	return a.history.Close()
}
