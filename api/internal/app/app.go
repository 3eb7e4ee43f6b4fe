// Package app wires configuration into a running service: classifier pool,
// fetch client, optional store and analytics.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inkify/api/internal/analytics"
	"inkify/api/internal/classifier"
	"inkify/api/internal/config"
	"inkify/api/internal/fetch"
	"inkify/api/internal/pipeline"
	"inkify/api/internal/store"
	"inkify/api/internal/syntax"
)

type App struct {
	Svc     *pipeline.Service
	Tracker analytics.Tracker
	DB      *store.DB // nil without DATABASE_URL
	Events  *store.EventRepo
	Prefs   *store.PrefRepo

	pool *classifier.Pool
	log  *zap.Logger
}

func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	syntaxes := syntax.NewChroma()
	model, err := classifier.New(cfg.Classifier.Name, classifier.Options{
		Labels: cfg.Classifier.Labels,
		// a label without a lexer would only ever land in the fallback tier
		Accept: func(label string) bool {
			_, ok := syntaxes.FromLanguage(label)
			return ok
		},
		GeminiAPIKey: cfg.Classifier.GeminiAPIKey,
		GeminiModel:  cfg.Classifier.GeminiModel,
	})
	if err != nil {
		return nil, err
	}
	if !model.Loaded() {
		log.Warn("language classifier not loaded; detection stops at the first-line tier",
			zap.String("classifier", cfg.Classifier.Name))
	}
	pool := classifier.NewPool(model, cfg.Classifier.Workers)

	a := &App{pool: pool, log: log}
	var trackers analytics.Multi
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("store: %w", err)
		}
		log.Info("db connected", zap.String("dsn", store.SafeDSNSummary(cfg.DatabaseURL)))
		a.DB = db
		a.Events = store.NewEventRepo(db)
		a.Prefs = store.NewPrefRepo(db)
		trackers = append(trackers, analytics.Store{Repo: a.Events, Log: log})
	}
	if cfg.UmamiEnabled() {
		trackers = append(trackers, analytics.NewUmami(cfg.UmamiURL, cfg.UmamiWebsiteID, log))
	}
	a.Tracker = analytics.Nop{}
	if len(trackers) > 0 {
		a.Tracker = trackers
	}

	a.Svc = pipeline.New(pipeline.Deps{
		Syntax:  syntaxes,
		Model:   pool,
		Fetcher: fetch.New(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes),
		Log:     log,
	})
	return a, nil
}

// Close stops the classifier workers and closes the store.
func (a *App) Close() error {
	var errs []error
	if err := a.pool.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunJanitor deletes stored events older than keep once per every until ctx
// ends. Without a store it returns at once.
func (a *App) RunJanitor(ctx context.Context, every, keep time.Duration) {
	if a.Events == nil || every <= 0 || keep <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.purge(ctx, keep)
		}
	}
}

func (a *App) purge(ctx context.Context, keep time.Duration) {
	n, err := a.Events.PurgeOlderThan(ctx, keep)
	if err != nil {
		a.log.Warn("purge events", zap.Error(err))
		return
	}
	if n > 0 {
		a.log.Info("purged events", zap.Int64("rows", n), zap.Duration("older_than", keep))
	}
}
