package main

import (
	"context"
	"fmt"

	"github.com/verdict-finance/verdict/internal/behavior"
	"github.com/verdict-finance/verdict/internal/category"
	"github.com/verdict-finance/verdict/internal/config"
	"github.com/verdict-finance/verdict/internal/engine"
	"github.com/verdict-finance/verdict/internal/model"
	"github.com/verdict-finance/verdict/internal/scoring"
	"github.com/verdict-finance/verdict/internal/service"
	"github.com/verdict-finance/verdict/internal/storage"
)

// initStorage opens and migrates the database configured in Viper.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds the full decision engine from configuration.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	scoringModel, err := scoring.Load(cfg.Scoring.ModelPath, cfg.Scoring.AllowPlaceholder)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	analyzer := behavior.NewAnalyzer(category.NewClassifier(), cfg.Behavior.Thresholds)

	eng, err := engine.New(store, scoringModel, analyzer)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	return eng, store, cfg, nil
}

// lookupUser resolves a --user email flag against storage.
func lookupUser(ctx context.Context, store service.Storage, email string) (*model.User, error) {
	if email == "" {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", email, err)
	}
	return user, nil
}
