package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/spacesub/internal/config"
	"github.com/Veraticus/spacesub/internal/engine"
	"github.com/Veraticus/spacesub/internal/storage"
	"github.com/Veraticus/spacesub/internal/subscriptions"
	"github.com/Veraticus/spacesub/internal/suggestion"
)

// app bundles the collaborators most commands need.
type app struct {
	store    *storage.SQLiteStorage
	analyzer *engine.Analyzer
	service  *subscriptions.Service
	userID   string
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openApp wires storage, the analyzer and the subscription service.
func openApp(ctx context.Context) (*app, error) {
	userID, err := config.UserID()
	if err != nil {
		return nil, err
	}

	analysisCfg, err := config.LoadAnalysisConfig()
	if err != nil {
		return nil, err
	}

	storeKind, err := config.SuggestionStore()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	var suggestions suggestion.Store = suggestion.NewPersistentStore(store)
	if storeKind == config.StoreMemory {
		suggestions = suggestion.NewMemoryStore()
	}

	analyzer := engine.NewAnalyzerWithConfig(store, suggestions, analysisCfg)

	return &app{
		store:    store,
		analyzer: analyzer,
		service:  subscriptions.NewService(analyzer, suggestions, store),
		userID:   userID,
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}
