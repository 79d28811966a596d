// Package suggestion holds the per-user set of pending subscription
// suggestions between an analysis run and the user's decision.
package suggestion

import (
	"context"

	"github.com/Veraticus/spacesub/internal/model"
)

// Store keeps the latest suggestions for each user. Replace discards the
// previous set entirely; Get and Remove return common.ErrSuggestionNotFound
// for ids that are not in the current set.
type Store interface {
	Replace(ctx context.Context, userID string, suggestions []model.Suggestion) error
	Get(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error)
	Remove(ctx context.Context, userID, suggestionID string) error
	List(ctx context.Context, userID string) ([]model.Suggestion, error)
}

// Backend is the persistence surface a database offers for suggestions.
type Backend interface {
	ReplaceSuggestions(ctx context.Context, userID string, suggestions []model.Suggestion) error
	GetSuggestion(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error)
	RemoveSuggestion(ctx context.Context, userID, suggestionID string) error
	ListSuggestions(ctx context.Context, userID string) ([]model.Suggestion, error)
}

// PersistentStore adapts a Backend to the Store interface so suggestions
// survive across processes sharing the same database.
type PersistentStore struct {
	backend Backend
}

// NewPersistentStore wraps a database backend.
func NewPersistentStore(backend Backend) *PersistentStore {
	return &PersistentStore{backend: backend}
}

// Replace implements Store.
func (p *PersistentStore) Replace(ctx context.Context, userID string, suggestions []model.Suggestion) error {
	return p.backend.ReplaceSuggestions(ctx, userID, suggestions)
}

// Get implements Store.
func (p *PersistentStore) Get(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error) {
	return p.backend.GetSuggestion(ctx, userID, suggestionID)
}

// Remove implements Store.
func (p *PersistentStore) Remove(ctx context.Context, userID, suggestionID string) error {
	return p.backend.RemoveSuggestion(ctx, userID, suggestionID)
}

// List implements Store.
func (p *PersistentStore) List(ctx context.Context, userID string) ([]model.Suggestion, error) {
	return p.backend.ListSuggestions(ctx, userID)
}
