package suggestion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
)

// ErrNilContext is returned when a nil context is passed to the store.
var ErrNilContext = errors.New("context cannot be nil")

// MemoryStore implements Store with a process-local map.
// Suggestions are copied on the way in and out, so callers never share
// slices with the store.
type MemoryStore struct {
	byUser map[string][]model.Suggestion
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory suggestion store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser: make(map[string][]model.Suggestion),
	}
}

// Replace implements Store. An empty list clears the user's entry.
func (s *MemoryStore) Replace(ctx context.Context, userID string, suggestions []model.Suggestion) error {
	if err := validate(ctx, userID); err != nil {
		return err
	}

	copied := make([]model.Suggestion, 0, len(suggestions))
	for _, sugg := range suggestions {
		copied = append(copied, sugg.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(copied) == 0 {
		delete(s.byUser, userID)
		return nil
	}
	s.byUser[userID] = copied
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error) {
	if err := validate(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sugg := range s.byUser[userID] {
		if sugg.SuggestionID == suggestionID {
			found := sugg.Clone()
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", common.ErrSuggestionNotFound, suggestionID)
}

// Remove implements Store.
func (s *MemoryStore) Remove(ctx context.Context, userID, suggestionID string) error {
	if err := validate(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[userID]
	for i, sugg := range current {
		if sugg.SuggestionID != suggestionID {
			continue
		}
		remaining := make([]model.Suggestion, 0, len(current)-1)
		remaining = append(remaining, current[:i]...)
		remaining = append(remaining, current[i+1:]...)
		if len(remaining) == 0 {
			delete(s.byUser, userID)
		} else {
			s.byUser[userID] = remaining
		}
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrSuggestionNotFound, suggestionID)
}

// List implements Store. Order is the order given to the last Replace.
func (s *MemoryStore) List(ctx context.Context, userID string) ([]model.Suggestion, error) {
	if err := validate(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.byUser[userID]
	out := make([]model.Suggestion, 0, len(current))
	for _, sugg := range current {
		out = append(out, sugg.Clone())
	}
	return out, nil
}

func validate(ctx context.Context, userID string) error {
	if ctx == nil {
		return ErrNilContext
	}
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	return nil
}
