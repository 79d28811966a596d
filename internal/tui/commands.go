package tui

import (
	"context"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/subscriptions"
	tea "github.com/charmbracelet/bubbletea"
)

// Reviewer is the suggestion lifecycle the TUI drives.
type Reviewer interface {
	Analyze(ctx context.Context, userID string) ([]model.Suggestion, error)
	Suggestions(ctx context.Context, userID string) ([]model.Suggestion, error)
	Confirm(ctx context.Context, userID, suggestionID string) (*subscriptions.ConfirmResult, error)
	Dismiss(ctx context.Context, userID, suggestionID string) error
}

var _ Reviewer = (*subscriptions.Service)(nil)

func analyzeCmd(ctx context.Context, r Reviewer, userID string) tea.Cmd {
	return func() tea.Msg {
		suggestions, err := r.Analyze(ctx, userID)
		if err != nil {
			return errMsg{err: err}
		}
		return suggestionsLoadedMsg{suggestions: suggestions, analyzed: true}
	}
}

func loadCmd(ctx context.Context, r Reviewer, userID string) tea.Cmd {
	return func() tea.Msg {
		suggestions, err := r.Suggestions(ctx, userID)
		if err != nil {
			return errMsg{err: err}
		}
		return suggestionsLoadedMsg{suggestions: suggestions}
	}
}

func confirmCmd(ctx context.Context, r Reviewer, userID, suggestionID string) tea.Cmd {
	return func() tea.Msg {
		result, err := r.Confirm(ctx, userID, suggestionID)
		if err != nil {
			return errMsg{err: err}
		}
		return confirmedMsg{result: result}
	}
}

func dismissCmd(ctx context.Context, r Reviewer, userID string, s model.Suggestion) tea.Cmd {
	return func() tea.Msg {
		if err := r.Dismiss(ctx, userID, s.SuggestionID); err != nil {
			return errMsg{err: err}
		}
		return dismissedMsg{suggestionID: s.SuggestionID, name: s.Name}
	}
}
