package tui

import (
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/subscriptions"
)

// suggestionsLoadedMsg carries a fresh suggestion list.
type suggestionsLoadedMsg struct {
	suggestions []model.Suggestion
	analyzed    bool
}

// confirmedMsg reports a successful confirmation.
type confirmedMsg struct {
	result *subscriptions.ConfirmResult
}

// dismissedMsg reports a dismissed suggestion.
type dismissedMsg struct {
	suggestionID string
	name         string
}

// errMsg reports a failed action.
type errMsg struct {
	err error
}
