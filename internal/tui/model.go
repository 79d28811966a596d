// Package tui implements the interactive suggestion review screen.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the review screen state.
type Model struct {
	ctx         context.Context
	reviewer    Reviewer
	theme       themes.Theme
	help        help.Model
	spinner     spinner.Model
	keymap      KeyMap
	userID      string
	status      string
	suggestions []model.Suggestion
	config      Config
	cursor      int
	width       int
	height      int
	confirmed   int
	dismissed   int
	statusError bool
	loading     bool
	quitting    bool
}

// NewModel creates a review model for userID.
func NewModel(ctx context.Context, reviewer Reviewer, userID string, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cfg.Theme.StatusInfo

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	return Model{
		ctx:      ctx,
		reviewer: reviewer,
		userID:   userID,
		config:   cfg,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     h,
		spinner:  s,
		width:    cfg.Width,
		height:   cfg.Height,
		loading:  true,
	}
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	load := loadCmd(m.ctx, m.reviewer, m.userID)
	if m.config.AnalyzeOnStart {
		load = analyzeCmd(m.ctx, m.reviewer, m.userID)
	}
	return tea.Batch(m.spinner.Tick, load)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case suggestionsLoadedMsg:
		m.loading = false
		m.suggestions = msg.suggestions
		m.cursor = 0
		if msg.analyzed {
			m.setStatus(fmt.Sprintf("Found %d suggestions", len(msg.suggestions)), false)
		}

	case confirmedMsg:
		m.loading = false
		m.confirmed++
		m.removeSuggestion(msg.result.Suggestion.SuggestionID)
		m.setStatus(fmt.Sprintf("Confirmed %s, linked %d transactions",
			msg.result.Subscription.Name, msg.result.LinkedTransactions), false)

	case dismissedMsg:
		m.loading = false
		m.dismissed++
		m.removeSuggestion(msg.suggestionID)
		m.setStatus("Dismissed "+msg.name, false)

	case errMsg:
		m.loading = false
		m.setStatus(errorText(msg.err), true)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0
	case key.Matches(msg, m.keymap.End):
		m.cursor = max(0, len(m.suggestions)-1)

	case key.Matches(msg, m.keymap.Refresh):
		m.loading = true
		m.setStatus("Analyzing transactions...", false)
		return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.ctx, m.reviewer, m.userID))

	case key.Matches(msg, m.keymap.Confirm):
		if s, ok := m.Selected(); ok {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, confirmCmd(m.ctx, m.reviewer, m.userID, s.SuggestionID))
		}
	case key.Matches(msg, m.keymap.Dismiss):
		if s, ok := m.Selected(); ok {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, dismissCmd(m.ctx, m.reviewer, m.userID, s))
		}
	}

	return m, nil
}

// Selected returns the suggestion under the cursor.
func (m Model) Selected() (model.Suggestion, bool) {
	if m.cursor < 0 || m.cursor >= len(m.suggestions) {
		return model.Suggestion{}, false
	}
	return m.suggestions[m.cursor], true
}

// Stats returns how many suggestions were confirmed and dismissed.
func (m Model) Stats() (confirmed, dismissed int) {
	return m.confirmed, m.dismissed
}

func (m *Model) removeSuggestion(id string) {
	for i, s := range m.suggestions {
		if s.SuggestionID == id {
			m.suggestions = append(m.suggestions[:i:i], m.suggestions[i+1:]...)
			break
		}
	}
	if m.cursor >= len(m.suggestions) {
		m.cursor = max(0, len(m.suggestions)-1)
	}
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

func errorText(err error) string {
	if errors.Is(err, common.ErrSuggestionNotFound) {
		return "Suggestion expired; press r to re-analyze"
	}
	if msg, ok := common.UserMessage(err); ok {
		return msg
	}
	return err.Error()
}
