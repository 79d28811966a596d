package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/subscriptions"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewer struct {
	confirmErr  error
	suggestions []model.Suggestion
	confirmed   []string
	dismissed   []string
	analyzed    int
	loaded      int
	mu          sync.Mutex
}

func (f *fakeReviewer) Analyze(_ context.Context, _ string) ([]model.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed++
	return append([]model.Suggestion(nil), f.suggestions...), nil
}

func (f *fakeReviewer) Suggestions(_ context.Context, _ string) ([]model.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded++
	return append([]model.Suggestion(nil), f.suggestions...), nil
}

func (f *fakeReviewer) Confirm(_ context.Context, userID, id string) (*subscriptions.ConfirmResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	for _, s := range f.suggestions {
		if s.SuggestionID == id {
			f.confirmed = append(f.confirmed, id)
			sub := s.ToSubscription(userID)
			return &subscriptions.ConfirmResult{Suggestion: s, Subscription: sub, LinkedTransactions: s.TransactionCount}, nil
		}
	}
	return nil, common.ErrSuggestionNotFound
}

func (f *fakeReviewer) Dismiss(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, id)
	return nil
}

func testSuggestions() []model.Suggestion {
	out := make([]model.Suggestion, 0, 3)
	for i, name := range []string{"NETFLIX.COM", "SPOTIFY", "GYM"} {
		out = append(out, model.Suggestion{
			SuggestionID:     fmt.Sprintf("s-%d", i),
			Name:             name,
			Amount:           decimal.NewFromInt(int64(100 * (i + 1))),
			Currency:         "RUB",
			BillingCycle:     model.CycleMonthly,
			Score:            0.9 - float64(i)/10,
			TransactionCount: 4,
		})
	}
	return out
}

// runCmd executes cmd and feeds every resulting message back into the model,
// skipping spinner ticks.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = runCmd(t, m, c)
		}
		return m
	}
	if _, ok := msg.(spinner.TickMsg); ok {
		return m
	}

	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, keys string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}

	next, cmd := m.Update(msg)
	return runCmd(t, next.(Model), cmd)
}

func startedModel(t *testing.T, r *fakeReviewer, opts ...Option) Model {
	t.Helper()
	m := NewModel(context.Background(), r, "user-1", opts...)
	return runCmd(t, m, m.Init())
}

func TestModel_InitAnalyzes(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := startedModel(t, r)

	assert.Equal(t, 1, r.analyzed)
	assert.False(t, m.loading)
	assert.Len(t, m.suggestions, 3)
	assert.Contains(t, m.status, "Found 3 suggestions")
}

func TestModel_InitCached(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := startedModel(t, r, WithCachedSuggestions())

	assert.Equal(t, 0, r.analyzed)
	assert.Equal(t, 1, r.loaded)
	assert.Len(t, m.suggestions, 3)
}

func TestModel_Navigation(t *testing.T) {
	m := startedModel(t, &fakeReviewer{suggestions: testSuggestions()})

	m = press(t, m, "j")
	m = press(t, m, "down")
	m = press(t, m, "j")
	assert.Equal(t, 2, m.cursor, "cursor stops at the last row")

	m = press(t, m, "k")
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, "g")
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "G")
	assert.Equal(t, 2, m.cursor)
}

func TestModel_Confirm(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := startedModel(t, r)

	m = press(t, m, "j")
	m = press(t, m, "c")

	assert.Equal(t, []string{"s-1"}, r.confirmed)
	require.Len(t, m.suggestions, 2)
	assert.Equal(t, "NETFLIX.COM", m.suggestions[0].Name)
	assert.Equal(t, "GYM", m.suggestions[1].Name)
	assert.Equal(t, "Confirmed SPOTIFY, linked 4 transactions", m.status)

	confirmed, dismissed := m.Stats()
	assert.Equal(t, 1, confirmed)
	assert.Zero(t, dismissed)
}

func TestModel_ConfirmWithEnterOnLastRow(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := startedModel(t, r)

	m = press(t, m, "G")
	m = press(t, m, "enter")

	assert.Equal(t, []string{"s-2"}, r.confirmed)
	assert.Equal(t, 1, m.cursor, "cursor moves up when the last row disappears")
}

func TestModel_ConfirmExpired(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions(), confirmErr: fmt.Errorf("confirm: %w", common.ErrSuggestionNotFound)}
	m := startedModel(t, r)

	m = press(t, m, "c")

	assert.True(t, m.statusError)
	assert.Equal(t, "Suggestion expired; press r to re-analyze", m.status)
	assert.Len(t, m.suggestions, 3)
}

func TestModel_Dismiss(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := startedModel(t, r)

	m = press(t, m, "d")

	assert.Equal(t, []string{"s-0"}, r.dismissed)
	assert.Len(t, m.suggestions, 2)
	assert.Equal(t, "Dismissed NETFLIX.COM", m.status)
}

func TestModel_Refresh(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := startedModel(t, r)

	m = press(t, m, "r")
	assert.Equal(t, 2, r.analyzed)
	assert.False(t, m.loading)
}

func TestModel_KeysIgnoredWhileLoading(t *testing.T) {
	r := &fakeReviewer{suggestions: testSuggestions()}
	m := NewModel(context.Background(), r, "user-1")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Nil(t, cmd)
	assert.Empty(t, r.confirmed)
	assert.True(t, next.(Model).loading)
}

func TestModel_EmptyListActions(t *testing.T) {
	r := &fakeReviewer{}
	m := startedModel(t, r)

	m = press(t, m, "c")
	m = press(t, m, "d")
	assert.Empty(t, r.confirmed)
	assert.Empty(t, r.dismissed)
	assert.Contains(t, m.View(), "No suggestions")
}

func TestModel_Quit(t *testing.T) {
	m := startedModel(t, &fakeReviewer{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.(Model).View())
}

func TestModel_HelpToggle(t *testing.T) {
	m := startedModel(t, &fakeReviewer{suggestions: testSuggestions()})
	assert.False(t, m.help.ShowAll)

	m = press(t, m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "go to start")
}

func TestModel_View(t *testing.T) {
	m := startedModel(t, &fakeReviewer{suggestions: testSuggestions()})

	view := m.View()
	assert.Contains(t, view, "Subscription suggestions")
	assert.Contains(t, view, "NETFLIX.COM")
	assert.Contains(t, view, "100.00 RUB")
	assert.Contains(t, view, "0.90")
	assert.Contains(t, view, "ID: s-0")
	assert.Contains(t, view, "confirmed 0")
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "boom", errorText(errors.New("boom")))
	assert.Equal(t, "Nice message", errorText(common.NewUserError("Nice message", errors.New("raw"))))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Яндекс…", truncate("Яндекс Плюс", 7))
}

func TestRun_RequiresReviewer(t *testing.T) {
	_, err := Run(context.Background(), nil, "user-1")
	assert.Error(t, err)
}
