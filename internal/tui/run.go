package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Summary reports what happened during a review session.
type Summary struct {
	Confirmed int
	Dismissed int
}

// Run opens the review screen for userID and blocks until the user quits
// or ctx is canceled.
func Run(ctx context.Context, reviewer Reviewer, userID string, opts ...Option) (Summary, error) {
	if reviewer == nil {
		return Summary{}, errors.New("reviewer is required")
	}

	m := NewModel(ctx, reviewer, userID, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Summary{}, fmt.Errorf("TUI error: %w", err)
	}

	var summary Summary
	if fm, ok := final.(Model); ok {
		summary.Confirmed, summary.Dismissed = fm.Stats()
	}
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	return summary, nil
}
