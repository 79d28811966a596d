package tui

import "github.com/Veraticus/spacesub/internal/tui/themes"

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	Width          int
	Height         int
	AnalyzeOnStart bool
	AltScreen      bool
	ShowHelp       bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:          themes.Default,
		Width:          80,
		Height:         24,
		AnalyzeOnStart: true,
		AltScreen:      true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithCachedSuggestions starts from the stored suggestions instead of
// running a fresh analysis.
func WithCachedSuggestions() Option {
	return func(c *Config) {
		c.AnalyzeOnStart = false
	}
}

// WithInline renders in the normal terminal buffer.
func WithInline() Option {
	return func(c *Config) {
		c.AltScreen = false
	}
}
