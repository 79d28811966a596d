// Package themes defines color schemes for the review TUI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Muted         lipgloss.Style
	Score         lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	BorderedBox   lipgloss.Style
	Primary       lipgloss.Color
	Border        lipgloss.Color
}

func build(primary, foreground, muted, border, success, errColor, info lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Border:  border,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Normal: lipgloss.NewStyle().
			Foreground(foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground),
		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(lipgloss.Color("#fafafa")).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Score: lipgloss.NewStyle().
			Foreground(info),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(info),

		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#7c3aed"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#10b981"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#3b82f6"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#89dceb"),
)

// ByName returns a theme by its config name, falling back to Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
