// Package theme holds the shared lipgloss palette and styles for the
// terminal UI.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette is the small set of colors the UI draws from.
type Palette struct {
	Orange lipgloss.Color
	Green  lipgloss.Color
	Red    lipgloss.Color
	Blue   lipgloss.Color
	Gray   lipgloss.Color
}

// Theme bundles the palette with the named styles the views use.
type Theme struct {
	Colors Palette

	Header    lipgloss.Style
	Info      lipgloss.Style
	Highlight lipgloss.Style
	Selected  lipgloss.Style
	Running   lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
}

// DefaultTheme is the theme every view renders with.
var DefaultTheme = New()

// New builds the default theme.
func New() Theme {
	colors := Palette{
		Orange: lipgloss.Color("214"),
		Green:  lipgloss.Color("78"),
		Red:    lipgloss.Color("203"),
		Blue:   lipgloss.Color("75"),
		Gray:   lipgloss.Color("245"),
	}

	return Theme{
		Colors: colors,

		Header:    lipgloss.NewStyle().Bold(true).Foreground(colors.Orange),
		Info:      lipgloss.NewStyle().Foreground(colors.Blue),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(colors.Orange),
		Selected:  lipgloss.NewStyle().Foreground(colors.Orange),
		Running:   lipgloss.NewStyle().Foreground(colors.Green),
		Muted:     lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(colors.Red),
	}
}
