// Package confirm is the modal yes/no prompt the browser shows before it
// kills a running process.
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-runbook/internal/tui/theme"
)

// ConfirmedMsg is sent when the user confirms the action.
type ConfirmedMsg struct{}

// CancelledMsg is sent when the user cancels the action.
type CancelledMsg struct{}

// Styles bundles the dialog's lipgloss styles so the shared theme is
// resolved once at construction.
type Styles struct {
	Box  lipgloss.Style
	Help lipgloss.Style
}

// DefaultStyles derives the dialog styles from the shared theme.
func DefaultStyles() Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.DefaultTheme.Colors.Red).
			Padding(1, 2),
		Help: lipgloss.NewStyle().Faint(true),
	}
}

// Model is a modal yes/no prompt. It renders nothing and consumes no keys
// until Activate is called; answering either way deactivates it again.
type Model struct {
	Active bool
	Prompt string

	styles Styles
	keys   keyMap
}

// New creates an inactive dialog.
func New() Model {
	return Model{
		styles: DefaultStyles(),
		keys:   defaultKeyMap,
	}
}

// Activate arms the dialog with a prompt.
func (m *Model) Activate(prompt string) {
	m.Prompt = prompt
	m.Active = true
}

// Update consumes answer keys while the dialog is active and emits the
// outcome as a message.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.Active = false
			return m, func() tea.Msg { return ConfirmedMsg{} }
		case key.Matches(msg, m.keys.Cancel):
			m.Active = false
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	return m, nil
}

// View renders the dialog box with its key hint, or "" when inactive.
func (m Model) View() string {
	if !m.Active {
		return ""
	}

	box := m.styles.Box.Render(m.Prompt)
	hint := m.styles.Help.
		Width(lipgloss.Width(box)).
		Align(lipgloss.Center).
		Render("y confirm • n cancel")

	return lipgloss.JoinVertical(lipgloss.Left, box, hint)
}

type keyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var defaultKeyMap = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}
