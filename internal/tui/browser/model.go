// Package browser is the interactive catalog browser. It renders the
// aggregated tree, runs and stops items, and persists the filter
// through the service store so the CLI sees the same view.
package browser

import (
	"os"
	"os/exec"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-runbook/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-runbook/internal/tui/theme"
	"github.com/mattsolo1/grove-runbook/pkg/aggregate"
	"github.com/mattsolo1/grove-runbook/pkg/runstate"
	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/tree"
)

// Model is the main model for the catalog browser TUI.
type Model struct {
	service *service.Service
	editor  string

	snapshot *aggregate.Snapshot
	nodes    []*tree.Node

	cursor       int
	scrollOffset int
	width        int
	height       int

	keys        KeyMap
	help        help.Model
	filterInput textinput.Model
	spinner     spinner.Model
	confirm     confirm.Model

	collapsed   map[string]bool
	showSources bool
	lastKey     string // For detecting 'gg' and 'z' sequences

	runEvents chan runstate.Event

	stopTargetID  string
	statusMessage string
	loaded        bool
}

// New creates a new browser model. The editor argument overrides
// $EDITOR for opening notebooks.
func New(svc *service.Service, editor string) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter items..."
	ti.CharLimit = 100
	ti.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DefaultTheme.Running

	return Model{
		service:     svc,
		editor:      editor,
		keys:        keys,
		help:        help.New(),
		filterInput: ti,
		spinner:     sp,
		confirm:     confirm.New(),
		collapsed:   make(map[string]bool),
		runEvents:   svc.Tracker.Subscribe(),
	}
}

// Init loads the catalog and the persisted filter.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		refreshCmd(m.service),
		loadFilterCmd(m.service),
		waitRunEventCmd(m.runEvents),
		m.spinner.Tick,
	)
}

// editorFinishedMsg is sent when the editor closes.
type editorFinishedMsg struct{ err error }

// openInEditor suspends the TUI and opens a notebook file.
func (m Model) openInEditor(path string) tea.Cmd {
	editor := m.editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vim"
	}
	cmd := exec.Command(editor, path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// currentNode returns the node under the cursor, or nil.
func (m Model) currentNode() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return nil
	}
	return m.nodes[m.cursor]
}
