package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-runbook/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-runbook/pkg/tree"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.adjustScroll()
		return m, nil

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error loading catalog: %v", msg.err)
			m.loaded = true
			return m, nil
		}
		m.snapshot = msg.snapshot
		m.loaded = true
		m.rebuild()
		return m, nil

	case filterLoadedMsg:
		if msg.filter != "" {
			m.filterInput.SetValue(msg.filter)
			m.rebuild()
		}
		return m, nil

	case filterSavedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error saving filter: %v", msg.err)
		}
		return m, nil

	case runEventMsg:
		// Running markers changed, re-derive the visible rows.
		m.rebuild()
		return m, waitRunEventCmd(m.runEvents)

	case runDoneMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMessage = fmt.Sprintf("Started %s", msg.label)
		}
		return m, nil

	case stopDoneMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMessage = "Stopped"
		}
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Editor error: %v", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case confirm.ConfirmedMsg:
		id := m.stopTargetID
		m.stopTargetID = ""
		if id == "" {
			return m, nil
		}
		return m, stopItemCmd(m.service, id)

	case confirm.CancelledMsg:
		m.stopTargetID = ""
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Active {
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}

		// Handle filtering mode
		if m.filterInput.Focused() {
			switch {
			case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Run):
				m.filterInput.Blur()
				return m, persistFilterCmd(m.service, m.filterInput.Value())
			default:
				m.filterInput, cmd = m.filterInput.Update(msg)
				m.rebuild()
				return m, cmd
			}
		}

		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.service.Tracker.Unsubscribe(m.runEvents)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
			m.adjustScroll()
		}

	case key.Matches(msg, m.keys.PageUp):
		pageSize := m.getViewportHeight() / 2
		if pageSize < 1 {
			pageSize = 1
		}
		m.cursor -= pageSize
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.adjustScroll()

	case key.Matches(msg, m.keys.PageDown):
		pageSize := m.getViewportHeight() / 2
		if pageSize < 1 {
			pageSize = 1
		}
		m.cursor += pageSize
		if m.cursor >= len(m.nodes) {
			m.cursor = len(m.nodes) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.adjustScroll()

	case key.Matches(msg, m.keys.GoToTop):
		// 'gg' goes to the top when g is pressed twice
		if m.lastKey == "g" {
			m.cursor = 0
			m.adjustScroll()
			m.lastKey = ""
		} else {
			m.lastKey = "g"
		}
		return m, nil

	case key.Matches(msg, m.keys.GoToBottom):
		if len(m.nodes) > 0 {
			m.cursor = len(m.nodes) - 1
			m.adjustScroll()
		}

	case key.Matches(msg, m.keys.FoldPrefix):
		m.lastKey = "z"
		return m, nil

	case msg.String() == "a", msg.String() == "o", msg.String() == "c",
		msg.String() == "M", msg.String() == "R":
		if m.lastKey == "z" {
			switch msg.String() {
			case "a":
				m.toggleFold()
			case "o":
				m.openFold()
			case "c":
				m.closeFold()
			case "M":
				m.closeAllFolds()
			case "R":
				m.openAllFolds()
			}
		}

	case key.Matches(msg, m.keys.JumpWorkspace):
		m.jumpToWorkspace(int(msg.String()[0] - '0'))

	case key.Matches(msg, m.keys.Search):
		m.statusMessage = ""
		m.filterInput.Focus()
		m.lastKey = ""
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		m.statusMessage = "Refreshing..."
		return m, refreshCmd(m.service)

	case key.Matches(msg, m.keys.Sources):
		m.showSources = !m.showSources
		m.rebuild()

	case key.Matches(msg, m.keys.Run):
		return m.activateCurrent()

	case key.Matches(msg, m.keys.Stop):
		return m.stopCurrent()

	case key.Matches(msg, m.keys.Back):
		m.statusMessage = ""
	}

	m.lastKey = ""
	return m, nil
}

// activateCurrent runs the item under the cursor, toggles a fold, or
// opens a notebook, depending on the node kind.
func (m Model) activateCurrent() (tea.Model, tea.Cmd) {
	node := m.currentNode()
	if node == nil {
		return m, nil
	}

	switch {
	case node.Foldable():
		m.toggleFold()

	case node.Kind == tree.KindNotebook:
		if node.Notebook == nil || !node.Notebook.IsLocal {
			m.statusMessage = fmt.Sprintf("%s is not a local file", node.Label)
			return m, nil
		}
		return m, m.openInEditor(node.Notebook.URI)

	case node.Runnable():
		if m.service.Tracker.IsRunning(node.ID) {
			m.statusMessage = fmt.Sprintf("%s is already running", node.Label)
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("Starting %s...", node.Label)
		return m, runItemCmd(m.service, node)
	}

	return m, nil
}

// stopCurrent asks for confirmation before stopping the running item
// under the cursor.
func (m Model) stopCurrent() (tea.Model, tea.Cmd) {
	node := m.currentNode()
	if node == nil || !node.Runnable() {
		return m, nil
	}

	if !m.service.Tracker.IsRunning(node.ID) {
		m.statusMessage = fmt.Sprintf("%s is not running", node.Label)
		return m, nil
	}

	m.stopTargetID = node.ID
	m.confirm.Activate(fmt.Sprintf("Stop %s?", node.Label))
	return m, nil
}

// rebuild re-derives the visible rows from the snapshot and the current
// view options.
func (m *Model) rebuild() {
	if m.snapshot == nil {
		return
	}

	m.nodes = tree.Build(m.snapshot, tree.Options{
		Filter:      m.filterInput.Value(),
		ShowSources: m.showSources,
		Collapsed:   m.collapsed,
		IsRunning:   m.service.Tracker.IsRunning,
	})
	m.clampCursor()
	m.adjustScroll()
}

// clampCursor ensures the cursor is within the valid range of rows.
func (m *Model) clampCursor() {
	if m.cursor >= len(m.nodes) {
		if len(m.nodes) > 0 {
			m.cursor = len(m.nodes) - 1
		} else {
			m.cursor = 0
		}
	}
}

// getViewportHeight calculates how many lines are available for the list.
func (m *Model) getViewportHeight() int {
	// Top margin, header, two blank separators, status bar, help line,
	// and the scroll indicator.
	const fixedLines = 8
	availableHeight := m.height - fixedLines
	if availableHeight < 1 {
		return 1
	}
	return availableHeight
}

// adjustScroll ensures the cursor is visible in the viewport.
func (m *Model) adjustScroll() {
	viewportHeight := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+viewportHeight {
		m.scrollOffset = m.cursor - viewportHeight + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// toggleFold toggles the fold state of the node under the cursor.
func (m *Model) toggleFold() {
	node := m.currentNode()
	if node == nil || !node.Foldable() {
		return
	}
	if m.collapsed[node.ID] {
		delete(m.collapsed, node.ID)
	} else {
		m.collapsed[node.ID] = true
	}
	m.rebuild()
}

// openFold opens the fold of the node under the cursor.
func (m *Model) openFold() {
	node := m.currentNode()
	if node == nil || !node.Foldable() {
		return
	}
	delete(m.collapsed, node.ID)
	m.rebuild()
}

// closeFold closes the fold of the node under the cursor.
func (m *Model) closeFold() {
	node := m.currentNode()
	if node == nil || !node.Foldable() {
		return
	}
	m.collapsed[node.ID] = true
	m.rebuild()
}

// closeAllFolds collapses every foldable row.
func (m *Model) closeAllFolds() {
	for _, node := range m.nodes {
		if node.Foldable() {
			m.collapsed[node.ID] = true
		}
	}
	m.rebuild()
}

// openAllFolds expands everything.
func (m *Model) openAllFolds() {
	m.collapsed = make(map[string]bool)
	m.rebuild()
}

// jumpToWorkspace moves the cursor to the nth workspace row.
func (m *Model) jumpToWorkspace(n int) {
	count := 0
	for i, node := range m.nodes {
		if node.Kind == tree.KindWorkspace {
			count++
			if count == n {
				m.cursor = i
				m.adjustScroll()
				return
			}
		}
	}
}
