package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-runbook/internal/tui/theme"
	"github.com/mattsolo1/grove-runbook/pkg/tree"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

func (m Model) View() string {
	if !m.loaded {
		return "Loading..."
	}

	var content string
	if m.confirm.Active {
		content = m.confirm.View()
	} else {
		content = m.renderTree()
	}

	fullView := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		content,
		"",
		m.renderStatus(),
		m.help.View(m.keys),
	)

	// Top margin keeps the first row clear of the terminal edge.
	return "\n" + fullView
}

func (m Model) renderHeader() string {
	header := theme.DefaultTheme.Header.Render("Runbook")
	if n := m.service.Tracker.Len(); n > 0 {
		header += "  " + theme.DefaultTheme.Running.Render(fmt.Sprintf("%d running", n))
	}
	return header
}

func (m Model) renderStatus() string {
	if m.filterInput.Focused() {
		return m.filterInput.View()
	}
	if m.statusMessage != "" {
		return theme.DefaultTheme.Info.Render(m.statusMessage)
	}
	if v := m.filterInput.Value(); v != "" {
		return theme.DefaultTheme.Muted.Render(fmt.Sprintf("filter: %s (/ to edit)", v))
	}
	return ""
}

func (m Model) renderTree() string {
	if len(m.nodes) == 0 {
		if m.filterInput.Value() != "" {
			return theme.DefaultTheme.Muted.Render("No items match the filter.")
		}
		return theme.DefaultTheme.Muted.Render("No workspaces registered. Run 'rb workspace add' first.")
	}

	var b strings.Builder

	viewportHeight := m.getViewportHeight()
	start := m.scrollOffset
	end := m.scrollOffset + viewportHeight
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	for i := start; i < end; i++ {
		node := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = theme.DefaultTheme.Highlight.Render("▶ ")
		}

		var line string
		if node.Foldable() {
			foldIndicator := "▼ "
			if m.collapsed[node.ID] {
				foldIndicator = "▶ "
			}
			line = fmt.Sprintf("%s%s%s%s", cursor, node.Prefix, foldIndicator, m.groupLabel(node))
			if i == m.cursor {
				line = lipgloss.NewStyle().Bold(true).Render(line)
			}
		} else {
			line = fmt.Sprintf("%s%s%s", cursor, node.Prefix, m.leafLabel(node))
			if i == m.cursor {
				line = theme.DefaultTheme.Selected.Render(line)
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	// Scroll indicator
	if len(m.nodes) > viewportHeight {
		b.WriteString("\n")
		b.WriteString(theme.DefaultTheme.Muted.Render(
			fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.nodes))))
	}

	return b.String()
}

func (m Model) groupLabel(node *tree.Node) string {
	if node.Kind == tree.KindWorkspace && node.Workspace != workspace.UserKey {
		return node.Label + " " + theme.DefaultTheme.Muted.Render(shortenPath(node.Workspace, 40))
	}
	if node.Kind == tree.KindSource {
		return theme.DefaultTheme.Muted.Render(node.Label)
	}
	return node.Label
}

func (m Model) leafLabel(node *tree.Node) string {
	if node.Running {
		return theme.DefaultTheme.Running.Render(node.Label) + " " + m.spinner.View()
	}
	return node.Label
}
