// Package tree flattens an aggregate snapshot into renderable rows. The
// same node list backs the plain-text tree command and the interactive
// browser; folding and filtering happen here so every consumer agrees on
// what is visible.
package tree

import (
	"github.com/mattsolo1/grove-runbook/pkg/models"
)

// Kind categorizes the different kinds of rows in the catalog tree.
type Kind string

const (
	KindWorkspace Kind = "workspace"
	KindSection   Kind = "section"  // a launches/tasks/notebooks heading
	KindCategory  Kind = "category" // a category bucket
	KindSource    Kind = "source"   // a provenance row, shown on demand
	KindLaunch    Kind = "launch"
	KindTask      Kind = "task"
	KindNotebook  Kind = "notebook"
)

// Node represents a single row in the flattened catalog tree.
type Node struct {
	Kind      Kind
	Label     string
	ID        string
	Workspace string
	Running   bool

	// Exactly one of these is set on leaf rows.
	Launch   *models.LaunchItem
	Task     *models.TaskItem
	Notebook *models.NotebookItem

	// Source is the provenance of a leaf, or the ref of a source row.
	Source *models.SourceRef

	// Pre-calculated for rendering
	Prefix string
	Depth  int
}

// Foldable returns true if this node can be collapsed/expanded.
func (n *Node) Foldable() bool {
	switch n.Kind {
	case KindWorkspace, KindSection, KindCategory, KindSource:
		return true
	}
	return false
}

// Leaf returns true for rows that name a single catalog item.
func (n *Node) Leaf() bool {
	switch n.Kind {
	case KindLaunch, KindTask, KindNotebook:
		return true
	}
	return false
}

// Runnable returns true for leaves the dispatcher can start.
func (n *Node) Runnable() bool {
	return n.Kind == KindLaunch || n.Kind == KindTask
}

// Line returns the printable row: prefix, label, and a running marker.
func (n *Node) Line() string {
	if n.Running {
		return n.Prefix + n.Label + " ●"
	}
	return n.Prefix + n.Label
}
