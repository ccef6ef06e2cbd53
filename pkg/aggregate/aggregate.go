// Package aggregate groups loaded items into per-workspace structures the
// tree and the commands render from. Aggregates are immutable once built;
// a refresh builds a new Snapshot and swaps it into the Registry wholesale.
package aggregate

import (
	"github.com/mattsolo1/grove-runbook/pkg/models"
)

// Snapshot is one complete aggregation pass over a load result.
type Snapshot struct {
	// Workspaces in display order, sorted by label.
	Workspaces []*WorkspaceAggregate

	byKey map[string]*WorkspaceAggregate
}

// Get returns the aggregate for a workspace key.
func (s *Snapshot) Get(key string) (*WorkspaceAggregate, bool) {
	wa, ok := s.byKey[key]
	return wa, ok
}

// Keys returns the workspace keys in display order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, len(s.Workspaces))
	for i, wa := range s.Workspaces {
		keys[i] = wa.Key
	}
	return keys
}

// Empty reports whether the snapshot holds no workspaces at all.
func (s *Snapshot) Empty() bool {
	return len(s.Workspaces) == 0
}

// WorkspaceAggregate holds everything one workspace contributes. Items
// whose source is not workspace scoped land under the user sentinel key.
type WorkspaceAggregate struct {
	Key    string
	Label  string
	IsUser bool

	Launches  LaunchGroup
	Tasks     TaskGroup
	Notebooks []*models.NotebookItem
}

// LaunchGroup splits one workspace's launch configurations into
// uncategorized top-level items and category buckets.
type LaunchGroup struct {
	TopLevel   []*models.LaunchItem
	Categories []*LaunchCategory
}

// Empty reports whether the group holds no items.
func (g *LaunchGroup) Empty() bool {
	return len(g.TopLevel) == 0 && len(g.Categories) == 0
}

// All returns every item in the group, top-level first, then categories in
// order.
func (g *LaunchGroup) All() []*models.LaunchItem {
	items := make([]*models.LaunchItem, 0, len(g.TopLevel))
	items = append(items, g.TopLevel...)
	for _, cat := range g.Categories {
		items = append(items, cat.Flatten()...)
	}
	return items
}

// LaunchCategory is one category bucket, grouped by contributing source.
// A category with a single item from a single source is still a category.
type LaunchCategory struct {
	Name    string
	Sources []*LaunchSource

	flat []*models.LaunchItem
}

// Flatten returns the category's items across all sources as one list
// sorted by name, computed once at build time. Views that hide the source
// layer render from this.
func (c *LaunchCategory) Flatten() []*models.LaunchItem {
	return c.flat
}

// LaunchSource is the slice of a category contributed by one source.
type LaunchSource struct {
	Source *models.SourceRef
	Items  []*models.LaunchItem
}

// TaskGroup splits one workspace's tasks into uncategorized top-level
// items and category buckets.
type TaskGroup struct {
	TopLevel   []*models.TaskItem
	Categories []*TaskCategory
}

// Empty reports whether the group holds no items.
func (g *TaskGroup) Empty() bool {
	return len(g.TopLevel) == 0 && len(g.Categories) == 0
}

// All returns every item in the group, top-level first, then categories in
// order.
func (g *TaskGroup) All() []*models.TaskItem {
	items := make([]*models.TaskItem, 0, len(g.TopLevel))
	items = append(items, g.TopLevel...)
	for _, cat := range g.Categories {
		items = append(items, cat.Flatten()...)
	}
	return items
}

// TaskCategory is one category bucket, grouped by contributing source.
type TaskCategory struct {
	Name    string
	Sources []*TaskSource

	flat []*models.TaskItem
}

// Flatten returns the category's items across all sources as one list
// sorted by label, computed once at build time. Views that hide the source
// layer render from this.
func (c *TaskCategory) Flatten() []*models.TaskItem {
	return c.flat
}

// TaskSource is the slice of a category contributed by one source.
type TaskSource struct {
	Source *models.SourceRef
	Items  []*models.TaskItem
}
