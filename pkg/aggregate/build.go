package aggregate

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/sources"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// Build partitions a load result into per-workspace aggregates. Every item
// lands in exactly one workspace, and within it in exactly one top-level or
// category-and-source bucket. Categories come from the items' Category
// field; a blank category after trimming means top-level.
func Build(res *sources.Result) *Snapshot {
	b := &builder{
		collator: newCollator(),
		byKey:    make(map[string]*wsState),
	}

	for _, it := range res.Launches {
		b.addLaunch(it)
	}
	for _, it := range res.Tasks {
		b.addTask(it)
	}
	for _, nb := range res.Notebooks {
		b.addNotebook(nb)
	}

	return b.finish()
}

type builder struct {
	collator *collate.Collator
	byKey    map[string]*wsState
}

// wsState accumulates one workspace's buckets before the final sort pass.
type wsState struct {
	agg *WorkspaceAggregate

	launchCats map[string]map[string][]*models.LaunchItem
	launchRefs map[string]*models.SourceRef
	taskCats   map[string]map[string][]*models.TaskItem
	taskRefs   map[string]*models.SourceRef
}

func (b *builder) ws(key string, src *models.SourceRef) *wsState {
	if key == "" {
		key = workspace.UserKey
	}

	st, ok := b.byKey[key]
	if !ok {
		st = &wsState{
			agg: &WorkspaceAggregate{
				Key:    key,
				IsUser: key == workspace.UserKey,
			},
			launchCats: make(map[string]map[string][]*models.LaunchItem),
			launchRefs: make(map[string]*models.SourceRef),
			taskCats:   make(map[string]map[string][]*models.TaskItem),
			taskRefs:   make(map[string]*models.SourceRef),
		}
		b.byKey[key] = st
	}

	// Workspace document sources carry the workspace name as their label.
	if st.agg.Label == "" && src != nil && !src.IsUserSettings {
		st.agg.Label = src.Label
	}
	return st
}

func (b *builder) addLaunch(it *models.LaunchItem) {
	st := b.ws(it.Workspace, it.Source)

	cat := strings.TrimSpace(it.Category)
	if cat == "" {
		st.agg.Launches.TopLevel = append(st.agg.Launches.TopLevel, it)
		return
	}

	bySrc := st.launchCats[cat]
	if bySrc == nil {
		bySrc = make(map[string][]*models.LaunchItem)
		st.launchCats[cat] = bySrc
	}
	bySrc[it.Source.ID] = append(bySrc[it.Source.ID], it)
	st.launchRefs[it.Source.ID] = it.Source
}

func (b *builder) addTask(it *models.TaskItem) {
	st := b.ws(it.Workspace, it.Source)

	cat := strings.TrimSpace(it.Category)
	if cat == "" {
		st.agg.Tasks.TopLevel = append(st.agg.Tasks.TopLevel, it)
		return
	}

	bySrc := st.taskCats[cat]
	if bySrc == nil {
		bySrc = make(map[string][]*models.TaskItem)
		st.taskCats[cat] = bySrc
	}
	bySrc[it.Source.ID] = append(bySrc[it.Source.ID], it)
	st.taskRefs[it.Source.ID] = it.Source
}

func (b *builder) addNotebook(nb *models.NotebookItem) {
	st := b.ws(nb.Workspace, nil)
	st.agg.Notebooks = append(st.agg.Notebooks, nb)
}

// finish materializes and sorts every level.
func (b *builder) finish() *Snapshot {
	snap := &Snapshot{byKey: make(map[string]*WorkspaceAggregate, len(b.byKey))}

	for key, st := range b.byKey {
		agg := st.agg
		if agg.Label == "" {
			if agg.IsUser {
				agg.Label = "user"
			} else {
				agg.Label = filepath.Base(agg.Key)
			}
		}

		b.sortLaunchGroup(st)
		b.sortTaskGroup(st)
		b.sortNotebooks(agg.Notebooks)

		snap.byKey[key] = agg
		snap.Workspaces = append(snap.Workspaces, agg)
	}

	sort.Slice(snap.Workspaces, func(i, j int) bool {
		a, z := snap.Workspaces[i], snap.Workspaces[j]
		if r := b.collator.CompareString(a.Label, z.Label); r != 0 {
			return r < 0
		}
		return a.Key < z.Key
	})
	return snap
}

func (b *builder) sortLaunchGroup(st *wsState) {
	b.sortLaunchItems(st.agg.Launches.TopLevel)

	names := make([]string, 0, len(st.launchCats))
	for name := range st.launchCats {
		names = append(names, name)
	}
	b.collator.SortStrings(names)

	for _, name := range names {
		cat := &LaunchCategory{Name: name}
		for id, items := range st.launchCats[name] {
			b.sortLaunchItems(items)
			cat.Sources = append(cat.Sources, &LaunchSource{
				Source: st.launchRefs[id],
				Items:  items,
			})
			cat.flat = append(cat.flat, items...)
		}
		sort.Slice(cat.Sources, func(i, j int) bool {
			a, z := cat.Sources[i].Source, cat.Sources[j].Source
			if r := b.collator.CompareString(a.Label, z.Label); r != 0 {
				return r < 0
			}
			return a.ID < z.ID
		})
		b.sortLaunchItems(cat.flat)
		st.agg.Launches.Categories = append(st.agg.Launches.Categories, cat)
	}
}

func (b *builder) sortTaskGroup(st *wsState) {
	b.sortTaskItems(st.agg.Tasks.TopLevel)

	names := make([]string, 0, len(st.taskCats))
	for name := range st.taskCats {
		names = append(names, name)
	}
	b.collator.SortStrings(names)

	for _, name := range names {
		cat := &TaskCategory{Name: name}
		for id, items := range st.taskCats[name] {
			b.sortTaskItems(items)
			cat.Sources = append(cat.Sources, &TaskSource{
				Source: st.taskRefs[id],
				Items:  items,
			})
			cat.flat = append(cat.flat, items...)
		}
		sort.Slice(cat.Sources, func(i, j int) bool {
			a, z := cat.Sources[i].Source, cat.Sources[j].Source
			if r := b.collator.CompareString(a.Label, z.Label); r != 0 {
				return r < 0
			}
			return a.ID < z.ID
		})
		b.sortTaskItems(cat.flat)
		st.agg.Tasks.Categories = append(st.agg.Tasks.Categories, cat)
	}
}

func (b *builder) sortLaunchItems(items []*models.LaunchItem) {
	sort.Slice(items, func(i, j int) bool {
		if r := b.collator.CompareString(items[i].Name, items[j].Name); r != 0 {
			return r < 0
		}
		return items[i].ID < items[j].ID
	})
}

func (b *builder) sortTaskItems(items []*models.TaskItem) {
	sort.Slice(items, func(i, j int) bool {
		if r := b.collator.CompareString(items[i].Label, items[j].Label); r != 0 {
			return r < 0
		}
		return items[i].ID < items[j].ID
	})
}

func (b *builder) sortNotebooks(items []*models.NotebookItem) {
	sort.Slice(items, func(i, j int) bool {
		if r := b.collator.CompareString(items[i].Name, items[j].Name); r != 0 {
			return r < 0
		}
		return items[i].URI < items[j].URI
	})
}
