package tree

import (
	"strings"

	"github.com/mattsolo1/grove-runbook/pkg/aggregate"
	"github.com/mattsolo1/grove-runbook/pkg/models"
)

// Options controls which rows Build emits.
type Options struct {
	// Filter is the case-insensitive substring applied to leaf names.
	// Category and workspace names never count as matches.
	Filter string

	// ShowSources inserts a provenance row between categories and items.
	ShowSources bool

	// Collapsed marks fold ids whose descendants are skipped. The folded
	// row itself stays visible.
	Collapsed map[string]bool

	// IsRunning reports the run state for leaf ids. Nil means nothing runs.
	IsRunning func(id string) bool
}

// Build flattens a snapshot into display rows, workspace by workspace. A
// workspace with no matching leaves contributes no rows at all.
func Build(snap *aggregate.Snapshot, opts Options) []*Node {
	if opts.IsRunning == nil {
		opts.IsRunning = func(string) bool { return false }
	}
	b := &builder{opts: opts}
	for _, wa := range snap.Workspaces {
		b.workspace(wa)
	}
	return b.nodes
}

type builder struct {
	opts  Options
	nodes []*Node
}

func (b *builder) add(n *Node) {
	b.nodes = append(b.nodes, n)
}

func (b *builder) collapsed(id string) bool {
	return b.opts.Collapsed[id]
}

func (b *builder) workspace(wa *aggregate.WorkspaceAggregate) {
	filter := b.opts.Filter
	if !wa.HasMatches(filter) {
		return
	}

	launchTop := filterLaunches(wa.Launches.TopLevel, filter)
	launchCats := filterLaunchCategories(wa.Launches.Categories, filter)
	taskTop := filterTasks(wa.Tasks.TopLevel, filter)
	taskCats := filterTaskCategories(wa.Tasks.Categories, filter)
	notebooks := filterNotebooks(wa.Notebooks, filter)

	wsID := "ws:" + wa.Key
	b.add(&Node{Kind: KindWorkspace, Label: wa.Label, ID: wsID, Workspace: wa.Key})
	if b.collapsed(wsID) {
		return
	}

	type section struct {
		name string
		emit func(secPrefix string)
	}
	var sections []section
	if len(launchTop) > 0 || len(launchCats) > 0 {
		sections = append(sections, section{"launches", func(secPrefix string) {
			b.launchSection(wa.Key, launchTop, launchCats, secPrefix)
		}})
	}
	if len(taskTop) > 0 || len(taskCats) > 0 {
		sections = append(sections, section{"tasks", func(secPrefix string) {
			b.taskSection(wa.Key, taskTop, taskCats, secPrefix)
		}})
	}
	if len(notebooks) > 0 {
		sections = append(sections, section{"notebooks", func(secPrefix string) {
			b.notebookSection(notebooks, secPrefix)
		}})
	}

	for i, sec := range sections {
		secPrefix := branch("", i == len(sections)-1)
		secID := "sec:" + wa.Key + "/" + sec.name
		b.add(&Node{Kind: KindSection, Label: sec.name, ID: secID, Workspace: wa.Key, Prefix: secPrefix, Depth: 1})
		if b.collapsed(secID) {
			continue
		}
		sec.emit(secPrefix)
	}
}

func (b *builder) launchSection(wsKey string, top []*models.LaunchItem, cats []launchCat, secPrefix string) {
	indent := childIndent(secPrefix)
	total := len(top) + len(cats)
	pos := 0

	for _, it := range top {
		pos++
		b.add(b.launchLeaf(it, branch(indent, pos == total), 2))
	}
	for _, c := range cats {
		pos++
		catPrefix := branch(indent, pos == total)
		catID := "cat:" + wsKey + "/launches/" + c.name
		b.add(&Node{Kind: KindCategory, Label: c.name, ID: catID, Workspace: wsKey, Prefix: catPrefix, Depth: 2})
		if b.collapsed(catID) {
			continue
		}
		b.launchCategory(wsKey, c, catPrefix)
	}
}

func (b *builder) launchCategory(wsKey string, c launchCat, catPrefix string) {
	indent := childIndent(catPrefix)

	if b.opts.ShowSources {
		for i, src := range c.sources {
			srcPrefix := branch(indent, i == len(c.sources)-1)
			srcID := "src:" + wsKey + "/launches/" + c.name + "/" + src.Source.ID
			b.add(&Node{Kind: KindSource, Label: src.Source.Label, ID: srcID, Workspace: wsKey, Source: src.Source, Prefix: srcPrefix, Depth: 3})
			if b.collapsed(srcID) {
				continue
			}
			itemIndent := childIndent(srcPrefix)
			for j, it := range src.Items {
				b.add(b.launchLeaf(it, branch(itemIndent, j == len(src.Items)-1), 4))
			}
		}
		return
	}

	for i, it := range c.flat {
		b.add(b.launchLeaf(it, branch(indent, i == len(c.flat)-1), 3))
	}
}

func (b *builder) taskSection(wsKey string, top []*models.TaskItem, cats []taskCat, secPrefix string) {
	indent := childIndent(secPrefix)
	total := len(top) + len(cats)
	pos := 0

	for _, it := range top {
		pos++
		b.add(b.taskLeaf(it, branch(indent, pos == total), 2))
	}
	for _, c := range cats {
		pos++
		catPrefix := branch(indent, pos == total)
		catID := "cat:" + wsKey + "/tasks/" + c.name
		b.add(&Node{Kind: KindCategory, Label: c.name, ID: catID, Workspace: wsKey, Prefix: catPrefix, Depth: 2})
		if b.collapsed(catID) {
			continue
		}
		b.taskCategory(wsKey, c, catPrefix)
	}
}

func (b *builder) taskCategory(wsKey string, c taskCat, catPrefix string) {
	indent := childIndent(catPrefix)

	if b.opts.ShowSources {
		for i, src := range c.sources {
			srcPrefix := branch(indent, i == len(c.sources)-1)
			srcID := "src:" + wsKey + "/tasks/" + c.name + "/" + src.Source.ID
			b.add(&Node{Kind: KindSource, Label: src.Source.Label, ID: srcID, Workspace: wsKey, Source: src.Source, Prefix: srcPrefix, Depth: 3})
			if b.collapsed(srcID) {
				continue
			}
			itemIndent := childIndent(srcPrefix)
			for j, it := range src.Items {
				b.add(b.taskLeaf(it, branch(itemIndent, j == len(src.Items)-1), 4))
			}
		}
		return
	}

	for i, it := range c.flat {
		b.add(b.taskLeaf(it, branch(indent, i == len(c.flat)-1), 3))
	}
}

func (b *builder) notebookSection(notebooks []*models.NotebookItem, secPrefix string) {
	indent := childIndent(secPrefix)
	for i, nb := range notebooks {
		b.add(&Node{
			Kind:      KindNotebook,
			Label:     nb.Name,
			ID:        nb.ID,
			Workspace: nb.Workspace,
			Notebook:  nb,
			Prefix:    branch(indent, i == len(notebooks)-1),
			Depth:     2,
		})
	}
}

func (b *builder) launchLeaf(it *models.LaunchItem, prefix string, depth int) *Node {
	return &Node{
		Kind:      KindLaunch,
		Label:     it.Name,
		ID:        it.ID,
		Workspace: it.Workspace,
		Running:   b.opts.IsRunning(it.ID),
		Launch:    it,
		Source:    it.Source,
		Prefix:    prefix,
		Depth:     depth,
	}
}

func (b *builder) taskLeaf(it *models.TaskItem, prefix string, depth int) *Node {
	return &Node{
		Kind:      KindTask,
		Label:     it.Label,
		ID:        it.ID,
		Workspace: it.Workspace,
		Running:   b.opts.IsRunning(it.ID),
		Task:      it,
		Source:    it.Source,
		Prefix:    prefix,
		Depth:     depth,
	}
}

// launchCat is a category bucket reduced to its filter survivors. The flat
// list keeps the aggregate's name order for views without the source layer.
type launchCat struct {
	name    string
	sources []*aggregate.LaunchSource
	flat    []*models.LaunchItem
}

type taskCat struct {
	name    string
	sources []*aggregate.TaskSource
	flat    []*models.TaskItem
}

func filterLaunches(items []*models.LaunchItem, filter string) []*models.LaunchItem {
	if filter == "" {
		return items
	}
	var out []*models.LaunchItem
	for _, it := range items {
		if aggregate.Matches(it.Name, filter) {
			out = append(out, it)
		}
	}
	return out
}

func filterLaunchCategories(cats []*aggregate.LaunchCategory, filter string) []launchCat {
	var out []launchCat
	for _, c := range cats {
		var srcs []*aggregate.LaunchSource
		for _, s := range c.Sources {
			items := filterLaunches(s.Items, filter)
			if len(items) == 0 {
				continue
			}
			srcs = append(srcs, &aggregate.LaunchSource{Source: s.Source, Items: items})
		}
		if len(srcs) > 0 {
			out = append(out, launchCat{
				name:    c.Name,
				sources: srcs,
				flat:    filterLaunches(c.Flatten(), filter),
			})
		}
	}
	return out
}

func filterTasks(items []*models.TaskItem, filter string) []*models.TaskItem {
	if filter == "" {
		return items
	}
	var out []*models.TaskItem
	for _, it := range items {
		if aggregate.Matches(it.Label, filter) {
			out = append(out, it)
		}
	}
	return out
}

func filterTaskCategories(cats []*aggregate.TaskCategory, filter string) []taskCat {
	var out []taskCat
	for _, c := range cats {
		var srcs []*aggregate.TaskSource
		for _, s := range c.Sources {
			items := filterTasks(s.Items, filter)
			if len(items) == 0 {
				continue
			}
			srcs = append(srcs, &aggregate.TaskSource{Source: s.Source, Items: items})
		}
		if len(srcs) > 0 {
			out = append(out, taskCat{
				name:    c.Name,
				sources: srcs,
				flat:    filterTasks(c.Flatten(), filter),
			})
		}
	}
	return out
}

func filterNotebooks(items []*models.NotebookItem, filter string) []*models.NotebookItem {
	if filter == "" {
		return items
	}
	var out []*models.NotebookItem
	for _, it := range items {
		if aggregate.Matches(it.Name, filter) {
			out = append(out, it)
		}
	}
	return out
}

// childIndent converts a row's prefix into the indentation its children
// hang under, continuing the vertical guide of a branch row.
func childIndent(prefix string) string {
	s := strings.ReplaceAll(prefix, "├─", "│ ")
	return strings.ReplaceAll(s, "└─", "  ")
}

func branch(indent string, last bool) string {
	if last {
		return indent + "└─ "
	}
	return indent + "├─ "
}
