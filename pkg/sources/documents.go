package sources

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// launchDocument mirrors the launch document shape. Configurations stay
// opaque; only the name key is interpreted here.
type launchDocument struct {
	Version        string                   `json:"version"`
	Configurations []map[string]interface{} `json:"configurations"`
}

// taskDocument mirrors the task document shape.
type taskDocument struct {
	Version string                   `json:"version"`
	Tasks   []map[string]interface{} `json:"tasks"`
}

// loadLaunchDoc reads a workspace's launch document. Returns (nil, nil)
// when the document is absent, malformed, or yields no items.
func (l *Loader) loadLaunchDoc(ws *workspace.Workspace) (*models.SourceRef, []*models.LaunchItem) {
	path := ws.LaunchDocPath()
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Debugf("sources: launch doc %s unreadable: %v", path, err)
		}
		return nil, nil
	}

	var doc launchDocument
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		l.log.Debugf("sources: launch doc %s malformed: %v", path, err)
		return nil, nil
	}

	src := &models.SourceRef{
		ID:        sourceID(path, ws.Name, models.SourceKindLaunches),
		Label:     ws.Name,
		OriginURI: path,
		Workspace: ws.Key(),
		Kind:      models.SourceKindLaunches,
	}

	var items []*models.LaunchItem
	for _, cfg := range doc.Configurations {
		name := trimmedName(stringField(cfg, "name"))
		if name == "" {
			l.log.Debugf("sources: dropping nameless launch entry in %s", path)
			continue
		}
		items = append(items, &models.LaunchItem{
			ID:        models.ItemID(src.ID, name),
			Name:      name,
			Config:    cfg,
			Workspace: ws.Key(),
			Source:    src,
		})
	}

	if len(items) == 0 {
		return nil, nil
	}
	return src, items
}

// loadTaskDoc reads a workspace's task document. Returns (nil, nil) when
// the document is absent, malformed, or yields no items.
func (l *Loader) loadTaskDoc(ws *workspace.Workspace) (*models.SourceRef, []*models.TaskItem) {
	path := ws.TaskDocPath()
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Debugf("sources: task doc %s unreadable: %v", path, err)
		}
		return nil, nil
	}

	var doc taskDocument
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		l.log.Debugf("sources: task doc %s malformed: %v", path, err)
		return nil, nil
	}

	src := &models.SourceRef{
		ID:        sourceID(path, ws.Name, models.SourceKindTasks),
		Label:     ws.Name,
		OriginURI: path,
		Workspace: ws.Key(),
		Kind:      models.SourceKindTasks,
	}

	var items []*models.TaskItem
	for _, cfg := range doc.Tasks {
		label := trimmedName(stringField(cfg, "label"))
		if label == "" {
			l.log.Debugf("sources: dropping unlabeled task entry in %s", path)
			continue
		}
		items = append(items, &models.TaskItem{
			ID:        models.ItemID(src.ID, label),
			Label:     label,
			Config:    cfg,
			Workspace: ws.Key(),
			Source:    src,
		})
	}

	if len(items) == 0 {
		return nil, nil
	}
	return src, items
}

// sourceID derives a stable source identifier from the document origin and
// kind, so unchanged documents reproduce identical ids across reloads.
func sourceID(origin, label string, kind models.SourceKind) string {
	if origin == "" {
		origin = label
	}
	return origin + "#" + string(kind)
}

// stringField pulls a string value out of a raw document entry.
func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// trimmedName normalizes a display name, returning "" for entries that
// should be dropped.
func trimmedName(s string) string {
	return strings.TrimSpace(s)
}
