package sources

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// defaultSettingsCandidates returns the platform-specific locations of the
// host user settings document. First existing path wins.
func defaultSettingsCandidates() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	if runtime.GOOS == "darwin" {
		return []string{
			filepath.Join(home, "Library", "Application Support", "Code", "User", "settings.json"),
			filepath.Join(home, "Library", "Application Support", "VSCodium", "User", "settings.json"),
		}
	}
	return []string{
		filepath.Join(home, ".config", "Code", "User", "settings.json"),
		filepath.Join(home, ".config", "VSCodium", "User", "settings.json"),
	}
}

// findSettingsDoc resolves the user settings document path, or "" when no
// candidate exists.
func (l *Loader) findSettingsDoc() string {
	candidates := l.cfg.SettingsPaths
	if len(candidates) == 0 {
		candidates = defaultSettingsCandidates()
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// loadUserSettings reads launch configurations and tasks embedded in the
// host user settings document. The document is a large JSONC object of
// unknown overall shape; only its launch.configurations and tasks.tasks
// sections are read.
func (l *Loader) loadUserSettings(res *Result) {
	path := l.findSettingsDoc()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Debugf("sources: settings doc %s unreadable: %v", path, err)
		return
	}
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		l.log.Debugf("sources: settings doc %s malformed", path)
		return
	}

	if configs := gjson.GetBytes(clean, "launch.configurations"); configs.IsArray() {
		src := &models.SourceRef{
			ID:             sourceID(path, "user settings", models.SourceKindLaunches),
			Label:          "user settings",
			OriginURI:      path,
			Workspace:      workspace.UserKey,
			Kind:           models.SourceKindLaunches,
			IsUserSettings: true,
		}
		var items []*models.LaunchItem
		for _, raw := range configs.Array() {
			cfg := rawObject(raw)
			if cfg == nil {
				continue
			}
			name := trimmedName(stringField(cfg, "name"))
			if name == "" {
				l.log.Debugf("sources: dropping nameless launch entry in %s", path)
				continue
			}
			items = append(items, &models.LaunchItem{
				ID:        models.ItemID(src.ID, name),
				Name:      name,
				Config:    cfg,
				Workspace: workspace.UserKey,
				Source:    src,
			})
		}
		if len(items) > 0 {
			res.LaunchSources = append(res.LaunchSources, src)
			res.Launches = append(res.Launches, items...)
		}
	}

	if tasks := gjson.GetBytes(clean, "tasks.tasks"); tasks.IsArray() {
		src := &models.SourceRef{
			ID:             sourceID(path, "user settings", models.SourceKindTasks),
			Label:          "user settings",
			OriginURI:      path,
			Workspace:      workspace.UserKey,
			Kind:           models.SourceKindTasks,
			IsUserSettings: true,
		}
		var items []*models.TaskItem
		for _, raw := range tasks.Array() {
			cfg := rawObject(raw)
			if cfg == nil {
				continue
			}
			label := trimmedName(stringField(cfg, "label"))
			if label == "" {
				l.log.Debugf("sources: dropping unlabeled task entry in %s", path)
				continue
			}
			items = append(items, &models.TaskItem{
				ID:        models.ItemID(src.ID, label),
				Label:     label,
				Config:    cfg,
				Workspace: workspace.UserKey,
				Source:    src,
			})
		}
		if len(items) > 0 {
			res.TaskSources = append(res.TaskSources, src)
			res.Tasks = append(res.Tasks, items...)
		}
	}
}

// rawObject converts a gjson object result into the opaque map form items
// carry. Non-object entries yield nil.
func rawObject(r gjson.Result) map[string]interface{} {
	if !r.IsObject() {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(r.Raw), &m); err != nil {
		return nil
	}
	return m
}
