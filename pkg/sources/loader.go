// Package sources reads launch configurations, task definitions, and
// notebook references from workspace documents, the host user settings
// document, and the config store. Failures are local to the document that
// failed: a malformed or missing document contributes nothing, and the
// load as a whole never errors on document problems.
package sources

import (
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// WorkspaceLister provides the registered workspaces to load documents for.
type WorkspaceLister interface {
	List() ([]*workspace.Workspace, error)
}

// Config carries everything the loader reads besides workspace documents.
type Config struct {
	// Inline specs from the config store.
	InlineLaunches []models.InlineLaunchSpec
	InlineTasks    []models.InlineTaskSpec
	UserNotebooks  []string

	// ConfigOrigin is the path of the config file inline specs came from,
	// used as the origin URI of their sources.
	ConfigOrigin string

	// SettingsPaths overrides the platform candidate paths for the user
	// settings document when non-empty. First existing path wins.
	SettingsPaths []string

	// NotebookExtensions marks which files count as notebooks.
	NotebookExtensions []string
}

// Result is one complete load: flat item lists plus the provenance records
// that produced them. A source appears only if it yielded at least one item.
type Result struct {
	LaunchSources []*models.SourceRef
	Launches      []*models.LaunchItem
	TaskSources   []*models.SourceRef
	Tasks         []*models.TaskItem
	Notebooks     []*models.NotebookItem
}

// Loader reads all configured origins into a Result.
type Loader struct {
	workspaces WorkspaceLister
	cfg        Config
	log        *logrus.Logger
}

// NewLoader creates a loader over the given workspaces and config.
func NewLoader(workspaces WorkspaceLister, cfg Config, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	return &Loader{workspaces: workspaces, cfg: cfg, log: log}
}

// Load reads every origin and returns the combined result. Only a failure
// to enumerate workspaces is an error; document-level failures degrade to
// absence.
func (l *Loader) Load() (*Result, error) {
	res := &Result{}

	wss, err := l.workspaces.List()
	if err != nil {
		return nil, err
	}

	for _, ws := range wss {
		l.loadWorkspaceDocs(res, ws)
		l.loadWorkspaceNotebooks(res, ws)
	}

	l.loadUserSettings(res)
	l.loadInline(res)
	l.loadUserNotebooks(res)

	return res, nil
}

// loadWorkspaceDocs reads a workspace's launch and task documents.
func (l *Loader) loadWorkspaceDocs(res *Result, ws *workspace.Workspace) {
	if src, items := l.loadLaunchDoc(ws); src != nil {
		res.LaunchSources = append(res.LaunchSources, src)
		res.Launches = append(res.Launches, items...)
	}
	if src, items := l.loadTaskDoc(ws); src != nil {
		res.TaskSources = append(res.TaskSources, src)
		res.Tasks = append(res.Tasks, items...)
	}
}

// loadWorkspaceNotebooks reads the workspace config and resolves its
// notebook paths.
func (l *Loader) loadWorkspaceNotebooks(res *Result, ws *workspace.Workspace) {
	if ws.Type == workspace.TypeUser {
		return
	}

	cfg, err := workspace.LoadConfig(ws.Path)
	if err != nil {
		l.log.Debugf("sources: workspace config for %s unreadable: %v", ws.Name, err)
		return
	}

	items := l.discoverNotebooks(cfg.Notebooks, ws.Path, ws.Key())
	res.Notebooks = append(res.Notebooks, items...)
}

// loadInline converts inline config-store specs into items. Their sources
// carry the user-settings flag since they are process-wide, not workspace
// scoped.
func (l *Loader) loadInline(res *Result) {
	if len(l.cfg.InlineLaunches) > 0 {
		src := &models.SourceRef{
			ID:             sourceID(l.cfg.ConfigOrigin, "config", models.SourceKindLaunches),
			Label:          "config",
			OriginURI:      l.cfg.ConfigOrigin,
			Workspace:      workspace.UserKey,
			Kind:           models.SourceKindLaunches,
			IsUserSettings: true,
		}
		var items []*models.LaunchItem
		for _, spec := range l.cfg.InlineLaunches {
			name := trimmedName(spec.Name())
			if name == "" {
				l.log.Debug("sources: dropping inline launch with empty name")
				continue
			}
			items = append(items, &models.LaunchItem{
				ID:        models.ItemID(src.ID, name),
				Name:      name,
				Config:    map[string]interface{}(spec),
				Workspace: workspace.UserKey,
				Source:    src,
			})
		}
		if len(items) > 0 {
			res.LaunchSources = append(res.LaunchSources, src)
			res.Launches = append(res.Launches, items...)
		}
	}

	if len(l.cfg.InlineTasks) > 0 {
		src := &models.SourceRef{
			ID:             sourceID(l.cfg.ConfigOrigin, "config", models.SourceKindTasks),
			Label:          "config",
			OriginURI:      l.cfg.ConfigOrigin,
			Workspace:      workspace.UserKey,
			Kind:           models.SourceKindTasks,
			IsUserSettings: true,
		}
		var items []*models.TaskItem
		for i := range l.cfg.InlineTasks {
			spec := l.cfg.InlineTasks[i]
			label := trimmedName(spec.Label)
			if label == "" {
				l.log.Debug("sources: dropping inline task with empty label")
				continue
			}
			items = append(items, &models.TaskItem{
				ID:           models.ItemID(src.ID, label),
				Label:        label,
				UserTaskSpec: &spec,
				Workspace:    workspace.UserKey,
				Source:       src,
			})
		}
		if len(items) > 0 {
			res.TaskSources = append(res.TaskSources, src)
			res.Tasks = append(res.Tasks, items...)
		}
	}
}

// loadUserNotebooks resolves the user-level notebook path list.
func (l *Loader) loadUserNotebooks(res *Result) {
	items := l.discoverNotebooks(l.cfg.UserNotebooks, "", workspace.UserKey)
	res.Notebooks = append(res.Notebooks, items...)
}
