package models

// SourceKind distinguishes launch documents from task documents.
type SourceKind string

const (
	SourceKindLaunches SourceKind = "launches"
	SourceKindTasks    SourceKind = "tasks"
)

// SourceRef identifies the document or settings origin of a group of items.
// Refs are recreated on every reload and never mutated afterwards; identity
// across reloads is by ID only.
type SourceRef struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	OriginURI      string     `json:"origin_uri,omitempty"`
	Workspace      string     `json:"workspace,omitempty"`
	Kind           SourceKind `json:"kind"`
	IsUserSettings bool       `json:"is_user_settings,omitempty"`
}

// LaunchItem is a single run/debug configuration. Config is the raw
// configuration object from the document, kept opaque except for the keys
// the runner reads (program, args, cwd, env).
type LaunchItem struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Category  string                 `json:"category,omitempty"`
	Config    map[string]interface{} `json:"config,omitempty"`
	Workspace string                 `json:"workspace,omitempty"`
	Source    *SourceRef             `json:"source"`
}

// TaskItem is a single task definition. Config holds the raw document entry
// for tasks read from a task document; UserTaskSpec is set instead for tasks
// defined inline in the config store.
type TaskItem struct {
	ID           string                 `json:"id"`
	Label        string                 `json:"label"`
	Category     string                 `json:"category,omitempty"`
	Config       map[string]interface{} `json:"config,omitempty"`
	UserTaskSpec *InlineTaskSpec        `json:"user_task_spec,omitempty"`
	Workspace    string                 `json:"workspace,omitempty"`
	Source       *SourceRef             `json:"source"`
}

// NotebookItem is a reference to a notebook file. Notebooks are never
// executed or edited here; they only appear in listings and trees.
type NotebookItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URI       string `json:"uri"`
	Workspace string `json:"workspace,omitempty"`
	IsLocal   bool   `json:"is_local"`
}

// ItemID derives an item identifier from its source and display name.
// Uniqueness is scoped to a single reload; unchanged documents reproduce
// identical ids on the next reload.
func ItemID(sourceID, name string) string {
	return sourceID + ":" + name
}
