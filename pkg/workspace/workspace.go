package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Type represents the type of workspace
type Type string

const (
	TypeGitRepo   Type = "git-repo"
	TypeDirectory Type = "directory"
	TypeUser      Type = "user"
)

// UserKey is the sentinel grouping key for items that belong to no
// workspace folder (user settings, inline config entries). It is not a
// filesystem path on purpose.
const UserKey = "::user"

// Workspace represents a registered workspace
type Workspace struct {
	Name      string         `yaml:"name" json:"name"`
	Path      string         `yaml:"path" json:"path"`
	Type      Type           `yaml:"type" json:"type"`
	Settings  map[string]any `yaml:"settings" json:"settings"`
	CreatedAt time.Time      `yaml:"created_at" json:"created_at"`
	LastUsed  time.Time      `yaml:"last_used" json:"last_used"`
}

// User returns the synthetic user-scope workspace. It is never persisted;
// it exists so user-level items have a grouping key and a display name.
func User() *Workspace {
	return &Workspace{
		Name: "user",
		Path: UserKey,
		Type: TypeUser,
	}
}

// Key returns the grouping identity of this workspace: its path, or the
// user sentinel for the synthetic user workspace.
func (w *Workspace) Key() string {
	if w.Type == TypeUser {
		return UserKey
	}
	return w.Path
}

// LaunchDocPath returns the conventional location of this workspace's
// launch document, or "" for the user workspace.
func (w *Workspace) LaunchDocPath() string {
	if w.Type == TypeUser {
		return ""
	}
	return filepath.Join(w.Path, ".vscode", "launch.json")
}

// TaskDocPath returns the conventional location of this workspace's task
// document, or "" for the user workspace.
func (w *Workspace) TaskDocPath() string {
	if w.Type == TypeUser {
		return ""
	}
	return filepath.Join(w.Path, ".vscode", "tasks.json")
}

// IsActive checks if we're currently in this workspace
func (w *Workspace) IsActive() bool {
	if w.Type == TypeUser {
		return false
	}

	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	absPath, err := filepath.Abs(w.Path)
	if err != nil {
		return false
	}

	return strings.HasPrefix(cwd, absPath)
}

// Validate checks if the workspace configuration is valid
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}
	if w.Path == "" {
		return fmt.Errorf("workspace path cannot be empty")
	}

	// Expand home directory
	if strings.HasPrefix(w.Path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		w.Path = filepath.Join(home, w.Path[1:])
	}

	return nil
}
