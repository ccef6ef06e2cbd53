package sources

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mattsolo1/grove-runbook/pkg/frontmatter"
	"github.com/mattsolo1/grove-runbook/pkg/models"
)

// DefaultNotebookExtensions marks which file extensions count as notebooks
// when the config store does not override them.
var DefaultNotebookExtensions = []string{".ipynb", ".md"}

// discoverNotebooks resolves a configured path list into notebook items.
// Relative paths resolve against baseDir. A single file is included when
// its extension matches; a directory contributes its direct notebook
// children, non-recursively. Unresolvable paths yield nothing.
func (l *Loader) discoverNotebooks(paths []string, baseDir, wsKey string) []*models.NotebookItem {
	exts := l.cfg.NotebookExtensions
	if len(exts) == 0 {
		exts = DefaultNotebookExtensions
	}

	var items []*models.NotebookItem
	seen := make(map[string]bool)

	add := func(uri, name string, isLocal bool) {
		if seen[uri] {
			return
		}
		seen[uri] = true
		items = append(items, &models.NotebookItem{
			ID:        "nb:" + uri,
			Name:      name,
			URI:       uri,
			Workspace: wsKey,
			IsLocal:   isLocal,
		})
	}

	for _, p := range paths {
		if p == "" {
			continue
		}

		// Remote references are included as-is when the extension matches.
		if strings.Contains(p, "://") {
			if hasNotebookExt(p, exts) {
				add(p, notebookStem(p), false)
			}
			continue
		}

		abs := l.resolvePath(p, baseDir)
		if abs == "" {
			continue
		}

		info, err := os.Stat(abs)
		if err != nil {
			l.log.Debugf("sources: notebook path %s unresolvable: %v", p, err)
			continue
		}

		if !info.IsDir() {
			if hasNotebookExt(abs, exts) {
				add(abs, l.notebookName(abs), true)
			}
			continue
		}

		entries, err := os.ReadDir(abs)
		if err != nil {
			l.log.Debugf("sources: notebook dir %s unreadable: %v", abs, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !hasNotebookExt(e.Name(), exts) {
				continue
			}
			child := filepath.Join(abs, e.Name())
			add(child, l.notebookName(child), true)
		}
	}

	return items
}

// resolvePath makes a configured path absolute, expanding a leading tilde.
func (l *Loader) resolvePath(p, baseDir string) string {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		p = filepath.Join(home, p[1:])
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if baseDir == "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return ""
		}
		return abs
	}
	return filepath.Join(baseDir, p)
}

// notebookName derives a display name for a notebook file. Markdown
// notebooks use their frontmatter title when present, ipynb files their
// metadata title; anything else falls back to the file stem.
func (l *Loader) notebookName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		data, err := os.ReadFile(path)
		if err == nil {
			if fm, _, err := frontmatter.Parse(string(data)); err == nil && fm != nil && strings.TrimSpace(fm.Title) != "" {
				return strings.TrimSpace(fm.Title)
			}
		}
	case ".ipynb":
		data, err := os.ReadFile(path)
		if err == nil && gjson.ValidBytes(data) {
			if title := gjson.GetBytes(data, "metadata.title"); title.Exists() && strings.TrimSpace(title.String()) != "" {
				return strings.TrimSpace(title.String())
			}
		}
	}
	return notebookStem(path)
}

// notebookStem returns the file name without its extension.
func notebookStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// hasNotebookExt reports whether a path carries one of the notebook
// extensions.
func hasNotebookExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
