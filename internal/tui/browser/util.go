package browser

import (
	"os"
	"path/filepath"
	"strings"
)

// shortenPath makes a workspace path fit a tree row. The home prefix
// becomes a tilde; a path still longer than max keeps only its trailing
// components.
func shortenPath(path string, max int) string {
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, home) {
		path = filepath.Join("~", strings.TrimPrefix(path, home))
	}
	if max <= 0 || len(path) <= max {
		return path
	}

	sep := string(filepath.Separator)
	parts := strings.Split(path, sep)
	for len(parts) > 1 {
		parts = parts[1:]
		shortened := "…" + sep + strings.Join(parts, sep)
		if len(shortened) <= max {
			return shortened
		}
	}
	return "…" + sep + parts[0]
}
