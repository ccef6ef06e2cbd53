package aggregate

import "strings"

// Matches reports whether text contains the filter as a case-insensitive
// substring. An empty filter matches everything.
func Matches(text, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(filter))
}

// HasMatches reports whether any item name in the workspace contains the
// filter. Category names do not count; only launch names, task labels, and
// notebook names are checked. Evaluated fresh on every call against the
// aggregate itself.
func (w *WorkspaceAggregate) HasMatches(filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)

	for _, it := range w.Launches.TopLevel {
		if strings.Contains(strings.ToLower(it.Name), f) {
			return true
		}
	}
	for _, cat := range w.Launches.Categories {
		for _, src := range cat.Sources {
			for _, it := range src.Items {
				if strings.Contains(strings.ToLower(it.Name), f) {
					return true
				}
			}
		}
	}

	for _, it := range w.Tasks.TopLevel {
		if strings.Contains(strings.ToLower(it.Label), f) {
			return true
		}
	}
	for _, cat := range w.Tasks.Categories {
		for _, src := range cat.Sources {
			for _, it := range src.Items {
				if strings.Contains(strings.ToLower(it.Label), f) {
					return true
				}
			}
		}
	}

	for _, nb := range w.Notebooks {
		if strings.Contains(strings.ToLower(nb.Name), f) {
			return true
		}
	}
	return false
}
