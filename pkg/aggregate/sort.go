package aggregate

import (
	"os"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// localeTag picks the collation language from the environment, checking
// LC_ALL, LC_MESSAGES, then LANG. Unset, C, and POSIX locales fall back to
// English.
func localeTag() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		v = strings.SplitN(v, ".", 2)[0]
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if tag, err := language.Parse(strings.ReplaceAll(v, "_", "-")); err == nil {
			return tag
		}
	}
	return language.English
}

// newCollator returns a fresh collator for one build pass. Collators are
// not safe for concurrent use.
func newCollator() *collate.Collator {
	return collate.New(localeTag())
}
