// Package category derives grouping labels for launch and task names.
package category

import (
	"regexp"
	"strings"
)

// Rule maps labels matching a regular expression to a category. Rules are
// evaluated in configured order; the first match wins.
type Rule struct {
	Category string `mapstructure:"category" yaml:"category" json:"category"`
	Pattern  string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
}

// Categorize derives a category for a launch name or task label.
//
// Precedence, first non-empty trimmed value wins: an exact entry in labels,
// then the first rule whose pattern matches case-insensitively, then a
// leading "<prefix>: " on the label itself. Returns "" when no category
// applies. A rule with an invalid pattern never matches.
func Categorize(label string, rules []Rule, labels map[string]string) string {
	if c, ok := labels[label]; ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}

	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			continue
		}
		if re.MatchString(label) {
			if c := strings.TrimSpace(r.Category); c != "" {
				return c
			}
		}
	}

	return prefixCategory(label)
}

// prefixCategory extracts the "<prefix>: " convention category, if any.
func prefixCategory(label string) string {
	i := strings.Index(label, ": ")
	if i <= 0 {
		return ""
	}
	return strings.TrimSpace(label[:i])
}

// Matcher is a compiled form of Categorize for repeated use over many
// labels. Matching semantics are identical.
type Matcher struct {
	labels  map[string]string
	rules   []compiledRule
	invalid []Rule
}

type compiledRule struct {
	category string
	re       *regexp.Regexp
}

// NewMatcher compiles the given rules, skipping any whose pattern does not
// compile. Skipped rules are retained for diagnostics.
func NewMatcher(rules []Rule, labels map[string]string) *Matcher {
	m := &Matcher{labels: labels}
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			m.invalid = append(m.invalid, r)
			continue
		}
		m.rules = append(m.rules, compiledRule{category: strings.TrimSpace(r.Category), re: re})
	}
	return m
}

// Categorize derives a category for label using the compiled rules.
func (m *Matcher) Categorize(label string) string {
	if c, ok := m.labels[label]; ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	for _, r := range m.rules {
		if r.re.MatchString(label) && r.category != "" {
			return r.category
		}
	}
	return prefixCategory(label)
}

// InvalidRules returns the rules skipped at compile time, for diagnostics.
func (m *Matcher) InvalidRules() []Rule {
	return m.invalid
}
