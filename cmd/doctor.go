package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/mattsolo1/grove-runbook/pkg/category"
	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

func NewDoctorCmd(svc **service.Service) *cobra.Command {
	var doctorFix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check catalog configuration for issues",
		Long: `The doctor command re-reads every configured document and reports the
problems the normal loader silently skips over.

Issues it can detect:
- Registered workspaces whose folder no longer exists
- Duplicate workspace registrations for the same folder
- Malformed launch and task documents
- Entries dropped for missing names or labels
- Category rules whose pattern does not compile
- Configured notebook paths that resolve to nothing

Registry issues are repairable with --fix; the rest need a manual edit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			return runDoctor(s, doctorFix)
		},
	}

	cmd.Flags().BoolVar(&doctorFix, "fix", false, "Automatically fix registry issues")

	return cmd
}

func runDoctor(s *service.Service, fix bool) error {
	fmt.Println("🏥 Running catalog doctor...")
	fmt.Println()

	issues := 0
	fixed := 0

	workspaces, err := s.Registry.List()
	if err != nil {
		return fmt.Errorf("list workspaces: %w", err)
	}

	// Check for registered folders that no longer exist
	for _, ws := range workspaces {
		if _, err := os.Stat(ws.Path); err == nil {
			continue
		}
		issues++
		fmt.Printf("❗ Workspace '%s' points at a missing folder: %s\n", ws.Name, ws.Path)
		if fix {
			if err := s.Registry.Remove(ws.Name); err == nil {
				fmt.Printf("   ✅ Removed %s\n", ws.Name)
				fixed++
			}
		} else {
			fmt.Println("   💡 Run with --fix to remove this registration")
		}
		fmt.Println()
	}

	// Check for duplicate registrations of the same folder
	pathMap := make(map[string][]*workspace.Workspace)
	for _, ws := range workspaces {
		normalizedPath := strings.ToLower(ws.Path)
		pathMap[normalizedPath] = append(pathMap[normalizedPath], ws)
	}

	for _, wsList := range pathMap {
		if len(wsList) <= 1 {
			continue
		}
		issues++
		fmt.Printf("❗ Found %d registrations for the same folder:\n", len(wsList))
		for _, ws := range wsList {
			fmt.Printf("   - %s: %s\n", ws.Name, ws.Path)
		}

		if fix {
			// Keep the most recently used registration
			var mostRecent *workspace.Workspace
			for _, ws := range wsList {
				if mostRecent == nil || ws.LastUsed.After(mostRecent.LastUsed) {
					mostRecent = ws
				}
			}
			for _, ws := range wsList {
				if ws.Name != mostRecent.Name {
					if err := s.Registry.Remove(ws.Name); err == nil {
						fmt.Printf("   ✅ Removed duplicate: %s\n", ws.Name)
						fixed++
					}
				}
			}
		} else {
			fmt.Println("   💡 Run with --fix to keep the most recently used one")
		}
		fmt.Println()
	}

	// Re-parse documents loudly
	for _, ws := range workspaces {
		issues += checkDocument(ws.LaunchDocPath(), "configurations", "name")
		issues += checkDocument(ws.TaskDocPath(), "tasks", "label")

		if _, err := workspace.LoadConfig(ws.Path); err != nil {
			issues++
			fmt.Printf("❗ Workspace config of '%s' does not parse: %v\n", ws.Name, err)
			fmt.Printf("   💡 Fix %s in %s\n", workspace.ConfigFileName, ws.Path)
			fmt.Println()
		}
	}
	for _, path := range s.Config.Sources.SettingsPaths {
		abs := expandHome(path)
		if _, err := os.Stat(abs); err != nil {
			issues++
			fmt.Printf("❗ Configured settings path does not exist: %s\n", path)
			fmt.Println("   💡 Fix settings_paths in the config file")
			fmt.Println()
			continue
		}
		issues += checkDocument(abs, "launch.configurations", "name")
		issues += checkDocument(abs, "tasks.tasks", "label")
	}

	// Category rules that will never match anything
	matcher := category.NewMatcher(s.Config.Rules, s.Config.Labels)
	for _, rule := range matcher.InvalidRules() {
		issues++
		fmt.Printf("❗ Category rule for '%s' has an invalid pattern: %q\n", rule.Category, rule.Pattern)
		fmt.Println("   💡 Fix categories.rules in the config file")
		fmt.Println()
	}

	// Configured notebooks that resolve to nothing
	for _, p := range s.Config.Sources.UserNotebooks {
		if p == "" || strings.Contains(p, "://") {
			continue
		}
		abs := expandHome(p)
		if !filepath.IsAbs(abs) {
			if a, err := filepath.Abs(abs); err == nil {
				abs = a
			}
		}
		if _, err := os.Stat(abs); err != nil {
			issues++
			fmt.Printf("❗ Notebook path does not exist: %s\n", p)
			fmt.Println("   💡 Fix notebooks in the config file")
			fmt.Println()
		}
	}

	// Summary
	if issues == 0 {
		fmt.Println("✨ No issues found! Your catalog configuration is healthy.")
	} else {
		fmt.Printf("\n📊 Summary: Found %d issue(s)", issues)
		if fix {
			fmt.Printf(", fixed %d", fixed)
		}
		fmt.Println()
		if !fix && issues > fixed {
			fmt.Println("\n💡 Run 'rb doctor --fix' to automatically fix registry issues")
		}
	}

	return nil
}

// checkDocument re-parses one document the way the loader does, but reports
// what the loader would silently drop. arrayPath is the gjson path of the
// entry array; nameKey is the field an entry needs to be listed at all.
func checkDocument(path, arrayPath, nameKey string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		// Absent documents are normal, not an issue.
		return 0
	}

	clean := jsonc.ToJSON(data)
	if !json.Valid(clean) {
		fmt.Printf("❗ Malformed document: %s\n", path)
		fmt.Println("   💡 Fix the JSON syntax; the catalog skips this file until then")
		fmt.Println()
		return 1
	}

	entries := gjson.GetBytes(clean, arrayPath)
	if !entries.IsArray() {
		return 0
	}

	nameless := 0
	entries.ForEach(func(_, entry gjson.Result) bool {
		if strings.TrimSpace(entry.Get(nameKey).String()) == "" {
			nameless++
		}
		return true
	})

	if nameless > 0 {
		fmt.Printf("❗ %d entr%s without a %q in %s\n", nameless, pluralY(nameless), nameKey, path)
		fmt.Println("   💡 These entries are dropped from the catalog")
		fmt.Println()
		return 1
	}
	return 0
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
