package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/aggregate"
	"github.com/mattsolo1/grove-runbook/pkg/service"
)

// listRow is the flat record both output formats print.
type listRow struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Workspace string `json:"workspace"`
	Source    string `json:"source,omitempty"`
	Running   bool   `json:"running,omitempty"`
}

func NewListCmd(svc **service.Service, workspaceOverride *string) *cobra.Command {
	var (
		listKind   string
		listAll    bool
		listJSON   bool
		listFilter string
	)

	cmd := &cobra.Command{
		Use:     "list [kind]",
		Short:   "List catalog items in the current workspace",
		Aliases: []string{"ls"},
		Long: `List launch configurations, tasks, and notebooks.

Examples:
  rb list              # Everything in the current workspace
  rb list launches     # Launch configurations only
  rb list tasks        # Tasks only
  rb list notebooks    # Notebooks only
  rb list --all        # Every workspace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			kindArg := listKind
			if len(args) > 0 {
				kindArg = args[0]
			}
			kind, err := normalizeKind(kindArg)
			if err != nil {
				return err
			}

			snap, err := s.Refresh()
			if err != nil {
				return err
			}

			var aggregates []*aggregate.WorkspaceAggregate
			if listAll {
				aggregates = snap.Workspaces
			} else {
				wsCtx, err := s.GetWorkspaceContext(*workspaceOverride)
				if err != nil {
					return fmt.Errorf("get workspace context: %w", err)
				}
				if wa, ok := snap.Get(wsCtx.Key()); ok {
					aggregates = append(aggregates, wa)
				}
			}

			rows := collectRows(aggregates, kind, listFilter, s.Tracker.IsRunning)

			if len(rows) == 0 {
				if listJSON {
					fmt.Println("[]")
					return nil
				}
				if listFilter != "" {
					fmt.Printf("No items match %q\n", listFilter)
				} else {
					fmt.Println("No items found")
				}
				return nil
			}

			if listJSON {
				return outputJSON(rows)
			}
			printItemsTable(rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&listKind, "kind", "k", "", "Item kind to list (launches, tasks, notebooks)")
	cmd.Flags().BoolVarP(&listAll, "all", "a", false, "List items from all workspaces")
	cmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Filter item names by a case-insensitive substring")

	return cmd
}

// normalizeKind maps the accepted kind spellings onto the canonical three,
// with "" meaning all kinds.
func normalizeKind(kind string) (string, error) {
	switch kind {
	case "":
		return "", nil
	case "launch", "launches":
		return "launch", nil
	case "task", "tasks":
		return "task", nil
	case "notebook", "notebooks":
		return "notebook", nil
	default:
		return "", fmt.Errorf("unknown kind %q (expected launches, tasks, or notebooks)", kind)
	}
}

func collectRows(aggregates []*aggregate.WorkspaceAggregate, kind, filter string, isRunning func(string) bool) []listRow {
	matches := func(name string) bool {
		if filter == "" {
			return true
		}
		return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
	}

	var rows []listRow
	for _, wa := range aggregates {
		if kind == "" || kind == "launch" {
			for _, it := range wa.Launches.All() {
				if !matches(it.Name) {
					continue
				}
				rows = append(rows, listRow{
					ID:        it.ID,
					Kind:      "launch",
					Name:      it.Name,
					Category:  it.Category,
					Workspace: wa.Label,
					Source:    it.Source.Label,
					Running:   isRunning(it.ID),
				})
			}
		}
		if kind == "" || kind == "task" {
			for _, it := range wa.Tasks.All() {
				if !matches(it.Label) {
					continue
				}
				rows = append(rows, listRow{
					ID:        it.ID,
					Kind:      "task",
					Name:      it.Label,
					Category:  it.Category,
					Workspace: wa.Label,
					Source:    it.Source.Label,
					Running:   isRunning(it.ID),
				})
			}
		}
		if kind == "" || kind == "notebook" {
			for _, it := range wa.Notebooks {
				if !matches(it.Name) {
					continue
				}
				rows = append(rows, listRow{
					ID:        it.ID,
					Kind:      "notebook",
					Name:      it.Name,
					Workspace: wa.Label,
					Source:    it.URI,
				})
			}
		}
	}
	return rows
}

func printItemsTable(rows []listRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	// Print header
	fmt.Fprintln(w, "KIND\tNAME\tCATEGORY\tWORKSPACE\tSOURCE")
	fmt.Fprintln(w, "--------\t-----------------------------\t------------\t------------\t------------")

	for _, row := range rows {
		name := truncateString(row.Name, 29)
		if row.Running {
			name += " ●"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Kind, name, row.Category, row.Workspace, truncateString(row.Source, 40))
	}

	w.Flush()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
