package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/migration"
	"github.com/mattsolo1/grove-runbook/pkg/service"
)

func NewMigrateCmd(svc **service.Service) *cobra.Command {
	var (
		migrateDryRun  bool
		migrateVerbose bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <state-file>",
		Short: "Import state from a legacy host state file",
		Long: `Import the filter, last-executed slot, and workspace list left behind by
the legacy host. The legacy file is a JSON export of its saved state.

Examples:
  rb migrate state.json            # Import everything
  rb migrate state.json --dry-run  # Preview without writing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			options := migration.Options{
				DryRun:  migrateDryRun,
				Verbose: migrateVerbose,
			}

			report, err := migration.Migrate(args[0], s.Store, s.Registry, options, os.Stdout)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			printImportReport(report, migrateDryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Show what would be imported without writing")
	cmd.Flags().BoolVar(&migrateVerbose, "verbose", false, "Show detailed output")

	return cmd
}

func printImportReport(report *migration.Report, dryRun bool) {
	fmt.Printf("\nImport Report\n")
	fmt.Printf("=============\n")
	fmt.Printf("Filter imported:     %s\n", yesNo(report.FilterImported))
	fmt.Printf("Last run set:        %s\n", yesNo(report.LastRunSet))
	fmt.Printf("Last debug set:      %s\n", yesNo(report.LastDebugSet))
	fmt.Printf("Workspaces added:    %d\n", report.WorkspacesAdded)
	fmt.Printf("Workspaces skipped:  %d\n", report.WorkspacesSkipped)
	fmt.Printf("Duration:            %s\n", report.Duration())

	if len(report.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	if dryRun {
		fmt.Println("\nDry run complete. Nothing was written.")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
