package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/cmd"
	"github.com/mattsolo1/grove-runbook/cmd/config"
	"github.com/mattsolo1/grove-runbook/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := &cobra.Command{
		Use:   "rb",
		Short: "A catalog of launch configurations, tasks, and notebooks",
		Long: `rb reads the .vscode launch and task documents of your registered
workspaces, your user settings, and your own config, and turns them into
one browsable, runnable catalog.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// This runs once before any subcommand
		config.InitConfig()

		var err error
		svc, err = config.InitService()
		if err != nil {
			return err
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if svc != nil {
			return svc.Close()
		}
		return nil
	}

	config.AddGlobalFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewListCmd(&svc, &config.WorkspaceOverride))
	rootCmd.AddCommand(cmd.NewTreeCmd(&svc))
	rootCmd.AddCommand(cmd.NewRunCmd(&svc, &config.WorkspaceOverride))
	rootCmd.AddCommand(cmd.NewDebugCmd(&svc, &config.WorkspaceOverride))
	rootCmd.AddCommand(cmd.NewPsCmd(&svc))
	rootCmd.AddCommand(cmd.NewStopCmd(&svc))
	rootCmd.AddCommand(cmd.NewFilterCmd(&svc))
	rootCmd.AddCommand(cmd.NewWorkspaceCmd(&svc, &config.WorkspaceOverride))
	rootCmd.AddCommand(cmd.NewDoctorCmd(&svc))
	rootCmd.AddCommand(cmd.NewMigrateCmd(&svc))
	rootCmd.AddCommand(cmd.NewTuiCmd(&svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
