package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/service"
)

func NewDebugCmd(svc **service.Service, workspaceOverride *string) *cobra.Command {
	var (
		debugLast bool
		debugWait bool
	)

	cmd := &cobra.Command{
		Use:   "debug [name]",
		Short: "Start a launch configuration by name",
		Long: `Start a launch configuration. The name resolves in the current workspace
first, then falls back to a unique match anywhere in the catalog.

Examples:
  rb debug "Launch Server"   # Start the named configuration
  rb debug --last            # Re-start the previous one
  rb debug api --wait        # Start and block until it exits`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if _, err := s.Refresh(); err != nil {
				return err
			}

			item, err := resolveLaunch(s, workspaceOverride, args, debugLast)
			if err != nil {
				return err
			}

			ex, err := s.RunLaunch(context.Background(), item)
			if err != nil {
				return fmt.Errorf("start launch configuration: %w", err)
			}

			if debugWait {
				fmt.Printf("Running %s...\n", item.Name)
				if err := ex.Wait(); err != nil {
					return fmt.Errorf("%s: %w", item.Name, err)
				}
				fmt.Printf("%s finished\n", item.Name)
				return nil
			}

			fmt.Printf("Started %s (%s)\n", item.Name, ex.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugLast, "last", false, "Re-start the most recently started launch configuration")
	cmd.Flags().BoolVar(&debugWait, "wait", false, "Block until the process exits")

	return cmd
}

func resolveLaunch(s *service.Service, workspaceOverride *string, args []string, last bool) (*models.LaunchItem, error) {
	if last {
		id, err := s.Store.LastDebug()
		if err != nil {
			return nil, fmt.Errorf("read last debug: %w", err)
		}
		if id == "" {
			return nil, fmt.Errorf("no launch configuration has been started yet")
		}
		item, ok := s.FindLaunchByID(id)
		if !ok {
			return nil, fmt.Errorf("last launch configuration no longer exists: %s", id)
		}
		return item, nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("launch configuration name required (or --last)")
	}

	wsCtx, err := s.GetWorkspaceContext(*workspaceOverride)
	if err != nil {
		return nil, fmt.Errorf("get workspace context: %w", err)
	}
	return s.FindLaunch(wsCtx, args[0])
}
