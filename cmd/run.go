package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/service"
)

func NewRunCmd(svc **service.Service, workspaceOverride *string) *cobra.Command {
	var (
		runLast bool
		runWait bool
	)

	cmd := &cobra.Command{
		Use:   "run [label]",
		Short: "Run a task by label",
		Long: `Run a task. The label resolves in the current workspace first, then
falls back to a unique match anywhere in the catalog.

Examples:
  rb run build         # Run the "build" task
  rb run --last        # Re-run the previous task
  rb run test --wait   # Run and block until it exits`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if _, err := s.Refresh(); err != nil {
				return err
			}

			item, err := resolveTask(s, workspaceOverride, args, runLast)
			if err != nil {
				return err
			}

			ex, err := s.RunTask(context.Background(), item)
			if err != nil {
				return fmt.Errorf("run task: %w", err)
			}

			if runWait {
				fmt.Printf("Running %s...\n", item.Label)
				if err := ex.Wait(); err != nil {
					return fmt.Errorf("%s: %w", item.Label, err)
				}
				fmt.Printf("%s finished\n", item.Label)
				return nil
			}

			fmt.Printf("Started %s (%s)\n", item.Label, ex.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&runLast, "last", false, "Re-run the most recently run task")
	cmd.Flags().BoolVar(&runWait, "wait", false, "Block until the task exits")

	return cmd
}

func resolveTask(s *service.Service, workspaceOverride *string, args []string, last bool) (*models.TaskItem, error) {
	if last {
		id, err := s.Store.LastRun()
		if err != nil {
			return nil, fmt.Errorf("read last run: %w", err)
		}
		if id == "" {
			return nil, fmt.Errorf("no task has been run yet")
		}
		item, ok := s.FindTaskByID(id)
		if !ok {
			return nil, fmt.Errorf("last task no longer exists: %s", id)
		}
		return item, nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("task label required (or --last)")
	}

	wsCtx, err := s.GetWorkspaceContext(*workspaceOverride)
	if err != nil {
		return nil, fmt.Errorf("get workspace context: %w", err)
	}
	return s.FindTask(wsCtx, args[0])
}
