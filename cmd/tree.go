package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-runbook/internal/watch"
	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/tree"
)

func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		treeFilter  string
		treeSources bool
		treeWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the catalog as a tree",
		Long: `Render every workspace's launch configurations, tasks, and notebooks as
an indented tree. The persisted filter applies unless --filter overrides it.

Examples:
  rb tree              # Render once
  rb tree --sources    # Include the provenance rows
  rb tree --watch      # Re-render when catalog documents change`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			filter := treeFilter
			if !cmd.Flags().Changed("filter") {
				stored, err := s.Store.Filter()
				if err != nil {
					return fmt.Errorf("read filter: %w", err)
				}
				filter = stored
			}

			render := func() error {
				snap, err := s.Refresh()
				if err != nil {
					return err
				}
				nodes := tree.Build(snap, tree.Options{
					Filter:      filter,
					ShowSources: treeSources,
					IsRunning:   s.Tracker.IsRunning,
				})
				if len(nodes) == 0 {
					if filter != "" {
						fmt.Printf("No items match %q\n", filter)
					} else {
						fmt.Println("No items found. Run 'rb workspace add' to register a workspace.")
					}
					return nil
				}
				tree.Render(os.Stdout, nodes)
				return nil
			}

			if !treeWatch {
				return render()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			watcher, err := watch.New(0, func() {
				fmt.Print("\033[H\033[2J")
				if err := render(); err != nil {
					fmt.Fprintf(os.Stderr, "refresh: %v\n", err)
				}
			}, nil)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer watcher.Close()

			for _, path := range watchPaths(s) {
				if err := watcher.Add(path); err != nil {
					return fmt.Errorf("watch %s: %w", path, err)
				}
			}
			watcher.Start(ctx)

			fmt.Print("\033[H\033[2J")
			if err := render(); err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&treeFilter, "filter", "f", "", "Filter item names by a case-insensitive substring")
	cmd.Flags().BoolVarP(&treeSources, "sources", "s", false, "Show the provenance row under each category")
	cmd.Flags().BoolVarP(&treeWatch, "watch", "w", false, "Keep running and re-render on document changes")

	return cmd
}

// watchPaths collects every location a catalog document can live: each
// workspace's .vscode directory, the user settings paths, and the config
// file itself.
func watchPaths(s *service.Service) []string {
	var paths []string

	if wss, err := s.Registry.List(); err == nil {
		for _, ws := range wss {
			paths = append(paths, filepath.Join(ws.Path, ".vscode"))
		}
	}

	paths = append(paths, s.Config.Sources.SettingsPaths...)

	if cfg := viper.ConfigFileUsed(); cfg != "" {
		paths = append(paths, cfg)
	}

	return paths
}
