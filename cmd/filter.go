package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/service"
)

func NewFilterCmd(svc **service.Service) *cobra.Command {
	var filterClear bool

	cmd := &cobra.Command{
		Use:   "filter [text]",
		Short: "Show or set the persisted catalog filter",
		Long: `The filter narrows tree and browser output to items whose name contains
the text, case-insensitively. It persists across invocations; the browser's
/ key edits the same value.

Examples:
  rb filter            # Show the current filter
  rb filter web        # Only items matching "web"
  rb filter --clear    # Show everything again`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if filterClear {
				if err := s.Store.SetFilter(""); err != nil {
					return fmt.Errorf("clear filter: %w", err)
				}
				fmt.Println("Filter cleared")
				return nil
			}

			if len(args) == 0 {
				current, err := s.Store.Filter()
				if err != nil {
					return fmt.Errorf("read filter: %w", err)
				}
				if current == "" {
					fmt.Println("No filter set")
				} else {
					fmt.Println(current)
				}
				return nil
			}

			if err := s.Store.SetFilter(args[0]); err != nil {
				return fmt.Errorf("set filter: %w", err)
			}
			fmt.Printf("Filter set to %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&filterClear, "clear", false, "Remove the persisted filter")

	return cmd
}
