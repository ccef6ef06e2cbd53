package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/service"
)

func NewPsCmd(svc **service.Service) *cobra.Command {
	var psJSON bool

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List running items",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if _, err := s.Refresh(); err != nil {
				return err
			}

			running := s.Running()
			if len(running) == 0 {
				if psJSON {
					fmt.Println("[]")
				} else {
					fmt.Println("Nothing running")
				}
				return nil
			}

			if psJSON {
				return outputJSON(running)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tWORKSPACE")
			fmt.Fprintln(w, "------------------------\t--------------------\t--------\t------------")
			for _, ri := range running {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ri.ID, ri.Label, ri.Kind, ri.Workspace)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().BoolVar(&psJSON, "json", false, "Output in JSON format")

	return cmd
}
