package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/service"
)

func NewStopCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <id|name>",
		Short: "Stop a running item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if _, err := s.Refresh(); err != nil {
				return err
			}

			if err := s.Stop(args[0]); err != nil {
				return err
			}
			fmt.Printf("Stopped %s\n", args[0])
			return nil
		},
	}

	return cmd
}
