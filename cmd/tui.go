package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-runbook/internal/tui/browser"
	"github.com/mattsolo1/grove-runbook/pkg/service"
)

// NewTuiCmd creates the `rb tui` command.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the catalog interactively",
		Long: `Launch the interactive catalog browser. It shows the same tree as
'rb tree' with vim-style navigation, folding, live run markers, and the
persisted filter editable with /.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			s := *svc

			model := browser.New(s, viper.GetString("editor"))
			p := tea.NewProgram(model, tea.WithAltScreen())

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}

			// Anything still running dies with the browser session.
			s.StopAll()
			return nil
		},
	}
	return cmd
}
