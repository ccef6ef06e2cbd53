package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

func NewWorkspaceCmd(svc **service.Service, workspaceOverride *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Short:   "Manage registered workspaces",
		Aliases: []string{"ws"},
		Long:    `Register, list, and remove the workspace folders the catalog reads from.`,
	}

	cmd.AddCommand(
		newWorkspaceListCmd(svc),
		newWorkspaceAddCmd(svc),
		newWorkspaceRemoveCmd(svc),
		newWorkspaceCurrentCmd(svc, workspaceOverride),
	)

	return cmd
}

func newWorkspaceListCmd(svc **service.Service) *cobra.Command {
	var listJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered workspaces",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			workspaces, err := s.Registry.List()
			if err != nil {
				return fmt.Errorf("list workspaces: %w", err)
			}

			if len(workspaces) == 0 {
				if listJSON {
					fmt.Println("[]")
				} else {
					fmt.Println("No workspaces registered. Run 'rb workspace add' to register one.")
				}
				return nil
			}

			if listJSON {
				return outputJSON(workspaces)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tPATH\tLAST USED")
			fmt.Fprintln(w, "--------------------\t----------\t-----------------------------\t----------")
			for _, ws := range workspaces {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ws.Name, ws.Type, ws.Path, ws.LastUsed.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	return cmd
}

func newWorkspaceAddCmd(svc **service.Service) *cobra.Command {
	var addName string

	cmd := &cobra.Command{
		Use:   "add [path]",
		Short: "Register a workspace folder",
		Long: `Register a folder so its .vscode documents feed the catalog. The path
defaults to the current directory; the name defaults to the folder name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("stat %s: %w", abs, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("not a directory: %s", abs)
			}

			name := addName
			if name == "" {
				name = filepath.Base(abs)
			}

			wsType := workspace.TypeDirectory
			if gitInfo, err := os.Stat(filepath.Join(abs, ".git")); err == nil && gitInfo.IsDir() {
				wsType = workspace.TypeGitRepo
			}

			ws := &workspace.Workspace{
				Name: name,
				Path: abs,
				Type: wsType,
			}
			if err := s.Registry.Add(ws); err != nil {
				return fmt.Errorf("register workspace: %w", err)
			}

			fmt.Printf("Registered workspace %s (%s)\n", ws.Name, ws.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addName, "name", "n", "", "Workspace name (defaults to the folder name)")

	return cmd
}

func newWorkspaceRemoveCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <name>",
		Short:   "Remove a registered workspace",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if _, err := s.Registry.Get(args[0]); err != nil {
				return err
			}
			if err := s.Registry.Remove(args[0]); err != nil {
				return fmt.Errorf("remove workspace: %w", err)
			}

			fmt.Printf("Removed workspace %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func newWorkspaceCurrentCmd(svc **service.Service, workspaceOverride *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the workspace the current directory resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			ctx, err := s.GetWorkspaceContext(*workspaceOverride)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROPERTY\tVALUE")
			fmt.Fprintln(w, "--------\t-----")
			fmt.Fprintf(w, "Name\t%s\n", ctx.Workspace.Name)
			fmt.Fprintf(w, "Type\t%s\n", ctx.Workspace.Type)
			fmt.Fprintf(w, "Path\t%s\n", ctx.Workspace.Path)
			return w.Flush()
		},
	}

	return cmd
}
