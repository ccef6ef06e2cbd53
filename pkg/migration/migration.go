// Package migration imports state left behind by the legacy host.
//
// The legacy host persisted a single JSON memento holding the tree
// filter, one lastExecuted slot shared by task runs and debug
// sessions, and the folders it knew about. Importing splits the shared
// slot into both store keys and registers the folders.
package migration

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattsolo1/grove-runbook/pkg/store"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// Memento mirrors the legacy host's state file.
type Memento struct {
	Filter       string             `json:"filter"`
	LastExecuted string             `json:"lastExecuted"`
	Workspaces   []MementoWorkspace `json:"workspaces"`
}

// MementoWorkspace is a folder entry from the legacy state file.
type MementoWorkspace struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ReadMemento parses a legacy state file.
func ReadMemento(path string) (*Memento, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var m Memento
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	return &m, nil
}

// Migrate imports the legacy state file at path into the store and the
// registry. With DryRun set nothing is written and every change is
// reported as a "Would ..." line on output. The returned report counts
// dry-run actions the same as applied ones.
func Migrate(path string, st *store.Store, registry *workspace.Registry, options Options, output io.Writer) (*Report, error) {
	if output == nil {
		output = os.Stdout
	}

	report := NewReport()
	defer report.Complete()

	memento, err := ReadMemento(path)
	if err != nil {
		return report, err
	}

	importFilter(memento, st, options, output, report)
	importLastExecuted(memento, st, options, output, report)
	importWorkspaces(memento, registry, options, output, report)

	if len(report.Errors) > 0 {
		return report, fmt.Errorf("import finished with %d errors", len(report.Errors))
	}

	return report, nil
}

func importFilter(m *Memento, st *store.Store, options Options, output io.Writer, report *Report) {
	if m.Filter == "" {
		return
	}

	if options.DryRun {
		fmt.Fprintf(output, "Would set filter: %q\n", m.Filter)
		report.FilterImported = true
		return
	}

	if err := st.SetFilter(m.Filter); err != nil {
		report.AddError("filter", err)
		return
	}

	report.FilterImported = true
	if options.Verbose {
		fmt.Fprintf(output, "Set filter: %q\n", m.Filter)
	}
}

func importLastExecuted(m *Memento, st *store.Store, options Options, output io.Writer, report *Report) {
	if m.LastExecuted == "" {
		return
	}

	// The legacy host kept one slot for runs and debug sessions alike,
	// so it seeds both keys.
	if options.DryRun {
		fmt.Fprintf(output, "Would set last run and last debug: %s\n", m.LastExecuted)
		report.LastRunSet = true
		report.LastDebugSet = true
		return
	}

	if err := st.SetLastRun(m.LastExecuted); err != nil {
		report.AddError("last run", err)
	} else {
		report.LastRunSet = true
	}

	if err := st.SetLastDebug(m.LastExecuted); err != nil {
		report.AddError("last debug", err)
	} else {
		report.LastDebugSet = true
	}

	if options.Verbose && report.LastRunSet && report.LastDebugSet {
		fmt.Fprintf(output, "Set last run and last debug: %s\n", m.LastExecuted)
	}
}

func importWorkspaces(m *Memento, registry *workspace.Registry, options Options, output io.Writer, report *Report) {
	for _, entry := range m.Workspaces {
		if entry.Path == "" {
			report.WorkspacesSkipped++
			continue
		}

		name := entry.Name
		if name == "" {
			name = filepath.Base(entry.Path)
		}

		if _, err := os.Stat(entry.Path); err != nil {
			fmt.Fprintf(output, "Skipping missing folder: %s\n", entry.Path)
			report.WorkspacesSkipped++
			continue
		}

		if _, err := registry.Get(name); err == nil {
			if options.Verbose {
				fmt.Fprintf(output, "Already registered: %s\n", name)
			}
			report.WorkspacesSkipped++
			continue
		}

		if options.DryRun {
			fmt.Fprintf(output, "Would register workspace: %s (%s)\n", name, entry.Path)
			report.WorkspacesAdded++
			continue
		}

		w := &workspace.Workspace{
			Name: name,
			Path: entry.Path,
			Type: workspaceType(entry.Path),
		}
		if err := registry.Add(w); err != nil {
			report.AddError(name, err)
			continue
		}

		report.WorkspacesAdded++
		if options.Verbose {
			fmt.Fprintf(output, "Registered workspace: %s (%s)\n", name, entry.Path)
		}
	}
}

func workspaceType(path string) workspace.Type {
	if info, err := os.Stat(filepath.Join(path, ".git")); err == nil && info.IsDir() {
		return workspace.TypeGitRepo
	}
	return workspace.TypeDirectory
}
