package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-runbook/pkg/aggregate"
	"github.com/mattsolo1/grove-runbook/pkg/runstate"
	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/tree"
)

type snapshotLoadedMsg struct {
	snapshot *aggregate.Snapshot
	err      error
}

type filterLoadedMsg struct {
	filter string
}

type filterSavedMsg struct {
	err error
}

type runEventMsg struct {
	event runstate.Event
}

type runDoneMsg struct {
	label string
	err   error
}

type stopDoneMsg struct {
	err error
}

func refreshCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		snap, err := svc.Refresh()
		return snapshotLoadedMsg{snapshot: snap, err: err}
	}
}

func loadFilterCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		filter, err := svc.Store.Filter()
		if err != nil {
			return filterLoadedMsg{}
		}
		return filterLoadedMsg{filter: filter}
	}
}

func persistFilterCmd(svc *service.Service, filter string) tea.Cmd {
	return func() tea.Msg {
		return filterSavedMsg{err: svc.Store.SetFilter(filter)}
	}
}

// waitRunEventCmd delivers one tracker event and is re-issued by Update
// after each delivery. A closed subscription ends the loop.
func waitRunEventCmd(ch chan runstate.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return runEventMsg{event: ev}
	}
}

func runItemCmd(svc *service.Service, node *tree.Node) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch node.Kind {
		case tree.KindTask:
			_, err = svc.RunTask(context.Background(), node.Task)
		case tree.KindLaunch:
			_, err = svc.RunLaunch(context.Background(), node.Launch)
		}
		return runDoneMsg{label: node.Label, err: err}
	}
}

func stopItemCmd(svc *service.Service, id string) tea.Cmd {
	return func() tea.Msg {
		return stopDoneMsg{err: svc.Stop(id)}
	}
}
