package service

import (
	"context"
	"fmt"

	"github.com/mattsolo1/grove-runbook/pkg/aggregate"
	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/runner"
)

// FindTask resolves a task by label: the context workspace first, then a
// unique match across the rest of the snapshot.
func (s *Service) FindTask(ctx *WorkspaceContext, label string) (*models.TaskItem, error) {
	snap := s.aggregates.Current()

	if wa, ok := snap.Get(ctx.Key()); ok {
		for _, it := range wa.Tasks.All() {
			if it.Label == label {
				return it, nil
			}
		}
	}

	var matches []*models.TaskItem
	for _, wa := range snap.Workspaces {
		if wa.Key == ctx.Key() {
			continue
		}
		for _, it := range wa.Tasks.All() {
			if it.Label == label {
				matches = append(matches, it)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task not found: %s", label)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("task %q matches %d workspaces, use --workspace to pick one", label, len(matches))
	}
}

// FindLaunch resolves a launch configuration by name: the context workspace
// first, then a unique match across the rest of the snapshot.
func (s *Service) FindLaunch(ctx *WorkspaceContext, name string) (*models.LaunchItem, error) {
	snap := s.aggregates.Current()

	if wa, ok := snap.Get(ctx.Key()); ok {
		for _, it := range wa.Launches.All() {
			if it.Name == name {
				return it, nil
			}
		}
	}

	var matches []*models.LaunchItem
	for _, wa := range snap.Workspaces {
		if wa.Key == ctx.Key() {
			continue
		}
		for _, it := range wa.Launches.All() {
			if it.Name == name {
				matches = append(matches, it)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("launch configuration not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("launch configuration %q matches %d workspaces, use --workspace to pick one", name, len(matches))
	}
}

// FindTaskByID looks a task up by its id across the snapshot.
func (s *Service) FindTaskByID(id string) (*models.TaskItem, bool) {
	return findTaskByID(s.aggregates.Current(), id)
}

// FindLaunchByID looks a launch configuration up by its id across the
// snapshot.
func (s *Service) FindLaunchByID(id string) (*models.LaunchItem, bool) {
	return findLaunchByID(s.aggregates.Current(), id)
}

func findTaskByID(snap *aggregate.Snapshot, id string) (*models.TaskItem, bool) {
	for _, wa := range snap.Workspaces {
		for _, it := range wa.Tasks.All() {
			if it.ID == id {
				return it, true
			}
		}
	}
	return nil, false
}

func findLaunchByID(snap *aggregate.Snapshot, id string) (*models.LaunchItem, bool) {
	for _, wa := range snap.Workspaces {
		for _, it := range wa.Launches.All() {
			if it.ID == id {
				return it, true
			}
		}
	}
	return nil, false
}

// RunTask dispatches a task and records it in the last-run slot.
func (s *Service) RunTask(ctx context.Context, item *models.TaskItem) (*runner.Execution, error) {
	ex, err := s.runner.RunTask(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetLastRun(item.ID); err != nil {
		s.log.Warnf("service: record last run: %v", err)
	}
	return ex, nil
}

// RunLaunch dispatches a launch configuration and records it in the
// last-debug slot.
func (s *Service) RunLaunch(ctx context.Context, item *models.LaunchItem) (*runner.Execution, error) {
	ex, err := s.runner.RunLaunch(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetLastDebug(item.ID); err != nil {
		s.log.Warnf("service: record last debug: %v", err)
	}
	return ex, nil
}

// Stop stops a running item addressed by id or display name.
func (s *Service) Stop(idOrName string) error {
	if s.Tracker.IsRunning(idOrName) {
		return s.runner.Stop(idOrName)
	}

	var ids []string
	for _, ri := range s.Running() {
		if ri.Label == idOrName {
			ids = append(ids, ri.ID)
		}
	}

	switch len(ids) {
	case 0:
		return fmt.Errorf("nothing running matches %q", idOrName)
	case 1:
		return s.runner.Stop(ids[0])
	default:
		return fmt.Errorf("%q matches %d running items, use the id", idOrName, len(ids))
	}
}

// StopAll kills every process the service started.
func (s *Service) StopAll() {
	s.runner.StopAll()
}

// RunningItem is one tracker entry resolved against the snapshot. An id the
// snapshot no longer knows keeps the id as its label.
type RunningItem struct {
	ID        string
	Label     string
	Kind      string
	Workspace string
}

// Running lists the currently running items in id order.
func (s *Service) Running() []RunningItem {
	snap := s.aggregates.Current()

	var out []RunningItem
	for _, id := range s.Tracker.RunningIDs() {
		ri := RunningItem{ID: id, Label: id}
		if it, ok := findTaskByID(snap, id); ok {
			ri.Label = it.Label
			ri.Kind = "task"
			ri.Workspace = it.Workspace
		} else if it, ok := findLaunchByID(snap, id); ok {
			ri.Label = it.Name
			ri.Kind = "launch"
			ri.Workspace = it.Workspace
		}
		out = append(out, ri)
	}
	return out
}
