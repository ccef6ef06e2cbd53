// Package service wires the catalog together: it owns the workspace
// registry, the state store, the loader, the aggregate registry, the
// run-state tracker, and the dispatcher, and exposes the operations the
// commands and the TUI are built from.
package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-runbook/pkg/aggregate"
	"github.com/mattsolo1/grove-runbook/pkg/category"
	"github.com/mattsolo1/grove-runbook/pkg/runner"
	"github.com/mattsolo1/grove-runbook/pkg/runstate"
	"github.com/mattsolo1/grove-runbook/pkg/sources"
	"github.com/mattsolo1/grove-runbook/pkg/store"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// Service is the core catalog service
type Service struct {
	Registry *workspace.Registry
	Store    *store.Store
	Tracker  *runstate.Tracker
	Config   *Config

	loader     *sources.Loader
	matcher    *category.Matcher
	aggregates *aggregate.Registry
	runner     *runner.ExecRunner
	log        *logrus.Logger
}

// Config holds service configuration
type Config struct {
	DataDir string
	Sources sources.Config
	Rules   []category.Rule
	Labels  map[string]string
}

// New creates a new catalog service
func New(config *Config, log *logrus.Logger) (*Service, error) {
	if log == nil {
		log = logrus.New()
	}

	registry, err := workspace.NewRegistry(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	st, err := store.NewStore(config.DataDir)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	tracker := runstate.NewTracker()
	run := runner.NewExecRunner(runner.Handlers{
		OnStarted: func(id string) { tracker.SetRunning(id, true) },
		OnStopped: func(id string) { tracker.SetRunning(id, false) },
	}, log)

	return &Service{
		Registry:   registry,
		Store:      st,
		Tracker:    tracker,
		Config:     config,
		loader:     sources.NewLoader(registry, config.Sources, log),
		matcher:    category.NewMatcher(config.Rules, config.Labels),
		aggregates: aggregate.NewRegistry(),
		runner:     run,
		log:        log,
	}, nil
}

// Refresh reloads every source, re-categorizes, and swaps a newly built
// snapshot into the aggregate registry. Concurrent refreshes race benignly;
// the last completed swap wins.
func (s *Service) Refresh() (*aggregate.Snapshot, error) {
	res, err := s.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	for _, it := range res.Launches {
		it.Category = s.matcher.Categorize(it.Name)
	}
	for _, it := range res.Tasks {
		it.Category = s.matcher.Categorize(it.Label)
	}

	snap := aggregate.Build(res)
	s.aggregates.Replace(snap)
	return snap, nil
}

// Snapshot returns the last built snapshot without reloading.
func (s *Service) Snapshot() *aggregate.Snapshot {
	return s.aggregates.Current()
}

// WorkspaceContext holds the resolved workspace scope for an operation.
type WorkspaceContext struct {
	Workspace *workspace.Workspace
}

// Key returns the grouping key of the context workspace.
func (c *WorkspaceContext) Key() string {
	return c.Workspace.Key()
}

// GetWorkspaceContext resolves the workspace scope. An empty override
// detects from the current directory; "user" forces the user scope; any
// other value names a registered workspace or a path inside one.
func (s *Service) GetWorkspaceContext(override string) (*WorkspaceContext, error) {
	if override == "user" {
		return &WorkspaceContext{Workspace: workspace.User()}, nil
	}

	if override == "" {
		ws, err := s.Registry.DetectCurrent()
		if err != nil {
			return nil, fmt.Errorf("detect workspace: %w", err)
		}
		return &WorkspaceContext{Workspace: ws}, nil
	}

	if ws, err := s.Registry.Get(override); err == nil {
		return &WorkspaceContext{Workspace: ws}, nil
	}
	if ws, err := s.Registry.FindByPath(override); err == nil && ws != nil {
		return &WorkspaceContext{Workspace: ws}, nil
	}
	return nil, fmt.Errorf("workspace not found: %s", override)
}

// Close closes the service
func (s *Service) Close() error {
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			return err
		}
	}
	if s.Registry != nil {
		return s.Registry.Close()
	}
	return nil
}
