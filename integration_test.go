//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIntegration(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=1 to run.")
	}

	tmpDir := t.TempDir()

	// Test 1: Create service
	t.Run("CreateService", func(t *testing.T) {
		config := &service.Config{
			DataDir: filepath.Join(tmpDir, "data"),
		}

		svc, err := service.New(config, nil)
		if err != nil {
			t.Fatalf("Failed to create service: %v", err)
		}
		defer svc.Close()

		if svc.Config == nil {
			t.Error("Service config is nil")
		}
	})

	// Test 2: Registry operations
	t.Run("RegistryOperations", func(t *testing.T) {
		reg, err := workspace.NewRegistry(filepath.Join(tmpDir, "registry"))
		if err != nil {
			t.Fatalf("Failed to create registry: %v", err)
		}
		defer reg.Close()

		ws := &workspace.Workspace{
			Name: "test",
			Path: filepath.Join(tmpDir, "workspace"),
			Type: workspace.TypeDirectory,
		}

		if err := reg.Add(ws); err != nil {
			t.Fatalf("Failed to add workspace: %v", err)
		}

		retrieved, err := reg.Get("test")
		if err != nil {
			t.Fatalf("Failed to get workspace: %v", err)
		}

		if retrieved.Name != "test" {
			t.Errorf("Expected workspace name 'test', got %s", retrieved.Name)
		}
	})
}

func TestEndToEnd(t *testing.T) {
	if os.Getenv("RUN_E2E_TESTS") == "" {
		t.Skip("Skipping E2E test. Set RUN_E2E_TESTS=1 to run.")
	}

	tmpDir := t.TempDir()

	config := &service.Config{
		DataDir: filepath.Join(tmpDir, "data"),
	}

	svc, err := service.New(config, nil)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	// Register a workspace with real documents
	wsPath := filepath.Join(tmpDir, "my-project")
	marker := filepath.Join(wsPath, "ran.txt")
	writeDoc(t, filepath.Join(wsPath, ".vscode", "tasks.json"), `{
		// build tooling
		"version": "2.0.0",
		"tasks": [
			{"label": "touch", "type": "shell", "command": "touch ran.txt"}
		]
	}`)
	writeDoc(t, filepath.Join(wsPath, ".vscode", "launch.json"), `{
		"version": "0.2.0",
		"configurations": [
			{"name": "Sleep", "program": "/bin/sleep", "args": ["30"]}
		]
	}`)

	ws := &workspace.Workspace{
		Name: "my-project",
		Path: wsPath,
		Type: workspace.TypeDirectory,
	}
	if err := svc.Registry.Add(ws); err != nil {
		t.Fatalf("Failed to register workspace: %v", err)
	}

	// Load the catalog
	snap, err := svc.Refresh()
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	wa, ok := snap.Get(ws.Key())
	if !ok {
		t.Fatalf("Workspace missing from snapshot")
	}
	if len(wa.Tasks.All()) != 1 || len(wa.Launches.All()) != 1 {
		t.Fatalf("Unexpected item counts: %d tasks, %d launches", len(wa.Tasks.All()), len(wa.Launches.All()))
	}

	// Run the task to completion and check its side effect
	ctx, err := svc.GetWorkspaceContext(ws.Path)
	if err != nil {
		t.Fatalf("Get workspace context: %v", err)
	}
	task, err := svc.FindTask(ctx, "touch")
	if err != nil {
		t.Fatalf("Find task: %v", err)
	}
	ex, err := svc.RunTask(context.Background(), task)
	if err != nil {
		t.Fatalf("Run task: %v", err)
	}
	if err := ex.Wait(); err != nil {
		t.Fatalf("Task failed: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("Task did not create its marker file: %v", err)
	}

	lastRun, err := svc.Store.LastRun()
	if err != nil || lastRun != task.ID {
		t.Errorf("Last run slot = %q, %v; want %q", lastRun, err, task.ID)
	}

	// Start the launch configuration and stop it again
	launch, err := svc.FindLaunch(ctx, "Sleep")
	if err != nil {
		t.Fatalf("Find launch: %v", err)
	}
	lex, err := svc.RunLaunch(context.Background(), launch)
	if err != nil {
		t.Fatalf("Run launch: %v", err)
	}
	if !svc.Tracker.IsRunning(launch.ID) {
		t.Errorf("Launch not tracked as running")
	}
	if err := svc.Stop(launch.ID); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-lex.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("Launch did not stop")
	}
	if svc.Tracker.IsRunning(launch.ID) {
		t.Errorf("Launch still tracked after stop")
	}

	t.Logf("Successfully completed end-to-end test")
}
