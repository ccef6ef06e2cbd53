package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-runbook/pkg/category"
	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/sources"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// newTestService builds a service over a temp data dir whose settings
// lookup never reaches the host machine.
func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("LC_ALL", "en_US.UTF-8")

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc, err := New(&Config{
		DataDir: filepath.Join(t.TempDir(), "data"),
		Sources: sources.Config{
			SettingsPaths: []string{filepath.Join(t.TempDir(), "no-settings.json")},
			InlineTasks:   []models.InlineTaskSpec{{Label: "special", Command: "true"}},
		},
		Rules:  []category.Rule{{Category: "Tests", Pattern: `\btest`}},
		Labels: map[string]string{"special": "Pinned"},
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func addWorkspace(t *testing.T, svc *Service, name, launches, tasks string) *workspace.Workspace {
	t.Helper()
	dir := t.TempDir()
	vscode := filepath.Join(dir, ".vscode")
	require.NoError(t, os.MkdirAll(vscode, 0o755))
	if launches != "" {
		require.NoError(t, os.WriteFile(filepath.Join(vscode, "launch.json"), []byte(launches), 0o644))
	}
	if tasks != "" {
		require.NoError(t, os.WriteFile(filepath.Join(vscode, "tasks.json"), []byte(tasks), 0o644))
	}

	ws := &workspace.Workspace{Name: name, Path: dir, Type: workspace.TypeDirectory}
	require.NoError(t, svc.Registry.Add(ws))
	return ws
}

func TestRefreshAppliesCategories(t *testing.T) {
	svc := newTestService(t)
	ws := addWorkspace(t, svc, "api", "", `{
		"version": "2.0.0",
		"tasks": [
			{"label": "run tests", "command": "true"},
			{"label": "db: migrate", "command": "true"},
			{"label": "plain", "command": "true"}
		]
	}`)

	snap, err := svc.Refresh()
	require.NoError(t, err)

	wa, ok := snap.Get(ws.Key())
	require.True(t, ok)

	var names []string
	for _, cat := range wa.Tasks.Categories {
		names = append(names, cat.Name)
	}
	assert.Equal(t, []string{"db", "Tests"}, names)
	require.Len(t, wa.Tasks.TopLevel, 1)
	assert.Equal(t, "plain", wa.Tasks.TopLevel[0].Label)

	// The inline task comes from the exact label map, under the user scope.
	user, ok := snap.Get(workspace.UserKey)
	require.True(t, ok)
	require.Len(t, user.Tasks.Categories, 1)
	assert.Equal(t, "Pinned", user.Tasks.Categories[0].Name)
}

func TestSnapshotWithoutRefreshIsEmpty(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.Snapshot().Empty())
}

func TestGetWorkspaceContext(t *testing.T) {
	svc := newTestService(t)
	ws := addWorkspace(t, svc, "api", "", `{"tasks": [{"label": "t", "command": "true"}]}`)

	ctx, err := svc.GetWorkspaceContext("api")
	require.NoError(t, err)
	assert.Equal(t, "api", ctx.Workspace.Name)
	assert.Equal(t, ws.Key(), ctx.Key())

	ctx, err = svc.GetWorkspaceContext(ws.Path)
	require.NoError(t, err)
	assert.Equal(t, "api", ctx.Workspace.Name)

	ctx, err = svc.GetWorkspaceContext("user")
	require.NoError(t, err)
	assert.Equal(t, workspace.UserKey, ctx.Key())

	_, err = svc.GetWorkspaceContext("no-such-workspace")
	assert.Error(t, err)
}

func TestFindTaskScoping(t *testing.T) {
	svc := newTestService(t)
	ws1 := addWorkspace(t, svc, "api", "", `{"tasks": [
		{"label": "build", "command": "true"},
		{"label": "only-here", "command": "true"}
	]}`)
	addWorkspace(t, svc, "web", "", `{"tasks": [
		{"label": "build", "command": "true"},
		{"label": "remote-task", "command": "true"}
	]}`)

	_, err := svc.Refresh()
	require.NoError(t, err)

	ctx, err := svc.GetWorkspaceContext("api")
	require.NoError(t, err)

	it, err := svc.FindTask(ctx, "build")
	require.NoError(t, err)
	assert.Equal(t, ws1.Key(), it.Workspace)

	it, err = svc.FindTask(ctx, "remote-task")
	require.NoError(t, err)
	assert.Equal(t, "remote-task", it.Label)

	userCtx := &WorkspaceContext{Workspace: workspace.User()}
	_, err = svc.FindTask(userCtx, "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--workspace")

	_, err = svc.FindTask(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFindLaunch(t *testing.T) {
	svc := newTestService(t)
	addWorkspace(t, svc, "api", `{"configurations": [
		{"name": "Run Server", "program": "true"}
	]}`, "")

	_, err := svc.Refresh()
	require.NoError(t, err)

	ctx, err := svc.GetWorkspaceContext("api")
	require.NoError(t, err)

	it, err := svc.FindLaunch(ctx, "Run Server")
	require.NoError(t, err)
	assert.Equal(t, "Run Server", it.Name)

	_, err = svc.FindLaunch(ctx, "gone")
	assert.Error(t, err)
}

func TestRunTaskRecordsLastRun(t *testing.T) {
	svc := newTestService(t)
	addWorkspace(t, svc, "api", "", `{"tasks": [{"label": "quick", "command": "true"}]}`)

	_, err := svc.Refresh()
	require.NoError(t, err)

	ctx, err := svc.GetWorkspaceContext("api")
	require.NoError(t, err)
	it, err := svc.FindTask(ctx, "quick")
	require.NoError(t, err)

	ex, err := svc.RunTask(context.Background(), it)
	require.NoError(t, err)
	require.NoError(t, ex.Wait())

	last, err := svc.Store.LastRun()
	require.NoError(t, err)
	assert.Equal(t, it.ID, last)

	got, ok := svc.FindTaskByID(last)
	require.True(t, ok)
	assert.Equal(t, "quick", got.Label)

	assert.Eventually(t, func() bool {
		return !svc.Tracker.IsRunning(it.ID)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunLaunchRecordsLastDebug(t *testing.T) {
	svc := newTestService(t)
	addWorkspace(t, svc, "api", `{"configurations": [{"name": "svc", "program": "true"}]}`, "")

	_, err := svc.Refresh()
	require.NoError(t, err)

	ctx, err := svc.GetWorkspaceContext("api")
	require.NoError(t, err)
	it, err := svc.FindLaunch(ctx, "svc")
	require.NoError(t, err)

	ex, err := svc.RunLaunch(context.Background(), it)
	require.NoError(t, err)
	require.NoError(t, ex.Wait())

	last, err := svc.Store.LastDebug()
	require.NoError(t, err)
	assert.Equal(t, it.ID, last)
}

func TestStopByName(t *testing.T) {
	svc := newTestService(t)
	addWorkspace(t, svc, "api", "", `{"tasks": [{"label": "slow", "command": "sleep 5"}]}`)

	_, err := svc.Refresh()
	require.NoError(t, err)

	ctx, err := svc.GetWorkspaceContext("api")
	require.NoError(t, err)
	it, err := svc.FindTask(ctx, "slow")
	require.NoError(t, err)

	ex, err := svc.RunTask(context.Background(), it)
	require.NoError(t, err)
	assert.True(t, svc.Tracker.IsRunning(it.ID))

	running := svc.Running()
	require.Len(t, running, 1)
	assert.Equal(t, "slow", running[0].Label)
	assert.Equal(t, "task", running[0].Kind)

	require.NoError(t, svc.Stop("slow"))
	assert.Error(t, ex.Wait())

	assert.Eventually(t, func() bool {
		return !svc.Tracker.IsRunning(it.ID)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStopNothingRunning(t *testing.T) {
	svc := newTestService(t)
	err := svc.Stop("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing running")
}
