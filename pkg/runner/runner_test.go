package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

type event struct {
	kind string
	id   string
}

func newTestRunner() (*ExecRunner, chan event) {
	events := make(chan event, 16)
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := NewExecRunner(Handlers{
		OnStarted: func(id string) { events <- event{"started", id} },
		OnStopped: func(id string) { events <- event{"stopped", id} },
	}, log)
	return r, events
}

func nextEvent(t *testing.T, events chan event) event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return event{}
	}
}

func waitExit(t *testing.T, ex *Execution) error {
	t.Helper()
	select {
	case <-ex.Done():
		return ex.Wait()
	case <-time.After(5 * time.Second):
		t.Fatal("execution timed out")
		return nil
	}
}

func shellTask(id, label, command string) *models.TaskItem {
	return &models.TaskItem{
		ID:     id,
		Label:  label,
		Config: map[string]interface{}{"command": command},
	}
}

func TestRunTaskShellLifecycle(t *testing.T) {
	r, events := newTestRunner()

	ex, err := r.RunTask(context.Background(), shellTask("t1", "greet", "echo hello"))
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if ex == nil {
		t.Fatal("RunTask returned nil execution")
	}
	if ex.ID != "t1" {
		t.Errorf("execution ID = %q, want %q", ex.ID, "t1")
	}

	ev := nextEvent(t, events)
	if ev.kind != "started" || ev.id != "t1" {
		t.Errorf("first event = %+v, want started t1", ev)
	}

	if err := waitExit(t, ex); err != nil {
		t.Errorf("Wait returned %v, want nil", err)
	}

	ev = nextEvent(t, events)
	if ev.kind != "stopped" || ev.id != "t1" {
		t.Errorf("second event = %+v, want stopped t1", ev)
	}
}

func TestRunTaskProcessType(t *testing.T) {
	r, _ := newTestRunner()

	item := &models.TaskItem{
		ID:    "t2",
		Label: "true",
		Config: map[string]interface{}{
			"type":    "process",
			"command": "true",
		},
	}

	ex, err := r.RunTask(context.Background(), item)
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := waitExit(t, ex); err != nil {
		t.Errorf("Wait returned %v, want nil", err)
	}
}

func TestRunTaskInlineSpec(t *testing.T) {
	r, _ := newTestRunner()

	item := &models.TaskItem{
		ID:    "inline",
		Label: "greet",
		UserTaskSpec: &models.InlineTaskSpec{
			Label:   "greet",
			Command: "true",
		},
	}

	ex, err := r.RunTask(context.Background(), item)
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := waitExit(t, ex); err != nil {
		t.Errorf("Wait returned %v, want nil", err)
	}
}

func TestRunTaskFailingExit(t *testing.T) {
	r, _ := newTestRunner()

	ex, err := r.RunTask(context.Background(), shellTask("fail", "fail", "exit 3"))
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	err = waitExit(t, ex)
	if err == nil {
		t.Fatal("Wait returned nil for failing command")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Wait error = %v, want ExitError", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("ExitCode = %d, want 3", exitErr.ExitCode())
	}
}

func TestRunTaskNoCommand(t *testing.T) {
	r, _ := newTestRunner()

	item := &models.TaskItem{ID: "empty", Label: "empty", Config: map[string]interface{}{}}
	_, err := r.RunTask(context.Background(), item)
	if err == nil {
		t.Fatal("expected error for task without a command")
	}
	if !strings.Contains(err.Error(), "no command") {
		t.Errorf("error = %v, want mention of missing command", err)
	}
}

func TestRunTaskAlreadyRunning(t *testing.T) {
	r, _ := newTestRunner()

	item := shellTask("dup", "sleeper", "sleep 5")
	ex, err := r.RunTask(context.Background(), item)
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	if _, err := r.RunTask(context.Background(), item); err == nil {
		t.Error("expected error for second run of the same item")
	} else if !strings.Contains(err.Error(), "already running") {
		t.Errorf("error = %v, want already running", err)
	}

	if err := r.Stop("dup"); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	waitExit(t, ex)
}

func TestStopKillsProcess(t *testing.T) {
	r, _ := newTestRunner()

	ex, err := r.RunTask(context.Background(), shellTask("long", "sleeper", "sleep 10"))
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	if err := r.Stop("long"); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := waitExit(t, ex); err == nil {
		t.Error("Wait returned nil for killed process")
	}
}

func TestStopUnknownID(t *testing.T) {
	r, _ := newTestRunner()

	if err := r.Stop("nothing-here"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestStopAll(t *testing.T) {
	r, _ := newTestRunner()

	ex1, err := r.RunTask(context.Background(), shellTask("a", "a", "sleep 10"))
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	ex2, err := r.RunTask(context.Background(), shellTask("b", "b", "sleep 10"))
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	r.StopAll()

	if err := waitExit(t, ex1); err == nil {
		t.Error("first Wait returned nil for killed process")
	}
	if err := waitExit(t, ex2); err == nil {
		t.Error("second Wait returned nil for killed process")
	}
}

func TestContextCancelKillsProcess(t *testing.T) {
	r, _ := newTestRunner()

	ctx, cancel := context.WithCancel(context.Background())
	ex, err := r.RunTask(ctx, shellTask("ctx", "sleeper", "sleep 10"))
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	cancel()

	if err := waitExit(t, ex); err == nil {
		t.Error("Wait returned nil for canceled process")
	}
}

func TestRunTaskEnv(t *testing.T) {
	r, _ := newTestRunner()

	item := &models.TaskItem{
		ID:    "env",
		Label: "env check",
		Config: map[string]interface{}{
			"command": `[ "$GREETING" = "hello there" ]`,
			"options": map[string]interface{}{
				"env": map[string]interface{}{"GREETING": "hello there"},
			},
		},
	}

	ex, err := r.RunTask(context.Background(), item)
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := waitExit(t, ex); err != nil {
		t.Errorf("Wait returned %v, want nil", err)
	}
}

func TestRunTaskCwdDefaultsToWorkspace(t *testing.T) {
	r, _ := newTestRunner()
	dir := t.TempDir()

	item := &models.TaskItem{
		ID:        "cwd",
		Label:     "marker",
		Workspace: dir,
		Config:    map[string]interface{}{"command": "touch marker.txt"},
	}

	ex, err := r.RunTask(context.Background(), item)
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := waitExit(t, ex); err != nil {
		t.Fatalf("Wait returned %v, want nil", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err != nil {
		t.Errorf("marker file missing: %v", err)
	}
}

func TestRunTaskWorkspaceFolderSubstitution(t *testing.T) {
	r, _ := newTestRunner()
	dir := t.TempDir()

	item := &models.TaskItem{
		ID:        "subst",
		Label:     "subst",
		Workspace: dir,
		Config:    map[string]interface{}{"command": "touch ${workspaceFolder}/sub.txt"},
	}

	ex, err := r.RunTask(context.Background(), item)
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := waitExit(t, ex); err != nil {
		t.Fatalf("Wait returned %v, want nil", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "sub.txt")); err != nil {
		t.Errorf("substituted path not created: %v", err)
	}
}

func TestRunLaunch(t *testing.T) {
	r, events := newTestRunner()

	item := &models.LaunchItem{
		ID:   "l1",
		Name: "svc",
		Config: map[string]interface{}{
			"program": "sleep",
			"args":    []interface{}{"0.05"},
		},
	}

	ex, err := r.RunLaunch(context.Background(), item)
	if err != nil {
		t.Fatalf("RunLaunch failed: %v", err)
	}

	ev := nextEvent(t, events)
	if ev.kind != "started" || ev.id != "l1" {
		t.Errorf("event = %+v, want started l1", ev)
	}

	if err := waitExit(t, ex); err != nil {
		t.Errorf("Wait returned %v, want nil", err)
	}
}

func TestRunLaunchNoProgram(t *testing.T) {
	r, _ := newTestRunner()

	item := &models.LaunchItem{ID: "l2", Name: "bare", Config: map[string]interface{}{}}
	_, err := r.RunLaunch(context.Background(), item)
	if err == nil {
		t.Fatal("expected error for launch without a program")
	}
	if !strings.Contains(err.Error(), "no program") {
		t.Errorf("error = %v, want mention of missing program", err)
	}
}

func TestRunLaunchRelativeProgram(t *testing.T) {
	r, _ := newTestRunner()
	dir := t.TempDir()

	script := filepath.Join(dir, "bin", "ok.sh")
	if err := os.MkdirAll(filepath.Dir(script), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	item := &models.LaunchItem{
		ID:        "l3",
		Name:      "script",
		Workspace: dir,
		Config:    map[string]interface{}{"program": "bin/ok.sh"},
	}

	ex, err := r.RunLaunch(context.Background(), item)
	if err != nil {
		t.Fatalf("RunLaunch failed: %v", err)
	}
	if err := waitExit(t, ex); err != nil {
		t.Errorf("Wait returned %v, want nil", err)
	}
}

func TestResolveTaskSpec(t *testing.T) {
	inline := &models.TaskItem{
		UserTaskSpec: &models.InlineTaskSpec{
			Type:    "process",
			Command: "make",
			Args:    []string{"build"},
			Cwd:     "sub",
			Env:     map[string]string{"A": "1"},
		},
		Config: map[string]interface{}{"command": "ignored"},
	}
	spec := resolveTaskSpec(inline)
	if spec.command != "make" || spec.taskType != "process" || spec.cwd != "sub" {
		t.Errorf("inline spec = %+v, want the user task fields", spec)
	}

	doc := &models.TaskItem{
		Config: map[string]interface{}{
			"command": "npm test",
			"cwd":     "top",
			"options": map[string]interface{}{
				"cwd": "opts",
				"env": map[string]interface{}{"B": "2"},
			},
		},
	}
	spec = resolveTaskSpec(doc)
	if spec.cwd != "top" {
		t.Errorf("cwd = %q, top-level should win over options", spec.cwd)
	}
	if spec.env["B"] != "2" {
		t.Errorf("env = %v, want options env as fallback", spec.env)
	}
}

func TestItemFolder(t *testing.T) {
	if got := itemFolder(""); got != "" {
		t.Errorf("itemFolder(\"\") = %q, want \"\"", got)
	}
	if got := itemFolder(workspace.UserKey); got != "" {
		t.Errorf("itemFolder(user sentinel) = %q, want \"\"", got)
	}
	if got := itemFolder("/work/api"); got != "/work/api" {
		t.Errorf("itemFolder = %q, want /work/api", got)
	}
}

func TestResolveCwd(t *testing.T) {
	tests := []struct {
		cwd    string
		folder string
		want   string
	}{
		{"", "/w", "/w"},
		{"sub", "/w", "/w/sub"},
		{"/abs", "/w", "/abs"},
		{"${workspaceFolder}/x", "/w", "/w/x"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := resolveCwd(tt.cwd, tt.folder); got != tt.want {
			t.Errorf("resolveCwd(%q, %q) = %q, want %q", tt.cwd, tt.folder, got, tt.want)
		}
	}
}

func TestBuildEnvironment(t *testing.T) {
	t.Setenv("RUNNER_TEST_BASE", "orig")

	env := buildEnvironment(map[string]string{
		"RUNNER_TEST_BASE": "override",
		"RUNNER_TEST_PATH": "${workspaceFolder}/x",
	}, "/ws")

	found := map[string]string{}
	for _, kv := range env {
		if idx := strings.Index(kv, "="); idx > 0 {
			found[kv[:idx]] = kv[idx+1:]
		}
	}
	if found["RUNNER_TEST_BASE"] != "override" {
		t.Errorf("RUNNER_TEST_BASE = %q, item env should win", found["RUNNER_TEST_BASE"])
	}
	if found["RUNNER_TEST_PATH"] != "/ws/x" {
		t.Errorf("RUNNER_TEST_PATH = %q, want substituted folder", found["RUNNER_TEST_PATH"])
	}
	if !sort.StringsAreSorted(env) {
		t.Error("environment is not sorted")
	}
}

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "''"},
		{"simple", "hello", "hello"},
		{"with spaces", "hello world", "'hello world'"},
		{"single quote", "it's", "'it'\\''s'"},
		{"dollar sign", "$HOME", "'$HOME'"},
		{"semicolon", "a;b", "'a;b'"},
		{"pipe", "a|b", "'a|b'"},
		{"multiple single quotes", "it's John's", "'it'\\''s John'\\''s'"},
		{"path with slash", "/path/to/file", "/path/to/file"},
		{"complex", "echo 'hello' && rm -rf /", "'echo '\\''hello'\\'' && rm -rf /'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shellEscape(tt.input)
			if got != tt.want {
				t.Errorf("shellEscape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
