// Package runner is the execution glue for items in the catalog. It starts
// a task or launch configuration as a child process, reports start and stop
// through handler callbacks, and can kill what it started. Problem
// matchers, dependency ordering, and debug protocols belong to the editor
// platforms this tool reads documents from and are deliberately absent.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/workspace"
)

// Handlers receives lifecycle events for dispatched items.
type Handlers struct {
	OnStarted func(id string)
	OnStopped func(id string)
}

// ExecRunner runs items as child processes.
type ExecRunner struct {
	shell     string
	shellArgs []string
	handlers  Handlers
	log       *logrus.Logger

	mu    sync.Mutex
	procs map[string]*proc
}

type proc struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Execution is the handle for one dispatched process.
type Execution struct {
	ID string
	p  *proc
}

// Wait blocks until the process exits and returns its exit error.
func (e *Execution) Wait() error {
	<-e.p.done
	return e.p.err
}

// Done is closed when the process has exited.
func (e *Execution) Done() <-chan struct{} {
	return e.p.done
}

// NewExecRunner creates a runner. Shell tasks use $SHELL, falling back to
// /bin/sh.
func NewExecRunner(handlers Handlers, log *logrus.Logger) *ExecRunner {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	if log == nil {
		log = logrus.New()
	}
	return &ExecRunner{
		shell:     shell,
		shellArgs: []string{"-c"},
		handlers:  handlers,
		log:       log,
		procs:     make(map[string]*proc),
	}
}

// RunTask starts a task item. Shell tasks run the command line through the
// shell with arguments appended escaped; process tasks execute the command
// directly. Returns once the process has started.
func (r *ExecRunner) RunTask(ctx context.Context, item *models.TaskItem) (*Execution, error) {
	spec := resolveTaskSpec(item)
	folder := itemFolder(item.Workspace)

	command := substitute(spec.command, folder)
	if command == "" {
		return nil, fmt.Errorf("task %q has no command", item.Label)
	}

	args := make([]string, len(spec.args))
	for i, a := range spec.args {
		args[i] = substitute(a, folder)
	}

	runCtx, cancel := context.WithCancel(ctx)

	var cmd *exec.Cmd
	switch spec.taskType {
	case "process":
		cmd = exec.CommandContext(runCtx, command, args...)
	default:
		// Shell tasks keep the command line intact so shell syntax in the
		// document keeps working; only arguments are escaped.
		line := command
		for _, a := range args {
			line += " " + shellEscape(a)
		}
		cmd = exec.CommandContext(runCtx, r.shell, append(r.shellArgs, line)...)
	}

	cmd.Dir = resolveCwd(spec.cwd, folder)
	cmd.Env = buildEnvironment(spec.env, folder)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	ex, err := r.start(item.ID, item.Label, cmd, cancel)
	if err != nil {
		cancel()
		return nil, err
	}
	return ex, nil
}

// RunLaunch starts a launch configuration as a plain process: program,
// args, cwd, and env from its document entry.
func (r *ExecRunner) RunLaunch(ctx context.Context, item *models.LaunchItem) (*Execution, error) {
	folder := itemFolder(item.Workspace)

	program := substitute(stringValue(item.Config, "program"), folder)
	if program == "" {
		return nil, fmt.Errorf("launch %q has no program", item.Name)
	}
	if !filepath.IsAbs(program) && folder != "" && strings.Contains(program, "/") {
		program = filepath.Join(folder, program)
	}

	rawArgs := stringList(item.Config, "args")
	args := make([]string, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = substitute(a, folder)
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, program, args...)
	cmd.Dir = resolveCwd(stringValue(item.Config, "cwd"), folder)
	cmd.Env = buildEnvironment(stringMap(item.Config, "env"), folder)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	ex, err := r.start(item.ID, item.Name, cmd, cancel)
	if err != nil {
		cancel()
		return nil, err
	}
	return ex, nil
}

// start launches the command and tracks it until it exits.
func (r *ExecRunner) start(id, label string, cmd *exec.Cmd, cancel context.CancelFunc) (*Execution, error) {
	p := &proc{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	if _, exists := r.procs[id]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%q is already running", label)
	}
	r.procs[id] = p
	r.mu.Unlock()

	if err := cmd.Start(); err != nil {
		r.mu.Lock()
		p.err = err
		close(p.done)
		delete(r.procs, id)
		r.mu.Unlock()
		return nil, fmt.Errorf("start %q: %w", label, err)
	}

	r.log.Debugf("runner: started %s (pid %d)", id, cmd.Process.Pid)
	if r.handlers.OnStarted != nil {
		r.handlers.OnStarted(id)
	}

	go func() {
		err := cmd.Wait()
		cancel()

		r.mu.Lock()
		p.err = err
		close(p.done)
		delete(r.procs, id)
		r.mu.Unlock()

		r.log.Debugf("runner: stopped %s: %v", id, err)
		if r.handlers.OnStopped != nil {
			r.handlers.OnStopped(id)
		}
	}()

	return &Execution{ID: id, p: p}, nil
}

// Stop kills a running item's process.
func (r *ExecRunner) Stop(id string) error {
	r.mu.Lock()
	p, ok := r.procs[id]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("nothing running with id %s", id)
	}
	p.cancel()
	return nil
}

// StopAll kills every process the runner started.
func (r *ExecRunner) StopAll() {
	r.mu.Lock()
	procs := make([]*proc, 0, len(r.procs))
	for _, p := range r.procs {
		procs = append(procs, p)
	}
	r.mu.Unlock()

	for _, p := range procs {
		p.cancel()
	}
}

// taskSpec is the flat execution view of a task item.
type taskSpec struct {
	taskType string
	command  string
	args     []string
	cwd      string
	env      map[string]string
}

// resolveTaskSpec reads the execution fields from either the inline spec
// or the raw document entry. Document entries may carry cwd and env at the
// top level or under the options key.
func resolveTaskSpec(item *models.TaskItem) taskSpec {
	if s := item.UserTaskSpec; s != nil {
		return taskSpec{
			taskType: s.Type,
			command:  s.Command,
			args:     s.Args,
			cwd:      s.Cwd,
			env:      s.Env,
		}
	}

	cfg := item.Config
	spec := taskSpec{
		taskType: stringValue(cfg, "type"),
		command:  stringValue(cfg, "command"),
		args:     stringList(cfg, "args"),
		cwd:      stringValue(cfg, "cwd"),
		env:      stringMap(cfg, "env"),
	}

	if opts, ok := cfg["options"].(map[string]interface{}); ok {
		if spec.cwd == "" {
			spec.cwd = stringValue(opts, "cwd")
		}
		if spec.env == nil {
			spec.env = stringMap(opts, "env")
		}
	}
	return spec
}

// itemFolder maps an item's workspace key to a directory, "" for the user
// sentinel.
func itemFolder(key string) string {
	if key == "" || key == workspace.UserKey {
		return ""
	}
	return key
}

// substitute expands the workspace folder variable in document values.
func substitute(s, folder string) string {
	return strings.ReplaceAll(s, "${workspaceFolder}", folder)
}

func resolveCwd(cwd, folder string) string {
	cwd = substitute(cwd, folder)
	if cwd == "" {
		return folder
	}
	if !filepath.IsAbs(cwd) && folder != "" {
		return filepath.Join(folder, cwd)
	}
	return cwd
}

// buildEnvironment layers item env over the process environment, with
// deterministic ordering.
func buildEnvironment(env map[string]string, folder string) []string {
	envMap := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := strings.Index(kv, "="); idx > 0 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for k, v := range env {
		envMap[k] = substitute(v, folder)
	}

	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(envMap))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

// shellEscape wraps an argument in single quotes when it contains shell
// metacharacters.
func shellEscape(s string) string {
	if s == "" {
		return "''"
	}

	safe := true
	for _, c := range s {
		if !isShellSafe(c) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}

	var out strings.Builder
	out.WriteByte('\'')
	for _, c := range s {
		if c == '\'' {
			out.WriteString("'\\''")
		} else {
			out.WriteRune(c)
		}
	}
	out.WriteByte('\'')
	return out.String()
}

func isShellSafe(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '/'
}

// stringValue pulls a string out of a raw document entry.
func stringValue(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// stringList pulls a string array out of a raw document entry.
func stringList(m map[string]interface{}, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringMap pulls a string-to-string object out of a raw document entry.
func stringMap(m map[string]interface{}, key string) map[string]string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
