package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harshul/project-compass/internal/project"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
	StatusKilled   Status = "killed"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusFailed || s == StatusKilled
}

// EventType identifies what changed on a task.
type EventType int

const (
	EventStarted EventType = iota
	EventLog
	EventStatus
	EventRenamed
	EventRemoved
)

// Event notifies subscribers that a task changed. Subscribers read the new
// state back through Get or Lines.
type Event struct {
	TaskID string
	Type   EventType
}

// Info is a point in time copy of a task.
type Info struct {
	ID          string
	Name        string
	ProjectPath string
	Dir         string
	Spec        project.CommandSpec
	Status      Status
	StartedAt   time.Time
	EndedAt     time.Time
	ExitCode    int
	URL         string
	Err         error
	LogLines    int
}

// Running reports whether the task still owns a live process.
func (i Info) Running() bool { return i.Status == StatusRunning }

// handle is the live process owned by a running task.
type handle struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	term  terminator
}

type task struct {
	info          Info
	logs          *LogBuffer
	proc          *handle
	urlPriority   int
	killRequested bool
	done          chan struct{}
}

// Config configures a Supervisor. Zero fields take defaults.
type Config struct {
	Logger   *slog.Logger
	MaxLines int
	// Env is the child environment; nil inherits the current process env.
	Env   []string
	NewID func() string
	// WaitDelay bounds how long output is drained after a process exits.
	WaitDelay time.Duration
}

// Supervisor owns every task started from the dashboard.
type Supervisor struct {
	mu        sync.Mutex
	tasks     map[string]*task
	order     []string
	subs      []chan Event
	logger    *slog.Logger
	maxLines  int
	env       []string
	newID     func() string
	waitDelay time.Duration
}

// New creates a supervisor.
func New(cfg Config) *Supervisor {
	s := &Supervisor{
		tasks:     make(map[string]*task),
		logger:    cfg.Logger,
		maxLines:  cfg.MaxLines,
		env:       cfg.Env,
		newID:     cfg.NewID,
		waitDelay: cfg.WaitDelay,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxLines <= 0 {
		s.maxLines = MaxLogLines
	}
	if s.newID == nil {
		s.newID = newTaskID
	}
	if s.waitDelay <= 0 {
		s.waitDelay = 2 * time.Second
	}
	return s
}

func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Subscribe returns a channel of task change events. Events are dropped when
// the channel is full; readers should treat them as hints to re-read state.
func (s *Supervisor) Subscribe() <-chan Event {
	ch := make(chan Event, 256)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// publish sends ev to all subscribers. Caller holds s.mu.
func (s *Supervisor) publish(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Start launches spec in dir and returns the new task id. An empty argv
// creates nothing and returns ErrEmptyArgv. A process that cannot be spawned
// still yields a task, already failed, whose Err is a *SpawnError.
func (s *Supervisor) Start(projectPath, dir string, spec project.CommandSpec) (string, error) {
	if len(spec.Argv) == 0 || strings.TrimSpace(spec.Argv[0]) == "" {
		return "", ErrEmptyArgv
	}
	spec = spec.Clone()
	name := spec.Label
	if name == "" {
		name = spec.CommandLine()
	}

	t := &task{
		info: Info{
			ID:          s.newID(),
			Name:        name,
			ProjectPath: projectPath,
			Dir:         dir,
			Spec:        spec,
			Status:      StatusRunning,
			StartedAt:   time.Now(),
			ExitCode:    -1,
		},
		logs: NewLogBuffer(s.maxLines),
		done: make(chan struct{}),
	}
	id := t.info.ID

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = dir
	cmd.Env = s.env
	cmd.WaitDelay = s.waitDelay
	term := prepareTerminator(cmd)

	stdout := newLineWriter(partialFlushDelay, func(line string) { s.appendLine(id, KindStdout, line) })
	stderr := newLineWriter(partialFlushDelay, func(line string) { s.appendLine(id, KindStderr, line) })
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[id] = t
	s.order = append(s.order, id)
	s.appendLocked(t, KindInfo, "> "+spec.CommandLine())
	s.publish(Event{TaskID: id, Type: EventStarted})

	stdin, err := cmd.StdinPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		s.failLocked(t, &SpawnError{Argv: spec.Argv, Err: err})
		return id, nil
	}

	t.proc = &handle{cmd: cmd, stdin: stdin, term: term}
	s.logger.Info("task started", "task", id, "argv", spec.Argv, "dir", dir, "pid", cmd.Process.Pid)

	go s.wait(t, cmd, stdout, stderr)
	return id, nil
}

// failLocked moves a task that never got a process straight to failed.
// Caller holds s.mu.
func (s *Supervisor) failLocked(t *task, err error) {
	t.info.Status = StatusFailed
	t.info.Err = err
	t.info.EndedAt = time.Now()
	s.appendLocked(t, KindError, fmt.Sprintf("✗ %s failed: %v", t.info.Name, err))
	s.publish(Event{TaskID: t.info.ID, Type: EventStatus})
	close(t.done)
	s.logger.Warn("task spawn failed", "task", t.info.ID, "error", err)
}

// wait reaps the process and records its terminal status.
func (s *Supervisor) wait(t *task, cmd *exec.Cmd, stdout, stderr *lineWriter) {
	err := cmd.Wait()
	stdout.Flush()
	stderr.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	t.info.EndedAt = time.Now()
	if state := cmd.ProcessState; state != nil {
		t.info.ExitCode = state.ExitCode()
	}
	t.proc = nil

	// A background child can keep the pipes open after a clean exit. The
	// process still succeeded; only the trailing output was cut off.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		s.logger.Warn("task output cut off after exit", "task", t.info.ID, "wait_delay", s.waitDelay)
		err = nil
	}

	switch {
	case t.killRequested:
		t.info.Status = StatusKilled
		s.appendLocked(t, KindWarning, "! Task killed forcefully")
	case err == nil:
		t.info.Status = StatusFinished
		s.appendLocked(t, KindSuccess, fmt.Sprintf("✓ %s finished", t.info.Name))
	default:
		t.info.Status = StatusFailed
		t.info.Err = err
		s.appendLocked(t, KindError, fmt.Sprintf("✗ %s failed: %v", t.info.Name, err))
	}

	s.logger.Info("task exited", "task", t.info.ID, "status", t.info.Status, "exit_code", t.info.ExitCode)
	s.publish(Event{TaskID: t.info.ID, Type: EventStatus})
	close(t.done)
}

// Kill force-terminates a running task's process group. A task without a
// live process is removed instead. A process that exits on its own while the
// kill is in flight is not an error.
func (s *Supervisor) Kill(id string) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	if t.proc == nil {
		s.removeLocked(id)
		s.mu.Unlock()
		return nil
	}
	t.killRequested = true
	proc := t.proc
	s.appendLocked(t, KindWarning, "! Triggering emergency kill sequence...")
	s.mu.Unlock()

	if proc.stdin != nil {
		_ = proc.stdin.Close()
	}
	err := proc.term.terminate()
	if errors.Is(err, os.ErrProcessDone) {
		s.logger.Debug("kill raced with exit", "task", id)
		return nil
	}
	if err != nil {
		s.appendLine(id, KindError, "✗ Kill failed: "+err.Error())
		return fmt.Errorf("kill task %s: %w", id, err)
	}
	s.logger.Info("task kill sent", "task", id)
	return nil
}

// KillAll kills every tracked task.
func (s *Supervisor) KillAll() error {
	s.mu.Lock()
	ids := append([]string(nil), s.order...)
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.Kill(id); err != nil && !errors.Is(err, ErrTaskNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until the task reaches a terminal status.
func (s *Supervisor) Wait(ctx context.Context, id string) (Info, error) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return Info{}, ErrTaskNotFound
	}
	select {
	case <-t.done:
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked(t), nil
}

// FeedInput writes text to the task's stdin. submit appends a newline.
func (s *Supervisor) FeedInput(id, text string, submit bool) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	if t.proc == nil || t.proc.stdin == nil || t.killRequested {
		s.mu.Unlock()
		return ErrTaskNotRunning
	}
	stdin := t.proc.stdin
	s.mu.Unlock()

	if submit {
		text += "\n"
	}
	if _, err := io.WriteString(stdin, text); err != nil {
		return fmt.Errorf("write stdin for task %s: %w", id, err)
	}
	return nil
}

// Rename changes the task's display name.
func (s *Supervisor) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if name == "" {
		return nil
	}
	t.info.Name = name
	s.publish(Event{TaskID: id, Type: EventRenamed})
	return nil
}

// AppendLog splits chunk into lines and appends the non-blank ones.
func (s *Supervisor) AppendLog(id string, kind Kind, chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	for _, line := range SplitLines(chunk) {
		s.appendLocked(t, kind, line)
	}
	return nil
}

// appendLine appends one already split line.
func (s *Supervisor) appendLine(id string, kind Kind, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		s.appendLocked(t, kind, line)
	}
}

// appendLocked appends line and updates the detected URL. Caller holds s.mu.
func (s *Supervisor) appendLocked(t *task, kind Kind, line string) {
	t.logs.Append(Line{Kind: kind, Text: line, Time: time.Now()})
	if kind == KindStdout || kind == KindStderr {
		if c, ok := detectURL(line); ok && (t.info.URL == "" || c.Priority >= t.urlPriority) {
			t.info.URL = c.URL
			t.urlPriority = c.Priority
		}
	}
	s.publish(Event{TaskID: t.info.ID, Type: EventLog})
}

// ExportLog writes the full log to dir/compass-<id>.txt and returns the path.
func (s *Supervisor) ExportLog(id, dir string) (string, error) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return "", ErrTaskNotFound
	}
	if t.logs.Len() == 0 {
		return "", &ExportError{TaskID: id, Err: ErrEmptyLog}
	}

	path := filepath.Join(dir, "compass-"+id+".txt")
	if err := os.WriteFile(path, []byte(t.logs.Text()), 0o644); err != nil {
		return "", &ExportError{TaskID: id, Path: path, Err: err}
	}
	s.appendLine(id, KindSuccess, "✓ Logs exported to "+path)
	return path, nil
}

// ClearLog empties a task's log.
func (s *Supervisor) ClearLog(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.logs.Clear()
	s.publish(Event{TaskID: id, Type: EventLog})
	return nil
}

// Remove discards a task that no longer owns a process.
func (s *Supervisor) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if t.proc != nil {
		return ErrTaskRunning
	}
	s.removeLocked(id)
	return nil
}

func (s *Supervisor) removeLocked(id string) {
	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.publish(Event{TaskID: id, Type: EventRemoved})
}

// Get returns a copy of one task.
func (s *Supervisor) Get(id string) (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return Info{}, false
	}
	return s.infoLocked(t), true
}

// Tasks returns every tracked task in start order.
func (s *Supervisor) Tasks() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Info, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.infoLocked(s.tasks[id]))
	}
	return out
}

// RunningCount returns how many tasks still own a process.
func (s *Supervisor) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.info.Status == StatusRunning {
			n++
		}
	}
	return n
}

// Lines returns the full log of a task.
func (s *Supervisor) Lines(id string) []Line {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return t.logs.All()
}

func (s *Supervisor) infoLocked(t *task) Info {
	info := t.info
	info.Spec = t.info.Spec.Clone()
	info.LogLines = t.logs.Len()
	return info
}
