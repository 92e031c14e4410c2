package ui

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/project-compass/internal/config"
	"github.com/harshul/project-compass/internal/project"
	"github.com/harshul/project-compass/internal/supervisor"
)

type scanFunc func(ctx context.Context, root string) ([]project.Record, error)

func (f scanFunc) Resolve(ctx context.Context, root string) ([]project.Record, error) {
	return f(ctx, root)
}

type fakeReloader struct{ calls atomic.Int32 }

func (f *fakeReloader) Reload() error {
	f.calls.Add(1)
	return nil
}

func staticScanner(records ...project.Record) Scanner {
	return scanFunc(func(context.Context, string) ([]project.Record, error) {
		return records, nil
	})
}

func shellRecord(t *testing.T, name string, cmds ...project.Command) project.Record {
	t.Helper()
	return project.Record{
		Path:     t.TempDir(),
		Name:     name,
		Type:     project.TypeShell,
		Icon:     "🐚",
		Manifest: "Makefile",
		Commands: project.NewCommandSet(cmds...),
	}
}

func shellCommand(key, label, script string) project.Command {
	return project.Command{Key: key, Spec: project.CommandSpec{
		Label:  label,
		Argv:   []string{"sh", "-c", script},
		Source: project.SourceBuiltin,
	}}
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func newTestDashboard(t *testing.T, scanner Scanner) *DashboardModel {
	t.Helper()
	store, err := config.Open(filepath.Join(t.TempDir(), "config.json"), nil)
	require.NoError(t, err)

	sup := supervisor.New(supervisor.Config{})
	t.Cleanup(func() { _ = sup.KillAll() })

	return NewDashboard(Options{
		Root:       "/work",
		Scanner:    scanner,
		Supervisor: sup,
		Config:     store,
		PluginPath: "/cfg/plugins.json",
		ExportDir:  t.TempDir(),
		Stats:      func() ResourceStats { return ResourceStats{CPUTemp: -1} },
	})
}

// scan runs a full rescan synchronously.
func scan(m *DashboardModel) {
	m.Update(m.rescan()())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *DashboardModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyPress(k))
	}
	return cmd
}

func waitTask(t *testing.T, m *DashboardModel, id string) supervisor.Info {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	info, err := m.sup.Wait(ctx, id)
	require.NoError(t, err)
	return info
}

func lineTexts(lines []supervisor.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestScanPopulatesProjects(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "api"), shellRecord(t, "web")))

	scan(m)

	assert.False(t, m.scanning)
	require.Len(t, m.projects, 2)
	assert.Equal(t, "api", m.projects[0].Name)
}

func TestStaleScanIsDiscarded(t *testing.T) {
	var calls atomic.Int32
	older, newer := shellRecord(t, "older"), shellRecord(t, "newer")
	m := newTestDashboard(t, scanFunc(func(context.Context, string) ([]project.Record, error) {
		if calls.Add(1) == 1 {
			return []project.Record{older}, nil
		}
		return []project.Record{newer}, nil
	}))

	first := m.rescan()
	second := m.rescan()
	firstMsg := first()
	m.Update(second())
	m.Update(firstMsg)

	require.Len(t, m.projects, 1)
	assert.Equal(t, "newer", m.projects[0].Name)
}

func TestSelectionWrapsAndSurvivesRescan(t *testing.T) {
	recs := []project.Record{shellRecord(t, "a"), shellRecord(t, "b"), shellRecord(t, "c")}
	m := newTestDashboard(t, staticScanner(recs...))
	scan(m)

	press(m, "up")
	assert.Equal(t, 2, m.selectedIndex)
	press(m, "down")
	assert.Equal(t, 0, m.selectedIndex)
	press(m, "down")

	m.scanner = staticScanner(recs[2], recs[0], recs[1])
	scan(m)
	assert.Equal(t, "b", m.projects[m.selectedIndex].Name)
}

func TestQuitWithoutRunningTasks(t *testing.T) {
	m := newTestDashboard(t, staticScanner())

	cmd := press(m, "Q")

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitConfirmationWhileRunning(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("run", "Run", "sleep 30"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r")
	id := m.activeTask
	require.NotEmpty(t, id)

	press(m, "D", "Q")
	assert.True(t, m.confirmQuit)
	assert.Contains(t, m.View(), "Confirm Exit")

	press(m, "n")
	assert.False(t, m.confirmQuit)

	press(m, "Q")
	cmd := press(m, "y")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, supervisor.StatusKilled, waitTask(t, m, id).Status)
}

func TestShortcutRunsAction(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api",
		shellCommand("build", "Build", "echo building"),
		shellCommand("hello", "Hello", "echo hi"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "enter", "2")

	require.NotEmpty(t, m.activeTask)
	waitTask(t, m, m.activeTask)
	assert.Contains(t, lineTexts(m.sup.Lines(m.activeTask)), "hi")
	require.NotNil(t, m.lastRun)
	assert.Equal(t, "Hello", m.lastRun.spec.Label)
}

func TestShortcutsNeedDetailMode(t *testing.T) {
	rec := shellRecord(t, "api", shellCommand("hello", "Hello", "echo hi"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "1")

	assert.Empty(t, m.activeTask)
}

func TestQuickKeyWithoutCommand(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "api")))
	scan(m)

	press(m, "b")

	assert.Empty(t, m.activeTask)
	assert.Equal(t, "No build command for api", m.notice)
	assert.True(t, m.noticeErr)
}

func TestRerunLast(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("test", "Test", "echo ok"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "t")
	first := m.activeTask
	waitTask(t, m, first)

	press(m, "L")
	require.NotEqual(t, first, m.activeTask)
	waitTask(t, m, m.activeTask)
	assert.Len(t, m.sup.Tasks(), 2)
}

func TestAddCustomCommand(t *testing.T) {
	rec := shellRecord(t, "api")
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "C")
	assert.Nil(t, m.prompt, "custom prompt requires detail mode")

	press(m, "enter", "C")
	require.NotNil(t, m.prompt)
	press(m, "Seed | echo seed", "enter")

	assert.Nil(t, m.prompt)
	custom := m.cfg.CustomFor(rec.Path)
	require.Len(t, custom, 1)
	assert.Equal(t, "Seed", custom[0].Label)
	assert.Equal(t, []string{"echo", "seed"}, custom[0].Command)
	assert.Contains(t, m.View(), "Seed")
}

func TestPromptCancel(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "api")))
	scan(m)

	press(m, "P")
	require.NotNil(t, m.prompt)
	press(m, "zod", "esc")

	assert.Nil(t, m.prompt)
	assert.Empty(t, m.sup.Tasks())
}

func TestPackagePromptUnsupportedType(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "scripts")))
	scan(m)

	press(m, "P", "add zod", "enter")

	assert.True(t, m.noticeErr)
	assert.Empty(t, m.sup.Tasks())
}

func TestVenvRequiresPython(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "scripts")))
	scan(m)

	press(m, "P", "venv", "enter")

	assert.Equal(t, "venv is only available for Python projects", m.notice)
	assert.Empty(t, m.sup.Tasks())
}

func TestParsePackageInput(t *testing.T) {
	tests := []struct {
		input string
		op    string
		pkg   string
	}{
		{"add zod", "add", "zod"},
		{"remove lodash", "remove", "lodash"},
		{"rm lodash", "remove", "lodash"},
		{"  requests  ", "add", "requests"},
		{"install serde", "add", "serde"},
	}

	for _, tt := range tests {
		op, pkg := parsePackageInput(tt.input)
		assert.Equal(t, tt.op, string(op), tt.input)
		assert.Equal(t, tt.pkg, pkg, tt.input)
	}
}

func TestFeedStdin(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "repl", shellCommand("run", "Run", `read line; echo "got:$line"`))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r")
	require.True(t, m.attachedRunning())

	press(m, "ping")
	assert.Equal(t, "ping", m.stdin.Value())
	press(m, "enter")
	assert.Empty(t, m.stdin.Value())

	info := waitTask(t, m, m.activeTask)
	assert.Equal(t, supervisor.StatusFinished, info.Status)
	assert.Contains(t, lineTexts(m.sup.Lines(info.ID)), "got:ping")
}

func TestCtrlCKillsAttachedTask(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("run", "Run", "sleep 30"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r")
	id := m.activeTask
	cmd := press(m, "ctrl+c")

	assert.Nil(t, cmd)
	assert.Equal(t, supervisor.StatusKilled, waitTask(t, m, id).Status)
}

func TestTasksViewRename(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("run", "Run", "sleep 30"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r", "T")
	assert.Equal(t, viewTasks, m.view)

	press(m, "R")
	require.NotNil(t, m.prompt)
	m.prompt.input.SetValue("")
	press(m, "api server", "enter")

	info, ok := m.sup.Get(m.activeTask)
	require.True(t, ok)
	assert.Equal(t, "api server", info.Name)
	assert.Contains(t, m.View(), "api server")

	press(m, "K")
	assert.Equal(t, supervisor.StatusKilled, waitTask(t, m, info.ID).Status)
}

func TestToggleHelpCardsAndStructureGuide(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "api")))
	scan(m)

	press(m, "H")
	assert.True(t, m.cfg.Snapshot().ShowHelpCards)
	assert.Contains(t, m.View(), "Navigation")

	press(m, "S")
	assert.True(t, m.cfg.Snapshot().ShowStructureGuide)
	assert.Contains(t, m.View(), "Structure guide")

	press(m, "H")
	assert.False(t, m.cfg.Snapshot().ShowHelpCards)
}

func TestExportActiveTask(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("run", "Run", "echo exported"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r")
	waitTask(t, m, m.activeTask)
	press(m, "E")

	assert.False(t, m.noticeErr)
	assert.True(t, strings.HasPrefix(m.notice, "✓ Logs exported to "), m.notice)
}

func TestScrollOutputIsClamped(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("run", "Run", "seq 1 20"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r")
	info := waitTask(t, m, m.activeTask)

	for range 50 {
		m.Update(tea.KeyMsg{Type: tea.KeyShiftUp})
	}
	assert.True(t, m.output.AtTop())
	assert.Equal(t, info.LogLines-outputWindow, m.linesBelow())
	assert.Contains(t, m.View(), "Scrolled")

	for range 50 {
		m.Update(tea.KeyMsg{Type: tea.KeyShiftDown})
	}
	assert.True(t, m.output.AtBottom())
	assert.Equal(t, 0, m.linesBelow())
	assert.Contains(t, m.View(), "Live log view")
}

func TestScrolledOutputStaysPinned(t *testing.T) {
	requireShell(t)
	rec := shellRecord(t, "api", shellCommand("run", "Run", "seq 1 20"))
	m := newTestDashboard(t, staticScanner(rec))
	scan(m)

	press(m, "r")
	id := m.activeTask
	waitTask(t, m, id)

	for range 3 {
		m.Update(tea.KeyMsg{Type: tea.KeyShiftUp})
	}
	offset := m.output.YOffset
	top := strings.Split(m.output.View(), "\n")[0]

	require.NoError(t, m.sup.AppendLog(id, supervisor.KindInfo, "late one\nlate two"))
	m.Update(taskEventMsg{TaskID: id, Type: supervisor.EventLog})
	m.View()

	assert.Equal(t, offset, m.output.YOffset)
	assert.Equal(t, top, strings.Split(m.output.View(), "\n")[0])
	assert.Equal(t, 5, m.linesBelow())

	press(m, "D")
	press(m, "L")
	assert.True(t, m.output.AtBottom())
}

func TestOpenInBrowserReapsOpener(t *testing.T) {
	requireShell(t)
	var opened []string
	orig := browserCommand
	browserCommand = func(url string) *exec.Cmd {
		opened = append(opened, url)
		return exec.Command("sh", "-c", "exit 0")
	}
	t.Cleanup(func() { browserCommand = orig })

	done := openInBrowser("http://localhost:5173")
	require.NotNil(t, done)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("opener was not reaped")
	}
	assert.Equal(t, []string{"http://localhost:5173"}, opened)
}

func TestPluginChangeReloadsAndRescans(t *testing.T) {
	reloader := &fakeReloader{}
	m := newTestDashboard(t, staticScanner())
	m.plugins = reloader
	gen := m.scanGen

	_, cmd := m.Update(fileChangeMsg{Path: "/cfg/plugins.json"})

	assert.NotNil(t, cmd)
	assert.Equal(t, int32(1), reloader.calls.Load())
	assert.Equal(t, gen+1, m.scanGen)
	assert.Equal(t, "Plugins reloaded", m.notice)
}

func TestRemovedTaskDetaches(t *testing.T) {
	m := newTestDashboard(t, staticScanner())
	m.activeTask = "gone"

	m.Update(taskEventMsg{TaskID: "gone", Type: supervisor.EventRemoved})

	assert.Empty(t, m.activeTask)
}

func TestDashboardRendersProjects(t *testing.T) {
	m := newTestDashboard(t, staticScanner(shellRecord(t, "billing-api"), shellRecord(t, "storefront")))

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return strings.Contains(string(bts), "billing-api") && strings.Contains(string(bts), "storefront")
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
