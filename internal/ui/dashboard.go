package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harshul/project-compass/internal/analyzer"
	"github.com/harshul/project-compass/internal/commands"
	"github.com/harshul/project-compass/internal/config"
	"github.com/harshul/project-compass/internal/ports"
	"github.com/harshul/project-compass/internal/project"
	"github.com/harshul/project-compass/internal/supervisor"
	"github.com/harshul/project-compass/internal/watch"
)

// outputWindow is the number of log lines shown in the output panel.
const outputWindow = 8

// Scanner resolves a workspace root into project records.
type Scanner interface {
	Resolve(ctx context.Context, root string) ([]project.Record, error)
}

// Reloader re-reads user plugin definitions.
type Reloader interface {
	Reload() error
}

// Options wires the dashboard to its collaborators.
type Options struct {
	Root       string
	Scanner    Scanner
	Supervisor *supervisor.Supervisor
	Config     *config.Store
	Plugins    Reloader
	PluginPath string
	Changes    <-chan watch.Change
	ExportDir  string
	Schemas    []analyzer.Schema
	Logger     *slog.Logger
	// Stats samples system resources; nil uses GetResourceStats.
	Stats func() ResourceStats
}

type viewMode int

const (
	viewProjects viewMode = iota
	viewTasks
)

type lastRun struct {
	rec  project.Record
	spec project.CommandSpec
}

// DashboardModel is the main bubbletea model for the TUI dashboard
type DashboardModel struct {
	root       string
	scanner    Scanner
	sup        *supervisor.Supervisor
	cfg        *config.Store
	plugins    Reloader
	pluginPath string
	changes    <-chan watch.Change
	events     <-chan supervisor.Event
	exportDir  string
	schemas    []analyzer.Schema
	logger     *slog.Logger
	stats      func() ResourceStats

	// Projects
	projects      []project.Record
	selectedIndex int
	detail        bool
	scanning      bool
	scanErr       error
	scanGen       int
	cancelScan    context.CancelFunc

	// Tasks
	view       viewMode
	activeTask string
	output     viewport.Model
	stdin      textinput.Model
	lastRun    *lastRun

	// UI state
	prompt      *textPrompt
	confirmQuit bool
	showHelp    bool
	notice      string
	noticeErr   bool
	resources   ResourceStats
	width       int
	height      int
	quitting    bool

	keys   keyMap
	help   help.Model
	styles *Styles
}

// Messages for bubbletea
type tickMsg time.Time
type resourceUpdateMsg ResourceStats
type scanDoneMsg struct {
	gen     int
	root    string
	records []project.Record
	err     error
}
type taskEventMsg supervisor.Event
type fileChangeMsg watch.Change
type quitMsg struct{}

// NewDashboard creates a new dashboard model
func NewDashboard(opts Options) *DashboardModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Supervisor == nil {
		opts.Supervisor = supervisor.New(supervisor.Config{Logger: opts.Logger})
	}
	if opts.Stats == nil {
		opts.Stats = GetResourceStats
	}
	if opts.Schemas == nil {
		opts.Schemas = analyzer.DefaultSchemas()
	}

	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "type to feed stdin"
	in.CharLimit = 1024
	in.Focus()

	return &DashboardModel{
		root:       opts.Root,
		scanner:    opts.Scanner,
		sup:        opts.Supervisor,
		cfg:        opts.Config,
		plugins:    opts.Plugins,
		pluginPath: opts.PluginPath,
		changes:    opts.Changes,
		events:     opts.Supervisor.Subscribe(),
		exportDir:  opts.ExportDir,
		schemas:    opts.Schemas,
		logger:     opts.Logger,
		stats:      opts.Stats,
		output:     viewport.New(92, outputWindow),
		stdin:      in,
		keys:       defaultKeyMap(),
		help:       help.New(),
		styles:     DefaultStyles(),
		width:      100,
		height:     40,
	}
}

// Init implements tea.Model
func (m *DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.rescan(),
		tickCmd(),
		m.fetchResourceStats(),
		m.listenForTasks(),
	}
	if m.changes != nil {
		cmds = append(cmds, m.listenForChanges())
	}
	return tea.Batch(cmds...)
}

// tickCmd returns a command that ticks every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenForTasks waits for the next supervisor event
func (m *DashboardModel) listenForTasks() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return taskEventMsg(ev)
	}
}

// listenForChanges waits for the next watched file change
func (m *DashboardModel) listenForChanges() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return nil
		}
		return fileChangeMsg(c)
	}
}

// fetchResourceStats fetches system resource statistics
func (m *DashboardModel) fetchResourceStats() tea.Cmd {
	stats := m.stats
	return func() tea.Msg {
		return resourceUpdateMsg(stats())
	}
}

// rescan starts a background scan of the root. A newer scan supersedes any
// scan still in flight; its result is dropped when it arrives.
func (m *DashboardModel) rescan() tea.Cmd {
	if m.cancelScan != nil {
		m.cancelScan()
	}
	m.scanGen++
	m.scanning = true

	gen, root, scanner := m.scanGen, m.root, m.scanner
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelScan = cancel

	return func() tea.Msg {
		if scanner == nil {
			return scanDoneMsg{gen: gen, root: root}
		}
		records, err := scanner.Resolve(ctx, root)
		return scanDoneMsg{gen: gen, root: root, records: records, err: err}
	}
}

// Update implements tea.Model
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.stdin.Width = max(msg.Width-24, 10)
		m.output.Width = max(msg.Width-8, 32)

	case scanDoneMsg:
		m.applyScan(msg)

	case taskEventMsg:
		if msg.TaskID == m.activeTask {
			if msg.Type == supervisor.EventRemoved {
				m.activeTask = ""
				m.followOutput()
			} else {
				m.refreshOutput()
			}
		}
		return m, m.listenForTasks()

	case fileChangeMsg:
		return m, tea.Batch(m.reloadFor(msg.Path), m.listenForChanges())

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.fetchResourceStats())

	case resourceUpdateMsg:
		m.resources = ResourceStats(msg)

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// applyScan installs a finished scan unless a newer one has started.
func (m *DashboardModel) applyScan(msg scanDoneMsg) {
	if msg.gen != m.scanGen {
		m.logger.Debug("discarding stale scan", "root", msg.root, "generation", msg.gen)
		return
	}
	m.scanning = false
	if m.cancelScan != nil {
		m.cancelScan()
		m.cancelScan = nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		m.logger.Error("scan failed", "root", msg.root, "error", msg.err)
		m.scanErr = msg.err
		m.projects = nil
		m.selectedIndex = 0
		return
	}

	var selected string
	if rec, ok := m.selectedProject(); ok {
		selected = rec.Key()
	}
	m.scanErr = nil
	m.projects = msg.records
	m.selectedIndex = 0
	for i, rec := range m.projects {
		if rec.Key() == selected {
			m.selectedIndex = i
			break
		}
	}
}

// reloadFor reacts to a change of the plugin or config file.
func (m *DashboardModel) reloadFor(path string) tea.Cmd {
	if path == m.pluginPath && m.plugins != nil {
		if err := m.plugins.Reload(); err != nil {
			m.setNotice("Plugins not reloaded: "+err.Error(), true)
		} else {
			m.setNotice("Plugins reloaded", false)
		}
		return m.rescan()
	}
	if m.cfg != nil && path == m.cfg.Path() {
		if err := m.cfg.Reload(); err != nil {
			m.setNotice("Config not reloaded: "+err.Error(), true)
		}
	}
	return nil
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmQuit {
		switch msg.String() {
		case "y", "Y":
			if err := m.sup.KillAll(); err != nil {
				m.logger.Warn("kill all failed", "error", err)
			}
			m.quitting = true
			return tea.Quit
		case "n", "N", "esc":
			m.confirmQuit = false
		}
		return nil
	}

	if m.prompt != nil {
		submitted, cancelled, cmd := m.prompt.update(msg)
		switch {
		case cancelled:
			m.prompt = nil
		case submitted:
			p := m.prompt
			m.prompt = nil
			m.submitPrompt(p)
		}
		return cmd
	}

	if m.showHelp && (key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape)) {
		m.showHelp = false
		return nil
	}

	attached := m.attachedRunning()
	if !attached || m.stdin.Value() == "" {
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return cmd
		}
	}

	if m.view == viewTasks {
		return m.handleTasksKey(msg)
	}

	if attached {
		if cmd, handled := m.handleStdinKey(msg); handled {
			return cmd
		}
	}

	return m.handleProjectKey(msg)
}

// handleGlobalKey handles keys that work in every view.
func (m *DashboardModel) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.HelpCards):
		if m.cfg != nil {
			if _, err := m.cfg.ToggleHelpCards(); err != nil {
				m.setNotice("Config not saved: "+err.Error(), true)
			}
		}
	case key.Matches(msg, m.keys.Structure):
		if m.cfg != nil {
			if _, err := m.cfg.ToggleStructureGuide(); err != nil {
				m.setNotice("Config not saved: "+err.Error(), true)
			}
		}
	case key.Matches(msg, m.keys.ClearOutput):
		if m.activeTask != "" {
			_ = m.sup.ClearLog(m.activeTask)
			m.followOutput()
		}
	case key.Matches(msg, m.keys.Export):
		m.exportActive()
	case key.Matches(msg, m.keys.Detach):
		m.activeTask = ""
		m.followOutput()
		m.stdin.Reset()
	case key.Matches(msg, m.keys.Tasks):
		if m.view == viewTasks {
			m.view = viewProjects
		} else {
			m.view = viewTasks
			if m.activeTask == "" {
				if tasks := m.sup.Tasks(); len(tasks) > 0 {
					m.activeTask = tasks[0].ID
				}
			}
		}
		m.showHelp = false
	default:
		return nil, false
	}
	return nil, true
}

func (m *DashboardModel) handleTasksKey(msg tea.KeyMsg) tea.Cmd {
	tasks := m.sup.Tasks()
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		if len(tasks) == 0 {
			return nil
		}
		idx := 0
		for i, t := range tasks {
			if t.ID == m.activeTask {
				idx = i
			}
		}
		if key.Matches(msg, m.keys.Up) {
			idx = (idx - 1 + len(tasks)) % len(tasks)
		} else {
			idx = (idx + 1) % len(tasks)
		}
		m.activeTask = tasks[idx].ID
		m.followOutput()
	case key.Matches(msg, m.keys.Kill), key.Matches(msg, m.keys.Interrupt):
		m.killActive()
	case key.Matches(msg, m.keys.Rename):
		if info, ok := m.sup.Get(m.activeTask); ok {
			p := newTextPrompt(promptRename, "Rename task", info.Spec.CommandLine(), "task name", info.Name)
			p.target = info.ID
			m.prompt = p
			return textinput.Blink
		}
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Escape):
		m.view = viewProjects
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()
	}
	return nil
}

// handleStdinKey routes typing to the attached task's stdin.
func (m *DashboardModel) handleStdinKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.killActive()
		m.stdin.Reset()
		return nil, true
	case tea.KeyEnter:
		if err := m.sup.FeedInput(m.activeTask, m.stdin.Value(), true); err != nil {
			m.setNotice(err.Error(), true)
		}
		m.stdin.Reset()
		return nil, true
	case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete,
		tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		var cmd tea.Cmd
		m.stdin, cmd = m.stdin.Update(msg)
		return cmd, true
	}
	return nil, false
}

func (m *DashboardModel) handleProjectKey(msg tea.KeyMsg) tea.Cmd {
	rec, hasProject := m.selectedProject()

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.detail = false
	case key.Matches(msg, m.keys.ScrollUp):
		m.scrollOutput(1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.scrollOutput(-1)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Rerun):
		if m.lastRun != nil {
			m.startSpec(m.lastRun.rec, m.lastRun.spec)
		}
	case key.Matches(msg, m.keys.Up):
		if n := len(m.projects); n > 0 {
			m.selectedIndex = (m.selectedIndex - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Down):
		if n := len(m.projects); n > 0 {
			m.selectedIndex = (m.selectedIndex + 1) % n
		}
	case key.Matches(msg, m.keys.Enter):
		if hasProject {
			m.detail = !m.detail
		}
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Interrupt):
		return m.requestQuit()
	case key.Matches(msg, m.keys.Rescan):
		return m.rescan()
	case key.Matches(msg, m.keys.AddCustom):
		if m.detail && hasProject {
			m.prompt = newTextPrompt(promptCustom, "Add custom command",
				"label | command args (without a label the command is named Custom N)",
				"Seed DB | npm run seed", "")
			return textinput.Blink
		}
	case key.Matches(msg, m.keys.Packages):
		if hasProject {
			m.prompt = newTextPrompt(promptPackage, "Package registry · "+rec.Name,
				"add <name>, remove <name>, install or venv", "add lodash", "")
			return textinput.Blink
		}
	case key.Matches(msg, m.keys.OpenURL):
		if info, ok := m.sup.Get(m.activeTask); ok && info.URL != "" {
			openInBrowser(info.URL)
		}
	case key.Matches(msg, m.keys.Build):
		m.runKey(rec, hasProject, "build")
	case key.Matches(msg, m.keys.Test):
		m.runKey(rec, hasProject, "test")
	case key.Matches(msg, m.keys.Run):
		m.runKey(rec, hasProject, "run")
	default:
		if m.detail && hasProject {
			m.runShortcut(rec, msg.String())
		}
	}
	return nil
}

// attachedRunning reports whether the displayed task still owns a process.
func (m *DashboardModel) attachedRunning() bool {
	if m.activeTask == "" {
		return false
	}
	info, ok := m.sup.Get(m.activeTask)
	return ok && info.Running()
}

func (m *DashboardModel) requestQuit() tea.Cmd {
	if m.sup.RunningCount() > 0 {
		m.confirmQuit = true
		return nil
	}
	m.quitting = true
	return tea.Quit
}

func (m *DashboardModel) selectedProject() (project.Record, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.projects) {
		return project.Record{}, false
	}
	return m.projects[m.selectedIndex], true
}

func (m *DashboardModel) customFor(path string) []commands.Custom {
	if m.cfg == nil {
		return nil
	}
	return m.cfg.CustomFor(path)
}

// actions lists the runnable actions of rec, custom commands included.
func (m *DashboardModel) actions(rec project.Record) []commands.Action {
	return commands.BuildActions(rec, m.customFor(rec.Path))
}

func (m *DashboardModel) runKey(rec project.Record, ok bool, action string) {
	if !ok {
		return
	}
	a, found := commands.ByKey(m.actions(rec), action)
	if !found {
		m.setNotice(fmt.Sprintf("No %s command for %s", action, rec.Name), true)
		return
	}
	m.runAction(rec, a)
}

func (m *DashboardModel) runShortcut(rec project.Record, s string) {
	if len(s) != 1 {
		return
	}
	c := s[0]
	switch {
	case c >= '1' && c <= '9':
	case c >= 'A' && c <= 'Z' && !strings.ContainsRune(commands.ReservedLetters, rune(c)):
		s = "S+" + s
	default:
		return
	}
	if a, ok := commands.ByShortcut(m.actions(rec), s); ok {
		m.runAction(rec, a)
	}
}

func (m *DashboardModel) runAction(rec project.Record, a commands.Action) {
	m.startSpec(rec, a.Spec())
}

// startSpec launches spec for rec and attaches the output panel to it.
func (m *DashboardModel) startSpec(rec project.Record, spec project.CommandSpec) {
	conflict, busy := ports.Check(spec.Argv)
	id, err := m.sup.Start(rec.Path, rec.Path, spec)
	if err != nil {
		m.setNotice(err.Error(), true)
		return
	}
	if busy {
		_ = m.sup.AppendLog(id, supervisor.KindWarning, "⚠ "+conflict.String())
	}
	m.lastRun = &lastRun{rec: rec, spec: spec.Clone()}
	m.activeTask = id
	m.followOutput()
	m.stdin.Reset()
	m.notice = ""
}

func (m *DashboardModel) submitPrompt(p *textPrompt) {
	value := p.value()
	switch p.kind {
	case promptRename:
		if err := m.sup.Rename(p.target, value); err != nil {
			m.setNotice(err.Error(), true)
		}

	case promptCustom:
		rec, ok := m.selectedProject()
		if !ok || m.cfg == nil {
			return
		}
		c, err := commands.ParseCustom(value, len(m.customFor(rec.Path))+1)
		if err != nil {
			m.setNotice(err.Error(), true)
			return
		}
		if err := m.cfg.AddCustom(rec.Path, c); err != nil {
			m.setNotice("Custom command not saved: "+err.Error(), true)
			return
		}
		m.setNotice("Added "+c.Label, false)

	case promptPackage:
		rec, ok := m.selectedProject()
		if !ok {
			return
		}
		var (
			spec project.CommandSpec
			err  error
		)
		switch strings.ToLower(value) {
		case "install":
			spec, err = commands.InstallSpec(rec)
		case "venv":
			if rec.Type != project.TypePython {
				err = fmt.Errorf("venv is only available for Python projects")
			}
			spec = commands.VenvSpec()
		default:
			op, pkg := parsePackageInput(value)
			spec, err = commands.PackageSpec(rec, op, pkg)
		}
		if err != nil {
			m.setNotice(err.Error(), true)
			return
		}
		m.startSpec(rec, spec)
	}
}

// parsePackageInput reads "add x", "remove x" or a bare package name.
func parsePackageInput(input string) (commands.PackageOp, string) {
	verb, rest, ok := strings.Cut(strings.TrimSpace(input), " ")
	if ok {
		switch strings.ToLower(verb) {
		case "add", "install", "a":
			return commands.OpAdd, strings.TrimSpace(rest)
		case "remove", "rm", "uninstall", "r":
			return commands.OpRemove, strings.TrimSpace(rest)
		}
	}
	return commands.OpAdd, strings.TrimSpace(input)
}

func (m *DashboardModel) killActive() {
	if m.activeTask == "" {
		return
	}
	id := m.activeTask
	if err := m.sup.Kill(id); err != nil {
		m.setNotice(err.Error(), true)
	}
	if _, ok := m.sup.Get(id); !ok {
		m.activeTask = ""
		m.followOutput()
	}
}

func (m *DashboardModel) exportActive() {
	if m.activeTask == "" {
		return
	}
	path, err := m.sup.ExportLog(m.activeTask, m.exportDir)
	if err != nil {
		m.setNotice("✗ Export failed: "+err.Error(), true)
		return
	}
	m.setNotice("✓ Logs exported to "+path, false)
}

// refreshOutput loads the attached task's log into the output viewport. The
// view keeps following new lines only while it is scrolled to the bottom.
func (m *DashboardModel) refreshOutput() {
	lines := m.sup.Lines(m.activeTask)
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = lipgloss.NewStyle().MaxWidth(m.output.Width).Render(m.renderLine(l))
	}

	atBottom := m.output.AtBottom()
	m.output.SetContent(strings.Join(rendered, "\n"))
	if atBottom {
		m.output.GotoBottom()
	}
}

// followOutput resets the output viewport to the live tail.
func (m *DashboardModel) followOutput() {
	m.output.SetContent("")
	m.output.GotoTop()
	m.refreshOutput()
}

// scrollOutput moves the output viewport delta lines towards older output.
func (m *DashboardModel) scrollOutput(delta int) {
	if _, ok := m.sup.Get(m.activeTask); !ok {
		return
	}
	m.refreshOutput()
	m.output.SetYOffset(m.output.YOffset - delta)
}

// linesBelow counts log lines hidden under the bottom of the output viewport.
func (m *DashboardModel) linesBelow() int {
	return max(0, m.output.TotalLineCount()-m.output.YOffset-m.output.Height)
}

func (m *DashboardModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// browserCommand builds the platform opener for url, or nil when there is none.
var browserCommand = func(url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url)
	case "linux":
		return exec.Command("xdg-open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	return nil
}

// openInBrowser opens a URL in the default browser. The opener is reaped in
// the background; done is closed once it has exited.
func openInBrowser(url string) (done <-chan struct{}) {
	cmd := browserCommand(url)
	if cmd == nil {
		return nil
	}
	if err := cmd.Start(); err != nil {
		return nil
	}
	ch := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(ch)
	}()
	return ch
}
