package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harshul/project-compass/internal/commands"
	"github.com/harshul/project-compass/internal/project"
	"github.com/harshul/project-compass/internal/supervisor"
)

// maxListItems bounds the visible part of the project list.
const maxListItems = 14

// View implements tea.Model
func (m *DashboardModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case m.confirmQuit:
		b.WriteString(confirmQuitView(m.styles, m.sup.RunningCount()))
	case m.prompt != nil:
		b.WriteString(m.prompt.view(m.styles))
	case m.showHelp:
		b.WriteString(m.styles.HelpOverlay.Render(m.help.FullHelpView(m.keys.FullHelp())))
	case m.view == viewTasks:
		b.WriteString(m.renderTasks())
	default:
		b.WriteString(m.renderMainView())
	}

	b.WriteString("\n")
	b.WriteString(m.renderOutput())

	if m.cfg != nil {
		cfg := m.cfg.Snapshot()
		if cfg.ShowHelpCards {
			b.WriteString("\n")
			b.WriteString(m.renderHelpCards())
		}
		if cfg.ShowStructureGuide {
			b.WriteString("\n")
			b.WriteString(m.renderStructureGuide())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return m.styles.App.Render(b.String())
}

// renderHeader renders the dashboard header
func (m *DashboardModel) renderHeader() string {
	title := "🧭 Project Compass"

	status := fmt.Sprintf("Projects: %d | Running: %d", len(m.projects), m.sup.RunningCount())
	if m.scanning {
		status = "Scanning… | " + status
	}
	if res := m.resources.Summary(); res != "" {
		status += " | " + res
	}

	headerWidth := max(m.width-4, 40)
	padding := max(headerWidth-lipgloss.Width(title)-lipgloss.Width(status), 1)

	return m.styles.Header.Width(headerWidth).Render(
		title + strings.Repeat(" ", padding) + status + "\n" + m.styles.Dim.Render(m.root),
	)
}

// renderMainView renders the project list beside the selected project
func (m *DashboardModel) renderMainView() string {
	if m.scanErr != nil {
		return m.styles.Error.Render("✗ Scan failed: " + m.scanErr.Error())
	}
	if len(m.projects) == 0 {
		if m.scanning {
			return m.styles.Dim.Render("Looking for projects…")
		}
		return m.styles.Dim.Render("No projects found. Press ctrl+r to rescan.")
	}

	listWidth := max(m.width/3, 28)
	detailWidth := max(m.width-listWidth-8, 40)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderProjectList(listWidth),
		m.renderDetail(detailWidth),
	)
}

// renderProjectList renders the scrollable list of projects
func (m *DashboardModel) renderProjectList(width int) string {
	start := 0
	if m.selectedIndex >= maxListItems {
		start = m.selectedIndex - maxListItems + 1
	}
	end := min(start+maxListItems, len(m.projects))

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, m.renderProjectItem(i, m.projects[i], width-2))
	}
	if end < len(m.projects) {
		lines = append(lines, m.styles.Dim.Render(fmt.Sprintf("  … %d more", len(m.projects)-end)))
	}

	return m.styles.ProjectList.Width(width).Render(strings.Join(lines, "\n"))
}

// renderProjectItem renders a single project row
func (m *DashboardModel) renderProjectItem(index int, rec project.Record, width int) string {
	cursor := "  "
	if index == m.selectedIndex {
		cursor = "› "
	}

	line := fmt.Sprintf("%s%s %s", cursor, rec.Icon, rec.Name)
	if len(rec.MissingBinaries) > 0 {
		line += " " + m.styles.Warning.Render("⚠")
	}
	line = lipgloss.NewStyle().MaxWidth(width).Render(line)

	if index == m.selectedIndex {
		return m.styles.ProjectSelected.Width(width).Render(line)
	}
	return m.styles.ProjectItem.Render(line)
}

// renderDetail renders the selected project and, in detail mode, its actions
func (m *DashboardModel) renderDetail(width int) string {
	rec, ok := m.selectedProject()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(rec.Icon+" "+rec.Name) + "\n")
	b.WriteString(m.styles.Dim.Render(fmt.Sprintf("%s · %s", rec.Type, rec.Manifest)) + "\n")
	b.WriteString(m.styles.Dim.Render(rec.Path) + "\n")
	if rec.Description != "" {
		b.WriteString(rec.Description + "\n")
	}

	if len(rec.Frameworks) > 0 {
		names := make([]string, 0, len(rec.Frameworks))
		for _, f := range rec.Frameworks {
			names = append(names, strings.TrimSpace(f.Icon+" "+f.Name))
		}
		b.WriteString("Frameworks: " + strings.Join(names, ", ") + "\n")
	}
	if len(rec.MissingBinaries) > 0 {
		b.WriteString(m.styles.Warning.Render("⚠ Missing: "+strings.Join(rec.MissingBinaries, ", ")) + "\n")
	}

	actions := m.actions(rec)
	b.WriteString("\n")
	if !m.detail {
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("Press enter to view %d actions", len(actions))))
		return m.styles.Detail.Width(width).Render(b.String())
	}

	if len(actions) == 0 {
		b.WriteString(m.styles.Dim.Render("No commands detected. Press C to add one."))
	}
	for _, a := range actions {
		b.WriteString(m.renderAction(a, width-4) + "\n")
	}

	return m.styles.Detail.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *DashboardModel) renderAction(a commands.Action, width int) string {
	shortcut := a.Shortcut
	if shortcut == "" {
		shortcut = "·"
	}
	line := fmt.Sprintf("%s %s  %s", m.styles.Shortcut.Render(fmt.Sprintf("[%s]", shortcut)), a.Label,
		m.styles.Dim.Render(strings.Join(a.Argv, " ")))
	if a.Source != project.SourceBuiltin {
		line += m.styles.Dim.Render(" (" + string(a.Source) + ")")
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// renderTasks renders the task list
func (m *DashboardModel) renderTasks() string {
	tasks := m.sup.Tasks()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Tasks (%d)", len(tasks))) + "\n")
	if len(tasks) == 0 {
		b.WriteString(m.styles.Dim.Render("No tasks yet. Run a command from a project."))
		return m.styles.Detail.Render(b.String())
	}

	for _, t := range tasks {
		cursor := "  "
		if t.ID == m.activeTask {
			cursor = "› "
		}
		elapsed := t.EndedAt
		if elapsed.IsZero() {
			elapsed = time.Now()
		}
		line := fmt.Sprintf("%s%s  %s  %s  %s", cursor, m.renderStatus(t.Status), t.Name,
			m.styles.Dim.Render(t.ProjectPath),
			m.styles.Dim.Render(elapsed.Sub(t.StartedAt).Round(time.Second).String()))
		if t.ID == m.activeTask {
			line = m.styles.ProjectSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(m.styles.Dim.Render("↑/↓ select • K kill • R rename • enter back"))

	return m.styles.Detail.Render(b.String())
}

// renderStatus renders a task status badge
func (m *DashboardModel) renderStatus(status supervisor.Status) string {
	label := strings.ToUpper(string(status))
	switch status {
	case supervisor.StatusRunning:
		return m.styles.StatusRunning.Render(label)
	case supervisor.StatusFinished:
		return m.styles.StatusFinished.Render(label)
	case supervisor.StatusFailed:
		return m.styles.StatusFailed.Render(label)
	case supervisor.StatusKilled:
		return m.styles.StatusKilled.Render(label)
	default:
		return label
	}
}

// renderOutput renders the log viewport of the attached task and its stdin box
func (m *DashboardModel) renderOutput() string {
	width := max(m.width-4, 40)

	info, ok := m.sup.Get(m.activeTask)
	if !ok {
		return m.styles.Output.Width(width).Render(
			m.styles.Dim.Render("Select a task or run a command to see logs."))
	}

	var b strings.Builder
	title := fmt.Sprintf("Output: %s %s", info.Name, m.renderStatus(info.Status))
	m.refreshOutput()
	mode := "Live log view"
	if below := m.linesBelow(); below > 0 {
		mode = fmt.Sprintf("Scrolled %d lines", below)
	}
	padding := max(width-4-lipgloss.Width(title)-lipgloss.Width(mode), 1)
	b.WriteString(m.styles.Title.Render(title) + strings.Repeat(" ", padding) + m.styles.Dim.Render(mode) + "\n")

	if info.LogLines == 0 {
		b.WriteString(m.styles.Dim.Render("Waiting for output…") + "\n")
	} else {
		b.WriteString(m.output.View() + "\n")
	}

	if info.URL != "" {
		b.WriteString(m.styles.URL.Render("➜ "+info.URL) + m.styles.Dim.Render("  (o to open)") + "\n")
	}

	if info.Running() {
		b.WriteString(m.styles.Stdin.Render("Stdin "+m.stdin.View()))
	} else {
		b.WriteString(m.styles.StdinIdle.Render("Input ready · start a command to feed stdin"))
	}

	return m.styles.Output.Width(width).Render(b.String())
}

func (m *DashboardModel) renderLine(l supervisor.Line) string {
	switch l.Kind {
	case supervisor.KindStderr:
		return m.styles.LogStderr.Render(l.Text)
	case supervisor.KindInfo:
		return m.styles.LogInfo.Render(l.Text)
	case supervisor.KindSuccess:
		return m.styles.LogOK.Render(l.Text)
	case supervisor.KindWarning:
		return m.styles.LogWarn.Render(l.Text)
	case supervisor.KindError:
		return m.styles.LogError.Render(l.Text)
	default:
		return m.styles.LogStdout.Render(l.Text)
	}
}

// renderHelpCards renders the quick reference cards
func (m *DashboardModel) renderHelpCards() string {
	card := func(title string, rows ...string) string {
		return m.styles.Card.Render(m.styles.Title.Render(title) + "\n" + strings.Join(rows, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Navigation", "↑/↓ move", "enter details", "esc back", "ctrl+r rescan"),
		card("Control", "b/t/r build/test/run", "1-9 actions", "L rerun", "C custom · P packages"),
		card("Tasks", "T task list", "K kill · R rename", "D detach · X clear", "E export log"),
	)
}

// renderStructureGuide lists the manifests each project type is detected by
func (m *DashboardModel) renderStructureGuide() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Structure guide") + "\n")
	for _, s := range m.schemas {
		b.WriteString(fmt.Sprintf("%s %-8s %s\n", s.Icon, s.Type, m.styles.Dim.Render(strings.Join(s.Files, ", "))))
	}
	return m.styles.Card.Render(strings.TrimRight(b.String(), "\n"))
}

// renderFooter renders the key help and the latest notice
func (m *DashboardModel) renderFooter() string {
	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.notice != "" {
		style := m.styles.Notice
		if m.noticeErr {
			style = m.styles.Error
		}
		footer = style.Render(m.notice) + "\n" + footer
	}
	return m.styles.Footer.Width(max(m.width-4, 40)).Render(footer)
}
