package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the dashboard
type Styles struct {
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	ProjectList     lipgloss.Style
	ProjectItem     lipgloss.Style
	ProjectSelected lipgloss.Style
	Detail          lipgloss.Style
	Title           lipgloss.Style
	Dim             lipgloss.Style
	Shortcut        lipgloss.Style
	Warning         lipgloss.Style

	StatusRunning  lipgloss.Style
	StatusFinished lipgloss.Style
	StatusFailed   lipgloss.Style
	StatusKilled   lipgloss.Style

	Output    lipgloss.Style
	LogStdout lipgloss.Style
	LogStderr lipgloss.Style
	LogInfo   lipgloss.Style
	LogOK     lipgloss.Style
	LogWarn   lipgloss.Style
	LogError  lipgloss.Style
	URL       lipgloss.Style

	Stdin       lipgloss.Style
	StdinIdle   lipgloss.Style
	Prompt      lipgloss.Style
	Confirm     lipgloss.Style
	Card        lipgloss.Style
	HelpOverlay lipgloss.Style
	Notice      lipgloss.Style
	Error       lipgloss.Style
}

// DefaultStyles returns the default color scheme
func DefaultStyles() *Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
	highlight := lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}
	success := lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"}
	warning := lipgloss.AdaptiveColor{Light: "#AAAA00", Dark: "#FFFF00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF0000"}
	info := lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"}
	border := lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"}

	return &Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(subtle).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(subtle).
			Padding(0, 1),

		ProjectList: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1),

		ProjectItem: lipgloss.NewStyle(),

		ProjectSelected: lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#333333"}).
			Bold(true),

		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight),

		Dim: lipgloss.NewStyle().
			Foreground(subtle),

		Shortcut: lipgloss.NewStyle().
			Foreground(info).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(warning),

		StatusRunning: lipgloss.NewStyle().
			Foreground(info).
			Bold(true),

		StatusFinished: lipgloss.NewStyle().
			Foreground(success),

		StatusFailed: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),

		StatusKilled: lipgloss.NewStyle().
			Foreground(warning),

		Output: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		LogStdout: lipgloss.NewStyle(),
		LogStderr: lipgloss.NewStyle().
			Foreground(errorColor),
		LogInfo: lipgloss.NewStyle().
			Foreground(subtle),
		LogOK: lipgloss.NewStyle().
			Foreground(success),
		LogWarn: lipgloss.NewStyle().
			Foreground(warning),
		LogError: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),

		URL: lipgloss.NewStyle().
			Bold(true).
			Foreground(success).
			Underline(true),

		Stdin: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(success).
			Padding(0, 1),

		StdinIdle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		Prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1),

		Confirm: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			MarginRight(1),

		HelpOverlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(info).
			Padding(0, 1),

		Notice: lipgloss.NewStyle().
			Foreground(info),

		Error: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),
	}
}
