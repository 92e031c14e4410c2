package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the dashboard
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Enter       key.Binding
	Escape      key.Binding
	Help        key.Binding
	Quit        key.Binding
	Interrupt   key.Binding
	Rescan      key.Binding
	Build       key.Binding
	Test        key.Binding
	Run         key.Binding
	Tasks       key.Binding
	Kill        key.Binding
	Rename      key.Binding
	AddCustom   key.Binding
	Packages    key.Binding
	ClearOutput key.Binding
	Export      key.Binding
	Detach      key.Binding
	Rerun       key.Binding
	HelpCards   key.Binding
	Structure   key.Binding
	OpenURL     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "scroll output up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "scroll output down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "quit"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "kill task / quit"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "rescan"),
		),
		Build: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "build"),
		),
		Test: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "test"),
		),
		Run: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "tasks"),
		),
		Kill: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "kill task"),
		),
		Rename: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename task"),
		),
		AddCustom: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "add command"),
		),
		Packages: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "add/remove package"),
		),
		ClearOutput: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear output"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export log"),
		),
		Detach: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "detach"),
		),
		Rerun: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "rerun last"),
		),
		HelpCards: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "help cards"),
		),
		Structure: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "structure guide"),
		),
		OpenURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Run, k.Tasks, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Escape, k.ScrollUp, k.ScrollDown, k.Rescan},
		{k.Build, k.Test, k.Run, k.Rerun, k.AddCustom, k.Packages, k.OpenURL},
		{k.Tasks, k.Kill, k.Rename, k.Detach, k.ClearOutput, k.Export},
		{k.HelpCards, k.Structure, k.Help, k.Interrupt, k.Quit},
	}
}
