package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptRename promptKind = iota
	promptCustom
	promptPackage
)

// textPrompt is an inline text input shown over the dashboard.
type textPrompt struct {
	kind        promptKind
	title       string
	description string
	target      string
	input       textinput.Model
}

func newTextPrompt(kind promptKind, title, description, placeholder, value string) *textPrompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50
	if value != "" {
		ti.SetValue(value)
	}

	return &textPrompt{
		kind:        kind,
		title:       title,
		description: description,
		input:       ti,
	}
}

// update feeds a key to the prompt. submitted and cancelled are mutually
// exclusive; neither is set while editing.
func (p *textPrompt) update(msg tea.KeyMsg) (submitted, cancelled bool, cmd tea.Cmd) {
	switch msg.String() {
	case "enter":
		return true, false, nil
	case "esc", "ctrl+c":
		return false, true, nil
	}
	p.input, cmd = p.input.Update(msg)
	return false, false, cmd
}

func (p *textPrompt) value() string {
	return strings.TrimSpace(p.input.Value())
}

func (p *textPrompt) view(s *Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("? "+p.title) + "\n")
	if p.description != "" {
		b.WriteString(s.Dim.Render("  "+p.description) + "\n")
	}
	b.WriteString("\n  " + p.input.View() + "\n\n")
	b.WriteString(s.Dim.Render("  enter to confirm • esc to cancel"))

	return s.Prompt.Render(b.String())
}

// confirmQuitView renders the quit-while-busy confirmation.
func confirmQuitView(s *Styles, running int) string {
	var b strings.Builder

	b.WriteString(s.Error.Render("⚠ Confirm Exit") + "\n")
	b.WriteString(fmt.Sprintf("There are %d tasks still running in the background.\n", running))
	b.WriteString("Are you sure you want to quit and stop all processes?\n\n")
	b.WriteString(s.Shortcut.Render("Y") + " to Quit, " + s.Shortcut.Render("N") + " to Cancel")

	return s.Confirm.Render(b.String())
}
