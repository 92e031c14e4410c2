package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harshul/project-compass/internal/project"
)

// Action is one runnable entry in a project's detail view.
type Action struct {
	Key      string
	Label    string
	Argv     []string
	Source   project.Source
	Shortcut string
}

// Spec returns the CommandSpec behind the action.
func (a Action) Spec() project.CommandSpec {
	return project.CommandSpec{Label: a.Label, Argv: append([]string(nil), a.Argv...), Source: a.Source}
}

// Custom is a user defined command stored in the config file.
type Custom struct {
	Label   string   `json:"label"`
	Command []string `json:"command"`
}

// ErrEmptyCommand is returned when custom command input has no argv.
var ErrEmptyCommand = errors.New("command is empty")

// BuildActions lists the project's merged commands in insertion order, then
// the custom commands in the order they were added. Shortcuts are assigned by
// position, so the same inputs always produce the same shortcuts.
func BuildActions(rec project.Record, custom []Custom) []Action {
	var actions []Action
	for _, c := range rec.Commands.All() {
		actions = append(actions, Action{
			Key:    c.Key,
			Label:  c.Spec.Label,
			Argv:   c.Spec.Argv,
			Source: c.Spec.Source,
		})
	}
	for i, c := range custom {
		if len(c.Command) == 0 {
			continue
		}
		actions = append(actions, Action{
			Key:    "custom-" + strconv.Itoa(i+1),
			Label:  c.Label,
			Argv:   append([]string(nil), c.Command...),
			Source: project.SourceCustom,
		})
	}
	for i := range actions {
		actions[i].Shortcut = Shortcut(i)
	}
	return actions
}

// ReservedLetters are Shift+letter keys the dashboard binds itself. Overflow
// shortcuts skip them so every action stays reachable.
const ReservedLetters = "CDEHKLPQRSTX"

// Shortcut returns the key hint for the action at index: 1..9, then S+A, S+B
// and so on through the unreserved letters. Past those it returns "".
func Shortcut(index int) string {
	if index < 0 {
		return ""
	}
	if index < 9 {
		return strconv.Itoa(index + 1)
	}
	n := index - 9
	for c := 'A'; c <= 'Z'; c++ {
		if strings.ContainsRune(ReservedLetters, c) {
			continue
		}
		if n == 0 {
			return "S+" + string(c)
		}
		n--
	}
	return ""
}

// ByShortcut finds the action whose shortcut matches s.
func ByShortcut(actions []Action, s string) (Action, bool) {
	for _, a := range actions {
		if a.Shortcut != "" && strings.EqualFold(a.Shortcut, s) {
			return a, true
		}
	}
	return Action{}, false
}

// ByKey finds the action for a command key such as build, test or run.
func ByKey(actions []Action, key string) (Action, bool) {
	for _, a := range actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

// ParseCustom parses operator input of the form "label | program args...".
// Without a "|" the whole input is the command and the label defaults to
// "Custom <n>", where n is the next ordinal for the project.
func ParseCustom(input string, ordinal int) (Custom, error) {
	label := ""
	cmdline := input
	if before, after, ok := strings.Cut(input, "|"); ok {
		label = strings.TrimSpace(before)
		cmdline = after
	}
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return Custom{}, ErrEmptyCommand
	}
	if label == "" {
		label = fmt.Sprintf("Custom %d", ordinal)
	}
	return Custom{Label: label, Command: argv}, nil
}
