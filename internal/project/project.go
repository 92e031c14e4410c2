package project

import (
	"strings"
)

// Type is the detected ecosystem of a project
type Type string

const (
	TypeNode   Type = "Node.js"
	TypePython Type = "Python"
	TypeRust   Type = "Rust"
	TypeGo     Type = "Go"
	TypeJava   Type = "Java"
	TypeScala  Type = "Scala"
	TypePHP    Type = "PHP"
	TypeRuby   Type = "Ruby"
	TypeDotNet Type = ".NET"
	TypeShell  Type = "Shell"
	TypeCustom Type = "Custom"
)

// Source records where a command came from
type Source string

const (
	SourceBuiltin   Source = "builtin"
	SourceFramework Source = "framework"
	SourcePlugin    Source = "plugin"
	SourceCustom    Source = "custom"
)

// CommandSpec is a labeled argv ready to be spawned.
type CommandSpec struct {
	Label  string   `yaml:"label" json:"label"`
	Argv   []string `yaml:"command" json:"command"`
	Source Source   `yaml:"source,omitempty" json:"source,omitempty"`
}

// Clone returns a deep copy so the argv slice is never shared.
func (c CommandSpec) Clone() CommandSpec {
	out := c
	out.Argv = append([]string(nil), c.Argv...)
	return out
}

// CommandLine joins the argv for display.
func (c CommandSpec) CommandLine() string {
	return strings.Join(c.Argv, " ")
}

// FrameworkRef identifies a framework that matched a project
type FrameworkRef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Metadata is the manifest-derived input to framework matching.
type Metadata struct {
	// Dependencies are declared package names, lowercased and de-duplicated
	Dependencies []string
	// Scripts are declared runnable scripts (package.json scripts, composer scripts)
	Scripts map[string]string
	// PackageManager is the runner used for scripts (npm, pnpm, yarn, bun)
	PackageManager string
}

// HasScript reports whether the manifest declares the named script.
func (m Metadata) HasScript(name string) bool {
	_, ok := m.Scripts[name]
	return ok
}

// Runner returns the package manager used to invoke scripts, defaulting to npm.
func (m Metadata) Runner() string {
	if m.PackageManager == "" {
		return "npm"
	}
	return m.PackageManager
}

// ScriptArgv returns the argv that runs a declared script.
func (m Metadata) ScriptArgv(name string) []string {
	return []string{m.Runner(), "run", name}
}

// Record is one detected project.
type Record struct {
	Path            string
	Name            string
	Type            Type
	Icon            string
	Description     string
	Priority        int
	Manifest        string
	Commands        CommandSet
	Metadata        Metadata
	Frameworks      []FrameworkRef
	MissingBinaries []string
}

// Key identifies a record by path and type.
func (r Record) Key() string {
	return r.Path + "::" + string(r.Type)
}

// HasFramework reports whether a framework with the given id matched.
func (r Record) HasFramework(id string) bool {
	for _, f := range r.Frameworks {
		if f.ID == id {
			return true
		}
	}
	return false
}
