package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/project-compass/internal/project"
)

func sampleRecord() project.Record {
	return project.Record{
		Path: "/work/api",
		Type: project.TypeNode,
		Commands: project.NewCommandSet(
			project.Command{Key: "build", Spec: project.CommandSpec{Label: "Build", Argv: []string{"npm", "run", "build"}, Source: project.SourceBuiltin}},
			project.Command{Key: "run", Spec: project.CommandSpec{Label: "Next dev", Argv: []string{"npx", "next", "dev"}, Source: project.SourceFramework}},
			project.Command{Key: "start", Spec: project.CommandSpec{Label: "Next start", Argv: []string{"npx", "next", "start"}, Source: project.SourceFramework}},
		),
	}
}

func TestBuildActionsOrder(t *testing.T) {
	custom := []Custom{
		{Label: "Seed", Command: []string{"npm", "run", "seed"}},
		{Label: "Broken"},
		{Label: "Lint", Command: []string{"npx", "eslint", "."}},
	}

	actions := BuildActions(sampleRecord(), custom)

	require.Len(t, actions, 5)
	var labels, shortcuts []string
	for _, a := range actions {
		labels = append(labels, a.Label)
		shortcuts = append(shortcuts, a.Shortcut)
	}
	assert.Equal(t, []string{"Build", "Next dev", "Next start", "Seed", "Lint"}, labels)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, shortcuts)
	assert.Equal(t, project.SourceCustom, actions[3].Source)
	assert.Equal(t, project.SourceFramework, actions[1].Source)
}

func TestBuildActionsIsStable(t *testing.T) {
	rec := sampleRecord()
	custom := []Custom{{Label: "Seed", Command: []string{"npm", "run", "seed"}}}

	assert.Equal(t, BuildActions(rec, custom), BuildActions(rec, custom))
}

func TestShortcut(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "1"},
		{8, "9"},
		{9, "S+A"},
		{10, "S+B"},
		{11, "S+F"},
		{22, "S+Z"},
		{23, ""},
		{-1, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("index %d", tt.index), func(t *testing.T) {
			assert.Equal(t, tt.want, Shortcut(tt.index))
		})
	}
}

func TestBuildActionsOverflowShortcuts(t *testing.T) {
	var custom []Custom
	for i := 0; i < 12; i++ {
		custom = append(custom, Custom{Label: fmt.Sprintf("c%d", i), Command: []string{"echo", fmt.Sprint(i)}})
	}

	actions := BuildActions(project.Record{}, custom)

	a, ok := ByShortcut(actions, "s+b")
	require.True(t, ok)
	assert.Equal(t, "c10", a.Label)

	_, ok = ByKey(actions, "custom-12")
	assert.True(t, ok)
}

func TestParseCustom(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLabel string
		wantArgv  []string
		wantErr   bool
	}{
		{"label and command", "Seed DB | npm run seed", "Seed DB", []string{"npm", "run", "seed"}, false},
		{"no label", "make docs", "Custom 3", []string{"make", "docs"}, false},
		{"empty label", " | go vet ./...", "Custom 3", []string{"go", "vet", "./..."}, false},
		{"empty command", "Label |   ", "", nil, true},
		{"blank", "", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCustom(tt.input, 3)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, c.Label)
			assert.Equal(t, tt.wantArgv, c.Command)
		})
	}
}

func TestPackageSpec(t *testing.T) {
	tests := []struct {
		name string
		rec  project.Record
		op   PackageOp
		want []string
	}{
		{"npm add", project.Record{Type: project.TypeNode}, OpAdd, []string{"npm", "install", "zod"}},
		{"yarn remove", project.Record{Type: project.TypeNode, Metadata: project.Metadata{PackageManager: "yarn"}}, OpRemove, []string{"yarn", "remove", "zod"}},
		{"cargo add", project.Record{Type: project.TypeRust}, OpAdd, []string{"cargo", "add", "zod"}},
		{"dotnet remove", project.Record{Type: project.TypeDotNet}, OpRemove, []string{"dotnet", "remove", "package", "zod"}},
		{"composer add", project.Record{Type: project.TypePHP}, OpAdd, []string{"composer", "require", "zod"}},
		{"go remove", project.Record{Type: project.TypeGo}, OpRemove, []string{"go", "get", "zod@none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := PackageSpec(tt.rec, tt.op, "zod")
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Argv)
		})
	}

	_, err := PackageSpec(project.Record{Type: project.TypeCustom}, OpAdd, "zod")
	assert.Error(t, err)

	_, err = PackageSpec(project.Record{Type: project.TypeNode}, OpAdd, "  ")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestInstallSpec(t *testing.T) {
	spec, err := InstallSpec(project.Record{Type: project.TypeNode, Metadata: project.Metadata{PackageManager: "pnpm"}})
	require.NoError(t, err)
	assert.Equal(t, "pnpm", spec.Argv[0])
	assert.Equal(t, "Install dependencies (pnpm)", spec.Label)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("flask\n"), 0o644))
	spec, err = InstallSpec(project.Record{Type: project.TypePython, Path: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"-m", "pip", "install", "-r", "requirements.txt"}, spec.Argv[1:])

	spec, err = InstallSpec(project.Record{Type: project.TypeGo})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "mod", "download"}, spec.Argv)

	_, err = InstallSpec(project.Record{Type: project.TypeShell})
	assert.Error(t, err)
}

func TestVenvSpec(t *testing.T) {
	spec := VenvSpec()
	assert.Equal(t, []string{"-m", "venv", ".venv"}, spec.Argv[1:])
}
