package framework

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/project-compass/internal/project"
)

func TestDependencyMatches(t *testing.T) {
	tests := []struct {
		name   string
		deps   []string
		target string
		want   bool
	}{
		{"exact", []string{"vue"}, "vue", true},
		{"case insensitive", []string{"React"}, "react", true},
		{"version suffix", []string{"next@14.1.0"}, "next", true},
		{"scoped name", []string{"@acme/vue"}, "vue", true},
		{"scoped with version", []string{"@acme/vue@3"}, "vue", true},
		{"substring is not a match", []string{"vuex-something"}, "vue", false},
		{"scoped substring is not a match", []string{"@nuxt/vue-app"}, "vue", false},
		{"prefix without @ is not a match", []string{"nextra"}, "next", false},
		{"scoped target exact", []string{"@nestjs/core"}, "@nestjs/core", true},
		{"scoped target under other scope", []string{"@other/@nestjs/core"}, "@nestjs/core", false},
		{"go module path", []string{"github.com/gin-gonic/gin"}, "github.com/gin-gonic/gin", true},
		{"empty target", []string{"vue"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DependencyMatches(tt.deps, tt.target))
		})
	}
}

func nodeRecord(dir string, deps []string, scripts map[string]string) project.Record {
	var cmds project.CommandSet
	for _, name := range []string{"build", "start"} {
		if _, ok := scripts[name]; ok {
			key := name
			if name == "start" {
				key = "run"
			}
			cmds.Set(key, project.CommandSpec{Label: name, Argv: []string{"npm", "run", name}, Source: project.SourceBuiltin})
		}
	}
	return project.Record{
		Path:     dir,
		Name:     "api",
		Type:     project.TypeNode,
		Priority: 100,
		Commands: cmds,
		Metadata: project.Metadata{Dependencies: deps, Scripts: scripts},
	}
}

func TestMatchesGates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), nil, 0o644))
	rec := nodeRecord(dir, []string{"express"}, map[string]string{"dev": "node ."})

	tests := []struct {
		name string
		fw   Framework
		want bool
	}{
		{"no gates", Framework{ID: "any"}, true},
		{"language gate passes", Framework{Languages: []project.Type{"node.js"}}, true},
		{"language gate fails", Framework{Languages: []project.Type{project.TypePython}}, false},
		{"file gate any of", Framework{Files: []string{"missing", "marker.txt"}}, true},
		{"file gate fails", Framework{Files: []string{"missing"}}, false},
		{"dependency gate", Framework{Dependencies: []string{"koa", "express"}}, true},
		{"dependency gate fails", Framework{Dependencies: []string{"koa"}}, false},
		{"script gate", Framework{Scripts: []string{"dev"}}, true},
		{"script gate fails", Framework{Scripts: []string{"serve"}}, false},
		{"predicate fails", Framework{Match: func(project.Record) bool { return false }}, false},
		{
			"all gates must pass",
			Framework{Dependencies: []string{"express"}, Scripts: []string{"serve"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.fw, rec))
		})
	}
}

func TestEnrichNextOverridesRun(t *testing.T) {
	dir := t.TempDir()
	rec := nodeRecord(dir, []string{"next", "react"}, map[string]string{"build": "x", "start": "y"})

	out := NewCatalog("", nil).Enrich(rec)

	require.True(t, out.HasFramework("next"))
	assert.GreaterOrEqual(t, out.Priority, 115)

	run, ok := out.Commands.Get("run")
	require.True(t, ok)
	assert.Equal(t, []string{"npx", "next", "dev"}, run.Argv)
	assert.Equal(t, project.SourceFramework, run.Source)

	build, _ := out.Commands.Get("build")
	assert.Equal(t, []string{"npm", "run", "build"}, build.Argv)

	start, _ := out.Commands.Get("start")
	assert.Equal(t, []string{"npm", "run", "start"}, start.Argv)

	_, ok = out.Commands.Get("test")
	assert.True(t, ok)

	// builtin keys keep their slots, framework keys append
	assert.Equal(t, []string{"build", "run", "test", "start"}, out.Commands.Keys())

	// the input record is untouched
	orig, _ := rec.Commands.Get("run")
	assert.Equal(t, []string{"npm", "run", "start"}, orig.Argv)
	assert.Empty(t, rec.Frameworks)
}

func TestEnrichPlainNode(t *testing.T) {
	rec := nodeRecord(t.TempDir(), []string{"express"}, map[string]string{"build": "x", "start": "y"})

	out := NewCatalog("", nil).Enrich(rec)

	assert.Empty(t, out.Frameworks)
	assert.Equal(t, 100, out.Priority)
	assert.Equal(t, []string{"build", "run"}, out.Commands.Keys())
}

func TestEnrichLastFrameworkWinsPerKey(t *testing.T) {
	first := Framework{
		ID: "first", Priority: 120,
		Commands: func(project.Record) project.CommandSet {
			return project.NewCommandSet(project.Command{Key: "run", Spec: project.CommandSpec{Label: "first", Argv: []string{"a"}}})
		},
	}
	second := Framework{
		ID: "second", Priority: 90,
		Commands: func(project.Record) project.CommandSet {
			return project.NewCommandSet(project.Command{Key: "run", Spec: project.CommandSpec{Label: "second", Argv: []string{"b"}}})
		},
	}
	rec := project.Record{Path: t.TempDir(), Type: project.TypeGo, Priority: 85}

	out := NewStaticCatalog(first, second).Enrich(rec)

	run, _ := out.Commands.Get("run")
	assert.Equal(t, "second", run.Label)
	assert.Equal(t, 120, out.Priority)
	assert.Equal(t, []project.FrameworkRef{{ID: "first"}, {ID: "second"}}, out.Frameworks)
}

func TestEnrichIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vite.config.ts"), nil, 0o644))
	rec := nodeRecord(dir, []string{"react", "vite", "tailwindcss"}, map[string]string{"dev": "vite"})
	catalog := NewCatalog("", nil)

	a := catalog.Enrich(rec)
	b := catalog.Enrich(rec)

	assert.Equal(t, a.Frameworks, b.Frameworks)
	assert.Equal(t, a.Commands.All(), b.Commands.All())
	assert.True(t, a.HasFramework("react"))
	assert.True(t, a.HasFramework("vite"))
	assert.True(t, a.HasFramework("tailwind"))
}

func TestEnrichFastAPIUsesModulePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.py"), nil, 0o644))
	rec := project.Record{
		Path: dir, Type: project.TypePython, Priority: 95,
		Metadata: project.Metadata{Dependencies: []string{"fastapi"}},
	}

	out := NewCatalog("", nil).Enrich(rec)

	run, ok := out.Commands.Get("run")
	require.True(t, ok)
	assert.Equal(t, []string{"uvicorn", "src.main:app", "--reload"}, run.Argv)
}

func TestEnrichSpringPrefersGradleWrapper(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gradlew"), nil, 0o755))
	rec := project.Record{
		Path: dir, Type: project.TypeJava, Priority: 80,
		Metadata: project.Metadata{Dependencies: []string{"spring-boot-starter-web", "spring-boot-starter"}},
	}

	out := NewCatalog("", nil).Enrich(rec)

	run, _ := out.Commands.Get("run")
	assert.Equal(t, []string{"./gradlew", "bootRun"}, run.Argv)
	assert.Equal(t, 105, out.Priority)
}
