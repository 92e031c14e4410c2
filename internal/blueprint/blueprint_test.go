package blueprint

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/harshul/project-compass/internal/project"
)

func sampleRecords(root string) []project.Record {
	return []project.Record{
		{
			Path:     filepath.Join(root, "web"),
			Name:     "web",
			Type:     project.TypeNode,
			Priority: 115,
			Manifest: "package.json",
			Commands: project.NewCommandSet(
				project.Command{Key: "build", Spec: project.CommandSpec{Label: "Build", Argv: []string{"npm", "run", "build"}, Source: project.SourceBuiltin}},
				project.Command{Key: "run", Spec: project.CommandSpec{Label: "Next dev", Argv: []string{"npx", "next", "dev"}, Source: project.SourceFramework}},
			),
			Frameworks: []project.FrameworkRef{{ID: "next", Name: "Next.js"}},
		},
		{
			Path:            filepath.Join(root, "docs"),
			Name:            "docs",
			Type:            project.TypeCustom,
			Priority:        10,
			Manifest:        "README.md",
			MissingBinaries: []string{"make"},
		},
	}
}

func TestFromRecords(t *testing.T) {
	root := t.TempDir()
	bp := FromRecords(root, sampleRecords(root))

	if len(bp.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(bp.Projects))
	}
	web := bp.Projects[0]
	if web.Path != "web" {
		t.Errorf("expected relative path 'web', got '%s'", web.Path)
	}
	if len(web.Frameworks) != 1 || web.Frameworks[0] != "Next.js" {
		t.Errorf("expected frameworks [Next.js], got %v", web.Frameworks)
	}
	if len(web.Commands) != 2 || web.Commands[1].Key != "run" || web.Commands[1].Source != "framework" {
		t.Errorf("unexpected commands: %+v", web.Commands)
	}
	if bp.Projects[1].Commands != nil {
		t.Errorf("expected no commands for docs, got %+v", bp.Projects[1].Commands)
	}
}

func TestWriteRead(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "compass.yaml")

	if err := Write(path, FromRecords(root, sampleRecords(root))); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	bp, err := Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if bp.Root != root {
		t.Errorf("expected root %s, got %s", root, bp.Root)
	}
	if got := bp.Projects[0].Commands[0].Command; len(got) != 3 || got[2] != "build" {
		t.Errorf("expected npm run build, got %v", got)
	}
	if got := bp.Projects[1].MissingBinaries; len(got) != 1 || got[0] != "make" {
		t.Errorf("expected missing [make], got %v", got)
	}
}

func TestEncodeUsesFlowCommands(t *testing.T) {
	root := t.TempDir()
	var buf bytes.Buffer

	if err := Encode(&buf, FromRecords(root, sampleRecords(root))); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if !bytes.Contains(buf.Bytes(), []byte("command: [npm, run, build]")) {
		t.Errorf("expected flow style command, got:\n%s", buf.String())
	}
}

func TestReadInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"missing root", "projects: []\n"},
		{"project without type", "root: /x\nprojects:\n  - name: a\n"},
		{"not yaml", "root: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Read(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
