package provisioner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name             string
		files            map[string]string
		expectedManager  PackageManager
		expectedMonorepo bool
	}{
		{
			name:            "no lock file falls back to npm",
			files:           map[string]string{"package.json": `{"name":"app"}`},
			expectedManager: NPM,
		},
		{
			name:            "pnpm lock",
			files:           map[string]string{"package.json": `{}`, "pnpm-lock.yaml": ""},
			expectedManager: PNPM,
		},
		{
			name:             "pnpm workspace file",
			files:            map[string]string{"package.json": `{}`, "pnpm-workspace.yaml": "packages: []"},
			expectedManager:  PNPM,
			expectedMonorepo: true,
		},
		{
			name:             "workspace protocol without lock",
			files:            map[string]string{"package.json": `{"dependencies":{"lib":"workspace:*"}}`},
			expectedManager:  PNPM,
			expectedMonorepo: true,
		},
		{
			name:            "bun lock",
			files:           map[string]string{"package.json": `{}`, "bun.lockb": ""},
			expectedManager: Bun,
		},
		{
			name:             "yarn workspaces",
			files:            map[string]string{"package.json": `{"workspaces":["packages/*"]}`, "yarn.lock": ""},
			expectedManager:  Yarn,
			expectedMonorepo: true,
		},
		{
			name:            "pnpm wins over yarn",
			files:           map[string]string{"package.json": `{}`, "yarn.lock": "", "pnpm-lock.yaml": ""},
			expectedManager: PNPM,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			info := DetectPackageManager(dir)
			if info.Manager != tt.expectedManager {
				t.Errorf("expected manager %s, got %s", tt.expectedManager, info.Manager)
			}
			if info.IsMonorepo != tt.expectedMonorepo {
				t.Errorf("expected monorepo %v, got %v", tt.expectedMonorepo, info.IsMonorepo)
			}
		})
	}
}

func TestPackageArgv(t *testing.T) {
	npm := PackageManagerInfo{Manager: NPM}
	if got := npm.AddArgv("react"); len(got) != 3 || got[1] != "install" {
		t.Errorf("expected npm install react, got %v", got)
	}
	if got := npm.RemoveArgv("react"); got[1] != "uninstall" {
		t.Errorf("expected npm uninstall, got %v", got)
	}

	yarn := PackageManagerInfo{Manager: Yarn}
	if got := yarn.AddArgv("react"); got[0] != "yarn" || got[1] != "add" {
		t.Errorf("expected yarn add, got %v", got)
	}

	pnpm := PackageManagerInfo{Manager: PNPM, IsMonorepo: true}
	if got := pnpm.InstallArgv(); len(got) != 3 || got[2] != "-r" {
		t.Errorf("expected recursive pnpm install, got %v", got)
	}
}
