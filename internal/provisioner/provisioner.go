package provisioner

import (
	"os"
	"path/filepath"
	"strings"
)

// PackageManager represents a detected Node package manager
type PackageManager string

const (
	NPM  PackageManager = "npm"
	PNPM PackageManager = "pnpm"
	Yarn PackageManager = "yarn"
	Bun  PackageManager = "bun"
)

// PackageManagerInfo contains details about the detected package manager
type PackageManagerInfo struct {
	Manager    PackageManager
	LockFile   string
	IsMonorepo bool
}

// lockFiles are checked in order; the first one present wins.
var lockFiles = []struct {
	name    string
	manager PackageManager
}{
	{"pnpm-lock.yaml", PNPM},
	{"pnpm-workspace.yaml", PNPM},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"yarn.lock", Yarn},
	{"package-lock.json", NPM},
}

// DetectPackageManager checks for lock files in the project root and returns
// the package manager that owns them. Priority: pnpm > bun > yarn > npm.
func DetectPackageManager(projectPath string) PackageManagerInfo {
	info := PackageManagerInfo{Manager: NPM}

	for _, lf := range lockFiles {
		if _, err := os.Stat(filepath.Join(projectPath, lf.name)); err == nil {
			info.Manager = lf.manager
			info.LockFile = lf.name
			break
		}
	}

	pkg := readPackageJSON(projectPath)

	// workspace: protocol is pnpm-specific, even before a lock file exists
	if info.LockFile == "" && strings.Contains(pkg, "\"workspace:") {
		info.Manager = PNPM
	}

	switch info.Manager {
	case PNPM:
		_, err := os.Stat(filepath.Join(projectPath, "pnpm-workspace.yaml"))
		info.IsMonorepo = err == nil || strings.Contains(pkg, "\"workspace:")
	case Yarn, Bun, NPM:
		info.IsMonorepo = strings.Contains(pkg, "\"workspaces\"")
	}

	return info
}

func readPackageJSON(projectPath string) string {
	data, err := os.ReadFile(filepath.Join(projectPath, "package.json"))
	if err != nil {
		return ""
	}
	return string(data)
}

// InstallArgv returns the argv that installs every dependency.
func (i PackageManagerInfo) InstallArgv() []string {
	argv := []string{string(i.Manager), "install"}
	if i.Manager == PNPM && i.IsMonorepo {
		argv = append(argv, "-r")
	}
	return argv
}

// AddArgv returns the argv that adds a package.
func (i PackageManagerInfo) AddArgv(pkg string) []string {
	switch i.Manager {
	case NPM:
		return []string{"npm", "install", pkg}
	default:
		return []string{string(i.Manager), "add", pkg}
	}
}

// RemoveArgv returns the argv that removes a package.
func (i PackageManagerInfo) RemoveArgv(pkg string) []string {
	switch i.Manager {
	case NPM:
		return []string{"npm", "uninstall", pkg}
	default:
		return []string{string(i.Manager), "remove", pkg}
	}
}

// GetManagerName returns a user-friendly name for the package manager
func GetManagerName(manager PackageManager) string {
	switch manager {
	case PNPM:
		return "pnpm"
	case Yarn:
		return "Yarn"
	case Bun:
		return "Bun"
	case NPM:
		return "npm"
	default:
		return string(manager)
	}
}
