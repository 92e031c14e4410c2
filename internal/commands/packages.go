package commands

import (
	"fmt"
	"strings"

	"github.com/harshul/project-compass/internal/doctor"
	"github.com/harshul/project-compass/internal/framework"
	"github.com/harshul/project-compass/internal/project"
	"github.com/harshul/project-compass/internal/provisioner"
)

// PackageOp is a package registry operation
type PackageOp string

const (
	OpAdd    PackageOp = "add"
	OpRemove PackageOp = "remove"
)

// PackageSpec returns the command that adds or removes a dependency for the
// project's ecosystem.
func PackageSpec(rec project.Record, op PackageOp, pkg string) (project.CommandSpec, error) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return project.CommandSpec{}, ErrEmptyCommand
	}

	var argv []string
	switch rec.Type {
	case project.TypeNode:
		info := provisioner.PackageManagerInfo{Manager: provisioner.PackageManager(rec.Metadata.Runner())}
		if op == OpAdd {
			argv = info.AddArgv(pkg)
		} else {
			argv = info.RemoveArgv(pkg)
		}
	case project.TypePython:
		py := doctor.PythonBinary()
		if op == OpAdd {
			argv = []string{py, "-m", "pip", "install", pkg}
		} else {
			argv = []string{py, "-m", "pip", "uninstall", "-y", pkg}
		}
	case project.TypeRust:
		argv = []string{"cargo", string(op), pkg}
	case project.TypeGo:
		if op == OpAdd {
			argv = []string{"go", "get", pkg}
		} else {
			argv = []string{"go", "get", pkg + "@none"}
		}
	case project.TypeDotNet:
		argv = []string{"dotnet", string(op), "package", pkg}
	case project.TypePHP:
		if op == OpAdd {
			argv = []string{"composer", "require", pkg}
		} else {
			argv = []string{"composer", "remove", pkg}
		}
	case project.TypeRuby:
		argv = []string{"bundle", string(op), pkg}
	default:
		return project.CommandSpec{}, fmt.Errorf("no package manager for %s projects", rec.Type)
	}

	verb := "Add"
	if op == OpRemove {
		verb = "Remove"
	}
	return project.CommandSpec{
		Label:  fmt.Sprintf("%s %s", verb, pkg),
		Argv:   argv,
		Source: project.SourceBuiltin,
	}, nil
}

// InstallSpec returns the command that installs every declared dependency.
func InstallSpec(rec project.Record) (project.CommandSpec, error) {
	label := "Install dependencies"
	var argv []string
	switch rec.Type {
	case project.TypeNode:
		info := provisioner.PackageManagerInfo{Manager: provisioner.PackageManager(rec.Metadata.Runner())}
		argv = info.InstallArgv()
		label += " (" + provisioner.GetManagerName(info.Manager) + ")"
	case project.TypePython:
		py := doctor.PythonBinary()
		if framework.HasFile(rec.Path, "requirements.txt") {
			argv = []string{py, "-m", "pip", "install", "-r", "requirements.txt"}
		} else {
			argv = []string{py, "-m", "pip", "install", "-e", "."}
		}
	case project.TypeRust:
		argv = []string{"cargo", "fetch"}
	case project.TypeGo:
		argv = []string{"go", "mod", "download"}
	case project.TypeDotNet:
		argv = []string{"dotnet", "restore"}
	case project.TypePHP:
		argv = []string{"composer", "install"}
	case project.TypeRuby:
		argv = []string{"bundle", "install"}
	default:
		return project.CommandSpec{}, fmt.Errorf("no package manager for %s projects", rec.Type)
	}
	return project.CommandSpec{Label: label, Argv: argv, Source: project.SourceBuiltin}, nil
}

// VenvSpec returns the command that creates a Python virtual environment.
func VenvSpec() project.CommandSpec {
	return project.CommandSpec{
		Label:  "Create venv",
		Argv:   []string{doctor.PythonBinary(), "-m", "venv", ".venv"},
		Source: project.SourceBuiltin,
	}
}
