package doctor

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/harshul/project-compass/internal/project"
)

// RuntimeStatus represents the status of a runtime check
type RuntimeStatus struct {
	Name      string
	Binary    string
	Installed bool
	Version   string
	Path      string
}

// probe describes how to ask a toolchain for its version
type probe struct {
	name   string
	binary string
	args   []string
}

// PythonBinary is the interpreter name used for Python projects on this platform.
func PythonBinary() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

func probes() []probe {
	return []probe{
		{"Node.js", "node", []string{"--version"}},
		{"npm", "npm", []string{"--version"}},
		{"Python", PythonBinary(), []string{"--version"}},
		{"Rust / Cargo", "cargo", []string{"--version"}},
		{"Go", "go", []string{"version"}},
		// Java prints its version to stderr
		{"Java", "java", []string{"-version"}},
		{"PHP", "php", []string{"-v"}},
		{"Ruby", "ruby", []string{"--version"}},
		{".NET", "dotnet", []string{"--version"}},
	}
}

// Checker looks up toolchains on PATH. Both hooks can be replaced in tests.
type Checker struct {
	LookPath func(file string) (string, error)
	Output   func(ctx context.Context, name string, args ...string) ([]byte, error)
	Timeout  time.Duration
}

// NewChecker returns a Checker backed by the real PATH.
func NewChecker() *Checker {
	return &Checker{
		LookPath: exec.LookPath,
		Output: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
		Timeout: 3 * time.Second,
	}
}

// Missing returns the binaries that are not found on PATH, in input order.
func (c *Checker) Missing(binaries []string) []string {
	var missing []string
	for _, b := range binaries {
		if _, err := c.LookPath(b); err != nil {
			missing = append(missing, b)
		}
	}
	return missing
}

// Runtimes reports every known toolchain with its version when installed.
func (c *Checker) Runtimes(ctx context.Context) []RuntimeStatus {
	var out []RuntimeStatus
	for _, p := range probes() {
		out = append(out, c.check(ctx, p))
	}
	return out
}

func (c *Checker) check(ctx context.Context, p probe) RuntimeStatus {
	status := RuntimeStatus{Name: p.name, Binary: p.binary}

	path, err := c.LookPath(p.binary)
	if err != nil {
		return status
	}
	status.Installed = true
	status.Path = path

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	output, err := c.Output(ctx, p.binary, p.args...)
	if err == nil {
		status.Version = firstLine(string(output))
	}
	return status
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Diagnosis contains the health check results for one project
type Diagnosis struct {
	ProjectPath string
	Type        project.Type
	Missing     []string
	Healthy     bool
	Issues      []string
}

// Diagnose reports the missing toolchains recorded for each project.
func Diagnose(records []project.Record) []Diagnosis {
	out := make([]Diagnosis, 0, len(records))
	for _, r := range records {
		d := Diagnosis{
			ProjectPath: r.Path,
			Type:        r.Type,
			Missing:     append([]string(nil), r.MissingBinaries...),
			Healthy:     len(r.MissingBinaries) == 0,
		}
		for _, b := range r.MissingBinaries {
			d.Issues = append(d.Issues, b+" is not installed")
		}
		if r.Commands.Len() == 0 {
			d.Issues = append(d.Issues, "no commands detected; add a custom command")
		}
		out = append(out, d)
	}
	return out
}
