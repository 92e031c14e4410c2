package framework

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/harshul/project-compass/internal/project"
)

// Framework refines an already classified project. Every gate that is set must
// pass for the framework to match: Languages, then Files (any of),
// Dependencies (any of), Scripts (any of), then Match.
type Framework struct {
	ID          string
	Name        string
	Icon        string
	Description string
	Priority    int

	Languages    []project.Type
	Files        []string
	Dependencies []string
	Scripts      []string
	Match        func(rec project.Record) bool

	// Commands returns the commands contributed for rec. It receives the base
	// record, never one already enriched by another framework.
	Commands func(rec project.Record) project.CommandSet
	Source   project.Source
}

// Ref returns the descriptor recorded on matching projects.
func (f Framework) Ref() project.FrameworkRef {
	return project.FrameworkRef{ID: f.ID, Name: f.Name, Icon: f.Icon, Description: f.Description}
}

// Matches reports whether every gate declared by f passes for rec.
func Matches(f Framework, rec project.Record) bool {
	if len(f.Languages) > 0 && !slices.ContainsFunc(f.Languages, func(l project.Type) bool {
		return strings.EqualFold(string(l), string(rec.Type))
	}) {
		return false
	}
	if len(f.Files) > 0 && !slices.ContainsFunc(f.Files, func(file string) bool {
		return HasFile(rec.Path, file)
	}) {
		return false
	}
	if len(f.Dependencies) > 0 && !slices.ContainsFunc(f.Dependencies, func(dep string) bool {
		return DependencyMatches(rec.Metadata.Dependencies, dep)
	}) {
		return false
	}
	if len(f.Scripts) > 0 && !slices.ContainsFunc(f.Scripts, rec.Metadata.HasScript) {
		return false
	}
	if f.Match != nil && !f.Match(rec) {
		return false
	}
	return true
}

// DependencyMatches reports whether target is declared in deps. The comparison
// is case-insensitive and accepts the exact name, the name@version form, and a
// scoped scope/name form. A dependency that merely contains target does not
// match.
func DependencyMatches(deps []string, target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "" {
		return false
	}
	for _, d := range deps {
		v := strings.ToLower(d)
		if v == t || strings.HasPrefix(v, t+"@") {
			return true
		}
		if strings.Contains(t, "/") {
			continue
		}
		if i := strings.LastIndexByte(v, '/'); i >= 0 {
			name := v[i+1:]
			if name == t || strings.HasPrefix(name, t+"@") {
				return true
			}
		}
	}
	return false
}

// HasFile reports whether a file exists relative to the project directory.
func HasFile(dir, file string) bool {
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(file)))
	return err == nil
}

// Catalog is the ordered set of frameworks: built-ins first, then user
// plugins. It is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	builtins   []Framework
	plugins    []Framework
	pluginPath string
	logger     *slog.Logger
}

// NewCatalog creates a catalog of the built-in frameworks. Plugins are read from
// pluginPath on Reload. An empty pluginPath disables plugins.
func NewCatalog(pluginPath string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		builtins:   Builtins(),
		pluginPath: pluginPath,
		logger:     logger,
	}
}

// NewStaticCatalog creates a catalog holding exactly the given frameworks.
func NewStaticCatalog(frameworks ...Framework) *Catalog {
	return &Catalog{
		builtins: frameworks,
		logger:   slog.Default(),
	}
}

// PluginPath returns the plugin file watched by this catalog.
func (c *Catalog) PluginPath() string {
	return c.pluginPath
}

// Reload re-reads the plugin file. On a parse failure the previous plugins are
// dropped, a warning is logged and the error is returned; built-ins stay.
func (c *Catalog) Reload() error {
	if c.pluginPath == "" {
		return nil
	}
	plugins, err := LoadPlugins(c.pluginPath)
	if err != nil {
		c.logger.Warn("ignoring plugin file", "path", c.pluginPath, "error", err)
	}

	c.mu.Lock()
	c.plugins = plugins
	c.mu.Unlock()

	c.logger.Debug("plugins loaded", "path", c.pluginPath, "count", len(plugins))
	return err
}

// Frameworks returns every framework in evaluation order.
func (c *Catalog) Frameworks() []Framework {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Framework, 0, len(c.builtins)+len(c.plugins))
	out = append(out, c.builtins...)
	return append(out, c.plugins...)
}

// Plugins returns only the user supplied frameworks.
func (c *Catalog) Plugins() []Framework {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Framework(nil), c.plugins...)
}

// Enrich returns a copy of rec refined by every matching framework. Commands
// are overlaid by key in catalog order, so the last matching framework wins a
// contested key, and the priority is raised to the highest match.
func (c *Catalog) Enrich(rec project.Record) project.Record {
	out := rec
	out.Commands = rec.Commands.Clone()
	out.Frameworks = append([]project.FrameworkRef(nil), rec.Frameworks...)

	for _, f := range c.Frameworks() {
		if !Matches(f, rec) {
			continue
		}
		if f.Commands != nil {
			out.Commands = out.Commands.Overlay(withSource(f.Commands(rec), f.Source))
		}
		if f.Priority > out.Priority {
			out.Priority = f.Priority
		}
		out.Frameworks = append(out.Frameworks, f.Ref())
	}
	return out
}

func withSource(set project.CommandSet, src project.Source) project.CommandSet {
	if src == "" {
		src = project.SourceFramework
	}
	var out project.CommandSet
	for _, c := range set.All() {
		if c.Spec.Source == "" {
			c.Spec.Source = src
		}
		out.Set(c.Key, c.Spec)
	}
	return out
}
