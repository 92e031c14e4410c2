package framework

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harshul/project-compass/internal/project"
)

const (
	defaultPluginIcon     = "🧩"
	defaultPluginPriority = 70
)

// PluginError reports a plugin file that could not be decoded.
type PluginError struct {
	Path string
	Err  error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin file %s: %v", e.Path, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// pluginDef is the on-disk plugin shape. Commands is kept as a node so the
// declared key order survives decoding.
type pluginDef struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Icon         string    `yaml:"icon"`
	Description  string    `yaml:"description"`
	Languages    []string  `yaml:"languages"`
	Files        []string  `yaml:"files"`
	Dependencies []string  `yaml:"dependencies"`
	Scripts      []string  `yaml:"scripts"`
	Priority     *int      `yaml:"priority"`
	Commands     yaml.Node `yaml:"commands"`
}

// LoadPlugins reads user framework definitions from path. The file holds either
// a list of plugins or an object with a "plugins" list; JSON is accepted since
// it is valid YAML. A missing file yields no plugins. Entries without a name or
// without a single usable command are dropped.
func LoadPlugins(path string) ([]Framework, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &PluginError{Path: path, Err: err}
	}
	defs, err := decodePlugins(data)
	if err != nil {
		return nil, &PluginError{Path: path, Err: err}
	}

	var out []Framework
	for _, d := range defs {
		if f, ok := d.framework(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func decodePlugins(data []byte) ([]pluginDef, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]

	var defs []pluginDef
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&defs); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var wrapper struct {
			Plugins []pluginDef `yaml:"plugins"`
		}
		if err := doc.Decode(&wrapper); err != nil {
			return nil, err
		}
		defs = wrapper.Plugins
	default:
		return nil, fmt.Errorf("expected a list of plugins, got %s", kindName(doc.Kind))
	}
	return defs, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}

func (d pluginDef) framework() (Framework, bool) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Framework{}, false
	}
	commands := d.commands()
	if commands.Len() == 0 {
		return Framework{}, false
	}

	f := Framework{
		ID:           d.ID,
		Name:         name,
		Icon:         d.Icon,
		Description:  d.Description,
		Priority:     defaultPluginPriority,
		Files:        d.Files,
		Dependencies: d.Dependencies,
		Scripts:      d.Scripts,
		Source:       project.SourcePlugin,
		Commands: func(project.Record) project.CommandSet {
			return commands.Clone()
		},
	}
	if f.ID == "" {
		f.ID = strings.Join(strings.Fields(strings.ToLower(name)), "-")
	}
	if f.Icon == "" {
		f.Icon = defaultPluginIcon
	}
	if d.Priority != nil {
		f.Priority = *d.Priority
	}
	for _, l := range d.Languages {
		f.Languages = append(f.Languages, project.Type(l))
	}
	return f, true
}

// commands accepts, per key, a whitespace separated string, an argv list, or an
// object with label and command.
func (d pluginDef) commands() project.CommandSet {
	var set project.CommandSet
	n := d.Commands
	if n.Kind != yaml.MappingNode {
		return set
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		label, argv := parseCommandNode(n.Content[i+1])
		if label == "" {
			label = key
		}
		set.Set(key, project.CommandSpec{Label: label, Argv: argv, Source: project.SourcePlugin})
	}
	return set
}

func parseCommandNode(n *yaml.Node) (string, []string) {
	switch n.Kind {
	case yaml.ScalarNode:
		return "", strings.Fields(n.Value)
	case yaml.SequenceNode:
		var argv []string
		if err := n.Decode(&argv); err != nil {
			return "", nil
		}
		return "", nonEmpty(argv)
	case yaml.MappingNode:
		var obj struct {
			Label   string    `yaml:"label"`
			Command yaml.Node `yaml:"command"`
		}
		if err := n.Decode(&obj); err != nil {
			return "", nil
		}
		if obj.Command.Kind == yaml.MappingNode {
			return obj.Label, nil
		}
		_, argv := parseCommandNode(&obj.Command)
		return obj.Label, argv
	}
	return "", nil
}

func nonEmpty(argv []string) []string {
	out := argv[:0]
	for _, a := range argv {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
