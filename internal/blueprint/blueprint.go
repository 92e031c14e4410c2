package blueprint

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harshul/project-compass/internal/project"
)

// Blueprint is a YAML snapshot of the projects detected under a root.
type Blueprint struct {
	Root     string    `yaml:"root"`
	Projects []Project `yaml:"projects"`
}

// Project is one detected project in a blueprint.
type Project struct {
	Name            string    `yaml:"name"`
	Type            string    `yaml:"type"`
	Path            string    `yaml:"path"`
	Manifest        string    `yaml:"manifest,omitempty"`
	Priority        int       `yaml:"priority"`
	Frameworks      []string  `yaml:"frameworks,omitempty"`
	Commands        []Command `yaml:"commands,omitempty"`
	MissingBinaries []string  `yaml:"missingBinaries,omitempty"`
}

// Command is one resolved command of a project.
type Command struct {
	Key     string   `yaml:"key"`
	Label   string   `yaml:"label"`
	Command []string `yaml:"command,flow"`
	Source  string   `yaml:"source"`
}

// FromRecords converts resolved records into a blueprint. Paths are stored
// relative to root when possible.
func FromRecords(root string, records []project.Record) Blueprint {
	bp := Blueprint{Root: root, Projects: make([]Project, 0, len(records))}
	for _, rec := range records {
		path := rec.Path
		if rel, err := filepath.Rel(root, rec.Path); err == nil {
			path = filepath.ToSlash(rel)
		}

		p := Project{
			Name:            rec.Name,
			Type:            string(rec.Type),
			Path:            path,
			Manifest:        rec.Manifest,
			Priority:        rec.Priority,
			MissingBinaries: rec.MissingBinaries,
		}
		for _, fw := range rec.Frameworks {
			p.Frameworks = append(p.Frameworks, fw.Name)
		}
		for _, c := range rec.Commands.All() {
			p.Commands = append(p.Commands, Command{
				Key:     c.Key,
				Label:   c.Spec.Label,
				Command: c.Spec.Argv,
				Source:  string(c.Spec.Source),
			})
		}
		bp.Projects = append(bp.Projects, p)
	}
	return bp
}

// Encode writes bp as YAML.
func Encode(w io.Writer, bp Blueprint) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&bp); err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	return enc.Close()
}

// Write writes the blueprint as a YAML file.
func Write(path string, bp Blueprint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, bp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read reads a blueprint file written by Write.
func Read(path string) (Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Blueprint{}, err
	}

	var bp Blueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return Blueprint{}, err
	}

	if bp.Root == "" {
		return Blueprint{}, errors.New("invalid blueprint: missing root")
	}
	for i, p := range bp.Projects {
		if p.Name == "" || p.Type == "" {
			return Blueprint{}, fmt.Errorf("invalid blueprint: project %d missing name or type", i)
		}
	}

	return bp, nil
}
