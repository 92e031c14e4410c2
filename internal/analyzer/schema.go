package analyzer

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/harshul/project-compass/internal/doctor"
	"github.com/harshul/project-compass/internal/framework"
	"github.com/harshul/project-compass/internal/project"
	"github.com/harshul/project-compass/internal/provisioner"
)

// BuildFunc constructs the base record for a directory whose manifest matched.
// It returns (nil, nil) when the directory is not a project of this schema and
// a *ManifestParseError when the manifest cannot be read.
type BuildFunc func(s Schema, dir string, manifest Manifest) (*project.Record, error)

// Schema describes one built-in project type.
type Schema struct {
	Type     project.Type
	Icon     string
	Priority int
	// Files are trigger file name patterns, tried in order
	Files    []string
	Binaries []string
	Build    BuildFunc
}

// base returns the record fields every schema shares.
func (s Schema) base(dir string, manifest Manifest) *project.Record {
	return &project.Record{
		Path:     dir,
		Name:     filepath.Base(dir),
		Type:     s.Type,
		Icon:     s.Icon,
		Priority: s.Priority,
		Manifest: manifest.Name(),
	}
}

func spec(label string, argv ...string) project.CommandSpec {
	return project.CommandSpec{Label: label, Argv: argv, Source: project.SourceBuiltin}
}

// DefaultSchemas returns the built-in schemas in declaration order. At equal
// priority, the schema declared first claims a directory.
func DefaultSchemas() []Schema {
	py := doctor.PythonBinary()
	return []Schema{
		{Type: project.TypeNode, Icon: "🟢", Priority: 100, Files: []string{"package.json"}, Binaries: []string{"node", "npm"}, Build: buildNode},
		{Type: project.TypePython, Icon: "🐍", Priority: 95, Files: []string{"pyproject.toml", "requirements.txt", "setup.py", "Pipfile"}, Binaries: []string{py, "pip"}, Build: buildPython},
		{Type: project.TypeRust, Icon: "🦀", Priority: 90, Files: []string{"Cargo.toml"}, Binaries: []string{"cargo"}, Build: buildRust},
		{Type: project.TypeGo, Icon: "🐹", Priority: 85, Files: []string{"go.mod"}, Binaries: []string{"go"}, Build: buildGo},
		{Type: project.TypeJava, Icon: "☕", Priority: 80, Files: []string{"pom.xml", "build.gradle", "build.gradle.kts"}, Binaries: []string{"java"}, Build: buildJava},
		{Type: project.TypeScala, Icon: "🔴", Priority: 70, Files: []string{"build.sbt"}, Binaries: []string{"sbt"}, Build: buildScala},
		{Type: project.TypePHP, Icon: "🐘", Priority: 65, Files: []string{"composer.json"}, Binaries: []string{"php"}, Build: buildPHP},
		{Type: project.TypeRuby, Icon: "💎", Priority: 65, Files: []string{"Gemfile"}, Binaries: []string{"ruby", "bundle"}, Build: buildRuby},
		{Type: project.TypeDotNet, Icon: "🔷", Priority: 65, Files: []string{"*.csproj"}, Binaries: []string{"dotnet"}, Build: buildDotNet},
		{Type: project.TypeShell, Icon: "🐚", Priority: 50, Files: []string{"Makefile", "build.sh"}, Build: buildShell},
		{Type: project.TypeCustom, Icon: "🧰", Priority: 10, Files: []string{"README.md"}, Build: buildCustom},
	}
}

// Patterns returns the union of trigger patterns across schemas.
func Patterns(schemas []Schema) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range schemas {
		for _, f := range s.Files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func buildNode(s Schema, dir string, m Manifest) (*project.Record, error) {
	pkg, deps, err := parsePackageJSON(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	rec.Name = firstNonEmpty(pkg.Name, rec.Name)
	rec.Description = pkg.Description
	rec.Metadata = project.Metadata{
		Dependencies:   deps,
		Scripts:        pkg.Scripts,
		PackageManager: string(provisioner.DetectPackageManager(dir).Manager),
	}

	prefer := func(key, label string, names ...string) {
		for _, n := range names {
			if rec.Metadata.HasScript(n) {
				rec.Commands.Set(key, spec(label, rec.Metadata.ScriptArgv(n)...))
				return
			}
		}
	}
	prefer("build", "Build", "build", "compile", "dist")
	prefer("test", "Test", "test", "check", "spec")
	prefer("run", "Start", "start", "dev", "serve", "run")
	prefer("lint", "Lint", "lint")
	return rec, nil
}

func buildPython(s Schema, dir string, m Manifest) (*project.Record, error) {
	py, err := parsePythonProject(dir)
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	rec.Name = firstNonEmpty(py.Name, rec.Name)
	rec.Description = py.Description
	rec.Metadata = project.Metadata{Dependencies: py.Dependencies}

	python := doctor.PythonBinary()
	if py.HasPyproject {
		rec.Commands.Set("test", spec("Pytest", "pytest"))
	} else {
		rec.Commands.Set("test", spec("Unittest", python, "-m", "unittest", "discover"))
	}
	if entry := framework.PythonEntry(dir); entry != "" {
		rec.Commands.Set("run", spec("Run", python, filepath.ToSlash(entry)))
	}
	return rec, nil
}

func buildRust(s Schema, dir string, m Manifest) (*project.Record, error) {
	cargo, deps, err := parseCargoTOML(m.Path)
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	rec.Name = firstNonEmpty(cargo.Package.Name, rec.Name)
	rec.Description = cargo.Package.Description
	rec.Metadata = project.Metadata{Dependencies: deps}
	rec.Commands.Set("build", spec("Cargo build", "cargo", "build"))
	rec.Commands.Set("test", spec("Cargo test", "cargo", "test"))
	rec.Commands.Set("run", spec("Cargo run", "cargo", "run"))
	return rec, nil
}

func buildGo(s Schema, dir string, m Manifest) (*project.Record, error) {
	mod, deps, err := parseGoMod(m.Path)
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	if mod.Module != nil {
		rec.Name = path.Base(mod.Module.Mod.Path)
		rec.Description = "Go module " + mod.Module.Mod.Path
	}
	rec.Metadata = project.Metadata{Dependencies: deps}
	rec.Commands.Set("build", spec("Go build", "go", "build", "./..."))
	rec.Commands.Set("test", spec("Go test", "go", "test", "./..."))
	rec.Commands.Set("run", spec("Go run", "go", "run", "."))
	return rec, nil
}

func buildJava(s Schema, dir string, m Manifest) (*project.Record, error) {
	rec := s.base(dir, m)
	var deps depSet

	pomPath := filepath.Join(dir, "pom.xml")
	if framework.HasFile(dir, "pom.xml") {
		pom, pomDeps, err := parsePomXML(pomPath)
		if err != nil {
			return nil, err
		}
		rec.Name = firstNonEmpty(pom.Name, pom.ArtifactID, rec.Name)
		rec.Description = pom.Description
		deps.add(pomDeps...)
	}
	for _, g := range []string{"build.gradle", "build.gradle.kts"} {
		deps.add(parseGradle(filepath.Join(dir, g))...)
	}
	rec.Metadata = project.Metadata{Dependencies: deps.list()}

	switch {
	case framework.HasFile(dir, "gradlew"):
		rec.Commands.Set("build", spec("Gradle build", "./gradlew", "build"))
		rec.Commands.Set("test", spec("Gradle test", "./gradlew", "test"))
	case framework.HasFile(dir, "mvnw"):
		rec.Commands.Set("build", spec("Maven package", "./mvnw", "package"))
		rec.Commands.Set("test", spec("Maven test", "./mvnw", "test"))
	case m.Name() == "pom.xml" || framework.HasFile(dir, "pom.xml"):
		rec.Commands.Set("build", spec("Maven package", "mvn", "package"))
		rec.Commands.Set("test", spec("Maven test", "mvn", "test"))
	default:
		rec.Commands.Set("build", spec("Gradle build", "gradle", "build"))
		rec.Commands.Set("test", spec("Gradle test", "gradle", "test"))
	}
	return rec, nil
}

func buildScala(s Schema, dir string, m Manifest) (*project.Record, error) {
	rec := s.base(dir, m)
	rec.Name = firstNonEmpty(parseSbtName(m.Path), rec.Name)
	rec.Commands.Set("build", spec("sbt compile", "sbt", "compile"))
	rec.Commands.Set("test", spec("sbt test", "sbt", "test"))
	rec.Commands.Set("run", spec("sbt run", "sbt", "run"))
	return rec, nil
}

func buildPHP(s Schema, dir string, m Manifest) (*project.Record, error) {
	c, deps, err := parseComposerJSON(m.Path)
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	rec.Name = firstNonEmpty(c.Name, rec.Name)
	rec.Description = c.Description
	scripts := make(map[string]string, len(c.Scripts))
	for k := range c.Scripts {
		scripts[k] = k
	}
	rec.Metadata = project.Metadata{Dependencies: deps, Scripts: scripts}
	if rec.Metadata.HasScript("test") {
		rec.Commands.Set("test", spec("Composer test", "composer", "run-script", "test"))
	} else {
		rec.Commands.Set("test", spec("PHP -v", "php", "-v"))
	}
	return rec, nil
}

func buildRuby(s Schema, dir string, m Manifest) (*project.Record, error) {
	deps, err := parseGemfile(m.Path)
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	rec.Metadata = project.Metadata{Dependencies: deps}
	if framework.HasFile(dir, "app.rb") {
		rec.Commands.Set("run", spec("Ruby app", "ruby", "app.rb"))
	}
	rec.Commands.Set("test", spec("Ruby test", "bundle", "exec", "rspec"))
	return rec, nil
}

func buildDotNet(s Schema, dir string, m Manifest) (*project.Record, error) {
	deps, err := parseCsproj(m.Path)
	if err != nil {
		return nil, err
	}
	rec := s.base(dir, m)
	rec.Name = strings.TrimSuffix(m.Name(), filepath.Ext(m.Name()))
	rec.Metadata = project.Metadata{Dependencies: deps}
	rec.Commands.Set("build", spec("dotnet build", "dotnet", "build"))
	rec.Commands.Set("test", spec("dotnet test", "dotnet", "test"))
	rec.Commands.Set("run", spec("dotnet run", "dotnet", "run"))
	return rec, nil
}

func buildShell(s Schema, dir string, m Manifest) (*project.Record, error) {
	rec := s.base(dir, m)
	if framework.HasFile(dir, "Makefile") {
		rec.Commands.Set("build", spec("make build", "make", "build"))
		rec.Commands.Set("test", spec("make test", "make", "test"))
		return rec, nil
	}
	rec.Commands.Set("build", spec("build.sh", "./build.sh"))
	return rec, nil
}

func buildCustom(s Schema, dir string, m Manifest) (*project.Record, error) {
	rec := s.base(dir, m)
	rec.Description = "Detected via README or Makefile layout."
	return rec, nil
}
