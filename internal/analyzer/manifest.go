package analyzer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
)

// readManifest reads a manifest, wrapping failures as ManifestParseError.
func readManifest(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestParseError{Path: path, Err: err}
	}
	return data, nil
}

// depSet collects dependency names lowercased, de-duplicated, in first-seen order.
type depSet struct {
	seen  map[string]bool
	names []string
}

func (d *depSet) add(names ...string) {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || d.seen[n] {
			continue
		}
		d.seen[n] = true
		d.names = append(d.names, n)
	}
}

func (d *depSet) addKeys(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d.add(keys...)
}

func (d *depSet) list() []string {
	return d.names
}

// packageJSON is the subset of package.json that detection reads.
type packageJSON struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Scripts              map[string]string `json:"scripts"`
	Dependencies         map[string]any    `json:"dependencies"`
	DevDependencies      map[string]any    `json:"devDependencies"`
	PeerDependencies     map[string]any    `json:"peerDependencies"`
	OptionalDependencies map[string]any    `json:"optionalDependencies"`
}

func parsePackageJSON(path string) (packageJSON, []string, error) {
	var pkg packageJSON
	data, err := readManifest(path)
	if err != nil {
		return pkg, nil, err
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return pkg, nil, &ManifestParseError{Path: path, Err: err}
	}
	var deps depSet
	deps.addKeys(pkg.Dependencies)
	deps.addKeys(pkg.DevDependencies)
	deps.addKeys(pkg.PeerDependencies)
	deps.addKeys(pkg.OptionalDependencies)
	return pkg, deps.list(), nil
}

// composerJSON is the subset of composer.json that detection reads.
type composerJSON struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Require     map[string]any `json:"require"`
	RequireDev  map[string]any `json:"require-dev"`
	Scripts     map[string]any `json:"scripts"`
}

func parseComposerJSON(path string) (composerJSON, []string, error) {
	var c composerJSON
	data, err := readManifest(path)
	if err != nil {
		return c, nil, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, nil, &ManifestParseError{Path: path, Err: err}
	}
	var deps depSet
	deps.addKeys(c.Require)
	deps.addKeys(c.RequireDev)
	return c, deps.list(), nil
}

// cargoTOML is the subset of Cargo.toml that detection reads.
type cargoTOML struct {
	Package struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
	} `toml:"package"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

func parseCargoTOML(path string) (cargoTOML, []string, error) {
	var c cargoTOML
	data, err := readManifest(path)
	if err != nil {
		return c, nil, err
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, nil, &ManifestParseError{Path: path, Err: err}
	}
	var deps depSet
	deps.addKeys(c.Dependencies)
	deps.addKeys(c.DevDependencies)
	return c, deps.list(), nil
}

// pyprojectTOML covers PEP 621 and Poetry layouts.
type pyprojectTOML struct {
	Project struct {
		Name                 string              `toml:"name"`
		Description          string              `toml:"description"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name            string         `toml:"name"`
			Description     string         `toml:"description"`
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// pipfileTOML is the subset of a Pipfile that detection reads.
type pipfileTOML struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

// pythonProject is what the Python schema learns from every manifest in a directory.
type pythonProject struct {
	Name         string
	Description  string
	Dependencies []string
	HasPyproject bool
}

var requirementName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// requirementPackage extracts the distribution name from a PEP 508 requirement.
func requirementPackage(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" || strings.HasPrefix(line, "-") {
		return ""
	}
	return requirementName.FindString(line)
}

func parsePythonProject(dir string) (pythonProject, error) {
	var p pythonProject
	var deps depSet

	reqPath := filepath.Join(dir, "requirements.txt")
	if data, err := os.ReadFile(reqPath); err == nil {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			deps.add(requirementPackage(scanner.Text()))
		}
	}

	pipPath := filepath.Join(dir, "Pipfile")
	if data, err := os.ReadFile(pipPath); err == nil {
		var pf pipfileTOML
		if err := toml.Unmarshal(data, &pf); err != nil {
			return p, &ManifestParseError{Path: pipPath, Err: err}
		}
		deps.addKeys(pf.Packages)
		deps.addKeys(pf.DevPackages)
	}

	pyPath := filepath.Join(dir, "pyproject.toml")
	if data, err := os.ReadFile(pyPath); err == nil {
		p.HasPyproject = true
		var py pyprojectTOML
		if err := toml.Unmarshal(data, &py); err != nil {
			return p, &ManifestParseError{Path: pyPath, Err: err}
		}
		for _, req := range py.Project.Dependencies {
			deps.add(requirementPackage(req))
		}
		groups := make([]string, 0, len(py.Project.OptionalDependencies))
		for g := range py.Project.OptionalDependencies {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		for _, g := range groups {
			for _, req := range py.Project.OptionalDependencies[g] {
				deps.add(requirementPackage(req))
			}
		}
		poetry := py.Tool.Poetry
		delete(poetry.Dependencies, "python")
		deps.addKeys(poetry.Dependencies)
		deps.addKeys(poetry.DevDependencies)

		p.Name = firstNonEmpty(py.Project.Name, poetry.Name)
		p.Description = firstNonEmpty(py.Project.Description, poetry.Description)
	}

	p.Dependencies = deps.list()
	return p, nil
}

func parseGoMod(path string) (*modfile.File, []string, error) {
	data, err := readManifest(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, nil, &ManifestParseError{Path: path, Err: err}
	}
	var deps depSet
	for _, r := range f.Require {
		deps.add(r.Mod.Path)
	}
	return f, deps.list(), nil
}

// pomXML is the subset of pom.xml that detection reads.
type pomXML struct {
	ArtifactID  string `xml:"artifactId"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Parent      struct {
		ArtifactID string `xml:"artifactId"`
	} `xml:"parent"`
	Dependencies []struct {
		ArtifactID string `xml:"artifactId"`
	} `xml:"dependencies>dependency"`
	Plugins []struct {
		ArtifactID string `xml:"artifactId"`
	} `xml:"build>plugins>plugin"`
}

func parsePomXML(path string) (pomXML, []string, error) {
	var pom pomXML
	data, err := readManifest(path)
	if err != nil {
		return pom, nil, err
	}
	if err := xml.Unmarshal(data, &pom); err != nil {
		return pom, nil, &ManifestParseError{Path: path, Err: err}
	}
	var deps depSet
	deps.add(pom.Parent.ArtifactID)
	for _, d := range pom.Dependencies {
		deps.add(d.ArtifactID)
	}
	for _, p := range pom.Plugins {
		deps.add(p.ArtifactID)
	}
	return pom, deps.list(), nil
}

// gradleCoordinate matches "group:artifact[:version]" strings and plugin ids.
var (
	gradleCoordinate = regexp.MustCompile(`["']([\w.\-]+):([\w.\-]+)(?::[^"']*)?["']`)
	gradlePluginID   = regexp.MustCompile(`id\s*\(?\s*["']([\w.\-]+)["']`)
)

func parseGradle(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var deps depSet
	for _, m := range gradleCoordinate.FindAllStringSubmatch(string(data), -1) {
		deps.add(m[2])
	}
	for _, m := range gradlePluginID.FindAllStringSubmatch(string(data), -1) {
		deps.add(m[1])
		if m[1] == "org.springframework.boot" {
			deps.add("spring-boot-starter")
		}
	}
	return deps.list()
}

// csprojXML is the subset of an SDK-style project file that detection reads.
type csprojXML struct {
	ItemGroups []struct {
		PackageReferences []struct {
			Include string `xml:"Include,attr"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

func parseCsproj(path string) ([]string, error) {
	data, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	var proj csprojXML
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, &ManifestParseError{Path: path, Err: err}
	}
	var deps depSet
	for _, g := range proj.ItemGroups {
		for _, r := range g.PackageReferences {
			deps.add(r.Include)
		}
	}
	return deps.list(), nil
}

var gemLine = regexp.MustCompile(`^\s*gem\s+["']([^"']+)["']`)

func parseGemfile(path string) ([]string, error) {
	data, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	var deps depSet
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if m := gemLine.FindStringSubmatch(scanner.Text()); m != nil {
			deps.add(m[1])
		}
	}
	return deps.list(), nil
}

var sbtName = regexp.MustCompile(`(?m)^\s*name\s*:=\s*"([^"]+)"`)

func parseSbtName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if m := sbtName.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
