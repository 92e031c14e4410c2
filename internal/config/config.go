package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/harshul/project-compass/internal/commands"
)

const (
	// EnvDir overrides the default config directory.
	EnvDir = "COMPASS_CONFIG_DIR"

	configFile = "config.json"
	pluginFile = "plugins.json"
	logFile    = "compass.log"
)

// Dir resolves the config directory: flag value, then $COMPASS_CONFIG_DIR,
// then ~/.project-compass.
func Dir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDir); env != "" {
		return filepath.Abs(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".project-compass"), nil
}

// Paths holds the files kept under the config directory.
type Paths struct {
	Dir     string
	Config  string
	Plugins string
	Log     string
}

// PathsFor returns the file layout for dir.
func PathsFor(dir string) Paths {
	return Paths{
		Dir:     dir,
		Config:  filepath.Join(dir, configFile),
		Plugins: filepath.Join(dir, pluginFile),
		Log:     filepath.Join(dir, logFile),
	}
}

// EnsureDir creates the config directory if needed.
func (p Paths) EnsureDir() error {
	return os.MkdirAll(p.Dir, 0o755)
}

// ConfigError reports a config file that exists but could not be read.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the persisted dashboard configuration.
type Config struct {
	CustomCommands     map[string][]commands.Custom `json:"customCommands"`
	ShowHelpCards      bool                         `json:"showHelpCards"`
	ShowStructureGuide bool                         `json:"showStructureGuide"`
}

// Default returns an empty configuration.
func Default() Config {
	return Config{CustomCommands: map[string][]commands.Custom{}}
}

// Store loads and saves the config file. Each mutation rewrites the file.
type Store struct {
	mu     sync.Mutex
	path   string
	cfg    Config
	logger *slog.Logger
}

// Open loads the config at path. A missing file yields defaults. A corrupt
// file also yields defaults, and the ConfigError is returned alongside a
// usable store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	cfg, err := Load(path)
	if err != nil {
		logger.Warn("config unreadable, using defaults", "path", path, "error", err)
	}
	s.cfg = cfg
	return s, err
}

// Load reads the config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), &ConfigError{Path: path, Err: err}
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), &ConfigError{Path: path, Err: err}
	}
	if cfg.CustomCommands == nil {
		cfg.CustomCommands = map[string][]commands.Custom{}
	}
	return cfg, nil
}

// Save writes cfg to path through a temp file and rename.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (s *Store) Path() string { return s.path }

// Snapshot returns a copy of the current config.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.cfg)
}

// Reload re-reads the file. On error the previous config is kept.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		s.logger.Warn("config reload failed", "path", s.path, "error", err)
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// CustomFor returns the custom commands saved for a project path.
func (s *Store) CustomFor(projectPath string) []commands.Custom {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]commands.Custom(nil), s.cfg.CustomCommands[projectPath]...)
}

// AddCustom appends a custom command for a project and persists the config.
func (s *Store) AddCustom(projectPath string, c commands.Custom) error {
	return s.update(func(cfg *Config) {
		cfg.CustomCommands[projectPath] = append(cfg.CustomCommands[projectPath], c)
	})
}

// ToggleHelpCards flips the help card setting and persists it.
func (s *Store) ToggleHelpCards() (bool, error) {
	var v bool
	err := s.update(func(cfg *Config) {
		cfg.ShowHelpCards = !cfg.ShowHelpCards
		v = cfg.ShowHelpCards
	})
	return v, err
}

// ToggleStructureGuide flips the structure guide setting and persists it.
func (s *Store) ToggleStructureGuide() (bool, error) {
	var v bool
	err := s.update(func(cfg *Config) {
		cfg.ShowStructureGuide = !cfg.ShowStructureGuide
		v = cfg.ShowStructureGuide
	})
	return v, err
}

// update applies fn to a copy, saves it, and only then makes it current.
func (s *Store) update(fn func(cfg *Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := clone(s.cfg)
	fn(&next)
	if err := Save(s.path, next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

func clone(cfg Config) Config {
	out := cfg
	out.CustomCommands = make(map[string][]commands.Custom, len(cfg.CustomCommands))
	for k, v := range cfg.CustomCommands {
		out.CustomCommands[k] = append([]commands.Custom(nil), v...)
	}
	return out
}
