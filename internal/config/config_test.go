package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/project-compass/internal/commands"
)

func TestDirPrecedence(t *testing.T) {
	flagDir := t.TempDir()
	envDir := t.TempDir()
	t.Setenv(EnvDir, envDir)

	got, err := Dir(flagDir)
	require.NoError(t, err)
	assert.Equal(t, flagDir, got)

	got, err = Dir("")
	require.NoError(t, err)
	assert.Equal(t, envDir, got)

	t.Setenv(EnvDir, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	got, err = Dir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".project-compass"), got)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))

	require.NoError(t, err)
	assert.NotNil(t, cfg.CustomCommands)
	assert.False(t, cfg.ShowHelpCards)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open(path, nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
	require.NotNil(t, s)
	assert.Empty(t, s.Snapshot().CustomCommands)
}

func TestAddCustomPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s, err := Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.AddCustom("/work/api", commands.Custom{Label: "Seed", Command: []string{"npm", "run", "seed"}}))
	require.NoError(t, s.AddCustom("/work/api", commands.Custom{Label: "Lint", Command: []string{"npx", "eslint", "."}}))

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	custom := reopened.CustomFor("/work/api")
	require.Len(t, custom, 2)
	assert.Equal(t, "Seed", custom[0].Label)
	assert.Equal(t, []string{"npx", "eslint", "."}, custom[1].Command)
	assert.Empty(t, reopened.CustomFor("/work/other"))
}

func TestToggles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := Open(path, nil)
	require.NoError(t, err)

	on, err := s.ToggleHelpCards()
	require.NoError(t, err)
	assert.True(t, on)

	on, err = s.ToggleStructureGuide()
	require.NoError(t, err)
	assert.True(t, on)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ShowHelpCards)
	assert.True(t, cfg.ShowStructureGuide)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "config.json"), nil)
	require.NoError(t, err)
	require.NoError(t, s.AddCustom("/p", commands.Custom{Label: "a", Command: []string{"true"}}))

	snap := s.Snapshot()
	snap.CustomCommands["/p"][0].Label = "changed"

	assert.Equal(t, "a", s.CustomFor("/p")[0].Label)
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddCustom("/p", commands.Custom{Label: "a", Command: []string{"true"}}))

	require.NoError(t, os.WriteFile(path, []byte("]"), 0o644))
	assert.Error(t, s.Reload())
	assert.Len(t, s.CustomFor("/p"), 1)
}
