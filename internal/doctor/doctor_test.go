package doctor

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harshul/project-compass/internal/project"
)

func fakeChecker(installed map[string]string) *Checker {
	return &Checker{
		LookPath: func(file string) (string, error) {
			if _, ok := installed[file]; ok {
				return "/usr/bin/" + file, nil
			}
			return "", exec.ErrNotFound
		},
		Output: func(_ context.Context, name string, _ ...string) ([]byte, error) {
			v, ok := installed[name]
			if !ok {
				return nil, errors.New("not found")
			}
			return []byte(v), nil
		},
		Timeout: time.Second,
	}
}

func TestCheckerMissing(t *testing.T) {
	c := fakeChecker(map[string]string{"node": "v20.0.0"})

	missing := c.Missing([]string{"node", "npm", "pnpm"})

	assert.Equal(t, []string{"npm", "pnpm"}, missing)
}

func TestCheckerRuntimes(t *testing.T) {
	c := fakeChecker(map[string]string{
		"go":   "go version go1.25.6 linux/amd64\n",
		"java": "openjdk version \"21\"\nOpenJDK Runtime Environment\n",
	})

	statuses := c.Runtimes(context.Background())

	byBinary := map[string]RuntimeStatus{}
	for _, s := range statuses {
		byBinary[s.Binary] = s
	}

	assert.True(t, byBinary["go"].Installed)
	assert.Equal(t, "go version go1.25.6 linux/amd64", byBinary["go"].Version)
	assert.Equal(t, "openjdk version \"21\"", byBinary["java"].Version)
	assert.False(t, byBinary["cargo"].Installed)
	assert.Empty(t, byBinary["cargo"].Version)
}

func TestDiagnose(t *testing.T) {
	records := []project.Record{
		{Path: "/a", Type: project.TypeNode, MissingBinaries: []string{"npm"}},
		{Path: "/b", Type: project.TypeCustom},
	}

	diags := Diagnose(records)

	assert.Len(t, diags, 2)
	assert.False(t, diags[0].Healthy)
	assert.Contains(t, diags[0].Issues, "npm is not installed")
	assert.True(t, diags[1].Healthy)
	assert.Len(t, diags[1].Issues, 1)
}
