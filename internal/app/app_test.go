package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/config"
)

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestBuild_Heuristic(t *testing.T) {
	c, err := Build(loadConfig(t, "{}\n"), nil, prometheus.NewRegistry())
	require.NoError(t, err)

	assert.Nil(t, c.Fallback)
	assert.Same(t, c.Heuristic, c.Enhancer)
	assert.Equal(t, map[string]any{"enhancer": "heuristic"}, c.EnhancerState())
}

func TestBuild_RemoteAndVocabulary(t *testing.T) {
	vocab := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(vocab, []byte("skills:\n  - name: Elixir\n    category: Programming\n"), 0o644))

	c, err := Build(loadConfig(t, `
enhancer:
  vocabularyFile: `+vocab+`
  remote:
    enabled: true
    url: http://127.0.0.1:1
`), nil, nil)
	require.NoError(t, err)

	require.NotNil(t, c.Fallback)
	assert.Equal(t, 1, c.Heuristic.Vocabulary().Len())
	assert.Equal(t, "remote", c.EnhancerState()["enhancer"])
	assert.Equal(t, "closed", c.EnhancerState()["breaker"])
}

func TestBuild_BadVocabulary(t *testing.T) {
	_, err := Build(loadConfig(t, "enhancer:\n  vocabularyFile: /nonexistent/skills.yaml\n"), nil, nil)
	assert.Error(t, err)
}
