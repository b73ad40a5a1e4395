package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1.0, cfg.Playback.Rate)
	require.Len(t, cfg.Catalog, 2)
	assert.Equal(t, "Music 1", cfg.Catalog[0].Title)
	assert.Equal(t, "Music 2", cfg.Catalog[1].Title)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":9090"
playback:
  rate: 1.5
catalog:
  - id: "file:///music/one.mp3"
    title: "One"
    artist: "Somebody"
    duration_ms: 180000
publishers:
  mpris:
    enabled: true
    settings:
      identity: "Test Media"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 1.5, cfg.Playback.Rate)
	require.Len(t, cfg.Catalog, 1)
	assert.Equal(t, "One", cfg.Catalog[0].Title)
	assert.True(t, cfg.IsPublisherEnabled("mpris"))
	assert.Equal(t, "Test Media", cfg.GetPublisherSettings("mpris")["identity"])
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "catalog entry missing title",
			content: `
catalog:
  - id: "file:///music/one.mp3"
`,
			errMsg: "Title",
		},
		{
			name: "catalog entry missing id",
			content: `
catalog:
  - title: "One"
`,
			errMsg: "ID",
		},
		{
			name: "negative duration",
			content: `
catalog:
  - id: "a"
    title: "One"
    duration_ms: -5
`,
			errMsg: "DurationMs",
		},
		{
			name: "rate out of range",
			content: `
playback:
  rate: 9.0
`,
			errMsg: "Rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUTOMEDIA_ADDR", ":7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestConfig_BuildCatalog(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	catalog, err := cfg.BuildCatalog()
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())

	first, ok := catalog.First()
	require.True(t, ok)
	assert.Equal(t, "Music 1", first.Title)
	assert.Equal(t, int64(30000), first.Duration.Milliseconds())
}

func TestConfig_BuildCatalog_DuplicateIDs(t *testing.T) {
	path := writeConfigFile(t, `
catalog:
  - id: "dup"
    title: "One"
  - id: "dup"
    title: "Two"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.BuildCatalog()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate track id")
}
