package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croncommander/cc-jobparse/internal/diag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigExplicit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
format: yaml
workers: 3
max_size: 4096
extensions: [JOB, ".Xml", tsk]
recursive: true
forward:
  url: ws://collector:9000/jobs
  host: build-01
  write_timeout: 3s
watch:
  debounce: 1s
`)

	config, from, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, from)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, 3, config.Workers)
	assert.Equal(t, int64(4096), config.MaxSize)
	assert.Equal(t, []string{".job", ".xml", ".tsk"}, config.Extensions)
	assert.True(t, config.Recursive)
	assert.False(t, config.All)
	assert.Equal(t, "ws://collector:9000/jobs", config.Forward.URL)
	assert.Equal(t, "build-01", config.Forward.Host)
	assert.Equal(t, 3*time.Second, config.Forward.WriteTimeout)
	assert.Equal(t, time.Second, config.Watch.Debounce)
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	config, _, err := loadConfig(writeConfig(t, "workers: 2\n"))
	require.NoError(t, err)

	def := defaultConfig()
	assert.Equal(t, 2, config.Workers)
	assert.Equal(t, def.Format, config.Format)
	assert.Equal(t, def.MaxSize, config.MaxSize)
	assert.Equal(t, def.Extensions, config.Extensions)
	assert.Equal(t, def.Watch.Debounce, config.Watch.Debounce)
}

func TestLoadConfigHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".cc-jobparse")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("format: toml\n"), 0o600))

	config, from, err := loadConfig("")
	require.NoError(t, err)
	if from != filepath.Join(dir, "config.yaml") {
		t.Skipf("a system config at %s takes precedence", from)
	}
	assert.Equal(t, "toml", config.Format)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name     string
		path     string
		contains string
		hint     bool
	}{
		{
			name:     "explicit file missing",
			path:     filepath.Join(t.TempDir(), "missing.yaml"),
			contains: "reading config",
		},
		{
			name:     "not yaml",
			path:     writeConfig(t, "format: [unterminated\n"),
			contains: "parsing config",
			hint:     true,
		},
		{
			name:     "unknown format",
			path:     writeConfig(t, "format: xml\n"),
			contains: `unknown output format "xml"`,
			hint:     true,
		},
		{
			name:     "negative workers",
			path:     writeConfig(t, "workers: -2\n"),
			contains: "workers must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, from, err := loadConfig(tt.path)
			require.Error(t, err)
			assert.Empty(t, from)
			assert.Contains(t, err.Error(), tt.contains)
			if tt.hint {
				assert.NotEmpty(t, diag.Hint(err))
			}
		})
	}
}

func TestConfigSearchPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	paths := configSearchPaths("/tmp/custom.yaml")
	require.NotEmpty(t, paths)
	assert.Equal(t, "/tmp/custom.yaml", paths[0])
	assert.Contains(t, paths, "/etc/cc-jobparse/config.yaml")
	assert.Equal(t, filepath.Join(home, ".cc-jobparse", "config.yaml"), paths[len(paths)-1])

	assert.NotContains(t, configSearchPaths(""), "")
}
