package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/croncommander/cc-jobparse/internal/taskjob"
)

// Config represents the cc-jobparse configuration file.
type Config struct {
	Format     string        `yaml:"format"`
	Workers    int           `yaml:"workers"`
	MaxSize    int64         `yaml:"max_size"`
	Extensions []string      `yaml:"extensions"`
	Recursive  bool          `yaml:"recursive"`
	All        bool          `yaml:"all"`
	Forward    ForwardConfig `yaml:"forward"`
	Watch      WatchConfig   `yaml:"watch"`
}

// ForwardConfig configures the collector connection.
type ForwardConfig struct {
	URL          string        `yaml:"url"`
	Host         string        `yaml:"host"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

func defaultConfig() Config {
	return Config{
		Format:     "text",
		Workers:    runtime.NumCPU(),
		MaxSize:    taskjob.DefaultMaxSize,
		Extensions: []string{".job", ".xml"},
		Forward:    ForwardConfig{WriteTimeout: websocketWriteTimeout},
		Watch:      WatchConfig{Debounce: 250 * time.Millisecond},
	}
}

// configSearchPaths lists candidate config files in priority order.
func configSearchPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths,
		"/etc/cc-jobparse/config.yaml",
		"/etc/cc-jobparse/config.yml",
	)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cc-jobparse", "config.yaml"))
	}
	return paths
}

// loadConfig returns the defaults overlaid with the first config file
// found, and the path it came from ("" when none was found). A file
// named with --config must exist; the well-known locations are optional.
func loadConfig(explicit string) (Config, string, error) {
	config := defaultConfig()

	for _, path := range configSearchPaths(explicit) {
		data, err := os.ReadFile(path)
		if err != nil {
			if path == explicit {
				return config, "", errors.Wrapf(err, "reading config %s", path)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, "", errors.WithHint(
				errors.Wrapf(err, "parsing config %s", path),
				"the config file must be a YAML mapping, see `cc-jobparse parse --help` for the keys")
		}
		if err := config.validate(); err != nil {
			return config, "", errors.Wrapf(err, "config %s", path)
		}
		return config, path, nil
	}

	return config, "", nil
}

func (c *Config) validate() error {
	if _, err := parseReportFormat(c.Format); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Newf("workers must not be negative, got %d", c.Workers)
	}
	if c.MaxSize < 0 {
		return errors.Newf("max_size must not be negative, got %d", c.MaxSize)
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}
