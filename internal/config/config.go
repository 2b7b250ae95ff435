package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the relaynn configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Directory DirectoryConfig `yaml:"directory"`
	Rank      RankConfig      `yaml:"rank"`
	Output    OutputConfig    `yaml:"output"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DirectoryConfig points at the relay directory file.
type DirectoryConfig struct {
	Path   string `yaml:"path"`   // "-" reads stdin
	Format string `yaml:"format"` // json, yaml (default: by file extension)
}

// RankConfig holds ranking settings.
type RankConfig struct {
	Top     int `yaml:"top"`     // 0 = all relays
	Workers int `yaml:"workers"` // 0 = GOMAXPROCS
}

// OutputConfig holds CSV rendering settings.
type OutputConfig struct {
	Colour  bool `yaml:"colour"`
	ShortID int  `yaml:"short_id"` // identifier prefix length, 0 = full
}

// MetricsConfig holds Prometheus export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile path, empty = disabled
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A missing file yields the defaults.
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path. An empty path or a missing file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		cfg.ApplyDefaults()
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		cfg.ApplyDefaults()
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Directory.Path == "" {
		c.Directory.Path = "-"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Rank.Top < 0 {
		return fmt.Errorf("rank.top must be >= 0, got %d", c.Rank.Top)
	}
	if c.Rank.Workers < 0 {
		return fmt.Errorf("rank.workers must be >= 0, got %d", c.Rank.Workers)
	}
	if c.Output.ShortID < 0 {
		return fmt.Errorf("output.short_id must be >= 0, got %d", c.Output.ShortID)
	}
	switch c.Directory.Format {
	case "", "json", "yaml":
		// ok
	default:
		return fmt.Errorf("directory.format must be \"json\" or \"yaml\", got %q", c.Directory.Format)
	}
	return nil
}

// findConfigPath locates the config file for env under ./config/.
func findConfigPath(env string) string {
	return filepath.Join("config", fmt.Sprintf("%s.yaml", env))
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
