package source

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the leaf configuration file.
type Config struct {
	Sources       map[string]SourceAlias `yaml:"sources"`
	DefaultSource string                 `yaml:"default_source"`
	LogDir        string                 `yaml:"log_dir,omitempty"`
	AppRoot       string                 `yaml:"app_root,omitempty"`
	Output        OutputConfig           `yaml:"output"`

	// Other keys (lines, addr, ...) are read through viper; they are kept
	// here so SaveConfig writes them back.
	Extra map[string]any `yaml:",inline"`
}

// SourceAlias defines a named source alias.
type SourceAlias struct {
	URI string `yaml:"uri"`
	// Root overrides app_root for traces read from this source.
	Root string `yaml:"root,omitempty"`
}

// OutputConfig defines output preferences.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, csv
	Color  string `yaml:"color"`  // auto, always, never
}

// configPathOverride is set by SetConfigPath (the --config flag).
var configPathOverride string

// SetConfigPath points LoadConfig and SaveConfig at path instead of the
// default location. An empty path restores the default.
func SetConfigPath(path string) {
	configPathOverride = path
}

// ConfigPath returns the path to the leaf config file.
func ConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".leaf", "config.yaml")
}

// LoadConfig loads the configuration from ~/.leaf/config.yaml.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Sources: make(map[string]SourceAlias),
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}

	path := ConfigPath()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]SourceAlias)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to ~/.leaf/config.yaml.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return os.ErrNotExist
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// RootFor returns the trace root for an alias, falling back to AppRoot.
func (c *Config) RootFor(alias string) string {
	if a, ok := c.Sources[alias]; ok && a.Root != "" {
		return a.Root
	}
	return c.AppRoot
}
