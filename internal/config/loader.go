package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfigPath names a config file to use ahead of the search path.
const EnvConfigPath = "MATHNOTE_CONFIG"

var searchNames = []string{"config.rc", "mathnote.rc"}

// Loader finds and parses the configuration file.
type Loader struct {
	Version      string // Build version; "dev" also searches the working directory
	OverridePath string // Set at compile time
	// Getenv reads EnvConfigPath. Nil means os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load parses the first config file found. With none it returns the
// defaults and an empty Source.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// candidates lists where a config file may live, most specific first.
func (l *Loader) candidates() []string {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	var out []string
	if l.OverridePath != "" {
		out = append(out, l.OverridePath)
	}
	if p := getenv(EnvConfigPath); p != "" {
		out = append(out, p)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			out = append(out, filepath.Join(wd, ".mathnoterc"))
		}
	}
	dir := Dir()
	for _, name := range searchNames {
		out = append(out, filepath.Join(dir, name))
	}
	return out
}

// GetConfigPath returns the first existing candidate file, or "".
func (l *Loader) GetConfigPath() string {
	for _, p := range l.candidates() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Dir is the per-user configuration directory. It follows XDG_CONFIG_HOME
// where the platform does.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mathnote")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mathnote")
}

// DefaultPath is where Save writes when no config file exists yet.
func DefaultPath() string { return filepath.Join(Dir(), "config.rc") }

// DefaultDBPath is the history and settings database location.
func DefaultDBPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "mathnote", "mathnote.db")
	}
	return filepath.Join(Dir(), "mathnote.db")
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(cfg.String()), 0o644)
}
