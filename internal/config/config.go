package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/mathnote/internal/theme"
)

// Defaults applied when neither the config file, the environment nor the
// command line set a value.
const (
	DefaultSolverURL     = "http://localhost:8900"
	DefaultSolverTimeout = 30 * time.Second
	DefaultResultDelay   = time.Second
)

// Notify holds notification settings.
type Notify struct {
	Result bool
	Error  bool
}

// Config holds the application configuration.
type Config struct {
	Theme         string
	SolverURL     string
	SolverTimeout time.Duration
	SolverRetries int
	ResultDelay   time.Duration
	DBPath        string
	ClearOnResult bool
	Notify        Notify
	Themes        map[string]*theme.Theme

	// Source is the file the config was read from, empty for defaults.
	Source string
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:         "", // Empty so the stored preference and env can decide
		SolverURL:     DefaultSolverURL,
		SolverTimeout: DefaultSolverTimeout,
		ResultDelay:   DefaultResultDelay,
		ClearOnResult: true,
		Themes:        make(map[string]*theme.Theme),
	}
}

// ApplyEnv overrides fields from MATHNOTE_* environment variables. getenv
// is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("MATHNOTE_SOLVER_URL"); v != "" {
		c.SolverURL = v
	}
	if v := getenv("MATHNOTE_THEME"); v != "" {
		c.Theme = v
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	fmt.Fprintf(&sb, "solver_url = %s\n", c.SolverURL)
	fmt.Fprintf(&sb, "solver_timeout = %s\n", c.SolverTimeout)
	fmt.Fprintf(&sb, "solver_retries = %d\n", c.SolverRetries)
	fmt.Fprintf(&sb, "result_delay = %s\n", c.ResultDelay)
	if c.DBPath != "" {
		fmt.Fprintf(&sb, "db_path = %s\n", c.DBPath)
	}
	fmt.Fprintf(&sb, "clear_on_result = %v\n", c.ClearOnResult)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "result = %v\n", c.Notify.Result)
	fmt.Fprintf(&sb, "error = %v\n", c.Notify.Error)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_, _ = c.Themes[name].WriteTo(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}
