package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/mathnote/internal/config"
	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/kvstore"
	"github.com/example/mathnote/internal/notify"
	"github.com/example/mathnote/internal/solver"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs       *flag.FlagSet
	program  string
	config   *config.Config
	logger   *slog.Logger
	notifier *notify.Notifier
	stdout   io.Writer
	stderr   io.Writer
	getenv   func(string) string

	themeName    string
	themeSet     bool
	solverURL    string
	dbPath       string
	verbose      bool
	resultAlerts bool
	errorAlerts  bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	c := *r
	c.fs = nil
	c.program = strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &c
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

// newRoot loads the config file and environment, then declares the global
// flags with those values as defaults so the command line wins.
func newRoot(getenv func(string) string) *root {
	loader := config.NewLoader(version, configPathOverride)
	loader.Getenv = getenv
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	cfg.ApplyEnv(getenv)

	r := &root{
		fs:      flag.NewFlagSet("mathnote", flag.ExitOnError),
		program: "mathnote",
		config:  cfg,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		getenv:  getenv,
	}
	r.fs.StringVar(&r.themeName, "theme", cfg.Theme, "color theme to use (light, dark or a theme file); saved as the preference when given")
	r.fs.StringVar(&r.solverURL, "solver-url", cfg.SolverURL, "base URL of the recognition service")
	r.fs.StringVar(&r.dbPath, "db", cfg.DBPath, "history and settings database (default "+config.DefaultDBPath()+")")
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output to stderr")
	r.fs.BoolVar(&r.resultAlerts, "notify-result", cfg.Notify.Result, "show a desktop notification when a result is placed")
	r.fs.BoolVar(&r.errorAlerts, "notify-error", cfg.Notify.Error, "show a desktop notification when a calculation fails")
	r.fs.Usage = usageFunc(r)
	return r
}

// apply copies parsed flag values into the config and builds the logger
// and notifier.
func (r *root) apply() {
	r.fs.Visit(func(f *flag.Flag) {
		if f.Name == "theme" {
			r.themeSet = true
		}
	})
	r.config.Theme = r.themeName
	r.config.SolverURL = r.solverURL
	r.config.DBPath = r.dbPath
	r.config.Notify.Result = r.resultAlerts
	r.config.Notify.Error = r.errorAlerts

	level := slog.LevelInfo
	if r.verbose {
		level = slog.LevelDebug
	}
	r.logger = slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level}))
	r.notifier = notify.New(notify.LoadPreferences(r.getenv), r.logger)
	r.notifier.Enable(notify.EventResult, r.config.Notify.Result)
	r.notifier.Enable(notify.EventError, r.config.Notify.Error)
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	r.apply()

	cmdName := "draw"
	var subArgs []string
	if r.fs.NArg() > 0 {
		cmdName = r.fs.Arg(0)
		subArgs = r.fs.Args()[1:]
	}

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r.subcommand(cmdName))
	case "history":
		cmd, err = parseHistoryCmd(subArgs, r.subcommand(cmdName))
	case "shortcuts":
		cmd, err = parseShortcutsCmd(subArgs, r.subcommand(cmdName))
	case "monitors":
		cmd, err = parseMonitorsCmd(subArgs, r.subcommand(cmdName))
	case "fake-solver":
		cmd, err = parseFakeSolverCmd(subArgs, r.subcommand(cmdName))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand(cmdName))
	case "version":
		cmd = &versionCmd{root: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// dbFile is the database path after flags and config are applied.
func (r *root) dbFile() string {
	if r.config.DBPath != "" {
		return r.config.DBPath
	}
	return config.DefaultDBPath()
}

// openStore opens the settings database. The returned func closes it.
func (r *root) openStore() (kvstore.Store, func(), error) {
	db, err := kvstore.OpenSQLite(r.dbFile(), kvstore.WithMkdirAll())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("close database", "error", err)
		}
	}, nil
}

func (r *root) newHistory(kv kvstore.Store) *history.Store {
	return history.New(kv, r.logger)
}

func (r *root) newSolver() *solver.Client {
	return solver.New(r.config.SolverURL,
		solver.WithTimeout(r.config.SolverTimeout),
		solver.WithRetry(r.config.SolverRetries, solverBackoff),
		solver.WithLogger(r.logger),
	)
}

func main() {
	r := newRoot(os.Getenv)
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
