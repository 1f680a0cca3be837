package main

import (
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/example/mathnote/internal/appstate"
	"github.com/example/mathnote/internal/display"
)

// listMonitors is replaced in tests.
var listMonitors = display.ListMonitors

type shortcutsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseShortcutsCmd(args []string, r *root) (*shortcutsCmd, error) {
	fs := flag.NewFlagSet("shortcuts", flag.ExitOnError)
	cmd := &shortcutsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *shortcutsCmd) Run() error {
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	for _, sc := range appstate.Shortcuts() {
		fmt.Fprintf(tw, "%s\t%s\n", sc.Label(), sc.Description)
	}
	return tw.Flush()
}

func (c *shortcutsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type monitorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseMonitorsCmd(args []string, r *root) (*monitorsCmd, error) {
	fs := flag.NewFlagSet("monitors", flag.ExitOnError)
	cmd := &monitorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *monitorsCmd) Run() error {
	monitors, err := listMonitors()
	if err != nil {
		return fmt.Errorf("list monitors: %w", err)
	}
	if len(monitors) == 0 {
		fmt.Fprintln(c.stdout, "no monitors available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available monitors:")
	for _, m := range monitors {
		fmt.Fprintf(c.stdout, "  %s\n", m)
	}
	size := display.WindowSize(monitors)
	fmt.Fprintf(c.stdout, "window size: %dx%d\n", size.X, size.Y)
	return nil
}

func (c *monitorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
