package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/example/mathnote/internal/calc"
	"github.com/example/mathnote/internal/clipboard"
)

// copyText is replaced in tests.
var copyText = clipboard.WriteText

// historyCmd inspects the saved calculations without opening the window.
type historyCmd struct {
	*root
	fs    *flag.FlagSet
	limit int
}

func (h *historyCmd) FlagSet() *flag.FlagSet {
	return h.fs
}

func parseHistoryCmd(args []string, r *root) (*historyCmd, error) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	h := &historyCmd{root: r, fs: fs}
	fs.IntVar(&h.limit, "n", 0, "list at most n calculations (0 lists all)")
	fs.Usage = usageFunc(h)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: h}
	}
	return h, nil
}

func (h *historyCmd) Run() error {
	ctx := context.Background()
	kv, closeStore, err := h.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	store := h.newHistory(kv)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	args := h.fs.Args()
	switch args[0] {
	case "list":
		entries := store.Entries()
		if len(entries) == 0 {
			fmt.Fprintln(h.stdout, "no calculations saved")
			return nil
		}
		if h.limit > 0 && len(entries) > h.limit {
			entries = entries[:h.limit]
		}
		tw := tabwriter.NewWriter(h.stdout, 0, 4, 2, ' ', 0)
		for i, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i, e.Timestamp.Local().Format("2006-01-02 15:04"), calc.Formula(e.Expression, e.Result))
		}
		return tw.Flush()
	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(h.stdout, "history cleared")
		return nil
	case "export":
		data, err := store.Export()
		if err != nil {
			return fmt.Errorf("export history: %w", err)
		}
		if len(args) > 1 {
			if err := os.WriteFile(args[1], append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("export history: %w", err)
			}
			fmt.Fprintf(h.stderr, "exported %d calculations to %s\n", store.Len(), args[1])
			return nil
		}
		_, err = fmt.Fprintf(h.stdout, "%s\n", data)
		return err
	case "copy":
		idx := 0
		if len(args) > 1 {
			if idx, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
		}
		entries := store.Entries()
		if idx < 0 || idx >= len(entries) {
			return fmt.Errorf("no calculation at index %d (have %d)", idx, len(entries))
		}
		formula := calc.Formula(entries[idx].Expression, entries[idx].Result)
		if err := copyText(formula); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(h.stdout, "copied %s\n", formula)
		return nil
	default:
		return &UsageError{of: h}
	}
}
