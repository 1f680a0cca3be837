package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/mathnote/internal/appstate"
	"github.com/example/mathnote/internal/display"
	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/kvstore"
	"github.com/example/mathnote/internal/solver"
	"github.com/example/mathnote/internal/theme"
)

// testRoot returns a root with an isolated home directory and the given
// environment.
func testRoot(t *testing.T, env map[string]string) (*root, *bytes.Buffer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	r := newRoot(func(k string) string { return env[k] })
	var out bytes.Buffer
	r.stdout = &out
	r.stderr = io.Discard
	return r, &out
}

func dbArg(t *testing.T) string {
	return filepath.Join(t.TempDir(), "mathnote.db")
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	r, _ := testRoot(t, nil)
	err := r.Run([]string{"bogus"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UsageError, got %v", err)
	}
	for _, want := range []string{"Usage: mathnote", "fake-solver", "-solver-url"} {
		if !strings.Contains(uerr.Error(), want) {
			t.Errorf("help missing %q:\n%s", want, uerr.Error())
		}
	}
}

func TestSubcommandUsage(t *testing.T) {
	r, _ := testRoot(t, nil)
	r.apply()
	tests := []struct {
		name  string
		parse func() error
		want  []string
	}{
		{"history", func() error { _, err := parseHistoryCmd(nil, r.subcommand("history")); return err }, []string{"mathnote history", "-n"}},
		{"draw", func() error { _, err := parseDrawCmd([]string{"extra"}, r.subcommand("draw")); return err }, []string{"mathnote draw", "-keep-strokes"}},
		{"shortcuts", func() error { _, err := parseShortcutsCmd([]string{"x"}, r.subcommand("shortcuts")); return err }, []string{"mathnote shortcuts"}},
		{"monitors", func() error { _, err := parseMonitorsCmd([]string{"x"}, r.subcommand("monitors")); return err }, []string{"mathnote monitors"}},
		{"fake-solver", func() error { _, err := parseFakeSolverCmd([]string{"x"}, r.subcommand("fake-solver")); return err }, []string{"mathnote fake-solver", "-fixture"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse()
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected UsageError, got %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(uerr.Error(), want) {
					t.Errorf("help missing %q:\n%s", want, uerr.Error())
				}
			}
		})
	}
}

func TestSettingsPrecedence(t *testing.T) {
	testRoot(t, nil)
	home := os.Getenv("HOME")
	cfgDir := filepath.Join(home, ".config", "mathnote")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	rc := "solver_url = http://file:1\ntheme = dark\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.rc"), []byte(rc), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"config", nil, nil, "http://file:1"},
		{"env", map[string]string{"MATHNOTE_SOLVER_URL": "http://env:2"}, nil, "http://env:2"},
		{"flag", map[string]string{"MATHNOTE_SOLVER_URL": "http://env:2"}, []string{"-solver-url", "http://cli:3"}, "http://cli:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRoot(func(k string) string { return tt.env[k] })
			r.stdout, r.stderr = io.Discard, io.Discard
			if err := r.Run(append(tt.args, "version")); err != nil {
				t.Fatal(err)
			}
			if r.config.SolverURL != tt.want {
				t.Fatalf("solver url = %q, want %q", r.config.SolverURL, tt.want)
			}
			if r.config.Theme != "dark" {
				t.Fatalf("theme = %q, want dark from the config file", r.config.Theme)
			}
			if r.themeSet {
				t.Fatal("theme was not given on the command line")
			}
		})
	}
}

func TestDrawBuildsAppState(t *testing.T) {
	r, _ := testRoot(t, nil)
	var got *appstate.AppState
	orig := runUI
	runUI = func(a *appstate.AppState) { got = a }
	t.Cleanup(func() { runUI = orig })

	db := dbArg(t)
	args := []string{"-db", db, "-theme", "dark", "draw", "-color", "blue", "-keep-strokes", "-delay", "0s", "-size", "800x600"}
	if err := r.Run(args); err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("window was not started")
	}
	if got.ColorIdx != 5 || got.ClearOnResult || got.Delay != 0 || got.Size != image.Pt(800, 600) || got.Theme != "dark" {
		t.Fatalf("unexpected state: color=%d clear=%v delay=%v size=%v theme=%q", got.ColorIdx, got.ClearOnResult, got.Delay, got.Size, got.Theme)
	}
	if got.Solver == nil {
		t.Fatal("no solver configured")
	}

	kv, err := kvstore.OpenSQLite(db)
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	name, err := theme.Resolve(context.Background(), kv, "")
	if err != nil || name != "dark" {
		t.Fatalf("stored preference = %q, %v; want dark", name, err)
	}
}

func TestParsePaletteIndex(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"White", 0, false},
		{"red", 1, false},
		{" Orange ", len(appstate.Palette()) - 1, false},
		{"3", 3, false},
		{"99", 0, true},
		{"-1", 0, true},
		{"mauve", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePaletteIndex(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parsePaletteIndex(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Point
		wantErr bool
	}{
		{"800x600", image.Pt(800, 600), false},
		{"1024X768", image.Pt(1024, 768), false},
		{"800", image.Point{}, true},
		{"0x600", image.Point{}, true},
		{"800xabc", image.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSize(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func seedHistory(t *testing.T, db string, entries ...history.Entry) {
	t.Helper()
	kv, err := kvstore.OpenSQLite(db, kvstore.WithMkdirAll())
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	store := history.New(kv, nil)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := store.Append(context.Background(), entries[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHistoryCommands(t *testing.T) {
	db := dbArg(t)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedHistory(t, db,
		history.Entry{Expression: "x*2", Result: "10", Timestamp: ts.Add(time.Minute)},
		history.Entry{Expression: "2+2", Result: "4", Timestamp: ts},
	)

	run := func(args ...string) (string, error) {
		r, out := testRoot(t, nil)
		err := r.Run(append([]string{"-db", db, "history"}, args...))
		return out.String(), err
	}

	out, err := run("list")
	if err != nil {
		t.Fatal(err)
	}
	if i, j := strings.Index(out, "x*2 = 10"), strings.Index(out, "2+2 = 4"); i < 0 || j < 0 || i > j {
		t.Fatalf("list not newest first:\n%s", out)
	}
	if out, _ = run("-n", "1", "list"); strings.Contains(out, "2+2") {
		t.Fatalf("limit ignored:\n%s", out)
	}

	var copied string
	orig := copyText
	copyText = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyText = orig })
	if _, err := run("copy", "1"); err != nil {
		t.Fatal(err)
	}
	if copied != "2+2 = 4" {
		t.Fatalf("copied %q", copied)
	}
	if _, err := run("copy", "7"); err == nil {
		t.Fatal("expected an error for a missing index")
	}

	file := filepath.Join(t.TempDir(), "history.json")
	if _, err := run("export", file); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if got := history.Decode(data, nil); len(got) != 2 || got[0].Expression != "x*2" {
		t.Fatalf("exported %s", data)
	}

	if _, err := run("clear"); err != nil {
		t.Fatal(err)
	}
	if out, _ = run("list"); !strings.Contains(out, "no calculations saved") {
		t.Fatalf("after clear:\n%s", out)
	}

	var uerr *UsageError
	if _, err := run("frobnicate"); !errors.As(err, &uerr) {
		t.Fatalf("expected UsageError, got %v", err)
	}
}

func TestShortcutsCommand(t *testing.T) {
	r, out := testRoot(t, nil)
	if err := r.Run([]string{"shortcuts"}); err != nil {
		t.Fatal(err)
	}
	for _, sc := range appstate.Shortcuts() {
		if !strings.Contains(out.String(), sc.Label()) || !strings.Contains(out.String(), sc.Description) {
			t.Errorf("missing %s %s in:\n%s", sc.Label(), sc.Description, out)
		}
	}
}

func TestMonitorsCommand(t *testing.T) {
	orig := listMonitors
	t.Cleanup(func() { listMonitors = orig })

	listMonitors = func() ([]display.Monitor, error) {
		return []display.Monitor{{Index: 0, Name: "DP-1", Rect: image.Rect(0, 0, 2000, 1000), Primary: true}}, nil
	}
	r, out := testRoot(t, nil)
	if err := r.Run([]string{"monitors"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "DP-1") || !strings.Contains(out.String(), "window size: 1800x900") {
		t.Fatalf("output:\n%s", out)
	}

	sentinel := errors.New("no display")
	listMonitors = func() ([]display.Monitor, error) { return nil, sentinel }
	r, _ = testRoot(t, nil)
	if err := r.Run([]string{"monitors"}); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestFakeSolverServes(t *testing.T) {
	r, _ := testRoot(t, nil)
	r.apply()
	cmd, err := parseFakeSolverCmd(nil, r.subcommand("fake-solver"))
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.serve(ctx, ln) }()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	client := solver.New("http://"+ln.Addr().String(), solver.WithTimeout(5*time.Second))
	resp, err := client.Solve(context.Background(), solver.Request{Image: solver.EncodeDataURL(buf.Bytes())})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Expr != "2+2" || resp.Data[0].Result != "4" {
		t.Fatalf("response = %+v", resp)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestFakeSolverBadFixture(t *testing.T) {
	r, _ := testRoot(t, nil)
	r.apply()
	cmd, err := parseFakeSolverCmd([]string{"-fixture", filepath.Join(t.TempDir(), "missing.yaml")}, r.subcommand("fake-solver"))
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.serve(context.Background(), ln); err == nil {
		t.Fatal("expected fixture error")
	}
}

func TestConfigCommands(t *testing.T) {
	r, out := testRoot(t, nil)
	if err := r.Run([]string{"-solver-url", "http://cli:3", "config", "print"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "solver_url = http://cli:3") {
		t.Fatalf("print:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "nested", "config.rc")
	r, _ = testRoot(t, nil)
	if err := r.Run([]string{"-theme", "dark", "config", "save", path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "theme = dark") {
		t.Fatalf("saved:\n%s", data)
	}

	r, _ = testRoot(t, nil)
	if err := r.Run([]string{"config", "bogus"}); err == nil || !strings.Contains(err.Error(), "unknown config command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	r, out := testRoot(t, nil)
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "mathnote version dev\n" {
		t.Fatalf("version output %q", got)
	}
}
