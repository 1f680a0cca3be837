package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/mathnote/internal/solver/fakesolver"
)

const defaultFixture = `responses:
  - - {expr: "2+2", result: "4"}
  - - {expr: "x", result: "5", assign: true}
  - - {expr: "x*2", result: "10"}
`

// fakeSolverCmd runs the canned-answer server in the foreground.
type fakeSolverCmd struct {
	*root
	fs      *flag.FlagSet
	addr    string
	fixture string
}

func (f *fakeSolverCmd) FlagSet() *flag.FlagSet {
	return f.fs
}

func parseFakeSolverCmd(args []string, r *root) (*fakeSolverCmd, error) {
	fs := flag.NewFlagSet("fake-solver", flag.ExitOnError)
	f := &fakeSolverCmd{root: r, fs: fs}
	fs.StringVar(&f.addr, "addr", "127.0.0.1:8900", "listen address")
	fs.StringVar(&f.fixture, "fixture", "", "YAML fixture with the answers to replay (default a small built-in set)")
	fs.Usage = usageFunc(f)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: f}
	}
	return f, nil
}

func (f *fakeSolverCmd) loadFixture() (fakesolver.Fixture, error) {
	if f.fixture == "" {
		return fakesolver.ParseFixture([]byte(defaultFixture))
	}
	return fakesolver.LoadFixture(f.fixture)
}

func (f *fakeSolverCmd) Run() error {
	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return f.serve(ctx, ln)
}

// serve answers on ln until ctx is done.
func (f *fakeSolverCmd) serve(ctx context.Context, ln net.Listener) error {
	fx, err := f.loadFixture()
	if err != nil {
		ln.Close()
		return err
	}
	srv := &http.Server{
		Handler:           fakesolver.New(fx, f.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	f.logger.Info("fake solver listening", "addr", ln.Addr().String(), "responses", len(fx.Responses))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
