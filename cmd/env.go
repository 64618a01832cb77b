// ABOUTME: Per-invocation wiring of config, session storage and API client
// ABOUTME: Maps errors to exit codes and enforces the session gate

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/config"
	"github.com/changexio/changex-console/internal/resources"
	"github.com/changexio/changex-console/internal/session"
)

// openBackend builds token storage from config. Tests swap it for a shared
// in-memory backend.
var openBackend = func(cfg *config.Config) (session.Backend, error) {
	return cfg.NewSessionBackend()
}

// env is everything a command needs to talk to the API.
type env struct {
	cfg    *config.Config
	store  *session.Store
	gate   *session.Gate
	client *client.Client
	set    *resources.Set

	closer io.Closer
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if url := GetAPIURL(); url != "" {
		cfg.APIURL = url
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("no API URL configured: set CHANGEX_API_URL or pass --api-url")
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(backend)
	gate := session.NewGate(backend)
	hc := client.NewHTTPClient(client.TransportConfig{
		Timeout:            cfg.HTTPTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		AllProxy:           cfg.AllProxy,
	})
	c := client.New(cfg.APIURL, store, gate, client.WithHTTPClient(hc))

	e := &env{
		cfg:    cfg,
		store:  store,
		gate:   gate,
		client: c,
		set:    resources.NewSet(c),
	}
	if cl, ok := backend.(io.Closer); ok {
		e.closer = cl
	}
	return e, nil
}

func (e *env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// pageSize is the list size used when a command does not set one.
func (e *env) pageSize() int {
	return e.cfg.PageSize
}

type runFunc func(ctx context.Context, e *env, w io.Writer) int

// execute opens the environment, applies the gate rule for cmd, runs fn and
// exits with its code.
func execute(cmd *cobra.Command, fn runFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := runCommand(ctx, cmd, os.Stdout, fn)
	cancel()
	if code != exitOK {
		os.Exit(code)
	}
}

func runCommand(ctx context.Context, cmd *cobra.Command, w io.Writer, fn runFunc) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}
	defer e.Close()

	if code := checkGate(ctx, cmd, e, w); code != exitOK {
		return code
	}
	return fn(ctx, e, w)
}

// checkGate refuses protected commands while the session gate is closed.
func checkGate(ctx context.Context, cmd *cobra.Command, e *env, w io.Writer) int {
	if !requiresAuth(cmd) || e.gate.IsOpen(ctx) {
		return exitOK
	}
	fmt.Fprintln(w, "Not logged in. Run 'changex login' first.")
	return exitUnauthenticated
}

// failed reports err and returns the matching exit code.
func failed(w io.Writer, err error) int {
	if errors.Is(err, client.ErrUnauthenticated) {
		fmt.Fprintln(w, "Session expired. Run 'changex login' again.")
		return exitUnauthenticated
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitAPIError
}
