// ABOUTME: Tests for the console command
// ABOUTME: Verifies the debug log file and TUI error handling without a terminal

package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/changexio/changex-console/internal/logger"
)

func TestRunConsole_WritesDebugLog(t *testing.T) {
	testAPI(t, http.NotFoundHandler())
	t.Setenv("LOG_LEVEL", "")
	prevLogger := slog.Default()
	prevRun := runTUI
	defer func() {
		slog.SetDefault(prevLogger)
		runTUI = prevRun
	}()

	var ran bool
	runTUI = func(e *env) error {
		ran = true
		slog.Info("console started")
		return nil
	}

	e := mustEnv(t)
	var buf bytes.Buffer
	if code := runConsole(context.Background(), e, &buf); code != exitOK {
		t.Fatalf("expected exit code %d, got %d: %s", exitOK, code, buf.String())
	}
	if !ran {
		t.Error("expected TUI to run")
	}

	data, err := os.ReadFile(filepath.Join(e.cfg.ConfigDir, logger.LogFileName))
	if err != nil {
		t.Fatalf("expected debug log, got %v", err)
	}
	if !bytes.Contains(data, []byte("console started")) {
		t.Errorf("expected log line in file, got %q", data)
	}
}

func TestRunConsole_TUIError(t *testing.T) {
	testAPI(t, http.NotFoundHandler())
	prevLogger := slog.Default()
	prevRun := runTUI
	defer func() {
		slog.SetDefault(prevLogger)
		runTUI = prevRun
	}()
	runTUI = func(e *env) error { return errors.New("no terminal") }

	var buf bytes.Buffer
	if code := runConsole(context.Background(), mustEnv(t), &buf); code != exitUsage {
		t.Errorf("expected exit code %d, got %d", exitUsage, code)
	}
	if !bytes.Contains(buf.Bytes(), []byte("no terminal")) {
		t.Errorf("expected error in output, got %q", buf.String())
	}
}
