package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"obsync/config"
	"obsync/state"
)

func runDump(t *testing.T, args ...string) string {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t)
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Fetch.Token = "very-secret"
	env.Cfg = cfg

	out := new(bytes.Buffer)
	root := &cli.Command{Name: "obsync", Writer: out, Commands: []*cli.Command{dumpConfigCommand()}}
	if err := root.Run(ctx, append([]string{"obsync", "dumpconfig"}, args...)); err != nil {
		t.Fatalf("dumpconfig error = %v", err)
	}
	return out.String()
}

func TestDumpConfig(t *testing.T) {
	t.Run("active", func(t *testing.T) {
		out := runDump(t)
		if !strings.Contains(out, "catalog:") || strings.Contains(out, "very-secret") {
			t.Errorf("unexpected active configuration:\n%s", out)
		}
	})

	t.Run("default", func(t *testing.T) {
		if out := runDump(t, "--default"); !strings.Contains(out, "audio_url_template") {
			t.Errorf("unexpected default configuration:\n%s", out)
		}
	})

	t.Run("to file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "obsync.yaml")
		if out := runDump(t, dest); len(out) != 0 {
			t.Errorf("output written to writer: %q", out)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !strings.Contains(string(data), "stories:") {
			t.Errorf("unexpected file content:\n%s", data)
		}
	})
}
