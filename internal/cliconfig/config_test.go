package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg != nil {
		t.Fatalf("cfg = %+v, want nil", cfg)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("  ")
	if err != nil || cfg != nil {
		t.Fatalf("cfg=%v err=%v", cfg, err)
	}
}

func TestLoadAndResolve(t *testing.T) {
	path := writeConfig(t, `
currentContext: lab
contexts:
  lab:
    server: http://localhost:8888
    token: s3cret
    timeoutSeconds: 30
  hub:
    server: https://hub.example.com/user/me
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, name, err := cfg.Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if name != "lab" || ctx.Server != "http://localhost:8888" || ctx.Token != "s3cret" || ctx.TimeoutSeconds != 30 {
		t.Fatalf("ctx = %+v name=%q", ctx, name)
	}

	ctx, _, err = cfg.Resolve("hub")
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Server != "https://hub.example.com/user/me" {
		t.Fatalf("ctx = %+v", ctx)
	}
}

func TestResolve_ContextNotFound(t *testing.T) {
	path := writeConfig(t, "contexts:\n  lab:\n    server: http://localhost:8888\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = cfg.Resolve("missing")
	if !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("err = %v, want ErrContextNotFound", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "contexts: [not: a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
