package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

func newTestPaths(t *testing.T) *XDGPathResolver {
	t.Helper()
	dir := t.TempDir()
	return &XDGPathResolver{paths: entities.XDGPaths{ConfigHome: dir, CacheHome: dir}}
}

func TestLoader_Load_Defaults(t *testing.T) {
	paths := newTestPaths(t)
	l := NewLoader(paths)

	cfg, err := l.Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := entities.DefaultConfiguration()
	if cfg.Update.CheckInterval != want.Update.CheckInterval {
		t.Errorf("CheckInterval = %v, want %v", cfg.Update.CheckInterval, want.Update.CheckInterval)
	}
	if cfg.Offline {
		t.Error("Offline should default false")
	}
}

func TestLoader_Load_GlobalAndProjectLayersMerge(t *testing.T) {
	paths := newTestPaths(t)
	globalTOML := `
offline = true

[update]
check_interval = "1h"
`
	if err := os.WriteFile(paths.ConfigFile(), []byte(globalTOML), 0o644); err != nil {
		t.Fatalf("writing global config: %v", err)
	}

	projectRoot := t.TempDir()
	projectTOML := `
[security]
allow_exec = true

[actions]
build = "go build ./..."
`
	if err := os.WriteFile(filepath.Join(projectRoot, "archetect.toml"), []byte(projectTOML), 0o644); err != nil {
		t.Fatalf("writing project config: %v", err)
	}

	l := NewLoader(paths)
	cfg, err := l.Load("", projectRoot)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Offline {
		t.Error("Offline should be true from the global layer")
	}
	if cfg.Update.CheckInterval != time.Hour {
		t.Errorf("CheckInterval = %v, want 1h", cfg.Update.CheckInterval)
	}
	if !cfg.Security.AllowExec {
		t.Error("AllowExec should be true from the project layer")
	}
	if cfg.Actions["build"] != "go build ./..." {
		t.Errorf("Actions[build] = %q, want \"go build ./...\"", cfg.Actions["build"])
	}
}

func TestLoader_Load_MissingExplicitConfigFileErrors(t *testing.T) {
	paths := newTestPaths(t)
	l := NewLoader(paths)

	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.toml"), t.TempDir()); err == nil {
		t.Fatal("expected an error for a missing explicit --config file")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	base := entities.DefaultConfiguration()
	offline := true
	allowExec := true

	cfg := ApplyFlagOverrides(base, &offline, &allowExec)

	if !cfg.Offline {
		t.Error("Offline should be overridden true")
	}
	if !cfg.Security.AllowExec {
		t.Error("AllowExec should be overridden true")
	}
}
