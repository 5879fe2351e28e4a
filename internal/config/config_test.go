package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	prev := configPathFunc
	configPathFunc = func() string { return path }
	t.Cleanup(func() { configPathFunc = prev })
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	withConfigPath(t, filepath.Join(t.TempDir(), "missing.toml"))
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.StorePath != defaultStorePath {
		t.Fatalf("expected default store path, got %q", cfg.App.StorePath)
	}
	if cfg.App.MaxFilters != defaultMaxFilters {
		t.Fatalf("expected default max filters, got %d", cfg.App.MaxFilters)
	}
	if cfg.App.PollInterval != defaultPoll {
		t.Fatalf("expected default poll, got %s", cfg.App.PollInterval)
	}
	if cfg.App.Create || cfg.App.FilterID != 0 {
		t.Fatalf("expected picker launch by default, got %#v", cfg.App)
	}
}

func TestLoadArgsLayering(t *testing.T) {
	path := writeFile(t, `
[store]
path = "from-file.db"
max_filters = 3

[watch]
poll = "250ms"

[ui]
width = 60
footer = true
`)
	withConfigPath(t, path)

	env := []string{"FOLDERCTL_STORE=from-env.db", "FOLDERCTL_WIDTH=70"}
	cfg, err := LoadArgs([]string{"-width", "80"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.StorePath != "from-env.db" {
		t.Fatalf("expected env to override file store, got %q", cfg.App.StorePath)
	}
	if cfg.App.Width != 80 {
		t.Fatalf("expected flag to override env width, got %d", cfg.App.Width)
	}
	if cfg.App.MaxFilters != 3 {
		t.Fatalf("expected file max filters, got %d", cfg.App.MaxFilters)
	}
	if cfg.App.PollInterval != 250*time.Millisecond {
		t.Fatalf("expected file poll, got %s", cfg.App.PollInterval)
	}
	if !cfg.App.ShowFooter {
		t.Fatalf("expected footer from file")
	}
	if cfg.File != path {
		t.Fatalf("expected file path recorded, got %q", cfg.File)
	}
}

func TestLoadArgsExplicitConfigFlag(t *testing.T) {
	withConfigPath(t, "")
	path := writeFile(t, "[log]\ntrace = true\nfile = \"x.log\"\n")
	cfg, err := LoadArgs([]string{"-config=" + path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "x.log" {
		t.Fatalf("expected logging from explicit file, got %#v", cfg.Logging)
	}

	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.toml")}, nil); err == nil {
		t.Fatalf("expected missing explicit config to fail")
	}
}

func TestLoadArgsInvalidTOML(t *testing.T) {
	withConfigPath(t, writeFile(t, "[store\n"))
	if _, err := LoadArgs(nil, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadArgsFilterAndNewExclusive(t *testing.T) {
	withConfigPath(t, "")
	_, err := LoadArgs([]string{"-filter", "4", "-new"}, nil)
	if !errors.Is(err, errFilterAndNew) {
		t.Fatalf("expected exclusive flag error, got %v", err)
	}
}

func TestLoadArgsRejectsBadValues(t *testing.T) {
	withConfigPath(t, "")
	cases := [][]string{
		{"-width", "-1"},
		{"-height", "-2"},
		{"-max-filters", "0"},
		{"-poll", "0s"},
		{"-filter", "-3"},
		{"-store", " "},
	}
	for _, args := range cases {
		if _, err := LoadArgs(args, nil); err == nil {
			t.Fatalf("expected %v to be rejected", args)
		}
	}
}

func TestLoadArgsBadEnvFallsBack(t *testing.T) {
	withConfigPath(t, "")
	cfg, err := LoadArgs(nil, []string{"FOLDERCTL_MAX_FILTERS=lots", "FOLDERCTL_POLL=soon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.MaxFilters != defaultMaxFilters || cfg.App.PollInterval != defaultPoll {
		t.Fatalf("expected defaults for unparsable env, got %#v", cfg.App)
	}
}

func TestLoadArgsFlagsRecorded(t *testing.T) {
	withConfigPath(t, "")
	cfg, err := LoadArgs([]string{"-filter", "12", "-trace", "extra"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.FilterID != 12 {
		t.Fatalf("expected filter 12, got %d", cfg.App.FilterID)
	}
	if cfg.Flags["filter"] != "12" || cfg.Flags["trace"] != "true" {
		t.Fatalf("unexpected flag record %#v", cfg.Flags)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "extra" {
		t.Fatalf("expected positional args kept, got %v", cfg.Args)
	}
}
