package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/workspace/internal/theme"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.PubName != "Workspace.1" || cfg.CxName != "Workspace" {
		t.Fatalf("unexpected default names %q/%q", cfg.PubName, cfg.CxName)
	}
	if cfg.Prefix() != "Workspace" {
		t.Fatalf("Prefix() = %q, want Workspace", cfg.Prefix())
	}
	if cfg.ParsedTheme() != theme.Workbench {
		t.Fatalf("default theme = %v, want Workbench", cfg.ParsedTheme())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
	if res.Config.IPCTimeout != 5*time.Second {
		t.Fatalf("expected default ipc_timeout 5s, got %v", res.Config.IPCTimeout)
	}
}

func TestLoadFromPath_ReadsKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		`pubname: "Lab.2"`,
		`cx_name: "Lab"`,
		`popkey: "Mod4-Mod1-w"`,
		`theme: sepia`,
		`bar_height: 24`,
		`pens: ["#102030", "#ffffff"]`,
		`watch: false`,
		`ipc_timeout: 2s`,
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.PubName != "Lab.2" || cfg.Prefix() != "Lab" || cfg.PopKey != "Mod4-Mod1-w" {
		t.Fatalf("unexpected names: %+v", cfg)
	}
	if cfg.ParsedTheme() != theme.Sepia {
		t.Fatalf("theme = %v, want Sepia", cfg.ParsedTheme())
	}
	if cfg.BarHeight != 24 || cfg.Watch || cfg.IPCTimeout != 2*time.Second {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	pal, err := cfg.Palette()
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	if len(pal) != 2 || pal[0] != (theme.RGB{R: 0x10, G: 0x20, B: 0x30}) {
		t.Fatalf("palette = %+v", pal)
	}

	val, src, err := Explain(res, "theme")
	if err != nil {
		t.Fatalf("explain theme: %v", err)
	}
	if val != "sepia" || src.Kind != SourceFile || src.Line != 4 {
		t.Fatalf("explain theme = %#v from %#v", val, src)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "bar_height: 5\ntheme: blue\n")
	writeConfig(t, configD, "20-override.yaml", "bar_height: 6\n")
	writeConfig(t, configD, "notes.txt", "not yaml at all: [\n")

	// Main file overrides includes.
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include:",
		"  - config.d",
		"bar_height: 7",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BarHeight != 7 {
		t.Fatalf("expected bar_height to be 7, got %d", res.Config.BarHeight)
	}
	if res.Config.Theme != "blue" {
		t.Fatalf("expected included theme blue, got %q", res.Config.Theme)
	}
	if len(res.Files) != 3 || res.Files[2] != path {
		t.Fatalf("unexpected load order %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMergesWorkspaceKeys(t *testing.T) {
	dir := t.TempDir()
	themes := filepath.Join(dir, "themes")
	if err := os.MkdirAll(themes, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	shared := writeConfig(t, dir, "shared.yaml", strings.Join([]string{
		`cx_name: "Lab"`,
		`pens: ["#111111", "#222222", "#333333"]`,
		`shell_template: "xterm -into {window}"`,
		"",
	}, "\n"))
	writeConfig(t, themes, "a-sepia.yaml", "include: ../shared.yaml\ntheme: sepia\n")
	sepiaOverride := writeConfig(t, themes, "b-dark.yaml", "theme: dark\npens:\n  - \"#444444\"\n  - \"#555555\"\n")

	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include:",
		"  - themes/*.yaml",
		"  - shared.yaml",
		`pubname: "Lab.3"`,
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.PubName != "Lab.3" || cfg.CxName != "Lab" || cfg.Prefix() != "Lab" {
		t.Fatalf("names = %q/%q", cfg.PubName, cfg.CxName)
	}
	if cfg.ParsedTheme() != theme.Dark {
		t.Fatalf("theme = %q, want the later include to win", cfg.Theme)
	}
	// Pens replace as a whole table.
	if len(cfg.Pens) != 2 || cfg.Pens[1] != "#555555" {
		t.Fatalf("pens = %v", cfg.Pens)
	}
	if cfg.ShellTemplate != "xterm -into {window}" {
		t.Fatalf("shell_template = %q", cfg.ShellTemplate)
	}

	// shared.yaml is reached twice but merged once, before the theme files.
	if len(res.Files) != 4 || res.Files[0] != canonicalPath(shared) || res.Files[3] != canonicalPath(path) {
		t.Fatalf("unexpected load order %v", res.Files)
	}

	_, src, err := Explain(res, "pens.1")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.File != canonicalPath(sepiaOverride) || src.Line != 4 {
		t.Fatalf("pens.1 source = %#v", src)
	}
	_, src, err = Explain(res, "cx_name")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.File != canonicalPath(shared) || src.Line != 1 {
		t.Fatalf("cx_name source = %#v", src)
	}
}

func TestLoadFromPath_IncludePatternWithoutMatches(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "theme: sepia\ninclude: conf.d/*.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.HasPrefix(err.Error(), path+":2:") || !strings.Contains(err.Error(), "no files match") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadFromPath_IncludeExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "palette.yaml", "palette_backend: Fuzzel\n")
	t.Setenv("WORKSPACE_TEST_CONF", dir)
	path := writeConfig(t, t.TempDir(), "config.yaml", "include: $WORKSPACE_TEST_CONF/palette.yaml\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PaletteBackend != "fuzzel" {
		t.Fatalf("palette_backend = %q", res.Config.PaletteBackend)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "theme: sepia\nbar_height: -1\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "bar_height" || verr.Source.Line != 2 {
		t.Fatalf("unexpected validation error %+v", verr)
	}
	if !strings.HasPrefix(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_BadPenPointsAtPens(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "pens:\n  - \"#000000\"\n  - \"#zz0000\"\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "pens.1" || verr.Source.Kind != SourceFile || verr.Source.Line != 3 {
		t.Fatalf("unexpected validation error %+v", verr)
	}
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "theme: sepia\nbar_height: 30\n")
	t.Setenv("WORKSPACE_THEME", "dark")
	t.Setenv("WORKSPACE_IPC_TIMEOUT", "750ms")
	t.Setenv("WORKSPACE_PENS", "#111111,#222222")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ParsedTheme() != theme.Dark {
		t.Fatalf("theme = %q, want dark from env", res.Config.Theme)
	}
	if res.Config.BarHeight != 30 {
		t.Fatalf("bar_height = %d, want file value 30", res.Config.BarHeight)
	}
	if res.Config.IPCTimeout != 750*time.Millisecond {
		t.Fatalf("ipc_timeout = %v", res.Config.IPCTimeout)
	}
	if len(res.Config.Pens) != 2 {
		t.Fatalf("pens = %v", res.Config.Pens)
	}

	_, src, err := Explain(res, "theme")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceEnv || src.Name != "WORKSPACE_THEME" {
		t.Fatalf("theme source = %#v", src)
	}
	_, src, err = Explain(res, "bar_height")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile {
		t.Fatalf("bar_height source = %#v", src)
	}
}

func TestLoadFromPath_BadEnvValue(t *testing.T) {
	t.Setenv("WORKSPACE_BAR_HEIGHT", "tall")
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for non-numeric WORKSPACE_BAR_HEIGHT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty cx_name", func(c *Config) { c.CxName = " " }, "cx_name"},
		{"empty pubname", func(c *Config) { c.PubName = "" }, "pubname"},
		{"unknown theme", func(c *Config) { c.Theme = "purple" }, "theme"},
		{"template without window", func(c *Config) { c.ShellTemplate = "xterm" }, "shell_template"},
		{"palette backend", func(c *Config) { c.PaletteBackend = "zenity" }, "palette_backend"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"ipc timeout", func(c *Config) { c.IPCTimeout = 0 }, "ipc_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	got, err := ParseHexColor("#6688BB")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (theme.RGB{R: 0x66, G: 0x88, B: 0xbb}) {
		t.Fatalf("got %+v", got)
	}
	for _, bad := range []string{"", "#fff", "#12345g", "1234567"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("ParseHexColor(%q) succeeded", bad)
		}
	}
}

func TestSave_RoundTripsThroughLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Theme = "Green"
	cfg.MetricsAddr = "127.0.0.1:9190"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if res.Config.ParsedTheme() != theme.Green || res.Config.MetricsAddr != "127.0.0.1:9190" {
		t.Fatalf("unexpected reloaded config %+v", res.Config)
	}
}

func TestExplain_UnknownPath(t *testing.T) {
	res := &LoadResult{Config: DefaultConfig()}
	if _, _, err := Explain(res, "layouts.grid"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	val, src, err := Explain(res, "pens.3")
	if err != nil {
		t.Fatalf("explain pens.3: %v", err)
	}
	if val != "#6688bb" || src.Kind != SourceDefault {
		t.Fatalf("pens.3 = %#v from %#v", val, src)
	}
}
