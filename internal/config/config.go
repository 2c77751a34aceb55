package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/workspace/internal/shell"
	"github.com/1broseidon/workspace/internal/theme"
)

// Config is the effective workspace configuration.
//
// Every key can be set in the YAML file and overridden by the environment
// variable WORKSPACE_<KEY>, e.g. WORKSPACE_CX_NAME. Only the prefixed names
// are read.
type Config struct {
	// PubName is the surface name, "<cx_name>.<instance>".
	PubName string `yaml:"pubname"`
	// CxName is the broker name and the surface family prefix.
	CxName string `yaml:"cx_name" split_words:"true"`
	// PopKey is the global hotkey that raises the surface, in xgbutil
	// keybind syntax (e.g. "Mod4-Mod1-w"). Empty disables it.
	PopKey string `yaml:"popkey,omitempty"`
	// Backdrop is the background image path.
	Backdrop string `yaml:"backdrop,omitempty"`
	// ShellTemplate is the terminal command used for the shell console.
	ShellTemplate string `yaml:"shell_template" split_words:"true"`
	// StartupScript is sourced by the shell console before it turns
	// interactive.
	StartupScript string `yaml:"startup_script,omitempty" split_words:"true"`
	Theme         string `yaml:"theme"`
	// BarHeight is the surface title bar height in pixels.
	BarHeight      int    `yaml:"bar_height" split_words:"true"`
	PaletteBackend string `yaml:"palette_backend" split_words:"true"`
	// Pens is the baseline colour table as "#rrggbb" strings. Empty means
	// the built-in four-colour table.
	Pens        []string      `yaml:"pens,omitempty"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty" split_words:"true"`
	Watch       bool          `yaml:"watch"`
	LogLevel    string        `yaml:"log_level" split_words:"true"`
	IPCTimeout  time.Duration `yaml:"ipc_timeout" split_words:"true"`
}

// DefaultPens is the four-colour baseline used when no pens are configured.
var DefaultPens = []string{"#aaaaaa", "#000000", "#ffffff", "#6688bb"}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		PubName:        "Workspace.1",
		CxName:         "Workspace",
		ShellTemplate:  shell.DefaultTemplate,
		Theme:          theme.Workbench.String(),
		BarHeight:      20,
		PaletteBackend: "auto",
		Watch:          true,
		LogLevel:       "info",
		IPCTimeout:     5 * time.Second,
	}
}

// Prefix returns the surface family prefix.
func (c *Config) Prefix() string {
	if prefix, _, ok := strings.Cut(c.PubName, "."); ok && prefix != "" {
		return prefix
	}
	return c.CxName
}

// ParsedTheme returns the configured theme. Validate guarantees the name
// is known.
func (c *Config) ParsedTheme() theme.Theme {
	t, _ := theme.Lookup(c.Theme)
	return t
}

// Palette returns the configured pens as colours.
func (c *Config) Palette() ([]theme.RGB, error) {
	pens := c.Pens
	if len(pens) == 0 {
		pens = DefaultPens
	}
	out := make([]theme.RGB, 0, len(pens))
	for i, pen := range pens {
		rgb, err := ParseHexColor(pen)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("pens.%d", i), Err: err}
		}
		out = append(out, rgb)
	}
	return out, nil
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (theme.RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return theme.RGB{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return theme.RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return theme.RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Validate checks the effective config.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CxName) == "" {
		return &ValidationError{Path: "cx_name", Err: fmt.Errorf("cx_name is required")}
	}
	if strings.TrimSpace(c.PubName) == "" {
		return &ValidationError{Path: "pubname", Err: fmt.Errorf("pubname is required")}
	}
	if strings.ContainsAny(c.PubName, "\n\t") {
		return &ValidationError{Path: "pubname", Err: fmt.Errorf("pubname must be a single line")}
	}
	if _, ok := theme.Lookup(c.Theme); !ok {
		return &ValidationError{Path: "theme", Err: fmt.Errorf("unknown theme %q", c.Theme)}
	}
	if c.ShellTemplate != "" && !strings.Contains(c.ShellTemplate, "{window}") && !strings.Contains(c.ShellTemplate, "{hexwindow}") {
		return &ValidationError{Path: "shell_template", Err: fmt.Errorf("shell_template must contain {window} or {hexwindow}")}
	}
	if c.BarHeight < 0 {
		return &ValidationError{Path: "bar_height", Err: fmt.Errorf("bar_height must be >= 0")}
	}
	switch c.PaletteBackend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		return &ValidationError{Path: "palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, fuzzel, dmenu, wofi")}
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.IPCTimeout <= 0 {
		return &ValidationError{Path: "ipc_timeout", Err: fmt.Errorf("ipc_timeout must be > 0")}
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
