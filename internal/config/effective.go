package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. WORKSPACE_THEME.
const EnvPrefix = "WORKSPACE"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (from %s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig lays the merged file values over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.PubName != nil {
		cfg.PubName = *raw.PubName
	}
	if raw.CxName != nil {
		cfg.CxName = *raw.CxName
	}
	if raw.PopKey != nil {
		cfg.PopKey = *raw.PopKey
	}
	if raw.Backdrop != nil {
		cfg.Backdrop = *raw.Backdrop
	}
	if raw.ShellTemplate != nil {
		cfg.ShellTemplate = *raw.ShellTemplate
	}
	if raw.StartupScript != nil {
		cfg.StartupScript = *raw.StartupScript
	}
	if raw.Theme != nil {
		cfg.Theme = *raw.Theme
	}
	if raw.BarHeight != nil {
		cfg.BarHeight = *raw.BarHeight
	}
	if raw.PaletteBackend != nil {
		cfg.PaletteBackend = strings.ToLower(strings.TrimSpace(*raw.PaletteBackend))
	}
	if raw.Pens != nil {
		cfg.Pens = append([]string(nil), raw.Pens...)
	}
	if raw.MetricsAddr != nil {
		cfg.MetricsAddr = *raw.MetricsAddr
	}
	if raw.Watch != nil {
		cfg.Watch = *raw.Watch
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.IPCTimeout != nil {
		cfg.IPCTimeout = *raw.IPCTimeout
	}

	return cfg
}

// ApplyEnv overlays WORKSPACE_* variables on cfg and returns the source of
// every key they set.
func ApplyEnv(cfg *Config) (map[string]Source, error) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	sources := make(map[string]Source)
	t := reflect.TypeOf(*cfg)
	for i := 0; i < t.NumField(); i++ {
		path, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		key := EnvPrefix + "_" + strings.ToUpper(path)
		if _, ok := os.LookupEnv(key); ok {
			sources[path] = Source{Kind: SourceEnv, Name: key}
		}
	}
	return sources, nil
}
