package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one file as written. Nil fields were not set and leave the
// value from earlier files or the defaults in place.
type RawConfig struct {
	Include        IncludeList    `yaml:"include"`
	PubName        *string        `yaml:"pubname"`
	CxName         *string        `yaml:"cx_name"`
	PopKey         *string        `yaml:"popkey"`
	Backdrop       *string        `yaml:"backdrop"`
	ShellTemplate  *string        `yaml:"shell_template"`
	StartupScript  *string        `yaml:"startup_script"`
	Theme          *string        `yaml:"theme"`
	BarHeight      *int           `yaml:"bar_height"`
	PaletteBackend *string        `yaml:"palette_backend"`
	Pens           []string       `yaml:"pens"`
	MetricsAddr    *string        `yaml:"metrics_addr"`
	Watch          *bool          `yaml:"watch"`
	LogLevel       *string        `yaml:"log_level"`
	IPCTimeout     *time.Duration `yaml:"ipc_timeout"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.PubName != nil {
		out.PubName = overlay.PubName
	}
	if overlay.CxName != nil {
		out.CxName = overlay.CxName
	}
	if overlay.PopKey != nil {
		out.PopKey = overlay.PopKey
	}
	if overlay.Backdrop != nil {
		out.Backdrop = overlay.Backdrop
	}
	if overlay.ShellTemplate != nil {
		out.ShellTemplate = overlay.ShellTemplate
	}
	if overlay.StartupScript != nil {
		out.StartupScript = overlay.StartupScript
	}
	if overlay.Theme != nil {
		out.Theme = overlay.Theme
	}
	if overlay.BarHeight != nil {
		out.BarHeight = overlay.BarHeight
	}
	if overlay.PaletteBackend != nil {
		out.PaletteBackend = overlay.PaletteBackend
	}
	// Pens replace as a whole table.
	if overlay.Pens != nil {
		out.Pens = append([]string(nil), overlay.Pens...)
	}
	if overlay.MetricsAddr != nil {
		out.MetricsAddr = overlay.MetricsAddr
	}
	if overlay.Watch != nil {
		out.Watch = overlay.Watch
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.IPCTimeout != nil {
		out.IPCTimeout = overlay.IPCTimeout
	}

	return out
}
