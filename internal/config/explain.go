package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given key and its source.
//
// Supported paths are the top-level keys plus pens.<index>:
//
//	pubname
//	cx_name
//	theme
//	pens
//	pens.2
//	ipc_timeout
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.sourceOf(path); ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	key, rest, nested := strings.Cut(path, ".")
	if nested && key != "pens" {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch key {
	case "pubname":
		return cfg.PubName, nil
	case "cx_name":
		return cfg.CxName, nil
	case "popkey":
		return cfg.PopKey, nil
	case "backdrop":
		return cfg.Backdrop, nil
	case "shell_template":
		return cfg.ShellTemplate, nil
	case "startup_script":
		return cfg.StartupScript, nil
	case "theme":
		return cfg.Theme, nil
	case "bar_height":
		return cfg.BarHeight, nil
	case "palette_backend":
		return cfg.PaletteBackend, nil
	case "pens":
		pens := cfg.Pens
		if len(pens) == 0 {
			pens = DefaultPens
		}
		if !nested {
			return pens, nil
		}
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 || i >= len(pens) {
			return nil, fmt.Errorf("unknown pens entry %q", rest)
		}
		return pens[i], nil
	case "metrics_addr":
		return cfg.MetricsAddr, nil
	case "watch":
		return cfg.Watch, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "ipc_timeout":
		return cfg.IPCTimeout.String(), nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
