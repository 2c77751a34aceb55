package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/workspace/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "show", "hide", "enable", "disable", "kill", "shell":
		os.Exit(runBrokerCommand(os.Args[1], os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "theme":
		os.Exit(runTheme(os.Args[2:]))
	case "default":
		os.Exit(runDefault(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: workspace <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the workspace surface (foreground)")
	fmt.Fprintln(w, "  status              Show session status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  show                Bring the workspace to the front")
	fmt.Fprintln(w, "  hide                Ask the workspace to hide (acknowledged, no-op)")
	fmt.Fprintln(w, "  enable              Activate the broker hotkey")
	fmt.Fprintln(w, "  disable             Deactivate the broker hotkey")
	fmt.Fprintln(w, "  kill                Close the workspace if no windows are open")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  arrange <strategy>  Arrange windows (horizontal, vertical, grid, cascade, maximize)")
	fmt.Fprintln(w, "  theme <name>        Switch the colour theme")
	fmt.Fprintln(w, "  shell               Toggle the shell console")
	fmt.Fprintln(w, "  default <surface>   Make a surface the default for new windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the config file location")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'workspace <command> --help' for command-specific options.")
}

// loadConfig reads the config at path, or the default location when path
// is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// parseFlags parses args and maps the outcome to an exit code; ok is
// false when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceEnv:
		if src.Name != "" {
			return "env:" + src.Name
		}
		return "env"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
