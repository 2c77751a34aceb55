package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/workspace/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addClientFlags(fs)

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: workspace tui [--cx-name NAME] [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive TUI for a running workspace.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate actions")
		fmt.Fprintln(os.Stderr, "  Enter     Run selected action")
		fmt.Fprintln(os.Stderr, "  Tab, 1/2  Switch between Actions and Status")
		fmt.Fprintln(os.Stderr, "  r         Refresh status")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	name, _ := cf.resolve()
	if err := tui.Run(cf.client(), name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
