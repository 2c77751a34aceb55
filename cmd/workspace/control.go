package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/workspace/internal/config"
	"github.com/1broseidon/workspace/internal/ipc"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

// clientFlags are the flags shared by every command that talks to a
// running workspace.
type clientFlags struct {
	path   *string
	cxName *string
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		path:   fs.String("config", "", "Config file path (default: ~/.config/workspace/config.yaml)"),
		cxName: fs.String("cx-name", "", "Broker name of the workspace (default: cx_name from config)"),
	}
}

// resolve returns the broker name and IPC timeout. A broken config falls
// back to the built-in values.
func (f clientFlags) resolve() (string, time.Duration) {
	defaults := config.DefaultConfig()
	name := strings.TrimSpace(*f.cxName)
	timeout := defaults.IPCTimeout
	if res, err := loadConfig(*f.path); err == nil {
		if name == "" {
			name = res.Config.CxName
		}
		timeout = res.Config.IPCTimeout
	}
	if name == "" {
		name = defaults.CxName
	}
	return name, timeout
}

func (f clientFlags) client() *ipc.Client {
	name, timeout := f.resolve()
	c := ipc.NewClient(name)
	c.SetTimeout(timeout)
	return c
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addClientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: workspace status [--cx-name NAME] [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show session status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := cf.client().Status()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(status)
	return 0
}

func printStatus(status *ipc.StatusData) {
	fmt.Printf("state:          %s\n", status.State)
	fmt.Printf("surface:        %s\n", status.Surface)
	fmt.Printf("host:           %s\n", status.Host)
	fmt.Printf("broker:         %s (active: %v)\n", status.Broker, status.BrokerActive)
	fmt.Printf("theme:          %s\n", status.Theme)
	fmt.Printf("shell:          %s\n", status.Shell)
	fmt.Printf("background:     %v\n", status.Background)
	fmt.Printf("visitors:       %d\n", status.Visitors)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
}

var brokerCommandHelp = map[string]string{
	"show":    "Bring the workspace surface to the front.",
	"hide":    "Ask the workspace to hide. The request is acknowledged and ignored.",
	"enable":  "Activate the broker so the pop hotkey raises the surface.",
	"disable": "Deactivate the broker; the pop hotkey is ignored.",
	"kill":    "Run the close protocol. Refused while windows are open on the surface.",
	"shell":   "Open the shell console, or close it when it is open.",
}

// runBrokerCommand handles the argument-less commands forwarded to the
// session.
func runBrokerCommand(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addClientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: workspace %s [--cx-name NAME] [--config PATH]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, brokerCommandHelp[name])
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	client := cf.client()
	var (
		status *ipc.StatusData
		err    error
	)
	switch name {
	case "show":
		status, err = client.Appear()
	case "hide":
		status, err = client.Disappear()
	case "enable":
		status, err = client.Enable()
	case "disable":
		status, err = client.Disable()
	case "kill":
		status, err = client.Kill()
	case "shell":
		status, err = client.Shell()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if name == "kill" && status != nil {
		fmt.Printf("state: %s\n", status.State)
		return 0
	}
	if status != nil {
		printStatus(status)
	}
	return 0
}

func runArrange(args []string) int {
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addClientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: workspace arrange [--cx-name NAME] <strategy>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Arrange the windows on the workspace. Strategies: %s\n", strategyList())
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "arrange requires exactly one strategy")
		fs.Usage()
		return 2
	}
	strategy, err := tiling.ParseStrategy(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	data, err := cf.client().Arrange(strategy.String())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("arranged: %d\n", data.Arranged)
	return 0
}

func strategyList() string {
	var names []string
	for _, s := range tiling.Strategies() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

func runTheme(args []string) int {
	fs := flag.NewFlagSet("theme", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addClientFlags(fs)
	fs.Usage = func() {
		names := make([]string, 0, len(theme.All()))
		for _, t := range theme.All() {
			names = append(names, t.String())
		}
		fmt.Fprintln(os.Stderr, "Usage: workspace theme [--cx-name NAME] <name>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Switch the palette theme. Themes: %s\n", strings.Join(names, ", "))
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "theme requires exactly one name")
		fs.Usage()
		return 2
	}
	t, ok := theme.Lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown theme %q\n", fs.Arg(0))
		return 2
	}

	status, err := cf.client().Theme(t.String())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("theme: %s\n", status.Theme)
	return 0
}

func runDefault(args []string) int {
	fs := flag.NewFlagSet("default", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addClientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: workspace default [--cx-name NAME] <surface>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Make <surface> the default surface for new windows.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fmt.Fprintln(os.Stderr, "default requires exactly one surface name")
		fs.Usage()
		return 2
	}

	if _, err := cf.client().SetDefaultSurface(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("default surface: %s\n", fs.Arg(0))
	return 0
}
