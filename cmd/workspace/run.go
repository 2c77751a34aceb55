package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/workspace/internal/broker"
	"github.com/1broseidon/workspace/internal/config"
	"github.com/1broseidon/workspace/internal/hotkeys"
	"github.com/1broseidon/workspace/internal/ipc"
	"github.com/1broseidon/workspace/internal/metrics"
	"github.com/1broseidon/workspace/internal/palette"
	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/session"
	"github.com/1broseidon/workspace/internal/shell"
	"github.com/1broseidon/workspace/internal/watch"
)

// runFlags maps the run flags onto config keys.
var runFlags = []struct {
	flag, key, usage string
}{
	{"pubname", "pubname", "Public surface name, <prefix>.<instance>"},
	{"cx-name", "cx_name", "Broker name"},
	{"popkey", "popkey", "Global hotkey that raises the workspace (e.g. Mod4-Mod1-w)"},
	{"backdrop", "backdrop", "Background image path"},
	{"shell", "shell_template", "Shell console command template"},
	{"theme", "theme", "Palette theme"},
	{"log-level", "log_level", "Log level: debug, info, warning, error"},
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/workspace/config.yaml)")
	for _, f := range runFlags {
		fs.String(f.flag, "", f.usage)
	}
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: workspace run [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the workspace surface and serve it until it is closed.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	overrides := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		for _, rf := range runFlags {
			if rf.flag == f.Name {
				overrides[rf.key] = f.Value.String()
			}
		}
	})

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	applyOverrides(cfg, overrides)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	log.Printf("Configuration loaded (surface: %s, broker: %s, theme: %s)", cfg.PubName, cfg.CxName, cfg.Theme)

	brk, stopBroker := startBroker(cfg)
	defer stopBroker()

	// Menu palette
	var presenter platform.MenuPresenter
	var notifier platform.Notifier = logNotifier{log: logger}
	if pb, err := palette.NewBackend(cfg.PaletteBackend); err != nil {
		log.Printf("Warning: palette unavailable, menus disabled: %v", err)
	} else {
		presenter = palette.NewPresenter(pb, cfg.CxName)
		notifier = palette.NewNotifier(pb)
	}

	pens, err := cfg.Palette()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	backend, err := platform.NewLinuxBackendFromDisplay(platform.LinuxOptions{
		BarHeight: cfg.BarHeight,
		Palette:   pens,
		Presenter: presenter,
		Logger:    logger,
	})
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer backend.Disconnect()
	defer backend.Quit()
	go backend.EventLoop()

	if cfg.PopKey != "" && brk != nil {
		registerPopKey(backend, brk, cfg.PopKey)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var bg errgroup.Group
	defer func() {
		cancel()
		if err := bg.Wait(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		bg.Go(func() error {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				return fmt.Errorf("metrics listener stopped: %w", err)
			}
			return nil
		})
	}

	backdrop := absPath(cfg.Backdrop)
	var watchCh <-chan watch.Event
	if cfg.Watch {
		w, err := watch.New(logger, append(append([]string(nil), res.Files...), backdrop)...)
		if err != nil {
			log.Printf("Warning: file watching disabled: %v", err)
		} else {
			watchCh = w.Events()
			bg.Go(func() error {
				w.Run(ctx)
				return nil
			})
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	reload := func() (session.Settings, error) {
		res, err := loadConfig(*path)
		if err != nil {
			return session.Settings{}, err
		}
		next := res.Config
		applyOverrides(next, overrides)
		if err := next.Validate(); err != nil {
			return session.Settings{}, err
		}
		return session.Settings{Theme: next.ParsedTheme(), Backdrop: absPath(next.Backdrop)}, nil
	}

	sess, err := session.New(session.Deps{
		Backend:  backend,
		Notifier: notifier,
		Launcher: shell.ExecLauncher{},
		Broker:   brk,
		Signals:  sigCh,
		Watch:    watchCh,
		Reload:   reload,
		Logger:   logger,
	}, session.Options{
		Prefix:        cfg.Prefix(),
		Name:          cfg.PubName,
		Theme:         cfg.ParsedTheme(),
		Backdrop:      backdrop,
		ShellTemplate: cfg.ShellTemplate,
		StartupScript: cfg.StartupScript,
	})
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return 1
	}

	log.Printf("Workspace %s started (session %s)", cfg.PubName, sess.ID())
	if err := sess.Run(ctx); err != nil {
		log.Printf("Workspace %s stopped: %v", cfg.PubName, err)
		return 1
	}
	log.Printf("Workspace %s closed", cfg.PubName)
	return 0
}

// startBroker serves the broker socket. When another instance already
// serves it, that instance is told about us and we run without a broker.
// The returned stop function is always safe to call.
func startBroker(cfg *config.Config) (*broker.Broker, func()) {
	client := ipc.NewClient(cfg.CxName)
	client.SetTimeout(cfg.IPCTimeout)
	if ping, err := client.Ping(); err == nil {
		log.Printf("Broker %s already served by pid %d; continuing without a broker", ping.Broker, ping.PID)
		if err := client.Unique(); err != nil {
			log.Printf("Warning: failed to notify running workspace: %v", err)
		}
		return nil, func() {}
	}

	brk := broker.New(cfg.CxName)
	ipcServer, err := ipc.NewServer(brk, cfg.IPCTimeout)
	if err == nil {
		err = ipcServer.Start()
	}
	if err != nil {
		log.Printf("Warning: broker unavailable, continuing without it: %v", err)
		brk.Close()
		return nil, func() {}
	}
	return brk, func() {
		ipcServer.Stop()
		brk.Close()
	}
}

func registerPopKey(backend *platform.LinuxBackend, brk *broker.Broker, key string) {
	h, err := hotkeys.NewHandler(backend, brk)
	if err != nil {
		log.Printf("Warning: pop hotkey disabled: %v", err)
		return
	}
	if err := h.RegisterPopKey(key); err != nil {
		log.Printf("Warning: failed to register pop hotkey: %v", err)
		return
	}
	log.Printf("Pop hotkey registered: %s", key)
}

// applyOverrides sets the config keys given on the command line.
func applyOverrides(cfg *config.Config, overrides map[string]string) {
	for key, value := range overrides {
		switch key {
		case "pubname":
			cfg.PubName = value
		case "cx_name":
			cfg.CxName = value
		case "popkey":
			cfg.PopKey = value
		case "backdrop":
			cfg.Backdrop = value
		case "shell_template":
			cfg.ShellTemplate = value
		case "theme":
			cfg.Theme = value
		case "log_level":
			cfg.LogLevel = value
		}
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// logNotifier stands in for the palette when no launcher is installed.
type logNotifier struct {
	log *slog.Logger
}

func (n logNotifier) Notice(title, text string) error {
	n.log.Warn(title, "notice", text)
	return nil
}
