package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/tiling"
)

// ErrAlreadyRunning is returned by Open while a console owns the window.
var ErrAlreadyRunning = errors.New("shell console already running")

// Ownership tracks who is responsible for closing the console window.
type Ownership int

const (
	Closed Ownership = iota
	OwnedByUs
	DonatedToChild
)

func (o Ownership) String() string {
	switch o {
	case Closed:
		return "closed"
	case OwnedByUs:
		return "owned"
	case DonatedToChild:
		return "donated"
	default:
		return fmt.Sprintf("ownership(%d)", int(o))
	}
}

// Host opens and closes the console band window.
type Host interface {
	OpenWindow(spec platform.WindowSpec) (platform.Window, error)
	CloseWindow(w platform.Window) error
}

// Process is a launched console.
type Process interface {
	Signal(sig os.Signal) error
}

// Launcher starts a detached console process.
type Launcher interface {
	Launch(ctx context.Context, argv []string) (Process, error)
}

// Options configures a Console.
type Options struct {
	// Template is the console command; see DeviceSpec.
	Template string
	// Startup is a script sourced by the shell when it exists.
	Startup string
	Logger  *slog.Logger
}

// Console is the shell band at the bottom of the workspace surface.
type Console struct {
	host     Host
	launcher Launcher
	template string
	startup  string
	log      *slog.Logger

	window platform.Window
	own    Ownership
	proc   Process
}

func New(host Host, launcher Launcher, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		host:     host,
		launcher: launcher,
		template: opts.Template,
		startup:  opts.Startup,
		log:      logger.With("component", "shell"),
	}
}

func (c *Console) Ownership() Ownership { return c.own }

// Active reports whether a console window exists in any ownership state.
func (c *Console) Active() bool { return c.own != Closed }

func (c *Console) Window() platform.Window { return c.window }

// Events returns the console window's channel, or nil without a window so
// that a select on it blocks forever.
func (c *Console) Events() <-chan platform.Event {
	if c.window == nil {
		return nil
	}
	return c.window.Events()
}

// Open creates the band window if needed and hands it to a new console
// process. Once the process is running the window belongs to it.
func (c *Console) Open(ctx context.Context, band tiling.Rect) error {
	if c.own == DonatedToChild {
		return ErrAlreadyRunning
	}
	if c.launcher == nil {
		return errors.New("no shell launcher configured")
	}

	if c.window == nil {
		w, err := c.host.OpenWindow(platform.WindowSpec{
			Kind:   platform.KindShell,
			Bounds: band,
			Title:  "Workspace Shell",
		})
		if err != nil {
			return fmt.Errorf("failed to open shell window: %w", err)
		}
		c.window = w
		c.own = OwnedByUs
	}

	argv, err := DeviceSpec(c.template, c.window.ID(), band, c.startupScript())
	if err != nil {
		c.closeOwned()
		return err
	}

	c.log.Info("launching console", "argv", argv, "window", uint32(c.window.ID()))
	proc, err := c.launcher.Launch(ctx, argv)
	if err != nil {
		c.closeOwned()
		return fmt.Errorf("failed to launch shell: %w", err)
	}

	c.proc = proc
	c.own = DonatedToChild
	return nil
}

// Donate records that the window now belongs to someone else.
func (c *Console) Donate() {
	if c.window != nil {
		c.own = DonatedToChild
	}
}

// Lost clears local state after the window's channel went away. The
// window is already gone, so nothing is closed.
func (c *Console) Lost() {
	if c.own != Closed {
		c.log.Info("console window gone", "ownership", c.own.String())
	}
	c.reset()
}

// Close tears the console down at session end. A donated window is left to
// its process, which is asked to hang up.
func (c *Console) Close() error {
	var err error
	switch c.own {
	case OwnedByUs:
		err = c.host.CloseWindow(c.window)
	case DonatedToChild:
		if c.proc != nil {
			if sigErr := c.proc.Signal(syscall.SIGHUP); sigErr != nil {
				c.log.Debug("console hangup failed", "error", sigErr)
			}
		}
	}
	c.reset()
	return err
}

func (c *Console) closeOwned() {
	if c.own == OwnedByUs && c.window != nil {
		if err := c.host.CloseWindow(c.window); err != nil {
			c.log.Warn("failed to close shell window", "error", err)
		}
	}
	c.reset()
}

func (c *Console) reset() {
	c.window = nil
	c.proc = nil
	c.own = Closed
}

func (c *Console) startupScript() string {
	if c.startup == "" {
		return ""
	}
	if _, err := os.Stat(c.startup); err != nil {
		return ""
	}
	return c.startup
}
