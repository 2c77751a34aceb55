// Package session runs a workspace surface: it opens the surface and its
// backdrop, serves the event loop and decides when the surface may close.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/workspace/internal/broker"
	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/metrics"
	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/shell"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/watch"
)

var (
	// ErrBackdropLost is returned by Run when the backdrop window was
	// destroyed from outside while no shell console was running.
	ErrBackdropLost = errors.New("backdrop window lost")
	// ErrOccupied is the reply to a kill request refused because windows
	// are still open.
	ErrOccupied = errors.New("workspace still has open windows")
	// ErrUnknownSurface rejects a default surface outside the host and the
	// surface family.
	ErrUnknownSurface = errors.New("unknown surface")
)

// State is the session lifecycle state.
type State int

const (
	Starting State = iota
	Running
	Closing
	Terminated
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Closing:
		return "closing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Settings are the parts of the configuration applied while running.
type Settings struct {
	Theme    theme.Theme
	Backdrop string
}

// Options configures a session.
type Options struct {
	// Prefix is the surface family; Name is "<prefix>.<instance>".
	Prefix string
	Name   string

	Theme    theme.Theme
	Backdrop string

	ShellTemplate string
	StartupScript string
}

// Deps are the collaborators a session drives. Broker, Signals, Watch and
// Reload are optional.
type Deps struct {
	Backend  platform.Backend
	Notifier platform.Notifier
	Launcher shell.Launcher
	Broker   *broker.Broker
	Signals  <-chan os.Signal
	Watch    <-chan watch.Event
	Reload   func() (Settings, error)
	Now      func() time.Time
	Logger   *slog.Logger
}

// Session is the state of one workspace surface. Only the goroutine
// running Run touches it.
type Session struct {
	id       uuid.UUID
	opts     Options
	backend  platform.Backend
	notifier platform.Notifier
	broker   *broker.Broker
	console  *shell.Console
	signals  <-chan os.Signal
	watch    <-chan watch.Event
	reload   func() (Settings, error)
	now      func() time.Time
	log      *slog.Logger

	state         State
	host          string
	surface       *platform.Surface
	backdrop      platform.Window
	menu          *menu.Menu
	menuGen       uint64
	image         image.Image
	theme         theme.Theme
	baseline      []theme.RGB
	quitRequested bool
	lastMinute    time.Time
	started       time.Time
	visitors      int
}

// New validates the collaborators and returns a session in the Starting
// state.
func New(deps Deps, opts Options) (*Session, error) {
	if deps.Backend == nil {
		return nil, errors.New("session requires a backend")
	}
	if deps.Notifier == nil {
		return nil, errors.New("session requires a notifier")
	}
	if opts.Name == "" {
		return nil, errors.New("session requires a surface name")
	}
	if opts.Prefix == "" {
		opts.Prefix, _, _ = strings.Cut(opts.Name, ".")
	}
	if !opts.Theme.Valid() {
		opts.Theme = theme.Workbench
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	logger = logger.With("session", id.String())

	s := &Session{
		id:       id,
		opts:     opts,
		backend:  deps.Backend,
		notifier: deps.Notifier,
		broker:   deps.Broker,
		signals:  deps.Signals,
		watch:    deps.Watch,
		reload:   deps.Reload,
		now:      now,
		log:      logger,
		state:    Starting,
	}
	s.console = shell.New(deps.Backend, deps.Launcher, shell.Options{
		Template: opts.ShellTemplate,
		Startup:  opts.StartupScript,
		Logger:   logger,
	})
	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) State() State { return s.state }

// QuitRequested reports whether the close protocol confirmed a quit.
func (s *Session) QuitRequested() bool { return s.quitRequested }

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.log.Debug("state change", "from", s.state.String(), "to", st.String())
	s.state = st
	metrics.SessionState.Set(float64(st))
}

// Status is a point-in-time description of the session.
type Status struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	Surface       string `json:"surface"`
	Host          string `json:"host"`
	Broker        string `json:"broker,omitempty"`
	BrokerActive  bool   `json:"broker_active"`
	Theme         string `json:"theme"`
	Shell         string `json:"shell"`
	Background    bool   `json:"background"`
	Visitors      int    `json:"visitors"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Status snapshots the session. Visitors is the count from the last
// close attempt.
func (s *Session) Status() Status {
	st := Status{
		ID:         s.id.String(),
		State:      s.state.String(),
		Surface:    s.opts.Name,
		Host:       s.host,
		Theme:      s.theme.String(),
		Shell:      s.console.Ownership().String(),
		Background: s.image != nil,
		Visitors:   s.visitors,
	}
	if s.broker != nil {
		st.Broker = s.broker.Name()
		st.BrokerActive = s.broker.Active()
	}
	if !s.started.IsZero() {
		st.UptimeSeconds = int64(s.now().Sub(s.started) / time.Second)
	}
	return st
}
