package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/1broseidon/workspace/internal/broker"
	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/metrics"
	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/watch"
)

// titleInterval is how often the title clock is re-checked.
const titleInterval = 60 * time.Second

// Run opens the surface, serves events until a close is confirmed and
// releases the session resources. It returns nil only after a confirmed
// close.
func (s *Session) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		s.release()
		return err
	}

	err := s.loop(ctx)
	if err != nil {
		s.abandon()
	}
	s.release()
	return err
}

// start takes the session from Starting to Running.
func (s *Session) start() error {
	if s.state != Starting {
		return fmt.Errorf("session already %s", s.state)
	}

	s.host = s.backend.HostSurface()
	surface, err := s.backend.OpenSurface(s.opts.Name)
	if err != nil {
		return fmt.Errorf("failed to open surface %s: %w", s.opts.Name, err)
	}
	s.surface = surface
	s.baseline = theme.Capture(surface.Palette)

	if err := s.openBackdrop(); err != nil {
		if cerr := s.backend.CloseSurface(); cerr != nil {
			s.log.Warn("failed to close surface after start failure", "error", cerr)
		}
		s.surface = nil
		return err
	}

	if s.opts.Theme != theme.Workbench {
		s.applyTheme(s.opts.Theme)
	}
	s.loadBackground()

	s.started = s.now()
	s.setState(Running)
	s.log.Info("workspace open", "surface", surface.Name, "host", s.host)
	return nil
}

func (s *Session) loop(ctx context.Context) error {
	timer := time.NewTimer(titleInterval)
	defer timer.Stop()

	var msgs <-chan *broker.Message
	if s.broker != nil {
		msgs = s.broker.Messages()
	}

	for !s.quitRequested {
		select {
		case ev, ok := <-s.backdropEvents():
			if !ok {
				if err := s.backdropLost(); err != nil {
					return err
				}
				continue
			}
			if err := s.handleWindowEvent(ctx, ev); err != nil {
				return err
			}

		case ev, ok := <-s.console.Events():
			if !ok {
				s.shellLost()
				continue
			}
			if ev.Kind == platform.EventClose {
				s.closeShell()
			}

		case msg := <-msgs:
			if err := s.handleMessage(ctx, msg); err != nil {
				return err
			}

		case <-timer.C:
			s.refreshTitle(false)
			s.refreshMenu()
			timer.Reset(titleInterval)

		case sig := <-s.signals:
			if err := s.handleSignal(sig); err != nil {
				return err
			}

		case ev, ok := <-s.watch:
			if !ok {
				s.watch = nil
				continue
			}
			s.handleWatch(ev)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Session) backdropEvents() <-chan platform.Event {
	if s.backdrop == nil {
		return nil
	}
	return s.backdrop.Events()
}

// backdropLost handles a backdrop destroyed by someone else. With a shell
// console running the window is recreated; otherwise there is nothing left
// to control the session with.
func (s *Session) backdropLost() error {
	s.backdrop = nil
	s.menu = nil
	if !s.console.Active() {
		s.log.Error("backdrop window destroyed")
		return ErrBackdropLost
	}
	s.log.Warn("backdrop window destroyed, recreating")
	if err := s.openBackdrop(); err != nil {
		return errors.Join(ErrBackdropLost, err)
	}
	s.showBackground()
	return nil
}

func (s *Session) shellLost() {
	s.console.Lost()
	s.setShellItem(true)
}

func (s *Session) handleWindowEvent(ctx context.Context, ev platform.Event) error {
	switch ev.Kind {
	case platform.EventClose:
		return s.requestQuit()
	case platform.EventMenuPick:
		// Picks decode against the menu they were made on, even when an
		// earlier pick of the batch swapped in a new one.
		m := s.menu
		if m == nil || ev.Generation != m.Generation {
			s.log.Warn("dropping picks from a replaced menu", "generation", ev.Generation, "picks", len(ev.Picks))
			return nil
		}
		for _, id := range ev.Picks {
			action, err := m.Decode(id)
			if err != nil {
				s.log.Warn("ignoring menu pick", "id", id.String(), "error", err)
				continue
			}
			if _, err := s.perform(ctx, action); err != nil {
				if errors.Is(err, errFatal) {
					return err
				}
				s.log.Warn("menu action failed", "action", fmt.Sprintf("%T", action), "error", err)
			}
			if s.quitRequested {
				break
			}
		}
	case platform.EventRefresh:
		s.showBackground()
	}
	return nil
}

func (s *Session) handleMessage(ctx context.Context, msg *broker.Message) error {
	metrics.BrokerCommands.WithLabelValues(msg.Command.String()).Inc()

	var reply broker.Reply
	var fatal error
	switch msg.Command {
	case broker.Enable:
		s.broker.SetActive(true)
	case broker.Disable:
		s.broker.SetActive(false)
	case broker.Appear, broker.Unique:
		reply.Err = s.backend.Raise()
	case broker.Hotkey:
		if !s.broker.Active() {
			reply.Err = broker.ErrInactive
			break
		}
		reply.Err = s.backend.Raise()
	case broker.Disappear:
		// Hiding the surface would leave nothing to bring it back with.
	case broker.Kill:
		if err := s.requestQuit(); err != nil {
			fatal = err
			reply.Err = err
		} else if !s.quitRequested {
			reply.Err = ErrOccupied
		}
	case broker.Status:
		if _, err := s.countVisitors(); err != nil {
			s.log.Warn("status reports the last visitor count", "error", err)
		}
	case broker.Invoke:
		if msg.Action == nil {
			reply.Err = errors.New("invoke without action")
			break
		}
		data, err := s.perform(ctx, msg.Action)
		if errors.Is(err, errFatal) {
			fatal = err
		}
		reply.Data, reply.Err = data, err
	default:
		reply.Err = fmt.Errorf("unknown command %s", msg.Command)
	}

	if reply.Data == nil && reply.Err == nil {
		reply.Data = s.Status()
	}
	msg.Reply(reply)
	return fatal
}

func (s *Session) handleSignal(sig os.Signal) error {
	s.log.Info("signal received", "signal", sig.String())
	if sig == syscall.SIGHUP {
		s.reloadSettings()
		return nil
	}
	return s.requestQuit()
}

func (s *Session) handleWatch(ev watch.Event) {
	if s.opts.Backdrop != "" && ev.Path == s.opts.Backdrop {
		s.log.Info("background changed", "path", ev.Path)
		s.loadBackground()
		return
	}
	s.reloadSettings()
}

func (s *Session) reloadSettings() {
	if s.reload == nil {
		return
	}
	set, err := s.reload()
	if err != nil {
		s.log.Warn("failed to reload config", "error", err)
		return
	}
	if set.Theme.Valid() && set.Theme != s.theme {
		s.applyTheme(set.Theme)
	}
	if set.Backdrop != s.opts.Backdrop {
		s.opts.Backdrop = set.Backdrop
		s.releaseImage()
		s.loadBackground()
	}
}

// refreshTitle rewrites the backdrop title when the wall-clock minute
// changed since the last write.
func (s *Session) refreshTitle(force bool) {
	if s.backdrop == nil || s.surface == nil {
		return
	}
	now := s.now()
	minute := now.Truncate(time.Minute)
	if !force && minute.Equal(s.lastMinute) {
		return
	}
	s.lastMinute = minute
	title := fmt.Sprintf("%s  %s", s.surface.Name, now.Format("15:04 02-Jan"))
	if err := s.backend.SetTitle(s.backdrop, title); err != nil {
		s.log.Debug("failed to set title", "error", err)
	}
}

// rebuildMenu replaces the attached menu with one built from the current
// surface inventory. On failure the previous menu stays attached.
func (s *Session) rebuildMenu() {
	if s.backdrop == nil {
		return
	}
	m, err := s.buildMenu()
	if err != nil {
		s.log.Warn("failed to rebuild menu", "error", err)
		s.notice("Workspace Menu", fmt.Sprintf("Cannot rebuild the menu.\n\n%v", err))
		return
	}
	if err := s.attachMenu(m); err != nil {
		s.log.Warn("failed to attach menu", "error", err)
	}
}

// refreshMenu rebuilds the menu when surfaces came or went, or the default
// surface was changed by someone else.
func (s *Session) refreshMenu() {
	if s.backdrop == nil || s.menu == nil {
		return
	}
	m, err := s.buildMenu()
	if err != nil {
		s.log.Debug("menu refresh skipped", "error", err)
		return
	}
	if reflect.DeepEqual(m.Groups, s.menu.Groups) {
		return
	}
	if err := s.attachMenu(m); err != nil {
		s.log.Warn("failed to attach menu", "error", err)
	}
}

// updateMenu swaps in an edited copy of the attached menu. An edit that
// does not apply falls back to a full rebuild.
func (s *Session) updateMenu(edit func(*menu.Menu) error) {
	if s.backdrop == nil {
		return
	}
	if s.menu == nil {
		s.rebuildMenu()
		return
	}
	m := s.menu.Clone()
	if err := edit(m); err != nil {
		s.log.Debug("menu edit did not apply, rebuilding", "error", err)
		s.rebuildMenu()
		return
	}
	if err := s.attachMenu(m); err != nil {
		s.log.Warn("failed to attach menu", "error", err)
	}
}

// attachMenu detaches the current menu and attaches m under the next
// generation.
func (s *Session) attachMenu(m *menu.Menu) error {
	if s.menu != nil {
		if err := s.backend.DetachMenu(s.backdrop); err != nil {
			s.log.Debug("failed to detach menu", "error", err)
		}
		s.menu = nil
	}
	s.menuGen++
	m.Generation = s.menuGen
	if err := s.backend.AttachMenu(s.backdrop, m); err != nil {
		return err
	}
	s.menu = m
	return nil
}

func (s *Session) buildMenu() (*menu.Menu, error) {
	surfaces, err := s.backend.Surfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list surfaces: %w", err)
	}
	def, err := s.backend.DefaultSurface()
	if err != nil {
		s.log.Debug("no default surface", "error", err)
		def = ""
	}

	var others []string
	for _, info := range surfaces {
		if s.inFamily(info.Name) && info.Name != s.opts.Name {
			others = append(others, info.Name)
		}
	}
	return menu.Build(menu.Inventory{
		Host:        s.host,
		Own:         s.opts.Name,
		Others:      others,
		Default:     def,
		Theme:       s.theme,
		ShellActive: s.console.Active(),
	})
}

func (s *Session) notice(title, text string) {
	if err := s.notifier.Notice(title, text); err != nil {
		s.log.Warn("failed to show notice", "title", title, "error", err)
	}
}
