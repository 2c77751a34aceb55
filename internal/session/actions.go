package session

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/1broseidon/workspace/internal/backdrop"
	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/metrics"
	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/shell"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

const aboutText = "Workspace\n\nA public screen manager\n\nVersion 1.0"

// perform runs a decoded menu action. The returned value, if any, is
// handed back to broker callers.
func (s *Session) perform(ctx context.Context, action menu.Action) (any, error) {
	switch a := action.(type) {
	case menu.SelectDefaultSurface:
		return nil, s.selectDefault(a.Name)
	case menu.ArrangeWindows:
		n, err := s.arrange(a.Strategy)
		return map[string]int{"arranged": n}, err
	case menu.SelectTheme:
		if !a.Theme.Valid() {
			return nil, fmt.Errorf("unknown theme %d", int(a.Theme))
		}
		s.applyTheme(a.Theme)
		return nil, nil
	case menu.About:
		s.notice("About Workspace", aboutText)
		return nil, nil
	case menu.Quit:
		if err := s.requestQuit(); err != nil {
			return nil, err
		}
		if !s.quitRequested {
			return nil, ErrOccupied
		}
		return nil, nil
	case menu.ToggleShell:
		return nil, s.toggleShell(ctx)
	default:
		return nil, fmt.Errorf("unsupported action %T", action)
	}
}

// selectDefault accepts the host desktop or a live surface of our family.
func (s *Session) selectDefault(name string) error {
	known := name != "" && name == s.host
	if !known && s.inFamily(name) {
		surfaces, err := s.backend.Surfaces()
		if err != nil {
			return fmt.Errorf("failed to list surfaces: %w", err)
		}
		for _, info := range surfaces {
			if info.Name == name {
				known = true
				break
			}
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownSurface, name)
	}

	if err := s.backend.SetDefaultSurface(name); err != nil {
		return fmt.Errorf("failed to set default surface: %w", err)
	}
	s.log.Info("default surface changed", "surface", name)
	s.updateMenu(func(m *menu.Menu) error {
		id, ok := m.SurfaceID(name)
		if !ok {
			return fmt.Errorf("%w: surface %s", menu.ErrUnknownID, name)
		}
		return m.Check(id)
	})
	return nil
}

// arrange lays out every foreign window on the surface and returns how
// many placements were applied.
func (s *Session) arrange(strategy tiling.Strategy) (int, error) {
	if s.surface == nil {
		return 0, platform.ErrNoSurface
	}
	occupants, err := s.backend.Occupants()
	if err != nil {
		return 0, fmt.Errorf("failed to list windows: %w", err)
	}

	ex := tiling.Exclusion{
		ShellDonated: s.console.Ownership() == shell.DonatedToChild,
		Screen:       s.surface.Bounds,
	}
	if s.backdrop != nil {
		ex.Backdrop = uint32(s.backdrop.ID())
	}
	if w := s.console.Window(); w != nil {
		ex.Shell = uint32(w.ID())
	}
	windows := tiling.Filter(occupants, ex)
	area := tiling.UsableArea(s.surface.Bounds, s.surface.BarHeight, s.console.Active())
	placements := tiling.Arrange(strategy, windows, area)

	metrics.Arrangements.WithLabelValues(strategy.String()).Inc()
	s.log.Debug("arranging windows", "strategy", strategy.String(), "windows", len(windows), "placements", len(placements))
	return len(placements), tiling.Apply(platform.Mover(s.backend), placements)
}

// applyTheme derives the palette from the captured baseline, never from
// the palette currently on screen.
func (s *Session) applyTheme(t theme.Theme) {
	if len(s.baseline) > 0 {
		if err := s.backend.SetPalette(theme.Apply(s.baseline, t)); err != nil {
			s.log.Warn("failed to set palette", "theme", t.String(), "error", err)
		}
	}
	if t != s.theme {
		metrics.ThemeChanges.Inc()
	}
	s.theme = t
	s.showBackground()
	s.updateMenu(func(m *menu.Menu) error {
		return m.Check(menu.Encode(menu.GroupPrefs, menu.ItemTheme, uint8(t)))
	})
}

// toggleShell opens the console band, or closes it when already open. The
// background picture is released first; the band and the picture never
// coexist.
func (s *Session) toggleShell(ctx context.Context) error {
	if s.console.Active() {
		s.closeShell()
		return nil
	}
	if s.surface == nil {
		return platform.ErrNoSurface
	}
	s.releaseImage()
	if err := s.console.Open(ctx, tiling.ShellBand(s.surface.Bounds)); err != nil {
		s.log.Warn("failed to open shell", "error", err)
		s.notice("Cannot Open Shell", fmt.Sprintf("Cannot open the Workspace shell.\n\n%v", err))
		return err
	}
	s.setShellItem(false)
	return nil
}

func (s *Session) closeShell() {
	if err := s.console.Close(); err != nil {
		s.log.Warn("failed to close shell", "error", err)
	}
	s.setShellItem(true)
}

func (s *Session) setShellItem(enabled bool) {
	s.updateMenu(func(m *menu.Menu) error {
		m.SetShellEnabled(enabled)
		return nil
	})
}

func (s *Session) openBackdrop() error {
	w, err := s.backend.OpenWindow(platform.WindowSpec{
		Kind:   platform.KindBackdrop,
		Bounds: tiling.UsableArea(s.surface.Bounds, s.surface.BarHeight, false),
		Title:  s.surface.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to open backdrop: %w", err)
	}
	s.backdrop = w

	m, err := s.buildMenu()
	if err == nil {
		err = s.attachMenu(m)
	}
	if err != nil {
		if cerr := s.backend.CloseWindow(w); cerr != nil {
			s.log.Debug("failed to close backdrop", "error", cerr)
		}
		s.backdrop = nil
		return fmt.Errorf("failed to attach menu: %w", err)
	}
	s.refreshTitle(true)
	return nil
}

// closeBackdrop detaches the menu before closing the window.
func (s *Session) closeBackdrop() {
	if s.backdrop == nil {
		return
	}
	if s.menu != nil {
		if err := s.backend.DetachMenu(s.backdrop); err != nil {
			s.log.Debug("failed to detach menu", "error", err)
		}
	}
	if err := s.backend.CloseWindow(s.backdrop); err != nil {
		s.log.Warn("failed to close backdrop", "error", err)
	}
	s.backdrop = nil
	s.menu = nil
}

func (s *Session) loadBackground() {
	if s.opts.Backdrop == "" || s.console.Active() {
		return
	}
	img, err := backdrop.Load(s.opts.Backdrop)
	if err != nil {
		s.log.Warn("background disabled", "error", err)
		return
	}
	s.image = img
	s.showBackground()
}

func (s *Session) showBackground() {
	if s.image == nil || s.backdrop == nil || s.surface == nil {
		return
	}
	area := tiling.UsableArea(s.surface.Bounds, s.surface.BarHeight, false)
	rendered := backdrop.Render(s.image, image.Pt(area.Width, area.Height), s.theme)
	if err := s.backend.SetBackground(s.backdrop, rendered); err != nil {
		s.log.Warn("failed to paint background", "error", err)
	}
}

func (s *Session) releaseImage() {
	if s.image == nil {
		return
	}
	s.image = nil
	if s.backdrop == nil {
		return
	}
	if err := s.backend.ClearBackground(s.backdrop); err != nil && !errors.Is(err, platform.ErrNoSurface) {
		s.log.Debug("failed to clear background", "error", err)
	}
}
