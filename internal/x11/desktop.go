package x11

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// desktopTimeout bounds how long AddDesktop waits for the window manager
// to grow the desktop count.
const desktopTimeout = 2 * time.Second

// sticky is the _NET_WM_DESKTOP value of windows shown on every desktop.
const sticky = 0xFFFFFFFF

// DesktopLabel names desktop i, falling back to "Desktop <n>" for desktops
// the window manager left unnamed.
func DesktopLabel(names []string, i int) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("Desktop %d", i+1)
}

// Desktops returns _NET_DESKTOP_NAMES sized to _NET_NUMBER_OF_DESKTOPS.
// Unnamed desktops are empty strings.
func (c *Connection) Desktops() ([]string, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get desktop count: %w", err)
	}
	names, err := ewmh.DesktopNamesGet(c.XUtil)
	if err != nil {
		// Not every window manager sets names.
		names = nil
	}
	out := make([]string, int(count))
	copy(out, names)
	return out, nil
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// SetCurrentDesktop asks the window manager to switch to desktop i.
func (c *Connection) SetCurrentDesktop(i int) error {
	if err := c.sendRootMessage(c.Root, "_NET_CURRENT_DESKTOP", uint32(i), uint32(xproto.TimeCurrentTime)); err != nil {
		return fmt.Errorf("failed to switch to desktop %d: %w", i, err)
	}
	return nil
}

// AddDesktop appends a desktop called name and returns its index.
func (c *Connection) AddDesktop(name string) (int, error) {
	names, err := c.Desktops()
	if err != nil {
		return 0, err
	}
	index := len(names)
	if err := c.sendRootMessage(c.Root, "_NET_NUMBER_OF_DESKTOPS", uint32(index+1)); err != nil {
		return 0, fmt.Errorf("failed to add desktop: %w", err)
	}
	count := func() (int, error) {
		n, err := ewmh.NumberOfDesktopsGet(c.XUtil)
		return int(n), err
	}
	if err := waitForDesktops(count, index+1, desktopTimeout, 25*time.Millisecond); err != nil {
		return 0, err
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, append(names, name)); err != nil {
		return 0, fmt.Errorf("failed to name desktop %q: %w", name, err)
	}
	return index, nil
}

// waitForDesktops polls the desktop count until the window manager reports
// at least want desktops. The request is a client message the window
// manager applies on its own schedule.
func waitForDesktops(count func() (int, error), want int, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := count()
		if err == nil && n >= want {
			return nil
		}
		if time.Now().After(deadline) {
			if err != nil {
				return fmt.Errorf("timeout waiting for %d desktops: %w", want, err)
			}
			return fmt.Errorf("timeout waiting for %d desktops (have %d after %s)", want, n, timeout)
		}
		<-ticker.C
	}
}

// RemoveDesktop drops desktop index. Only the last desktop can be removed
// through EWMH; an earlier one loses its name instead and stays behind as
// an anonymous desktop.
func (c *Connection) RemoveDesktop(index int) error {
	names, err := c.Desktops()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(names) {
		return fmt.Errorf("desktop %d does not exist", index)
	}
	if index < len(names)-1 {
		names[index] = ""
		return ewmh.DesktopNamesSet(c.XUtil, names)
	}
	if err := c.sendRootMessage(c.Root, "_NET_NUMBER_OF_DESKTOPS", uint32(index)); err != nil {
		return fmt.Errorf("failed to remove desktop: %w", err)
	}
	return ewmh.DesktopNamesSet(c.XUtil, names[:index])
}

// GetWindowDesktop returns the desktop number a window is on.
// Returns -1 for "sticky" windows (visible on all desktops).
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == sticky {
		return -1, nil
	}
	return int(desktop), nil
}

// Clients returns the managed top-level windows.
func (c *Connection) Clients() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}
