package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// SessionProperty marks windows created by a workspace session. Marked
// windows never count as visitors.
const SessionProperty = "_WORKSPACE_SESSION"

// Window types.
const (
	TypeDesktop = "_NET_WM_WINDOW_TYPE_DESKTOP"
	TypeDock    = "_NET_WM_WINDOW_TYPE_DOCK"
	TypeNormal  = "_NET_WM_WINDOW_TYPE_NORMAL"
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore geometry requests in most window managers.
	_ = c.unmaximizeWindow(windowID)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// MoveWindow moves a window without touching its size.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	if err := ewmh.MoveWindow(c.XUtil, windowID, x, y); err != nil {
		xwindow.New(c.XUtil, windowID).Move(x, y)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
	return nil
}

// IsBorderless reports whether the window manager draws no frame around
// the window.
func (c *Connection) IsBorderless(windowID xproto.Window) bool {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return extents.Left == 0 && extents.Right == 0 && extents.Top == 0 && extents.Bottom == 0
}

// WindowTypes returns _NET_WM_WINDOW_TYPE. Windows without the property
// are normal windows.
func (c *Connection) WindowTypes(windowID xproto.Window) []string {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil || len(types) == 0 {
		return []string{TypeNormal}
	}
	return types
}

// HasType reports whether the window carries type t.
func (c *Connection) HasType(windowID xproto.Window, t string) bool {
	for _, have := range c.WindowTypes(windowID) {
		if have == t {
			return true
		}
	}
	return false
}

// HasState reports whether _NET_WM_STATE contains state.
func (c *Connection) HasState(windowID xproto.Window, state string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// IsSessionWindow reports whether the window carries SessionProperty.
func (c *Connection) IsSessionWindow(windowID xproto.Window) bool {
	_, err := xprop.PropValNum(xprop.GetProperty(c.XUtil, windowID, SessionProperty))
	return err == nil
}

// MarkSessionWindow sets SessionProperty to pid.
func (c *Connection) MarkSessionWindow(windowID xproto.Window, pid int) error {
	return xprop.ChangeProp32(c.XUtil, windowID, SessionProperty, "CARDINAL", uint(pid))
}

// SizeLimits describes WM_NORMAL_HINTS. Zero max means unbounded.
type SizeLimits struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

// Resizable reports whether the limits leave room to resize.
func (l SizeLimits) Resizable() bool {
	fixedW := l.MaxWidth > 0 && l.MaxWidth == l.MinWidth
	fixedH := l.MaxHeight > 0 && l.MaxHeight == l.MinHeight
	return !(fixedW && fixedH)
}

// GetSizeLimits reads the min/max size hints.
func (c *Connection) GetSizeLimits(windowID xproto.Window) SizeLimits {
	hints, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return SizeLimits{}
	}
	var l SizeLimits
	if hints.Flags&icccm.SizeHintPMinSize != 0 {
		l.MinWidth, l.MinHeight = int(hints.MinWidth), int(hints.MinHeight)
	}
	if hints.Flags&icccm.SizeHintPMaxSize != 0 {
		l.MaxWidth, l.MaxHeight = int(hints.MaxWidth), int(hints.MaxHeight)
	}
	return l
}

// Geometry returns the window position in root coordinates and its size.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}
