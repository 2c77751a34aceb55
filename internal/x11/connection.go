package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys) and mousebind
	// (backdrop menu button).
	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops EventLoop.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// Atom interns name.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return atom, nil
}

// sendRootMessage sends an EWMH client message about win to the root
// window. The messages are built by hand because the xgbutil ewmh request
// helpers panic on this library version (uint vs int type assertion).
func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atom, err := c.Atom(atomName)
	if err != nil {
		return err
	}
	payload := make([]uint32, 5)
	copy(payload, data)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
