//go:build linux

package platform

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
	"github.com/1broseidon/workspace/internal/x11"
)

const (
	defaultSurfaceProperty = "_WORKSPACE_DEFAULT_SURFACE"
	paletteProperty        = "_WORKSPACE_PALETTE"

	// eventBuffer bounds the events queued for a busy session.
	eventBuffer = 16
)

// MenuPresenter shows an attached menu when the backdrop is right-clicked.
type MenuPresenter interface {
	Present(ctx context.Context, m *menu.Menu) ([]menu.ID, error)
}

// LinuxOptions configures the X11 backend.
type LinuxOptions struct {
	BarHeight int
	// Palette is the baseline colour table reported by OpenSurface.
	Palette   []theme.RGB
	Presenter MenuPresenter
	Logger    *slog.Logger
}

// LinuxBackend maps a workspace surface onto an EWMH virtual desktop.
type LinuxBackend struct {
	conn *x11.Connection
	opts LinuxOptions
	log  *slog.Logger

	protocols    xproto.Atom
	deleteWindow xproto.Atom

	mu      sync.Mutex
	name    string
	host    int
	palette []theme.RGB
	windows map[xproto.Window]*linuxWindow
	menus   map[xproto.Window]*menu.Menu
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, opts LinuxOptions) (*LinuxBackend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Palette) == 0 {
		opts.Palette = []theme.RGB{{R: 0xaa, G: 0xaa, B: 0xaa}}
	}
	protocols, err := conn.Atom("WM_PROTOCOLS")
	if err != nil {
		return nil, err
	}
	deleteWindow, err := conn.Atom("WM_DELETE_WINDOW")
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{
		conn:         conn,
		opts:         opts,
		log:          logger.With("component", "x11"),
		protocols:    protocols,
		deleteWindow: deleteWindow,
		palette:      theme.Capture(opts.Palette),
		windows:      make(map[xproto.Window]*linuxWindow),
		menus:        make(map[xproto.Window]*menu.Menu),
	}, nil
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(opts LinuxOptions) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b, err := NewLinuxBackend(conn, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	b.conn.EventLoop()
}

// Quit stops EventLoop.
func (b *LinuxBackend) Quit() {
	b.conn.Quit()
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// HostSurface names the current desktop and remembers it as the place to
// return to when the surface closes.
func (b *LinuxBackend) HostSurface() string {
	names, err := b.conn.Desktops()
	if err != nil {
		b.log.Debug("failed to read desktops", "error", err)
		return x11.DesktopLabel(nil, 0)
	}
	cur, err := b.conn.GetCurrentDesktop()
	if err != nil {
		cur = 0
	}
	b.mu.Lock()
	b.host = cur
	b.mu.Unlock()
	return x11.DesktopLabel(names, cur)
}

func (b *LinuxBackend) OpenSurface(name string) (*Surface, error) {
	names, err := b.conn.Desktops()
	if err != nil {
		return nil, err
	}
	for i := range names {
		if x11.DesktopLabel(names, i) == name {
			return nil, ErrNameTaken
		}
	}

	index, err := b.conn.AddDesktop(name)
	if err != nil {
		return nil, err
	}
	if err := b.conn.SetCurrentDesktop(index); err != nil {
		b.log.Warn("failed to switch to new desktop", "desktop", index, "error", err)
	}
	area, err := b.conn.WorkArea(index)
	if err != nil {
		if rerr := b.conn.RemoveDesktop(index); rerr != nil {
			b.log.Warn("failed to remove desktop", "desktop", index, "error", rerr)
		}
		return nil, err
	}

	b.mu.Lock()
	b.name = name
	b.mu.Unlock()

	return &Surface{
		Name:      name,
		Bounds:    Rect{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height},
		BarHeight: b.opts.BarHeight,
		Palette:   theme.Capture(b.opts.Palette),
	}, nil
}

// surfaceIndex looks our desktop up by name; the window manager may have
// renumbered desktops since it was created.
func (b *LinuxBackend) surfaceIndex() (int, []string, error) {
	b.mu.Lock()
	name := b.name
	b.mu.Unlock()
	if name == "" {
		return 0, nil, ErrNoSurface
	}
	names, err := b.conn.Desktops()
	if err != nil {
		return 0, nil, err
	}
	for i, n := range names {
		if n == name {
			return i, names, nil
		}
	}
	return 0, names, ErrNoSurface
}

func (b *LinuxBackend) CloseSurface() error {
	index, names, err := b.surfaceIndex()
	if err != nil {
		return err
	}
	counts, err := b.visitorCounts(len(names))
	if err != nil {
		return err
	}
	if counts[index] > 0 {
		return ErrSurfaceBusy
	}

	target := b.returnDesktop(names, index)
	if err := b.conn.SetCurrentDesktop(target); err != nil {
		b.log.Warn("failed to leave desktop", "desktop", index, "error", err)
	}
	if err := b.conn.RemoveDesktop(index); err != nil {
		return fmt.Errorf("failed to remove desktop: %w", err)
	}

	b.mu.Lock()
	b.name = ""
	b.mu.Unlock()
	return nil
}

// returnDesktop picks the desktop shown after ours closes: the default
// surface if it is another desktop, else the host.
func (b *LinuxBackend) returnDesktop(names []string, ours int) int {
	if def, err := b.DefaultSurface(); err == nil && def != "" {
		for i := range names {
			if i != ours && x11.DesktopLabel(names, i) == def {
				return i
			}
		}
	}
	b.mu.Lock()
	host := b.host
	b.mu.Unlock()
	if host != ours && host < len(names) {
		return host
	}
	return 0
}

func (b *LinuxBackend) Surfaces() ([]SurfaceInfo, error) {
	names, err := b.conn.Desktops()
	if err != nil {
		return nil, err
	}
	counts, err := b.visitorCounts(len(names))
	if err != nil {
		return nil, err
	}
	out := make([]SurfaceInfo, len(names))
	for i := range names {
		out[i] = SurfaceInfo{Name: x11.DesktopLabel(names, i), Visitors: counts[i]}
	}
	return out, nil
}

// visitorCounts counts the foreign windows on each desktop.
func (b *LinuxBackend) visitorCounts(desktops int) ([]int, error) {
	clients, err := b.conn.Clients()
	if err != nil {
		return nil, err
	}
	counts := make([]int, desktops)
	for _, win := range clients {
		desk, err := b.conn.GetWindowDesktop(win)
		if err != nil || desk < 0 || desk >= desktops {
			continue
		}
		if !b.isVisitor(win) {
			continue
		}
		counts[desk]++
	}
	return counts, nil
}

// isVisitor reports whether a window counts against closing its desktop.
func (b *LinuxBackend) isVisitor(win xproto.Window) bool {
	if b.conn.IsSessionWindow(win) {
		return false
	}
	return !b.conn.HasType(win, x11.TypeDesktop) && !b.conn.HasType(win, x11.TypeDock)
}

func (b *LinuxBackend) Raise() error {
	index, _, err := b.surfaceIndex()
	if err != nil {
		return err
	}
	return b.conn.SetCurrentDesktop(index)
}

// DefaultSurface reads the default surface from the root window. Unset
// reads as no default.
func (b *LinuxBackend) DefaultSurface() (string, error) {
	name, err := xprop.PropValStr(xprop.GetProperty(b.conn.XUtil, b.conn.Root, defaultSurfaceProperty))
	if err != nil {
		return "", nil
	}
	return name, nil
}

func (b *LinuxBackend) SetDefaultSurface(name string) error {
	if name == "" {
		atom, err := b.conn.Atom(defaultSurfaceProperty)
		if err != nil {
			return err
		}
		return xproto.DeletePropertyChecked(b.conn.XUtil.Conn(), b.conn.Root, atom).Check()
	}
	return xprop.ChangeProp(b.conn.XUtil, b.conn.Root, 8, defaultSurfaceProperty, "UTF8_STRING", []byte(name))
}

// linuxWindow is a window created by this backend. Its event channel is
// closed exactly once, when the window goes away.
type linuxWindow struct {
	xwin *xwindow.Window
	kind WindowKind

	mu     sync.Mutex
	events chan Event
	closed bool
	width  int
	height int
	ximg   *xgraphics.Image

	presenting atomic.Bool
}

func (w *linuxWindow) ID() WindowID         { return WindowID(w.xwin.Id) }
func (w *linuxWindow) Events() <-chan Event { return w.events }

// send queues ev, dropping it if the session is not keeping up.
func (w *linuxWindow) send(ev Event) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.events <- ev:
		return true
	default:
		return false
	}
}

func (w *linuxWindow) finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.events)
	if w.ximg != nil {
		w.ximg.Destroy()
		w.ximg = nil
	}
}

// resized records a new size and reports whether it changed.
func (w *linuxWindow) resized(width, height int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if width == w.width && height == w.height {
		return false
	}
	w.width, w.height = width, height
	return true
}

func (b *LinuxBackend) OpenWindow(spec WindowSpec) (Window, error) {
	index, _, err := b.surfaceIndex()
	if err != nil {
		return nil, err
	}
	xu := b.conn.XUtil

	xwin, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window: %w", err)
	}

	mask := xproto.EventMaskStructureNotify
	switch spec.Kind {
	case KindBackdrop:
		mask |= xproto.EventMaskButtonPress
	case KindShell:
		// Child destruction means the embedded terminal exited.
		mask |= xproto.EventMaskSubstructureNotify
	}

	bounds := spec.Bounds
	bounds.Width = max(bounds.Width, 1)
	bounds.Height = max(bounds.Height, 1)
	if err := xwin.CreateChecked(b.conn.Root, bounds.X, bounds.Y, bounds.Width, bounds.Height,
		xproto.CwBackPixel|xproto.CwEventMask, b.backPixel(), uint32(mask)); err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &linuxWindow{
		xwin:   xwin,
		kind:   spec.Kind,
		events: make(chan Event, eventBuffer),
		width:  bounds.Width,
		height: bounds.Height,
	}
	if err := b.decorate(w, spec, index); err != nil {
		xwin.Destroy()
		return nil, err
	}
	b.connectEvents(w)

	b.mu.Lock()
	b.windows[xwin.Id] = w
	b.mu.Unlock()

	xwin.Map()
	// Window managers are free to place new windows; put it back.
	if err := b.conn.MoveResizeWindow(xwin.Id, bounds.X, bounds.Y, bounds.Width, bounds.Height); err != nil {
		b.log.Debug("failed to place window", "window", xwin.Id, "error", err)
	}
	return w, nil
}

// decorate sets the window properties: type, desktop, session mark and
// names. Both kinds stay below other windows and out of taskbars; the
// shell band additionally loses its frame.
func (b *LinuxBackend) decorate(w *linuxWindow, spec WindowSpec, desktop int) error {
	xu := b.conn.XUtil
	id := w.xwin.Id

	windowType := x11.TypeDesktop
	if spec.Kind == KindShell {
		windowType = x11.TypeNormal
		hints := &motif.Hints{Flags: motif.HintDecorations, Decoration: motif.DecorationNone}
		if err := motif.WmHintsSet(xu, id, hints); err != nil {
			return fmt.Errorf("failed to remove decorations: %w", err)
		}
	}
	if err := ewmh.WmWindowTypeSet(xu, id, []string{windowType}); err != nil {
		return fmt.Errorf("failed to set window type: %w", err)
	}
	if err := ewmh.WmStateSet(xu, id, []string{"_NET_WM_STATE_BELOW", "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"}); err != nil {
		return fmt.Errorf("failed to set window state: %w", err)
	}
	if err := ewmh.WmDesktopSet(xu, id, uint(desktop)); err != nil {
		return fmt.Errorf("failed to set window desktop: %w", err)
	}
	if err := icccm.WmProtocolsSet(xu, id, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("failed to set protocols: %w", err)
	}
	if err := b.conn.MarkSessionWindow(id, os.Getpid()); err != nil {
		return fmt.Errorf("failed to mark window: %w", err)
	}
	if err := ewmh.WmPidSet(xu, id, uint(os.Getpid())); err != nil {
		b.log.Debug("failed to set pid", "error", err)
	}
	class := "backdrop"
	if spec.Kind == KindShell {
		class = "shell"
	}
	if err := icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: class, Class: "Workspace"}); err != nil {
		b.log.Debug("failed to set class", "error", err)
	}
	return b.setTitle(id, spec.Title)
}

func (b *LinuxBackend) connectEvents(w *linuxWindow) {
	xu := b.conn.XUtil
	id := w.xwin.Id

	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Type != b.protocols || ev.Format != 32 {
			return
		}
		if xproto.Atom(ev.Data.Data32[0]) == b.deleteWindow {
			w.send(Event{Kind: EventClose})
		}
	}).Connect(xu, id)

	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if ev.Window == id {
			b.log.Debug("window destroyed", "window", id)
			b.forget(w)
			w.xwin.Detach()
			w.xwin.Destroyed = true
			return
		}
		if w.kind == KindShell {
			b.log.Info("shell console exited", "window", id)
			b.forget(w)
			w.xwin.Destroy()
		}
	}).Connect(xu, id)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window != id || !w.resized(int(ev.Width), int(ev.Height)) {
			return
		}
		if w.kind == KindShell {
			b.fillChildren(id, int(ev.Width), int(ev.Height))
			return
		}
		w.send(Event{Kind: EventRefresh})
	}).Connect(xu, id)

	if w.kind == KindBackdrop {
		err := mousebind.ButtonPressFun(func(_ *xgbutil.XUtil, _ xevent.ButtonPressEvent) {
			b.presentMenu(w)
		}).Connect(xu, id, "3", false, false)
		if err != nil {
			b.log.Warn("failed to bind menu button", "error", err)
		}
	}
}

// fillChildren resizes the embedded terminal to the band.
func (b *LinuxBackend) fillChildren(id xproto.Window, width, height int) {
	tree, err := xproto.QueryTree(b.conn.XUtil.Conn(), id).Reply()
	if err != nil {
		return
	}
	for _, child := range tree.Children {
		xproto.ConfigureWindow(b.conn.XUtil.Conn(), child,
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
			[]uint32{uint32(width), uint32(height)})
	}
}

// presentMenu shows the attached menu off the event goroutine. Only one
// palette per window is shown at a time.
func (b *LinuxBackend) presentMenu(w *linuxWindow) {
	if b.opts.Presenter == nil {
		return
	}
	b.mu.Lock()
	m := b.menus[w.xwin.Id]
	b.mu.Unlock()
	if m == nil || !w.presenting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer w.presenting.Store(false)
		ids, err := b.opts.Presenter.Present(context.Background(), m)
		if err != nil {
			b.log.Warn("menu failed", "error", err)
			return
		}
		if len(ids) > 0 && !w.send(Event{Kind: EventMenuPick, Picks: ids, Generation: m.Generation}) {
			b.log.Debug("menu pick dropped", "window", w.xwin.Id)
		}
	}()
}

// forget drops a window from the backend and closes its event channel.
func (b *LinuxBackend) forget(w *linuxWindow) {
	b.mu.Lock()
	delete(b.windows, w.xwin.Id)
	delete(b.menus, w.xwin.Id)
	b.mu.Unlock()
	w.finish()
}

func (b *LinuxBackend) lookup(win Window) (*linuxWindow, error) {
	if win == nil {
		return nil, fmt.Errorf("nil window")
	}
	b.mu.Lock()
	w, ok := b.windows[xproto.Window(win.ID())]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("window %d is not open", win.ID())
	}
	return w, nil
}

func (b *LinuxBackend) CloseWindow(win Window) error {
	w, err := b.lookup(win)
	if err != nil {
		return err
	}
	b.forget(w)
	// Destroy detaches the callbacks, so our own DestroyNotify is never seen.
	w.xwin.Destroy()
	return nil
}

func (b *LinuxBackend) SetTitle(win Window, title string) error {
	w, err := b.lookup(win)
	if err != nil {
		return err
	}
	return b.setTitle(w.xwin.Id, title)
}

func (b *LinuxBackend) setTitle(id xproto.Window, title string) error {
	if err := ewmh.WmNameSet(b.conn.XUtil, id, title); err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	return icccm.WmNameSet(b.conn.XUtil, id, title)
}

func (b *LinuxBackend) AttachMenu(win Window, m *menu.Menu) error {
	w, err := b.lookup(win)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.menus[w.xwin.Id]; ok {
		return fmt.Errorf("window %d already has a menu", w.xwin.Id)
	}
	b.menus[w.xwin.Id] = m
	return nil
}

func (b *LinuxBackend) DetachMenu(win Window) error {
	w, err := b.lookup(win)
	if err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.menus, w.xwin.Id)
	b.mu.Unlock()
	return nil
}

// SetBackground paints img as the window background pixmap.
func (b *LinuxBackend) SetBackground(win Window, img image.Image) error {
	w, err := b.lookup(win)
	if err != nil {
		return err
	}
	ximg := xgraphics.NewConvert(b.conn.XUtil, img)
	if err := ximg.XSurfaceSet(w.xwin.Id); err != nil {
		ximg.Destroy()
		return fmt.Errorf("failed to create background pixmap: %w", err)
	}
	ximg.XDraw()
	ximg.XPaint(w.xwin.Id)

	w.mu.Lock()
	old := w.ximg
	w.ximg = ximg
	w.mu.Unlock()
	if old != nil {
		old.Destroy()
	}
	return nil
}

// ClearBackground drops the picture and falls back to the first pen.
func (b *LinuxBackend) ClearBackground(win Window) error {
	w, err := b.lookup(win)
	if err != nil {
		return err
	}
	w.mu.Lock()
	old := w.ximg
	w.ximg = nil
	w.mu.Unlock()

	b.paintPlain(w.xwin.Id)
	if old != nil {
		old.Destroy()
	}
	return nil
}

func (b *LinuxBackend) paintPlain(id xproto.Window) {
	conn := b.conn.XUtil.Conn()
	xproto.ChangeWindowAttributes(conn, id, xproto.CwBackPixel, []uint32{b.backPixel()})
	xproto.ClearArea(conn, false, id, 0, 0, 0, 0)
}

// backPixel is pen 0 as a TrueColor pixel.
func (b *LinuxBackend) backPixel() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return rgbPixel(b.palette[0])
}

func rgbPixel(c theme.RGB) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Occupants lists the windows on our desktop. Hidden windows, docks and
// foreign desktop windows are left out.
func (b *LinuxBackend) Occupants() ([]tiling.Occupant, error) {
	index, _, err := b.surfaceIndex()
	if err != nil {
		return nil, err
	}
	clients, err := b.conn.Clients()
	if err != nil {
		return nil, err
	}

	var out []tiling.Occupant
	for _, win := range clients {
		desk, err := b.conn.GetWindowDesktop(win)
		if err != nil || desk != index {
			continue
		}
		if b.conn.HasState(win, "_NET_WM_STATE_HIDDEN") || b.conn.HasType(win, x11.TypeDock) {
			continue
		}
		desktopType := b.conn.HasType(win, x11.TypeDesktop)
		if desktopType && !b.conn.IsSessionWindow(win) {
			continue
		}
		x, y, width, height, err := b.conn.Geometry(win)
		if err != nil {
			continue
		}
		limits := b.conn.GetSizeLimits(win)
		out = append(out, tiling.Occupant{
			ID:         uint32(win),
			Bounds:     Rect{X: x, Y: y, Width: width, Height: height},
			Resizable:  limits.Resizable(),
			MinWidth:   limits.MinWidth,
			MinHeight:  limits.MinHeight,
			MaxWidth:   limits.MaxWidth,
			MaxHeight:  limits.MaxHeight,
			Backdrop:   desktopType || b.conn.HasState(win, "_NET_WM_STATE_BELOW"),
			Borderless: b.conn.IsBorderless(win),
		})
	}
	return out, nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(windowID), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) Move(windowID WindowID, x, y int) error {
	return b.conn.MoveWindow(xproto.Window(windowID), x, y)
}

// SetPalette publishes the colour table on the root window and repaints
// our windows that show no picture.
func (b *LinuxBackend) SetPalette(colors []theme.RGB) error {
	if len(colors) == 0 {
		return fmt.Errorf("empty palette")
	}
	data := make([]uint, len(colors))
	for i, c := range colors {
		data[i] = uint(rgbPixel(c))
	}
	if err := xprop.ChangeProp32(b.conn.XUtil, b.conn.Root, paletteProperty, "CARDINAL", data...); err != nil {
		return fmt.Errorf("failed to publish palette: %w", err)
	}

	b.mu.Lock()
	b.palette = theme.Capture(colors)
	plain := make([]xproto.Window, 0, len(b.windows))
	for id, w := range b.windows {
		w.mu.Lock()
		if w.ximg == nil {
			plain = append(plain, id)
		}
		w.mu.Unlock()
	}
	b.mu.Unlock()

	for _, id := range plain {
		b.paintPlain(id)
	}
	return nil
}
