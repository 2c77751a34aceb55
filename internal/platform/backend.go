package platform

import (
	"errors"
	"image"

	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

var (
	// ErrNameTaken is returned when a surface with the requested public
	// name already exists.
	ErrNameTaken = errors.New("surface name already in use")
	// ErrSurfaceBusy is returned by CloseSurface while foreign windows
	// are still open on the surface.
	ErrSurfaceBusy = errors.New("surface still has open windows")
	// ErrNoSurface is returned by operations that need an open surface.
	ErrNoSurface = errors.New("no surface open")
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = tiling.Rect

// Surface describes the opened workspace surface.
type Surface struct {
	Name      string
	Bounds    Rect
	BarHeight int
	// Palette is the colour table in effect when the surface opened.
	Palette []theme.RGB
}

// SurfaceInfo is one entry of the system-wide surface list.
type SurfaceInfo struct {
	Name     string
	Visitors int
}

// EventKind classifies window events.
type EventKind int

const (
	// EventClose is a close request from the window manager.
	EventClose EventKind = iota
	// EventMenuPick carries one or more encoded menu selections.
	EventMenuPick
	// EventRefresh asks for the window contents to be repainted.
	EventRefresh
)

// Event is delivered on a window's event channel.
type Event struct {
	Kind  EventKind
	Picks []menu.ID
	// Generation is the Generation of the menu the picks were made on.
	Generation uint64
}

// Window is a window owned by this process. Its event channel is closed
// when the window is destroyed, by us or by anyone else.
type Window interface {
	ID() WindowID
	Events() <-chan Event
}

// WindowKind selects the role of a window the session opens.
type WindowKind int

const (
	KindBackdrop WindowKind = iota
	KindShell
)

// WindowSpec describes a window to open on the surface.
type WindowSpec struct {
	Kind   WindowKind
	Bounds Rect
	Title  string
}

// Backend abstracts the display server operations the session needs.
type Backend interface {
	// HostSurface names the surface that was current before ours opened.
	HostSurface() string
	OpenSurface(name string) (*Surface, error)
	CloseSurface() error
	Surfaces() ([]SurfaceInfo, error)
	Raise() error

	DefaultSurface() (string, error)
	SetDefaultSurface(name string) error

	OpenWindow(spec WindowSpec) (Window, error)
	CloseWindow(w Window) error
	SetTitle(w Window, title string) error
	AttachMenu(w Window, m *menu.Menu) error
	DetachMenu(w Window) error
	SetBackground(w Window, img image.Image) error
	ClearBackground(w Window) error

	Occupants() ([]tiling.Occupant, error)
	MoveResize(id WindowID, bounds Rect) error
	Move(id WindowID, x, y int) error
	SetPalette(colors []theme.RGB) error
}

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notice(title, text string) error
}

type mover struct{ b Backend }

// Mover adapts a Backend to the layout engine.
func Mover(b Backend) tiling.Mover { return mover{b: b} }

func (m mover) MoveResize(id uint32, bounds tiling.Rect) error {
	return m.b.MoveResize(WindowID(id), bounds)
}

func (m mover) Move(id uint32, x, y int) error {
	return m.b.Move(WindowID(id), x, y)
}
