package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies on the monitor.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// WorkArea returns the monitor under the pointer clipped to the
// window manager's work area for desktop, which excludes panels and docks.
func (c *Connection) WorkArea(desktop int) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		// No RandR: fall back to the root window.
		geom, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if gerr != nil {
			return Monitor{}, fmt.Errorf("failed to get screen geometry: %w", gerr)
		}
		monitors = []Monitor{{Name: "root", Width: int(geom.Width), Height: int(geom.Height)}}
	}

	active := monitors[0]
	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		if mon, ok := monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)); ok {
			active = mon
		}
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return active, nil
	}
	if desktop < 0 || desktop >= len(areas) {
		desktop = 0
	}
	wa := areas[desktop]
	return clip(active, int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height)), nil
}

func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, mon := range monitors {
		if mon.Contains(x, y) {
			return mon, true
		}
	}
	return Monitor{}, false
}

// clip intersects the monitor with a rectangle. A rectangle that misses the
// monitor leaves it unchanged.
func clip(mon Monitor, x, y, width, height int) Monitor {
	x1 := max(mon.X, x)
	y1 := max(mon.Y, y)
	x2 := min(mon.X+mon.Width, x+width)
	y2 := min(mon.Y+mon.Height, y+height)
	if x2 <= x1 || y2 <= y1 {
		return mon
	}
	mon.X, mon.Y = x1, y1
	mon.Width, mon.Height = x2-x1, y2-y1
	return mon
}
