package tiling

const (
	// ShellBandHeight is the height of the console band pinned to the
	// bottom of the surface.
	ShellBandHeight = 200
	// fingerprintTolerance is how far a stale shell window may drift from
	// the expected band and still be recognised.
	fingerprintTolerance = 20
)

// Occupant is a snapshot of one window on the workspace surface.
type Occupant struct {
	ID        uint32
	Bounds    Rect
	Resizable bool
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int

	// Backdrop is set for desktop-type windows; Borderless for windows
	// without decorations.
	Backdrop   bool
	Borderless bool
}

// Exclusion describes the session-owned windows that never take part in
// an arrangement.
type Exclusion struct {
	Backdrop uint32
	Shell    uint32
	// ShellDonated enables the structural fingerprint match, since the
	// shell handle may be stale once the console owns the window.
	ShellDonated bool
	Screen       Rect
}

// Filter drops the backdrop and the shell band from occupants.
func Filter(occupants []Occupant, ex Exclusion) []Occupant {
	out := make([]Occupant, 0, len(occupants))
	for _, occ := range occupants {
		if ex.Backdrop != 0 && occ.ID == ex.Backdrop {
			continue
		}
		if ex.Shell != 0 && occ.ID == ex.Shell {
			continue
		}
		if ex.ShellDonated && IsShellBand(occ, ex.Screen) {
			continue
		}
		out = append(out, occ)
	}
	return out
}

// IsShellBand reports whether occ looks like the console band: a
// borderless backdrop-style window sitting at the bottom of the screen
// with roughly the band height.
func IsShellBand(occ Occupant, screen Rect) bool {
	if !occ.Backdrop || !occ.Borderless {
		return false
	}
	expectedTop := screen.Bottom() - ShellBandHeight
	return within(occ.Bounds.Y, expectedTop, fingerprintTolerance) &&
		within(occ.Bounds.Height, ShellBandHeight, fingerprintTolerance)
}

// UsableArea is the part of the screen below the title bar and above the
// shell band, if one is open.
func UsableArea(screen Rect, barHeight int, shellActive bool) Rect {
	top := 0
	if barHeight > 0 {
		top = barHeight + 1
	}
	area := Rect{
		X:      screen.X,
		Y:      screen.Y + top,
		Width:  screen.Width,
		Height: screen.Height - top,
	}
	if shellActive {
		area.Height -= ShellBandHeight
	}
	if area.Height < 0 {
		area.Height = 0
	}
	return area
}

// ShellBand is where the console window is pinned.
func ShellBand(screen Rect) Rect {
	h := ShellBandHeight
	if h > screen.Height {
		h = screen.Height
	}
	return Rect{
		X:      screen.X,
		Y:      screen.Bottom() - h,
		Width:  screen.Width,
		Height: h,
	}
}

func within(v, want, tol int) bool {
	return v >= want-tol && v <= want+tol
}
