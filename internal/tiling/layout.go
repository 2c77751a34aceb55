package tiling

import (
	"fmt"
	"strings"
)

const (
	// CascadeStep is the offset between successive cascaded windows.
	CascadeStep = 30
	// MaxOccupants caps how many windows a single arrangement touches.
	MaxOccupants = 32
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Overlaps reports whether r and o share any pixel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Strategy selects one of the window arrangements.
type Strategy int

const (
	Horizontal Strategy = iota
	Vertical
	Grid
	Cascade
	Maximize
)

var strategyNames = map[Strategy]string{
	Horizontal: "horizontal",
	Vertical:   "vertical",
	Grid:       "grid",
	Cascade:    "cascade",
	Maximize:   "maximize",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Strategies lists every arrangement in menu order.
func Strategies() []Strategy {
	return []Strategy{Horizontal, Vertical, Grid, Cascade, Maximize}
}

// ParseStrategy accepts the names printed by String.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown arrangement %q (expected: horizontal, vertical, grid, cascade, maximize)", name)
}

// Placement is the computed target for one occupant. Resize is false for
// windows that may only be moved.
type Placement struct {
	ID     uint32
	Bounds Rect
	Resize bool
}

// GridDims returns the column and row counts for a grid of n windows:
// ceil(n/2) columns and as many rows as needed, so no row is left empty.
func GridDims(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = (n + 1) / 2
	rows = (n + cols - 1) / cols
	return cols, rows
}

// Arrange computes placements for the occupants inside area. Occupants
// beyond MaxOccupants are ignored.
func Arrange(s Strategy, occupants []Occupant, area Rect) []Placement {
	if len(occupants) > MaxOccupants {
		occupants = occupants[:MaxOccupants]
	}
	n := len(occupants)
	if n == 0 || area.Width <= 0 || area.Height <= 0 {
		return nil
	}

	switch s {
	case Horizontal:
		return arrangeCells(occupants, area, n, 1)
	case Vertical:
		return arrangeCells(occupants, area, 1, n)
	case Grid:
		cols, rows := GridDims(n)
		return arrangeCells(occupants, area, cols, rows)
	case Cascade:
		return arrangeCascade(occupants, area)
	case Maximize:
		return arrangeMaximize(occupants, area)
	default:
		return nil
	}
}

// arrangeCells places occupants row-major in a cols x rows grid. The last
// column and row absorb the division remainder.
func arrangeCells(occupants []Occupant, area Rect, cols, rows int) []Placement {
	cellW := area.Width / cols
	cellH := area.Height / rows
	if cellW == 0 || cellH == 0 {
		return nil
	}

	out := make([]Placement, 0, len(occupants))
	for i, occ := range occupants {
		col := i % cols
		row := i / cols

		cell := Rect{
			X:      area.X + col*cellW,
			Y:      area.Y + row*cellH,
			Width:  cellW,
			Height: cellH,
		}
		if col == cols-1 {
			cell.Width = area.Right() - cell.X
		}
		if row == rows-1 {
			cell.Height = area.Bottom() - cell.Y
		}

		out = append(out, place(occ, cell, area))
	}
	return out
}

func arrangeCascade(occupants []Occupant, area Rect) []Placement {
	out := make([]Placement, 0, len(occupants))
	for i, occ := range occupants {
		w, h := occ.Bounds.Width, occ.Bounds.Height
		x := area.X + i*CascadeStep
		y := area.Y + i*CascadeStep
		x = pullBack(x, w, area.X, area.Right())
		y = pullBack(y, h, area.Y, area.Bottom())
		out = append(out, Placement{
			ID:     occ.ID,
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
		})
	}
	return out
}

func arrangeMaximize(occupants []Occupant, area Rect) []Placement {
	var out []Placement
	for _, occ := range occupants {
		if !occ.Resizable {
			continue
		}
		out = append(out, place(occ, area, area))
	}
	return out
}

// place fits a single occupant to a cell. Fixed-size windows only move to
// the cell origin.
func place(occ Occupant, cell, area Rect) Placement {
	if !occ.Resizable {
		return Placement{
			ID:     occ.ID,
			Bounds: Rect{X: cell.X, Y: cell.Y, Width: occ.Bounds.Width, Height: occ.Bounds.Height},
		}
	}

	w := clampExtent(cell.Width, occ.MinWidth, occ.MaxWidth, area.Width)
	h := clampExtent(cell.Height, occ.MinHeight, occ.MaxHeight, area.Height)
	return Placement{
		ID: occ.ID,
		Bounds: Rect{
			X:      pullBack(cell.X, w, area.X, area.Right()),
			Y:      pullBack(cell.Y, h, area.Y, area.Bottom()),
			Width:  w,
			Height: h,
		},
		Resize: true,
	}
}

func clampExtent(v, min, max, limit int) int {
	if max > 0 && v > max {
		v = max
	}
	if min > 0 && v < min {
		v = min
	}
	if v > limit {
		v = limit
	}
	return v
}

// pullBack moves pos so that [pos, pos+size) ends flush with hi when it
// would overflow, without going below lo.
func pullBack(pos, size, lo, hi int) int {
	if pos+size > hi {
		pos = hi - size
	}
	if pos < lo {
		pos = lo
	}
	return pos
}
