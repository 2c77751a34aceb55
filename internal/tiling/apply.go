package tiling

import (
	"errors"
	"fmt"
)

// Mover changes window geometry on the display server.
type Mover interface {
	MoveResize(id uint32, bounds Rect) error
	Move(id uint32, x, y int) error
}

// Apply pushes placements to the display server. A failure on one window
// does not stop the others; all failures are joined.
func Apply(m Mover, placements []Placement) error {
	var errs []error
	for _, p := range placements {
		var err error
		if p.Resize {
			err = m.MoveResize(p.ID, p.Bounds)
		} else {
			err = m.Move(p.ID, p.Bounds.X, p.Bounds.Y)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("window 0x%x: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}
