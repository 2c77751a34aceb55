package tiling

import (
	"errors"
	"testing"
)

func occupants(n int, resizable bool) []Occupant {
	out := make([]Occupant, n)
	for i := range out {
		out[i] = Occupant{
			ID:        uint32(i + 1),
			Bounds:    Rect{X: 5, Y: 5, Width: 300, Height: 200},
			Resizable: resizable,
		}
	}
	return out
}

func TestGridDims_NoEmptyRow(t *testing.T) {
	for n := 1; n <= MaxOccupants; n++ {
		cols, rows := GridDims(n)
		if rows*cols < n {
			t.Fatalf("n=%d: %dx%d grid too small", n, cols, rows)
		}
		if rows*cols-n >= cols {
			t.Fatalf("n=%d: %dx%d grid leaves an empty row", n, cols, rows)
		}
	}
	if cols, rows := GridDims(0); cols != 0 || rows != 0 {
		t.Fatalf("expected 0x0 for no windows, got %dx%d", cols, rows)
	}
}

func TestArrange_ResizableWithinAreaAndDisjoint(t *testing.T) {
	area := Rect{X: 0, Y: 21, Width: 1920, Height: 1059}

	for _, s := range []Strategy{Horizontal, Vertical, Grid, Maximize} {
		for n := 0; n <= MaxOccupants; n++ {
			placements := Arrange(s, occupants(n, true), area)

			for i, p := range placements {
				if !area.Contains(p.Bounds) {
					t.Fatalf("%s n=%d: placement %d %+v outside %+v", s, n, i, p.Bounds, area)
				}
				if !p.Resize {
					t.Fatalf("%s n=%d: resizable occupant not resized", s, n)
				}
				if s == Maximize {
					continue
				}
				for j := i + 1; j < len(placements); j++ {
					if p.Bounds.Overlaps(placements[j].Bounds) {
						t.Fatalf("%s n=%d: placements %d and %d overlap", s, n, i, j)
					}
				}
			}
		}
	}
}

func TestArrange_TilesCoverArea(t *testing.T) {
	area := Rect{X: 10, Y: 30, Width: 1000, Height: 700}

	for _, s := range []Strategy{Horizontal, Vertical} {
		for n := 1; n <= MaxOccupants; n++ {
			total := 0
			for _, p := range Arrange(s, occupants(n, true), area) {
				total += p.Bounds.Width * p.Bounds.Height
			}
			if total != area.Width*area.Height {
				t.Fatalf("%s n=%d: covered %d of %d", s, n, total, area.Width*area.Height)
			}
		}
	}

	// Grids with a full last row cover the area as well.
	for _, n := range []int{2, 4, 6, 9, 12} {
		total := 0
		for _, p := range Arrange(Grid, occupants(n, true), area) {
			total += p.Bounds.Width * p.Bounds.Height
		}
		cols, rows := GridDims(n)
		if cols*rows == n && total != area.Width*area.Height {
			t.Fatalf("grid n=%d: covered %d of %d", n, total, area.Width*area.Height)
		}
	}
}

func TestArrange_Horizontal(t *testing.T) {
	area := Rect{X: 0, Y: 21, Width: 640, Height: 459}
	got := Arrange(Horizontal, occupants(3, true), area)
	if len(got) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(got))
	}
	want := []Rect{
		{X: 0, Y: 21, Width: 213, Height: 459},
		{X: 213, Y: 21, Width: 213, Height: 459},
		{X: 426, Y: 21, Width: 214, Height: 459},
	}
	for i := range want {
		if got[i].Bounds != want[i] {
			t.Fatalf("placement %d: got %+v, want %+v", i, got[i].Bounds, want[i])
		}
	}
}

func TestArrange_GridRowMajor(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 600, Height: 400}
	got := Arrange(Grid, occupants(5, true), area)
	// 5 windows: 3 columns, 2 rows.
	if got[3].Bounds.X != 0 || got[3].Bounds.Y != 200 {
		t.Fatalf("expected 4th window to start row two, got %+v", got[3].Bounds)
	}
	if got[2].Bounds.X != 400 || got[2].Bounds.Y != 0 {
		t.Fatalf("expected 3rd window at top right, got %+v", got[2].Bounds)
	}
}

func TestArrange_NonResizableOnlyMoves(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 800, Height: 600}
	occ := occupants(2, false)
	for _, s := range []Strategy{Horizontal, Vertical, Grid, Cascade} {
		for _, p := range Arrange(s, occ, area) {
			if p.Resize {
				t.Fatalf("%s: fixed-size window was resized", s)
			}
			if p.Bounds.Width != 300 || p.Bounds.Height != 200 {
				t.Fatalf("%s: size changed to %dx%d", s, p.Bounds.Width, p.Bounds.Height)
			}
		}
	}
	if got := Arrange(Maximize, occ, area); len(got) != 0 {
		t.Fatalf("maximize should skip fixed-size windows, got %d placements", len(got))
	}
}

func TestArrange_CascadePullsBackFlush(t *testing.T) {
	area := Rect{X: 0, Y: 21, Width: 400, Height: 300}
	occ := occupants(6, true)
	got := Arrange(Cascade, occ, area)
	if got[0].Bounds.X != 0 || got[0].Bounds.Y != 21 {
		t.Fatalf("first cascade window should sit at the origin, got %+v", got[0].Bounds)
	}
	if got[1].Bounds.X != 30 || got[1].Bounds.Y != 51 {
		t.Fatalf("second cascade window should be one step in, got %+v", got[1].Bounds)
	}
	// 300 wide window at x=120 would end at 420; it is pulled back to 100.
	if got[4].Bounds.X != 100 {
		t.Fatalf("expected x pulled back to 100, got %d", got[4].Bounds.X)
	}
	// 200 high window at y=141 would end at 341 > 321; pulled back to 121.
	if got[4].Bounds.Y != 121 {
		t.Fatalf("expected y pulled back to 121, got %d", got[4].Bounds.Y)
	}
	for _, p := range got {
		if p.Resize {
			t.Fatalf("cascade must not resize")
		}
		if !area.Contains(p.Bounds) {
			t.Fatalf("cascade placement %+v outside %+v", p.Bounds, area)
		}
	}
}

func TestArrange_StaysInsideUsableArea(t *testing.T) {
	usable := UsableArea(Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 21, false)

	mixed := occupants(MaxOccupants, true)
	for i := range mixed {
		mixed[i].Bounds.Width = 200 + (i%5)*150
		mixed[i].Bounds.Height = 150 + (i%4)*120
	}

	tests := []struct {
		name     string
		strategy Strategy
		occ      []Occupant
		disjoint bool
	}{
		{"grid 3 partial row", Grid, occupants(3, true), true},
		{"grid 5 partial row", Grid, occupants(5, true), true},
		{"grid 7 partial row", Grid, occupants(7, true), true},
		{"grid 7 fixed size", Grid, occupants(7, false), false},
		{"cascade 32", Cascade, occupants(MaxOccupants, true), false},
		{"cascade 32 mixed sizes", Cascade, mixed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Arrange(tt.strategy, tt.occ, usable)
			if len(got) != len(tt.occ) {
				t.Fatalf("got %d placements, want %d", len(got), len(tt.occ))
			}
			for i, p := range got {
				if !usable.Contains(p.Bounds) {
					t.Fatalf("placement %d %+v outside %+v", i, p.Bounds, usable)
				}
				if !tt.disjoint {
					continue
				}
				for j := i + 1; j < len(got); j++ {
					if p.Bounds.Overlaps(got[j].Bounds) {
						t.Fatalf("placements %d %+v and %d %+v overlap", i, p.Bounds, j, got[j].Bounds)
					}
				}
			}
		})
	}
}

func TestArrange_ClampsToMaxExtents(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 500}
	occ := []Occupant{{ID: 1, Resizable: true, MaxWidth: 400, MaxHeight: 300}}
	got := Arrange(Maximize, occ, area)
	if got[0].Bounds.Width != 400 || got[0].Bounds.Height != 300 {
		t.Fatalf("expected 400x300, got %dx%d", got[0].Bounds.Width, got[0].Bounds.Height)
	}
}

func TestArrange_CapsOccupants(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 3200, Height: 1000}
	if got := Arrange(Horizontal, occupants(40, true), area); len(got) != MaxOccupants {
		t.Fatalf("expected %d placements, got %d", MaxOccupants, len(got))
	}
}

func TestArrange_ZeroWidthCellIsNoop(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 3, Height: 100}
	if got := Arrange(Horizontal, occupants(5, true), area); got != nil {
		t.Fatalf("expected no placements, got %d", len(got))
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseStrategy("spiral"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

type recordingMover struct {
	resized []uint32
	moved   []uint32
	failOn  uint32
}

func (m *recordingMover) MoveResize(id uint32, _ Rect) error {
	if id == m.failOn {
		return errors.New("boom")
	}
	m.resized = append(m.resized, id)
	return nil
}

func (m *recordingMover) Move(id uint32, _, _ int) error {
	if id == m.failOn {
		return errors.New("boom")
	}
	m.moved = append(m.moved, id)
	return nil
}

func TestApply_JoinsErrorsAndContinues(t *testing.T) {
	m := &recordingMover{failOn: 2}
	err := Apply(m, []Placement{
		{ID: 1, Resize: true},
		{ID: 2, Resize: true},
		{ID: 3},
	})
	if err == nil {
		t.Fatalf("expected error from failing window")
	}
	if len(m.resized) != 1 || m.resized[0] != 1 {
		t.Fatalf("expected window 1 resized, got %v", m.resized)
	}
	if len(m.moved) != 1 || m.moved[0] != 3 {
		t.Fatalf("expected window 3 moved, got %v", m.moved)
	}
}
