package menu

import (
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"testing"

	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

func testInventory() Inventory {
	return Inventory{
		Host:   "Desktop 1",
		Own:    "Workspace.1",
		Others: []string{"Workspace.2", "Workspace.1"},
		Theme:  theme.Sepia,
	}
}

func mustBuild(t *testing.T, inv Inventory) *Menu {
	t.Helper()
	m, err := Build(inv)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func checkedIndexes(entries []Entry) []int {
	var out []int
	for i, e := range entries {
		if e.Checked {
			out = append(out, i)
		}
	}
	return out
}

func TestEncodeRoundTrip(t *testing.T) {
	id := Encode(2, 7, 200)
	if id != ID(0x0207c8) {
		t.Fatalf("Encode(2, 7, 200) = %#x, want 0x0207c8", uint32(id))
	}
	if id.Group() != 2 || id.Item() != 7 || id.Sub() != 200 {
		t.Fatalf("decoded %s, want 2/7/200", id)
	}
}

func TestExcludeMask(t *testing.T) {
	for k := 1; k <= maxRadio; k++ {
		for i := 0; i < k; i++ {
			mask := ExcludeMask(k, i)
			if got := bits.OnesCount32(mask); got != k-1 {
				t.Fatalf("k=%d i=%d: %d bits set, want %d", k, i, got, k-1)
			}
			if mask&(1<<uint(i)) != 0 {
				t.Fatalf("k=%d i=%d: mask excludes its own bit", k, i)
			}
		}
	}
	if got := ExcludeMask(5, 0); got != 0b11110 {
		t.Fatalf("ExcludeMask(5, 0) = %05b, want 11110", got)
	}
	if got := ExcludeMask(maxRadio+1, 0); got != 0 {
		t.Fatalf("ExcludeMask past the radio limit = %b, want 0", got)
	}
}

func TestBuild_SurfaceOrderAndDefault(t *testing.T) {
	m := mustBuild(t, testInventory())

	want := []string{"Desktop 1", "Workspace.1", "Workspace.2"}
	if got := m.Surfaces(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Surfaces() = %v, want %v", got, want)
	}
	picker := m.Groups[0].Entries[0].Children
	if got := checkedIndexes(picker); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("checked = %v, want host only", got)
	}

	inv := testInventory()
	inv.Default = "Workspace.2"
	m = mustBuild(t, inv)
	picker = m.Groups[0].Entries[0].Children
	if got := checkedIndexes(picker); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("checked = %v, want [2]", got)
	}
}

func TestBuild_ExactlyOneChecked(t *testing.T) {
	m := mustBuild(t, testInventory())

	if got := checkedIndexes(m.Groups[0].Entries[0].Children); len(got) != 1 {
		t.Fatalf("default surface checked = %v, want exactly one", got)
	}
	if got := checkedIndexes(m.Groups[2].Entries[0].Children); !reflect.DeepEqual(got, []int{int(theme.Sepia)}) {
		t.Fatalf("theme checked = %v, want [%d]", got, theme.Sepia)
	}
}

func TestBuild_TooManySurfaces(t *testing.T) {
	inv := testInventory()
	inv.Others = nil
	for i := 2; i < 40; i++ {
		inv.Others = append(inv.Others, fmt.Sprintf("Workspace.%d", i))
	}
	m, err := Build(inv)
	if !errors.Is(err, ErrTooManyEntries) {
		t.Fatalf("Build error = %v, want ErrTooManyEntries", err)
	}
	if m != nil {
		t.Fatalf("Build returned a menu alongside the error")
	}
}

func TestDecode(t *testing.T) {
	m := mustBuild(t, testInventory())

	tests := []struct {
		id   ID
		want Action
	}{
		{Encode(GroupWorkspace, ItemDefaultSurface, 1), SelectDefaultSurface{Name: "Workspace.1"}},
		{Encode(GroupWorkspace, ItemAbout, 0), About{}},
		{Encode(GroupWorkspace, ItemQuit, 0), Quit{}},
		{Encode(GroupWorkspace, ItemShell, 0), ToggleShell{}},
		{Encode(GroupWindows, 0, 0), ArrangeWindows{Strategy: tiling.Horizontal}},
		{Encode(GroupWindows, 1, 0), ArrangeWindows{Strategy: tiling.Vertical}},
		{Encode(GroupWindows, 2, 0), ArrangeWindows{Strategy: tiling.Grid}},
		{Encode(GroupWindows, 3, 0), ArrangeWindows{Strategy: tiling.Cascade}},
		{Encode(GroupWindows, 4, 0), ArrangeWindows{Strategy: tiling.Maximize}},
		{Encode(GroupPrefs, ItemTheme, 4), SelectTheme{Theme: theme.Green}},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			got, err := m.Decode(tt.id)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Decode = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_Unknown(t *testing.T) {
	m := mustBuild(t, testInventory())

	for _, id := range []ID{
		Encode(GroupWorkspace, ItemDefaultSurface, 9),
		Encode(GroupWindows, 9, 0),
		Encode(GroupPrefs, ItemTheme, theme.Count),
		Encode(7, 0, 0),
	} {
		if _, err := m.Decode(id); !errors.Is(err, ErrUnknownID) {
			t.Errorf("Decode(%s) error = %v, want ErrUnknownID", id, err)
		}
	}
}

func TestShellItemToggle(t *testing.T) {
	inv := testInventory()
	inv.ShellActive = true
	m := mustBuild(t, inv)

	shell := Encode(GroupWorkspace, ItemShell, 0)
	if _, err := m.Decode(shell); !errors.Is(err, ErrDisabled) {
		t.Fatalf("Decode while active = %v, want ErrDisabled", err)
	}

	m.SetShellEnabled(true)
	got, err := m.Decode(shell)
	if err != nil {
		t.Fatalf("Decode after enable: %v", err)
	}
	if got != (ToggleShell{}) {
		t.Fatalf("Decode = %#v, want ToggleShell", got)
	}
}

func TestCheckClearsSiblings(t *testing.T) {
	m := mustBuild(t, testInventory())

	if err := m.Check(Encode(GroupPrefs, ItemTheme, uint8(theme.Blue))); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := checkedIndexes(m.Groups[2].Entries[0].Children); !reflect.DeepEqual(got, []int{int(theme.Blue)}) {
		t.Fatalf("theme checked = %v, want [%d]", got, theme.Blue)
	}

	if err := m.Check(Encode(GroupWindows, 0, 0)); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("Check on a plain item = %v, want ErrUnknownID", err)
	}
}

func TestSurfaceID(t *testing.T) {
	m := mustBuild(t, testInventory())

	id, ok := m.SurfaceID("Workspace.2")
	if !ok || id != Encode(GroupWorkspace, ItemDefaultSurface, 2) {
		t.Fatalf("SurfaceID(Workspace.2) = %s, %v", id, ok)
	}
	if _, ok := m.SurfaceID("Elsewhere.1"); ok {
		t.Fatalf("SurfaceID found a surface that is not listed")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := mustBuild(t, testInventory())
	m.Generation = 7

	c := m.Clone()
	if c.Generation != 7 || !reflect.DeepEqual(c.Surfaces(), m.Surfaces()) {
		t.Fatalf("clone lost state: gen=%d surfaces=%v", c.Generation, c.Surfaces())
	}

	id, _ := c.SurfaceID("Workspace.2")
	if err := c.Check(id); err != nil {
		t.Fatalf("Check: %v", err)
	}
	c.SetShellEnabled(false)

	if got := checkedIndexes(m.Groups[0].Entries[0].Children); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("original checked = %v after editing the clone", got)
	}
	if _, err := m.Decode(Encode(GroupWorkspace, ItemShell, 0)); err != nil {
		t.Fatalf("original shell item changed: %v", err)
	}
}
