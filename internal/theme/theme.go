package theme

import "strings"

// MaxColors is the largest colour table captured from a surface.
const MaxColors = 256

// RGB is one 8-bit colour register.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Theme indexes the fixed palette transform table.
type Theme int

const (
	Workbench Theme = iota // identity
	Dark
	Sepia
	Blue
	Green
)

// Count is the number of themes in the table.
const Count = 5

var names = [Count]string{
	"Like Workbench",
	"Dark Mode",
	"Sepia",
	"Blue",
	"Green",
}

// tint holds the per-channel multipliers (out of 255) applied to the
// average intensity of a colour.
var tint = [Count][3]int{
	Sepia: {240, 220, 180},
	Blue:  {180, 200, 240},
	Green: {200, 240, 200},
}

// All returns every theme in menu order.
func All() []Theme {
	out := make([]Theme, Count)
	for i := range out {
		out[i] = Theme(i)
	}
	return out
}

func (t Theme) Valid() bool {
	return t >= 0 && t < Count
}

func (t Theme) String() string {
	if !t.Valid() {
		return names[Workbench]
	}
	return names[t]
}

// Parse maps a command-line theme name to its index. Unknown names select
// the identity theme.
func Parse(name string) Theme {
	t, _ := Lookup(name)
	return t
}

// Lookup is Parse that also reports whether the name was recognised.
func Lookup(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark", "dark mode":
		return Dark, true
	case "sepia":
		return Sepia, true
	case "blue":
		return Blue, true
	case "green":
		return Green, true
	case "workbench", "like workbench", "none", "default":
		return Workbench, true
	default:
		return Workbench, false
	}
}

// Filter transforms a single colour.
func (t Theme) Filter(c RGB) RGB {
	if t == Workbench || !t.Valid() {
		return c
	}
	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	if t == Dark {
		v := uint8((255 - avg) * 128 / 255)
		return RGB{R: v, G: v, B: v}
	}
	m := tint[t]
	return RGB{
		R: uint8(avg * m[0] / 255),
		G: uint8(avg * m[1] / 255),
		B: uint8(avg * m[2] / 255),
	}
}

// Capture snapshots a colour table, keeping at most MaxColors entries.
func Capture(colors []RGB) []RGB {
	n := len(colors)
	if n > MaxColors {
		n = MaxColors
	}
	out := make([]RGB, n)
	copy(out, colors[:n])
	return out
}

// Apply derives a new table from baseline. The baseline is never modified,
// so reapplying any theme from the same baseline is stable.
func Apply(baseline []RGB, t Theme) []RGB {
	out := make([]RGB, len(baseline))
	for i, c := range baseline {
		out[i] = t.Filter(c)
	}
	return out
}
