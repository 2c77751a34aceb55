// Package palette shows workspace menus and notices through an external
// dmenu-style launcher (rofi, fuzzel, wofi or dmenu).
package palette

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/1broseidon/workspace/internal/menu"
)

// RowKind says what a palette row stands for.
type RowKind int

const (
	// RowEntry is a menu leaf; picking it yields its ID.
	RowEntry RowKind = iota
	// RowParent opens the children of a menu entry.
	RowParent
	// RowBack returns to the enclosing level.
	RowBack
	// RowTitle is a group title.
	RowTitle
	// RowSeparator divides the entries of a group.
	RowSeparator
	// RowText is a line of notice text.
	RowText
	// RowAcknowledge dismisses a notice.
	RowAcknowledge
)

// Row is one line of a palette screen.
type Row struct {
	Kind  RowKind
	Label string
	// Key is the menu shortcut, shown after the label.
	Key string
	// ID is set on RowEntry rows. Child indexes the submenus of the level
	// on RowParent rows.
	ID        menu.ID
	Child     int
	Checkable bool
	Checked   bool
	Disabled  bool
}

// Selectable reports whether picking the row means anything.
func (r Row) Selectable() bool {
	switch r.Kind {
	case RowEntry:
		return !r.Disabled
	case RowParent, RowBack, RowAcknowledge:
		return true
	default:
		return false
	}
}

// Screen is one palette invocation.
type Screen struct {
	Prompt string
	// Message goes to the message bar of launchers that have one.
	Message string
	Rows    []Row
	// Urgent flags the selectable rows for attention.
	Urgent bool
}

// Capabilities describes what a launcher can render.
type Capabilities struct {
	Markup        bool // pango markup in rows
	NonSelectable bool // rows the user cannot pick
	IndexOutput   bool // prints the picked row index instead of its text
	MessageBar    bool // text above the rows
	RowStates     bool // active and urgent row highlighting
}

// Backend shows a screen and returns the index of the picked row. A
// dismissed palette returns ErrCancelled.
type Backend interface {
	Show(ctx context.Context, s Screen) (int, error)
	Capabilities() Capabilities
}

// pick shows s until a selectable row is picked. Launchers that cannot
// enforce non-selectable rows let titles and disabled entries through.
func pick(ctx context.Context, b Backend, s Screen) (Row, error) {
	for {
		i, err := b.Show(ctx, s)
		if err != nil {
			return Row{}, err
		}
		if i < 0 || i >= len(s.Rows) {
			return Row{}, fmt.Errorf("palette: row %d out of range", i)
		}
		if r := s.Rows[i]; r.Selectable() {
			return r, nil
		}
	}
}

// Names lists the supported launchers in auto-detection order.
var Names = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first launcher found in PATH.
func DetectBackend() (string, error) {
	for _, name := range Names {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(Names, ", "))
}

// NewBackend returns the launcher called name, or the first one installed
// for "auto" and "".
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	l, ok := launcherFor(name)
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(Names, ", "))
	}
	if _, err := exec.LookPath(l.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return l, nil
}
