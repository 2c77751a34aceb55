package menu

import (
	"errors"
	"fmt"

	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

var (
	ErrTooManyEntries = errors.New("menu: too many entries in radio group")
	ErrUnknownID      = errors.New("menu: unknown item id")
	ErrDisabled       = errors.New("menu: item disabled")
)

// maxRadio is the widest radio group a 32-bit exclusion mask can describe.
const maxRadio = 32

// Menu groups.
const (
	GroupWorkspace uint8 = 0
	GroupWindows   uint8 = 1
	GroupPrefs     uint8 = 2
)

// Items of the Workspace group.
const (
	ItemDefaultSurface uint8 = 0
	ItemAbout          uint8 = 1
	ItemQuit           uint8 = 2
	ItemShell          uint8 = 3
)

// ItemTheme is the only item of the Prefs group; its sub-items are themes.
const ItemTheme uint8 = 0

// ID packs (group, item, sub) as (group<<16)|(item<<8)|sub.
type ID uint32

func Encode(group, item, sub uint8) ID {
	return ID(uint32(group)<<16 | uint32(item)<<8 | uint32(sub))
}

func (id ID) Group() uint8 { return uint8(id >> 16) }
func (id ID) Item() uint8  { return uint8(id >> 8) }
func (id ID) Sub() uint8   { return uint8(id) }

func (id ID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Group(), id.Item(), id.Sub())
}

// Entry is one row of the menu. Entries with children are parents and
// carry no selectable ID.
type Entry struct {
	Label     string
	Key       string
	ID        ID
	Checkable bool
	Checked   bool
	Disabled  bool
	Separator bool
	// Exclude holds the sibling bits cleared when this entry is checked.
	Exclude  uint32
	Children []Entry
}

// Selectable reports whether picking the entry yields an action.
func (e Entry) Selectable() bool {
	return !e.Separator && len(e.Children) == 0
}

// Group is a titled top-level menu.
type Group struct {
	Title   string
	Entries []Entry
}

// Menu is the full description attached to the backdrop window.
type Menu struct {
	Groups []Group
	// Generation is stamped by the owner on every attach; picks made on
	// an older generation are stale.
	Generation uint64

	surfaces []string
}

// Inventory is the system state a menu is built from.
type Inventory struct {
	// Host is the desktop the session was started from.
	Host string
	// Own is this session's surface.
	Own string
	// Others are the remaining surfaces of the same family.
	Others []string
	// Default is the current default surface; empty means Host.
	Default     string
	Theme       theme.Theme
	ShellActive bool
}

// ExcludeMask returns the mutual-exclusion mask for sibling i of k: every
// sibling bit except its own.
func ExcludeMask(k, i int) uint32 {
	if k <= 0 || k > maxRadio {
		return 0
	}
	all := uint32((uint64(1) << uint(k)) - 1)
	return all &^ (1 << uint(i))
}

// Build constructs the menu for inv. On error no menu is returned and the
// caller keeps whatever it had attached before.
func Build(inv Inventory) (*Menu, error) {
	surfaces := surfaceList(inv)
	if len(surfaces) > maxRadio {
		return nil, fmt.Errorf("%w: %d surfaces", ErrTooManyEntries, len(surfaces))
	}

	def := inv.Default
	if def == "" {
		def = inv.Host
	}
	checked := 0
	for i, name := range surfaces {
		if name == def {
			checked = i
			break
		}
	}

	pubscreens := make([]Entry, len(surfaces))
	for i, name := range surfaces {
		pubscreens[i] = Entry{
			Label:     name,
			ID:        Encode(GroupWorkspace, ItemDefaultSurface, uint8(i)),
			Checkable: true,
			Checked:   i == checked,
			Exclude:   ExcludeMask(len(surfaces), i),
		}
	}

	themes := make([]Entry, theme.Count)
	for i, t := range theme.All() {
		themes[i] = Entry{
			Label:     t.String(),
			ID:        Encode(GroupPrefs, ItemTheme, uint8(i)),
			Checkable: true,
			Checked:   t == inv.Theme,
			Exclude:   ExcludeMask(theme.Count, i),
		}
	}

	m := &Menu{
		surfaces: surfaces,
		Groups: []Group{
			{
				Title: "Workspace",
				Entries: []Entry{
					{Label: "Default Surface", Children: pubscreens},
					{Separator: true},
					{Label: "About...", Key: "?", ID: Encode(GroupWorkspace, ItemAbout, 0)},
					{Label: "Open Shell", Key: "S", ID: Encode(GroupWorkspace, ItemShell, 0), Disabled: inv.ShellActive},
					{Separator: true},
					{Label: "Close Workspace", Key: "Q", ID: Encode(GroupWorkspace, ItemQuit, 0)},
				},
			},
			{
				Title: "Windows",
				Entries: []Entry{
					{Label: "Tile Horizontally", Key: "H", ID: arrangeID(tiling.Horizontal)},
					{Label: "Tile Vertically", Key: "V", ID: arrangeID(tiling.Vertical)},
					{Label: "Grid Layout", Key: "G", ID: arrangeID(tiling.Grid)},
					{Separator: true},
					{Label: "Cascade", Key: "C", ID: arrangeID(tiling.Cascade)},
					{Label: "Maximize All", Key: "M", ID: arrangeID(tiling.Maximize)},
				},
			},
			{
				Title: "Prefs",
				Entries: []Entry{
					{Label: "Theme", Children: themes},
				},
			},
		},
	}
	return m, nil
}

func arrangeID(s tiling.Strategy) ID {
	return Encode(GroupWindows, uint8(s), 0)
}

// surfaceList orders the default-surface radio group: host first, then our
// own surface, then the other family members, without duplicates.
func surfaceList(inv Inventory) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	add(inv.Host)
	add(inv.Own)
	for _, name := range inv.Others {
		add(name)
	}
	return out
}

// Surfaces returns the names in the default-surface group, in sub order.
func (m *Menu) Surfaces() []string {
	out := make([]string, len(m.surfaces))
	copy(out, m.surfaces)
	return out
}

// SurfaceID returns the default-surface entry for name.
func (m *Menu) SurfaceID(name string) (ID, bool) {
	for i, s := range m.surfaces {
		if s == name {
			return Encode(GroupWorkspace, ItemDefaultSurface, uint8(i)), true
		}
	}
	return 0, false
}

// Clone returns a deep copy. Attached menus are never edited in place;
// callers edit a clone and swap it in.
func (m *Menu) Clone() *Menu {
	out := &Menu{
		Groups:     make([]Group, len(m.Groups)),
		Generation: m.Generation,
		surfaces:   append([]string(nil), m.surfaces...),
	}
	for i, g := range m.Groups {
		out.Groups[i] = Group{Title: g.Title, Entries: cloneEntries(g.Entries)}
	}
	return out
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].Children = cloneEntries(e.Children)
	}
	return out
}

// Lookup finds the selectable entry carrying id.
func (m *Menu) Lookup(id ID) (*Entry, bool) {
	for gi := range m.Groups {
		if e := findEntry(m.Groups[gi].Entries, id); e != nil {
			return e, true
		}
	}
	return nil, false
}

func findEntry(entries []Entry, id ID) *Entry {
	for i := range entries {
		e := &entries[i]
		if len(e.Children) > 0 {
			if found := findEntry(e.Children, id); found != nil {
				return found
			}
			continue
		}
		if e.Selectable() && e.ID == id {
			return e
		}
	}
	return nil
}

// Decode turns an encoded selection back into a typed action.
func (m *Menu) Decode(id ID) (Action, error) {
	e, ok := m.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	if e.Disabled {
		return nil, fmt.Errorf("%w: %s", ErrDisabled, e.Label)
	}

	switch id.Group() {
	case GroupWorkspace:
		switch id.Item() {
		case ItemDefaultSurface:
			return SelectDefaultSurface{Name: m.surfaces[id.Sub()]}, nil
		case ItemAbout:
			return About{}, nil
		case ItemQuit:
			return Quit{}, nil
		case ItemShell:
			return ToggleShell{}, nil
		}
	case GroupWindows:
		return ArrangeWindows{Strategy: tiling.Strategy(id.Item())}, nil
	case GroupPrefs:
		if id.Item() == ItemTheme {
			return SelectTheme{Theme: theme.Theme(id.Sub())}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
}

// SetShellEnabled toggles the "Open Shell" item.
func (m *Menu) SetShellEnabled(enabled bool) {
	if e, ok := m.Lookup(Encode(GroupWorkspace, ItemShell, 0)); ok {
		e.Disabled = !enabled
	}
}

// Check marks id as the checked member of its radio group, clearing the
// siblings named by its exclusion mask.
func (m *Menu) Check(id ID) error {
	for gi := range m.Groups {
		for ei := range m.Groups[gi].Entries {
			parent := &m.Groups[gi].Entries[ei]
			for ci := range parent.Children {
				if parent.Children[ci].ID != id {
					continue
				}
				mask := parent.Children[ci].Exclude
				for si := range parent.Children {
					if mask&(1<<uint(si)) != 0 {
						parent.Children[si].Checked = false
					}
				}
				parent.Children[ci].Checked = true
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownID, id)
}
