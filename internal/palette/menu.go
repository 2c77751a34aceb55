package palette

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/workspace/internal/menu"
)

// Presenter shows a workspace menu one level at a time: every group with
// its entries first, then the children of a picked parent.
type Presenter struct {
	backend Backend
	prompt  string
}

// NewPresenter creates a presenter whose top level is titled prompt.
func NewPresenter(backend Backend, prompt string) *Presenter {
	return &Presenter{backend: backend, prompt: prompt}
}

// level is one screen of the menu. subs holds the children of each
// RowParent, indexed by Row.Child.
type level struct {
	prompt string
	rows   []Row
	subs   [][]menu.Entry
	titles []string
}

func (l *level) add(entries []menu.Entry) {
	for _, e := range entries {
		switch {
		case e.Separator:
			l.rows = append(l.rows, Row{Kind: RowSeparator})
		case len(e.Children) > 0:
			l.rows = append(l.rows, Row{Kind: RowParent, Label: e.Label, Child: len(l.subs)})
			l.subs = append(l.subs, e.Children)
			l.titles = append(l.titles, e.Label)
		default:
			l.rows = append(l.rows, Row{
				Kind:      RowEntry,
				Label:     e.Label,
				Key:       e.Key,
				ID:        e.ID,
				Checkable: e.Checkable,
				Checked:   e.Checked,
				Disabled:  e.Disabled,
			})
		}
	}
}

func topLevel(m *menu.Menu, prompt string) *level {
	l := &level{prompt: prompt}
	for _, g := range m.Groups {
		l.rows = append(l.rows, Row{Kind: RowTitle, Label: g.Title})
		l.add(g.Entries)
	}
	return l
}

func subLevel(title string, entries []menu.Entry) *level {
	l := &level{prompt: title, rows: []Row{{Kind: RowBack}}}
	l.add(entries)
	return l
}

// Present shows m and returns the picked id. A dismissed palette returns
// no ids and no error.
func (p *Presenter) Present(ctx context.Context, m *menu.Menu) ([]menu.ID, error) {
	if m == nil {
		return nil, fmt.Errorf("menu: nothing attached")
	}
	id, err := p.show(ctx, topLevel(m, p.prompt))
	if errors.Is(err, ErrCancelled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []menu.ID{id}, nil
}

func (p *Presenter) show(ctx context.Context, l *level) (menu.ID, error) {
	for {
		r, err := pick(ctx, p.backend, Screen{Prompt: l.prompt, Rows: l.rows})
		if err != nil {
			return 0, err
		}
		switch r.Kind {
		case RowEntry:
			return r.ID, nil
		case RowBack:
			return 0, ErrCancelled
		case RowParent:
			id, err := p.show(ctx, subLevel(l.titles[r.Child], l.subs[r.Child]))
			if errors.Is(err, ErrCancelled) {
				// Back to this level.
				continue
			}
			return id, err
		}
	}
}
