package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

// actionItem implements list.Item for one workspace menu action.
type actionItem struct {
	title string
	desc  string
	// confirm asks before running.
	confirm bool
	run     func(Client) (string, error)
}

func (i actionItem) Title() string       { return i.title }
func (i actionItem) Description() string { return i.desc }
func (i actionItem) FilterValue() string { return i.title }

// buildActionItems mirrors the backdrop menu: workspace entries first,
// then the arrangements, then the themes.
func buildActionItems() []list.Item {
	items := []list.Item{
		actionItem{
			title: "Show Workspace",
			desc:  "bring the surface to the front",
			run: func(c Client) (string, error) {
				_, err := c.Appear()
				return "surface raised", err
			},
		},
		actionItem{
			title: "Toggle Shell",
			desc:  "open or close the console band",
			run: func(c Client) (string, error) {
				st, err := c.Shell()
				if err != nil {
					return "", err
				}
				return "shell: " + st.Shell, nil
			},
		},
		actionItem{
			title: "Enable Broker",
			desc:  "let the pop key raise the surface",
			run: func(c Client) (string, error) {
				_, err := c.Enable()
				return "broker enabled", err
			},
		},
		actionItem{
			title: "Disable Broker",
			desc:  "ignore the pop key",
			run: func(c Client) (string, error) {
				_, err := c.Disable()
				return "broker disabled", err
			},
		},
	}

	for _, s := range tiling.Strategies() {
		items = append(items, actionItem{
			title: "Arrange: " + s.String(),
			desc:  "lay out the windows on the surface",
			run: func(c Client) (string, error) {
				data, err := c.Arrange(s.String())
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("arranged %d windows (%s)", data.Arranged, s), nil
			},
		})
	}

	for _, t := range theme.All() {
		items = append(items, actionItem{
			title: "Theme: " + t.String(),
			desc:  "recolour the surface",
			run: func(c Client) (string, error) {
				_, err := c.Theme(t.String())
				return "theme: " + t.String(), err
			},
		})
	}

	items = append(items, actionItem{
		title:   "Close Workspace",
		desc:    "refused while windows are open",
		confirm: true,
		run: func(c Client) (string, error) {
			if _, err := c.Kill(); err != nil {
				return "", err
			}
			return "workspace closed", nil
		},
	})
	return items
}
