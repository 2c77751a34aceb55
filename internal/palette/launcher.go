package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without
// picking a row.
var ErrCancelled = errors.New("palette cancelled")

const (
	checkMark   = "✓ "
	uncheckMark = "   "
	separator   = "────────"
	disabledTag = " (unavailable)"
)

// launcher runs a dmenu-compatible program. args builds the command line
// for a rendered screen.
type launcher struct {
	command string
	caps    Capabilities
	args    func(s Screen, r rendered) []string
}

func launcherFor(name string) (*launcher, bool) {
	switch name {
	case "rofi":
		return &launcher{
			command: "rofi",
			caps:    Capabilities{Markup: true, NonSelectable: true, IndexOutput: true, MessageBar: true, RowStates: true},
			args:    rofiArgs,
		}, true
	case "fuzzel":
		return &launcher{
			command: "fuzzel",
			caps:    Capabilities{IndexOutput: true},
			args: func(s Screen, _ rendered) []string {
				return withPrompt([]string{"--dmenu", "--index"}, "--prompt", s.Prompt)
			},
		}, true
	case "wofi":
		return &launcher{
			command: "wofi",
			caps:    Capabilities{Markup: true},
			args: func(s Screen, _ rendered) []string {
				return withPrompt([]string{"--dmenu", "--allow-markup"}, "--prompt", s.Prompt)
			},
		}, true
	case "dmenu":
		return &launcher{
			command: "dmenu",
			args: func(s Screen, r rendered) []string {
				return withPrompt([]string{"-i", "-l", strconv.Itoa(len(r.lines))}, "-p", s.Prompt)
			},
		}, true
	}
	return nil, false
}

func withPrompt(args []string, flag, prompt string) []string {
	if prompt == "" {
		return args
	}
	return append(args, flag, prompt)
}

func rofiArgs(s Screen, r rendered) []string {
	// Picks are read back by index; labels may repeat or carry markup.
	args := withPrompt([]string{"-dmenu", "-i", "-no-custom", "-format", "i", "-markup-rows"}, "-p", s.Prompt)
	if len(r.active) > 0 {
		args = append(args, "-a", joinInts(r.active))
	}
	if len(r.urgent) > 0 {
		args = append(args, "-u", joinInts(r.urgent))
	}
	if r.selected >= 0 {
		args = append(args, "-selected-row", strconv.Itoa(r.selected))
	}
	if s.Message != "" {
		args = append(args, "-mesg", html.EscapeString(s.Message))
	}
	return args
}

func (l *launcher) Capabilities() Capabilities { return l.caps }

// Show runs the launcher on s and returns the picked row index.
func (l *launcher) Show(ctx context.Context, s Screen) (int, error) {
	if len(s.Rows) == 0 {
		return 0, fmt.Errorf("palette: no rows to show")
	}
	r := l.render(s)

	cmd := exec.CommandContext(ctx, l.command, l.args(s, r)...)
	cmd.Stdin = strings.NewReader(r.input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimRight(string(out), "\r\n")
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if selection == "" && isCancelExit(err) {
			return 0, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return 0, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if strings.TrimSpace(selection) == "" {
		return 0, ErrCancelled
	}
	return l.parse(selection, r)
}

// rendered is a screen formatted for one launcher. lines holds the
// visible text of each row, used to match launchers that print the pick.
type rendered struct {
	input    string
	lines    []string
	active   []int
	urgent   []int
	selected int
}

func (l *launcher) render(s Screen) rendered {
	r := rendered{lines: make([]string, len(s.Rows)), selected: -1}
	encoded := make([]string, len(s.Rows))
	seen := make(map[string]int)

	for i, row := range s.Rows {
		text := rowText(row, l.caps.Markup)
		// Text-matched launchers need every line distinct.
		if !l.caps.IndexOutput && row.Selectable() {
			key := text
			if n := seen[key]; n > 0 {
				text = fmt.Sprintf("%s (%d)", text, n+1)
			}
			seen[key]++
		}
		r.lines[i] = text
		encoded[i] = l.rofiAttrs(text, row)

		if !row.Selectable() {
			continue
		}
		if row.Checked {
			r.active = append(r.active, i)
			if r.selected < 0 || !s.Rows[r.selected].Checked {
				r.selected = i
			}
		}
		if s.Urgent {
			r.urgent = append(r.urgent, i)
		}
		if r.selected < 0 {
			r.selected = i
		}
	}
	if !l.caps.RowStates {
		r.active, r.urgent = nil, nil
	}
	r.input = strings.Join(encoded, "\n")
	return r
}

// rowText is the visible line for row. With markup, titles are bold and
// unavailable rows dim; without it they are tagged in plain text.
func rowText(row Row, markup bool) string {
	label := sanitizeLabel(row.Label)
	if markup {
		label = html.EscapeString(label)
	}

	switch row.Kind {
	case RowTitle:
		if markup {
			return "<b>" + label + "</b>"
		}
		return "[" + label + "]"
	case RowSeparator:
		return separator
	case RowBack:
		return "← Back"
	case RowParent:
		return label + " →"
	case RowText, RowAcknowledge:
		return label
	}

	if row.Checkable {
		if row.Checked {
			label = checkMark + label
		} else {
			label = uncheckMark + label
		}
	}
	if row.Key != "" {
		key := sanitizeLabel(row.Key)
		if markup {
			key = html.EscapeString(key)
		}
		label += "  [" + key + "]"
	}
	if row.Disabled {
		if markup {
			return "<span foreground='#666666'>" + label + "</span>"
		}
		return label + disabledTag
	}
	return label
}

// rofiAttrs appends rofi's row properties: a single NUL, then key/value
// pairs split by \x1f.
func (l *launcher) rofiAttrs(text string, row Row) string {
	if l.command != "rofi" {
		return text
	}
	var attrs []string
	if !row.Selectable() && l.caps.NonSelectable {
		attrs = append(attrs, "nonselectable", "true")
	}
	if row.Kind == RowEntry && row.Key != "" {
		attrs = append(attrs, "meta", sanitizeField(row.Key))
	}
	if len(attrs) == 0 {
		return text
	}
	return text + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parse(selection string, r rendered) (int, error) {
	if l.caps.IndexOutput {
		if i, err := strconv.Atoi(strings.TrimSpace(selection)); err == nil {
			if i < 0 || i >= len(r.lines) {
				return 0, fmt.Errorf("palette: index %d out of range", i)
			}
			return i, nil
		}
	}
	for i, line := range r.lines {
		if line == selection || strings.TrimSpace(line) == strings.TrimSpace(selection) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
