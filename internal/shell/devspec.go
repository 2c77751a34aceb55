package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/tiling"
)

// DefaultTemplate embeds xterm into the band window.
const DefaultTemplate = "xterm -into {window}"

// startupCommand sources the startup script and then replaces itself with
// an interactive shell. The script path arrives as $1.
const startupCommand = `. "$1"; exec "${SHELL:-/bin/sh}" -i`

// DeviceSpec expands a console template into an argv that takes over the
// existing window instead of opening a new one. Placeholders:
//
//	{window}     decimal window id
//	{hexwindow}  0x-prefixed window id
//	{width}      band width
//	{height}     band height
//	{startup}    startup script path (empty when absent)
//
// A template that does not mention {startup} gets an `-e sh -c` suffix
// sourcing the script when one is given.
func DeviceSpec(template string, win platform.WindowID, band tiling.Rect, startup string) ([]string, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	if !strings.Contains(template, "{window}") && !strings.Contains(template, "{hexwindow}") {
		return nil, fmt.Errorf("shell template %q must reference {window} or {hexwindow}", template)
	}

	replacer := strings.NewReplacer(
		"{window}", strconv.FormatUint(uint64(win), 10),
		"{hexwindow}", fmt.Sprintf("0x%08x", uint32(win)),
		"{width}", strconv.Itoa(band.Width),
		"{height}", strconv.Itoa(band.Height),
		"{startup}", startup,
	)

	fields := strings.Fields(template)
	argv := make([]string, 0, len(fields)+5)
	for _, f := range fields {
		arg := replacer.Replace(f)
		if arg == "" {
			continue
		}
		argv = append(argv, arg)
	}

	if startup != "" && !strings.Contains(template, "{startup}") {
		argv = append(argv, "-e", "sh", "-c", startupCommand, "workspace-shell", startup)
	}
	return argv, nil
}
