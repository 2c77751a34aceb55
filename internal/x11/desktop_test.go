package x11

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWaitForDesktops_LateWindowManager(t *testing.T) {
	// The window manager applies the new count on the third read.
	reads := 0
	count := func() (int, error) {
		reads++
		if reads < 3 {
			return 3, nil
		}
		return 4, nil
	}
	if err := waitForDesktops(count, 4, time.Second, time.Millisecond); err != nil {
		t.Fatalf("waitForDesktops() error: %v", err)
	}
	if reads != 3 {
		t.Fatalf("reads = %d, want 3", reads)
	}
}

func TestWaitForDesktops_Timeout(t *testing.T) {
	count := func() (int, error) { return 3, nil }
	err := waitForDesktops(count, 4, 20*time.Millisecond, time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "have 3") {
		t.Fatalf("waitForDesktops() error = %v, want timeout with the last count", err)
	}

	readErr := errors.New("no property")
	failing := func() (int, error) { return 0, readErr }
	if err := waitForDesktops(failing, 1, 10*time.Millisecond, time.Millisecond); !errors.Is(err, readErr) {
		t.Fatalf("waitForDesktops() error = %v, want wrapped read error", err)
	}
}
