package hotkeys

import (
	"reflect"
	"testing"
)

func TestIgnoreMasks(t *testing.T) {
	const caps, num, scroll = 2, 16, 128

	tests := []struct {
		name              string
		caps, num, scroll uint16
		want              []uint16
	}{
		{"caps only", caps, 0, 0, []uint16{0, caps}},
		{"caps and num", caps, num, 0, []uint16{0, caps, num, caps | num}},
		// A lock key mapped onto an already-ignored modifier adds nothing.
		{"shared modifier", caps, caps, caps, []uint16{0, caps}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ignoreMasks(tt.caps, tt.num, tt.scroll); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ignoreMasks() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := ignoreMasks(caps, num, scroll); len(got) != 8 {
		t.Fatalf("three lock keys gave %d masks, want 8", len(got))
	}
}

func TestNewHandler_RequiresX11(t *testing.T) {
	if _, err := NewHandler(struct{}{}, nil); err == nil {
		t.Fatal("NewHandler() accepted a non-X11 backend")
	}
}
