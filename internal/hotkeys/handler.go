package hotkeys

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/workspace/internal/broker"
)

// Poster delivers hotkey presses to the session.
type Poster interface {
	Post(cmd broker.Command) bool
}

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	poster Poster
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend any, poster Poster) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("global hotkeys need an X11 backend")
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   xu.RootWin(),
		poster: poster,
	}, nil
}

// RegisterPopKey binds the key that brings the surface to the front. The
// press is posted as a hotkey message; the session ignores it while the
// broker is disabled.
func (h *Handler) RegisterPopKey(keySequence string) error {
	if err := h.RegisterFunc(keySequence, func() {
		if !h.poster.Post(broker.Hotkey) {
			log.Printf("Pop key %s dropped: session busy", keySequence)
		}
	}); err != nil {
		return fmt.Errorf("failed to register pop key %q: %w", keySequence, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Unregister releases every key grabbed on the root window.
func (h *Handler) Unregister() {
	keybind.Detach(h.xu, h.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, so a grab fires whatever locks are on.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
