package session

import (
	"context"
	"errors"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/workspace/internal/broker"
	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/platform"
	"github.com/1broseidon/workspace/internal/shell"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

var screen = tiling.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

type fakeWindow struct {
	id     platform.WindowID
	kind   platform.WindowKind
	events chan platform.Event
	once   sync.Once
}

func (w *fakeWindow) ID() platform.WindowID           { return w.id }
func (w *fakeWindow) Events() <-chan platform.Event { return w.events }

// destroy closes the event channel, as the display server does when the
// window goes away.
func (w *fakeWindow) destroy() {
	w.once.Do(func() { close(w.events) })
}

type fakeBackend struct {
	mu sync.Mutex

	host       string
	name       string
	palette    []theme.RGB
	visitors   map[string]int
	others     []string
	defaultSrf string
	openErr    error
	closeErrs  []error
	surfaceErr error

	nextID      platform.WindowID
	windows     []*fakeWindow
	closed      []platform.WindowID
	menus       map[platform.WindowID]*menu.Menu
	attachCount int
	titles      []string
	raises      int
	palettes    [][]theme.RGB
	backgrounds int
	cleared     int
	occupants   []tiling.Occupant
	moves       map[platform.WindowID]tiling.Rect
	surfaceOpen bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		host:     "Desktop 1",
		palette:  []theme.RGB{{R: 170, G: 170, B: 170}, {R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}, {R: 102, G: 136, B: 187}},
		visitors: make(map[string]int),
		menus:    make(map[platform.WindowID]*menu.Menu),
		moves:    make(map[platform.WindowID]tiling.Rect),
	}
}

func (b *fakeBackend) HostSurface() string { return b.host }

func (b *fakeBackend) OpenSurface(name string) (*platform.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.name = name
	b.surfaceOpen = true
	return &platform.Surface{Name: name, Bounds: screen, BarHeight: 20, Palette: append([]theme.RGB(nil), b.palette...)}, nil
}

func (b *fakeBackend) CloseSurface() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.closeErrs) > 0 {
		err := b.closeErrs[0]
		b.closeErrs = b.closeErrs[1:]
		if err != nil {
			return err
		}
	}
	b.surfaceOpen = false
	return nil
}

func (b *fakeBackend) Surfaces() ([]platform.SurfaceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surfaceErr != nil {
		return nil, b.surfaceErr
	}
	out := []platform.SurfaceInfo{{Name: b.host, Visitors: 3}}
	if b.surfaceOpen {
		out = append(out, platform.SurfaceInfo{Name: b.name, Visitors: b.visitors[b.name]})
	}
	for _, name := range b.others {
		out = append(out, platform.SurfaceInfo{Name: name, Visitors: b.visitors[name]})
	}
	return out, nil
}

func (b *fakeBackend) Raise() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raises++
	return nil
}

func (b *fakeBackend) DefaultSurface() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.defaultSrf, nil
}

func (b *fakeBackend) SetDefaultSurface(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultSrf = name
	return nil
}

func (b *fakeBackend) OpenWindow(spec platform.WindowSpec) (platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	w := &fakeWindow{id: 0x1000 + b.nextID, kind: spec.Kind, events: make(chan platform.Event)}
	b.windows = append(b.windows, w)
	return w, nil
}

func (b *fakeBackend) CloseWindow(w platform.Window) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, w.ID())
	delete(b.menus, w.ID())
	w.(*fakeWindow).destroy()
	return nil
}

func (b *fakeBackend) SetTitle(_ platform.Window, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.titles = append(b.titles, title)
	return nil
}

func (b *fakeBackend) AttachMenu(w platform.Window, m *menu.Menu) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.menus[w.ID()]; ok {
		return errors.New("menu already attached")
	}
	b.menus[w.ID()] = m
	b.attachCount++
	return nil
}

func (b *fakeBackend) DetachMenu(w platform.Window) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.menus, w.ID())
	return nil
}

func (b *fakeBackend) SetBackground(platform.Window, image.Image) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.backgrounds++
	return nil
}

func (b *fakeBackend) ClearBackground(platform.Window) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared++
	return nil
}

func (b *fakeBackend) Occupants() ([]tiling.Occupant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tiling.Occupant(nil), b.occupants...), nil
}

func (b *fakeBackend) MoveResize(id platform.WindowID, bounds tiling.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves[id] = bounds
	return nil
}

func (b *fakeBackend) Move(id platform.WindowID, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.moves[id]
	r.X, r.Y = x, y
	b.moves[id] = r
	return nil
}

func (b *fakeBackend) SetPalette(colors []theme.RGB) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.palettes = append(b.palettes, append([]theme.RGB(nil), colors...))
	return nil
}

func (b *fakeBackend) setSurfaceErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surfaceErr = err
}

func (b *fakeBackend) attaches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attachCount
}

func (b *fakeBackend) setVisitors(name string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visitors[name] = n
}

// window returns the most recent window of kind.
func (b *fakeBackend) window(kind platform.WindowKind) *fakeWindow {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.windows) - 1; i >= 0; i-- {
		if b.windows[i].kind == kind {
			return b.windows[i]
		}
	}
	return nil
}

func (b *fakeBackend) menuOf(w platform.Window) *menu.Menu {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.menus[w.ID()]
}

func (b *fakeBackend) wasClosed(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.closed {
		if c == id {
			return true
		}
	}
	return false
}

func (b *fakeBackend) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceOpen
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

type notice struct{ title, text string }

func (n *fakeNotifier) Notice(title, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{title, text})
	return nil
}

func (n *fakeNotifier) all() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

type fakeProcess struct{}

func (fakeProcess) Signal(os.Signal) error { return nil }

type fakeLauncher struct {
	mu   sync.Mutex
	argv [][]string
	err  error
}

func (l *fakeLauncher) Launch(_ context.Context, argv []string) (shell.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.argv = append(l.argv, argv)
	if l.err != nil {
		return nil, l.err
	}
	return fakeProcess{}, nil
}

// harness runs a session in the background.
type harness struct {
	t        *testing.T
	backend  *fakeBackend
	notifier *fakeNotifier
	launcher *fakeLauncher
	broker   *broker.Broker
	signals  chan os.Signal
	session  *Session
	done     chan struct{}
	err      error
	cancel   context.CancelFunc
}

type harnessOption func(*Deps, *Options)

func withoutBroker() harnessOption {
	return func(d *Deps, _ *Options) { d.Broker = nil }
}

func startHarness(t *testing.T, backend *fakeBackend, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		backend:  backend,
		notifier: &fakeNotifier{},
		launcher: &fakeLauncher{},
		broker:   broker.New("Workspace"),
		signals:  make(chan os.Signal, 1),
		done:     make(chan struct{}),
	}
	deps := Deps{
		Backend:  backend,
		Notifier: h.notifier,
		Launcher: h.launcher,
		Broker:   h.broker,
		Signals:  h.signals,
	}
	options := Options{Prefix: "Workspace", Name: "Workspace.1"}
	for _, o := range opts {
		o(&deps, &options)
	}
	if deps.Broker == nil {
		h.broker = nil
	}

	s, err := New(deps, options)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.session = s

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.err = s.Run(ctx)
		close(h.done)
	}()

	eventually(t, "backdrop window opened", func() bool {
		return backend.window(platform.KindBackdrop) != nil
	})

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(time.Second):
		}
	})
	return h
}

// send delivers a window event; the unbuffered channel returns once the
// loop has taken it.
func (h *harness) send(w *fakeWindow, ev platform.Event) {
	h.t.Helper()
	select {
	case w.events <- ev:
	case <-time.After(time.Second):
		h.t.Fatal("event loop did not take the window event")
	}
}

// pick sends ids as picked on the menu currently attached to the backdrop.
func (h *harness) pick(ids ...menu.ID) {
	h.t.Helper()
	w := h.backend.window(platform.KindBackdrop)
	var gen uint64
	if m := h.backend.menuOf(w); m != nil {
		gen = m.Generation
	}
	h.pickOn(gen, ids...)
}

func (h *harness) pickOn(gen uint64, ids ...menu.ID) {
	h.t.Helper()
	h.send(h.backend.window(platform.KindBackdrop), platform.Event{Kind: platform.EventMenuPick, Picks: ids, Generation: gen})
}

func (h *harness) request(cmd broker.Command, action menu.Action) broker.Reply {
	h.t.Helper()
	if h.broker == nil {
		h.t.Fatal("harness has no broker")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := h.broker.Send(ctx, cmd, action)
	if err != nil {
		h.t.Fatalf("Send(%v) error: %v", cmd, err)
	}
	return r
}

func (h *harness) status() Status {
	h.t.Helper()
	r := h.request(broker.Status, nil)
	if r.Err != nil {
		h.t.Fatalf("status error: %v", r.Err)
	}
	return r.Data.(Status)
}

func (h *harness) wait() error {
	h.t.Helper()
	select {
	case <-h.done:
		return h.err
	case <-time.After(2 * time.Second):
		h.t.Fatal("session did not stop")
		return nil
	}
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for: %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
