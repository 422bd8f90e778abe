package amap

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/mapkit/pkg/errors"
	drifttest "github.com/go-drift/mapkit/pkg/testing"
)

// recorder collects side effects from fakes in the order they happen.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// since returns the calls recorded after the first n.
func (r *recorder) since(n int) []string {
	calls := r.list()[n:]
	if len(calls) == 0 {
		return nil
	}
	return calls
}

func (r *recorder) countPrefix(prefix string) int {
	n := 0
	for _, c := range r.list() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.list() {
		if c == call {
			n++
		}
	}
	return n
}

// gate blocks a fake until released. A nil gate never blocks.
type gate chan struct{}

func (g gate) wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeLoader struct {
	rec    *recorder
	gate   gate
	err    error
	engine *Engine

	mu   sync.Mutex
	opts []LoadOptions
}

func (l *fakeLoader) Load(ctx context.Context, opts LoadOptions) (*Engine, error) {
	l.rec.add("load")
	l.mu.Lock()
	l.opts = append(l.opts, opts)
	l.mu.Unlock()
	if err := l.gate.wait(ctx); err != nil {
		return nil, err
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.engine, nil
}

type fakeResolver struct {
	rec     *recorder
	places  map[Place]*LngLat
	gates   map[Place]gate
	failing map[Place]error
}

func (r *fakeResolver) Resolve(ctx context.Context, engine *Engine, center Center) (*LngLat, error) {
	r.rec.add("resolve %v", center)
	place, ok := center.(Place)
	if !ok {
		return ResolvePosition(ctx, engine, center)
	}
	if err := r.gates[place].wait(ctx); err != nil {
		return nil, err
	}
	if err := r.failing[place]; err != nil {
		return nil, err
	}
	return r.places[place], nil
}

type fakeFactory struct {
	rec  *recorder
	gate gate
	err  error

	mu    sync.Mutex
	opts  []MapOptions
	built []*fakeMap
}

func (f *fakeFactory) NewMap(ctx context.Context, engine *Engine, opts MapOptions) (MapHandle, error) {
	center := "default"
	if opts.Center != nil {
		center = opts.Center.String()
	}
	f.rec.add("construct center=%s zoom=%g", center, opts.Zoom)
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	if err := f.gate.wait(context.Background()); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	m := &fakeMap{rec: f.rec}
	f.mu.Lock()
	f.built = append(f.built, m)
	f.mu.Unlock()
	return m, nil
}

func (f *fakeFactory) last() *fakeMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.built) == 0 {
		return nil
	}
	return f.built[len(f.built)-1]
}

// fakeMap records every call made on it.
type fakeMap struct {
	rec       *recorder
	nextID    int64
	handlers  map[string]func(MapEvent)
	offErr    error
	offPanic  bool
	clearErr  error
	destroyed bool
}

func (m *fakeMap) SetZoom(zoom float64) error {
	m.rec.add("setZoom %g", zoom)
	return nil
}

func (m *fakeMap) SetCenter(center LngLat) error {
	m.rec.add("setCenter %s", center)
	return nil
}

func (m *fakeMap) On(event string, handler func(MapEvent)) (Listener, error) {
	m.rec.add("on %s", event)
	if m.handlers == nil {
		m.handlers = make(map[string]func(MapEvent))
	}
	m.handlers[event] = handler
	m.nextID++
	return NewListener(event, m.nextID, func() error {
		m.rec.add("off %s", event)
		if m.offPanic {
			panic("detach on destroyed map")
		}
		return m.offErr
	}), nil
}

func (m *fakeMap) emit(event string) {
	if handler := m.handlers[event]; handler != nil {
		handler(MapEvent{Type: event})
	}
}

func (m *fakeMap) ClearMap() error {
	m.rec.add("clearMap")
	return m.clearErr
}

func (m *fakeMap) ClearInfoWindow() error {
	m.rec.add("clearInfoWindow")
	return m.clearErr
}

func (m *fakeMap) OpenInfoWindow(opts InfoWindowOptions) error {
	m.rec.add("openInfoWindow %s %q", opts.Position, opts.Content)
	return nil
}

func (m *fakeMap) MoveInfoWindow(position LngLat) error {
	m.rec.add("moveInfoWindow %s", position)
	return nil
}

func (m *fakeMap) CloseInfoWindow() error {
	m.rec.add("closeInfoWindow")
	return nil
}

func (m *fakeMap) Destroy() error {
	if m.destroyed {
		return nil
	}
	m.destroyed = true
	m.rec.add("destroy")
	return nil
}

// recordingBinder records bind and unbind calls around the real binder.
type recordingBinder struct {
	rec *recorder
}

func (b recordingBinder) Bind(handle MapHandle, events Events, renames map[string]string) EventTable {
	b.rec.add("bind")
	return Bind(handle, events, renames)
}

func (b recordingBinder) Unbind(table EventTable) EventTable {
	b.rec.add("unbind %d", len(table))
	return Unbind(table)
}

// fakeEnv bundles fakes sharing one recorder.
type fakeEnv struct {
	rec      *recorder
	loader   *fakeLoader
	resolver *fakeResolver
	factory  *fakeFactory
	engine   *Engine
}

func newFakeEnv() *fakeEnv {
	rec := &recorder{}
	engine := &Engine{Key: "test-key", Version: "2.0", SessionID: "session"}
	return &fakeEnv{
		rec:    rec,
		engine: engine,
		loader: &fakeLoader{rec: rec, engine: engine},
		resolver: &fakeResolver{
			rec:     rec,
			places:  map[Place]*LngLat{},
			gates:   map[Place]gate{},
			failing: map[Place]error{},
		},
		factory: &fakeFactory{rec: rec},
	}
}

func (e *fakeEnv) deps() Deps {
	return Deps{
		Loader:   e.loader,
		Resolver: e.resolver,
		Factory:  e.factory,
		Binder:   recordingBinder{rec: e.rec},
	}
}

// errorRecorder is an errors.Handler that keeps reported errors.
type errorRecorder struct {
	errors.LogHandler
	mu       sync.Mutex
	reported []*errors.Error
}

func (h *errorRecorder) HandleError(err *errors.Error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reported = append(h.reported, err)
}

func (h *errorRecorder) kinds() []errors.ErrorKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]errors.ErrorKind, len(h.reported))
	for i, err := range h.reported {
		kinds[i] = err.Kind
	}
	return kinds
}

func captureErrors(t *testing.T) *errorRecorder {
	t.Helper()
	h := &errorRecorder{}
	prev := errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return h
}

const pumpTimeout = 2 * time.Second

func pumpUntil(t *testing.T, tester *drifttest.WidgetTester, cond func() bool) {
	t.Helper()
	if err := tester.PumpUntil(cond, pumpTimeout); err != nil {
		t.Fatal(err)
	}
}

func settle(t *testing.T, tester *drifttest.WidgetTester) {
	t.Helper()
	if err := tester.PumpAndSettle(pumpTimeout); err != nil {
		t.Fatal(err)
	}
}
