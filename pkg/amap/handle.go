package amap

import (
	"context"
	"sync"

	"github.com/go-drift/mapkit/pkg/platform"
)

// ViewType is the platform view type of a native AMap view.
const ViewType = "amap_view"

// MapOptions configures a new map instance.
type MapOptions struct {
	// Center is the initial center; nil keeps the engine default.
	Center *LngLat
	Zoom   float64
	Style  string
	Width  float64
	Height float64
}

// InfoWindowOptions describes the map's single info window.
type InfoWindowOptions struct {
	Position LngLat
	Content  string
}

// Listener is the token for one attached native event listener.
type Listener struct {
	Event string
	ID    int64

	detach func() error
}

// NewListener creates a listener token. detach is called by [Listener.Detach]
// and must be safe to call more than once.
func NewListener(event string, id int64, detach func() error) Listener {
	return Listener{Event: event, ID: id, detach: detach}
}

// Detach removes the listener from the map.
func (l Listener) Detach() error {
	if l.detach == nil {
		return nil
	}
	return l.detach()
}

// MapHandle is a live map instance. All methods must be called on the UI
// thread.
type MapHandle interface {
	SetZoom(zoom float64) error
	SetCenter(center LngLat) error
	// On attaches handler to the native event and returns its token.
	On(event string, handler func(MapEvent)) (Listener, error)
	// ClearMap removes every overlay from the map.
	ClearMap() error
	ClearInfoWindow() error
	OpenInfoWindow(opts InfoWindowOptions) error
	MoveInfoWindow(position LngLat) error
	CloseInfoWindow() error
	// Destroy releases the map. Calling it again is a no-op.
	Destroy() error
}

// MapFactory creates map instances for a loaded engine. NewMap is called
// from a worker goroutine.
type MapFactory interface {
	NewMap(ctx context.Context, engine *Engine, opts MapOptions) (MapHandle, error)
}

// ViewFactory creates maps backed by "amap_view" platform views.
type ViewFactory struct{}

// DefaultFactory is the factory used by [Map] when none is set.
var DefaultFactory MapFactory = ViewFactory{}

var registerViewOnce sync.Once

func viewRegistry() *platform.PlatformViewRegistry {
	registry := platform.GetPlatformViewRegistry()
	registerViewOnce.Do(func() {
		registry.RegisterFactory(mapViewFactory{})
	})
	return registry
}

// NewMap creates the platform view and its native map.
func (ViewFactory) NewMap(ctx context.Context, engine *Engine, opts MapOptions) (MapHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := map[string]any{
		"zoom":   opts.Zoom,
		"style":  opts.Style,
		"width":  opts.Width,
		"height": opts.Height,
	}
	if engine != nil {
		params["sessionId"] = engine.SessionID
	}
	if opts.Center != nil {
		params["center"] = opts.Center.toMap()
	}

	registry := viewRegistry()
	view, err := registry.Create(ViewType, params)
	if err != nil {
		return nil, err
	}
	return &NativeMap{view: view.(*mapView), registry: registry}, nil
}

// mapViewFactory registers with the platform view registry.
type mapViewFactory struct{}

func (mapViewFactory) ViewType() string { return ViewType }

func (mapViewFactory) Create(viewID int64, params map[string]any) (platform.PlatformView, error) {
	return &mapView{id: viewID, listeners: make(map[int64]func(MapEvent))}, nil
}

// mapView is the Go side of a native map view. It routes native map events
// to listeners by listener ID.
type mapView struct {
	id int64

	mu        sync.Mutex
	nextID    int64
	listeners map[int64]func(MapEvent)
}

func (v *mapView) ViewID() int64    { return v.id }
func (v *mapView) ViewType() string { return ViewType }

func (v *mapView) Dispose() {
	v.mu.Lock()
	clear(v.listeners)
	v.mu.Unlock()
}

func (v *mapView) addListener(handler func(MapEvent)) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	v.listeners[v.nextID] = handler
	return v.nextID
}

func (v *mapView) removeListener(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.listeners[id]; !ok {
		return false
	}
	delete(v.listeners, id)
	return true
}

// HandleViewEvent implements platform.ViewEventHandler.
func (v *mapView) HandleViewEvent(method string, args map[string]any) {
	if method != "onMapEvent" {
		return
	}
	id, ok := platform.ToInt64(args["listenerId"])
	if !ok {
		return
	}
	v.mu.Lock()
	handler := v.listeners[id]
	v.mu.Unlock()
	if handler != nil {
		handler(parseMapEvent(args))
	}
}

// NativeMap is a [MapHandle] backed by an "amap_view" platform view. Every
// call after Destroy fails with platform.ErrDisposed.
type NativeMap struct {
	view     *mapView
	registry *platform.PlatformViewRegistry
}

// ViewID returns the platform view ID.
func (m *NativeMap) ViewID() int64 {
	return m.view.id
}

func (m *NativeMap) invoke(method string, args map[string]any) error {
	_, err := m.registry.InvokeViewMethod(m.view.id, method, args)
	return err
}

func (m *NativeMap) SetZoom(zoom float64) error {
	return m.invoke("setZoom", map[string]any{"zoom": zoom})
}

func (m *NativeMap) SetCenter(center LngLat) error {
	return m.invoke("setCenter", center.toMap())
}

func (m *NativeMap) On(event string, handler func(MapEvent)) (Listener, error) {
	id := m.view.addListener(handler)
	if err := m.invoke("addListener", map[string]any{"listenerId": id, "event": event}); err != nil {
		m.view.removeListener(id)
		return Listener{}, err
	}
	return NewListener(event, id, func() error {
		return m.off(id, event)
	}), nil
}

func (m *NativeMap) off(id int64, event string) error {
	if !m.view.removeListener(id) {
		return nil
	}
	return m.invoke("removeListener", map[string]any{"listenerId": id, "event": event})
}

func (m *NativeMap) ClearMap() error {
	return m.invoke("clearMap", nil)
}

func (m *NativeMap) ClearInfoWindow() error {
	return m.invoke("clearInfoWindow", nil)
}

func (m *NativeMap) OpenInfoWindow(opts InfoWindowOptions) error {
	return m.invoke("openInfoWindow", map[string]any{
		"position": opts.Position.toMap(),
		"content":  opts.Content,
	})
}

func (m *NativeMap) MoveInfoWindow(position LngLat) error {
	return m.invoke("moveInfoWindow", map[string]any{"position": position.toMap()})
}

func (m *NativeMap) CloseInfoWindow() error {
	return m.invoke("closeInfoWindow", nil)
}

func (m *NativeMap) Destroy() error {
	m.registry.Dispose(m.view.id)
	return nil
}
