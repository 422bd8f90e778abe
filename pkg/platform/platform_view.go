package platform

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/go-drift/mapkit/pkg/errors"
)

// platformViewsChannel carries both view management calls (Go -> native) and
// per-view events (native -> Go).
const platformViewsChannel = "drift/platform_views"

// PlatformView represents a native view embedded in the widget tree.
type PlatformView interface {
	// ViewID returns the unique identifier for this view.
	ViewID() int64

	// ViewType returns the type identifier for this view (e.g., "amap_view").
	ViewType() string

	// Dispose releases Go-side resources held by the view.
	Dispose()
}

// ViewEventHandler is implemented by platform views that receive events from
// their native counterpart. Events are delivered on the UI thread.
type ViewEventHandler interface {
	HandleViewEvent(method string, args map[string]any)
}

// PlatformViewFactory creates platform views of a specific type.
type PlatformViewFactory interface {
	// Create creates a new platform view instance.
	Create(viewID int64, params map[string]any) (PlatformView, error)

	// ViewType returns the view type this factory creates.
	ViewType() string
}

// PlatformViewRegistry manages platform view types and instances.
type PlatformViewRegistry struct {
	factories map[string]PlatformViewFactory
	views     map[int64]PlatformView
	nextID    atomic.Int64
	mu        sync.RWMutex
	channel   *MethodChannel
	events    *EventChannel
}

var (
	platformViewRegistry *PlatformViewRegistry
	platformViewOnce     sync.Once
)

// GetPlatformViewRegistry returns the global platform view registry.
func GetPlatformViewRegistry() *PlatformViewRegistry {
	platformViewOnce.Do(func() {
		platformViewRegistry = newPlatformViewRegistry()
	})
	return platformViewRegistry
}

func newPlatformViewRegistry() *PlatformViewRegistry {
	r := &PlatformViewRegistry{
		factories: make(map[string]PlatformViewFactory),
		views:     make(map[int64]PlatformView),
		channel:   NewMethodChannel(platformViewsChannel),
		events:    NewEventChannel(platformViewsChannel),
	}
	r.channel.SetHandler(r.handleMethodCall)
	r.listen()
	return r
}

func (r *PlatformViewRegistry) listen() {
	r.events.Listen(EventHandler{
		OnEvent: r.handleEvent,
		OnError: func(err error) {
			errors.Report(&errors.Error{
				Op:      "platform.PlatformViewRegistry.events",
				Kind:    errors.KindPlatform,
				Channel: platformViewsChannel,
				Err:     err,
			})
		},
	})
}

// RegisterFactory registers a factory for a platform view type.
func (r *PlatformViewRegistry) RegisterFactory(factory PlatformViewFactory) {
	r.mu.Lock()
	r.factories[factory.ViewType()] = factory
	r.mu.Unlock()
}

// Create creates a new platform view of the given type and asks native to
// create its counterpart.
func (r *PlatformViewRegistry) Create(viewType string, params map[string]any) (PlatformView, error) {
	r.mu.RLock()
	factory, ok := r.factories[viewType]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrViewTypeNotFound
	}

	viewID := r.nextID.Add(1)

	view, err := factory.Create(viewID, params)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.views[viewID] = view
	r.mu.Unlock()

	_, err = r.channel.Invoke("create", map[string]any{
		"viewId":   viewID,
		"viewType": viewType,
		"params":   params,
	})
	if err != nil {
		r.mu.Lock()
		delete(r.views, viewID)
		r.mu.Unlock()
		return nil, err
	}

	return view, nil
}

// Dispose destroys a platform view. Disposing an unknown or already disposed
// view is a no-op.
func (r *PlatformViewRegistry) Dispose(viewID int64) {
	r.mu.Lock()
	view, ok := r.views[viewID]
	if ok {
		delete(r.views, viewID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	view.Dispose()
	if _, err := r.channel.Invoke("dispose", map[string]any{"viewId": viewID}); err != nil {
		errors.Report(&errors.Error{
			Op:      "platform.PlatformViewRegistry.Dispose",
			Kind:    errors.KindTeardown,
			Channel: platformViewsChannel,
			ViewID:  viewID,
			Err:     err,
		})
	}
}

// GetView returns a platform view by ID, or nil.
func (r *PlatformViewRegistry) GetView(viewID int64) PlatformView {
	r.mu.RLock()
	view := r.views[viewID]
	r.mu.RUnlock()
	return view
}

// InvokeViewMethod invokes a method on a specific platform view.
// Returns ErrDisposed if the view is not live.
func (r *PlatformViewRegistry) InvokeViewMethod(viewID int64, method string, args map[string]any) (any, error) {
	if r.GetView(viewID) == nil {
		return nil, ErrDisposed
	}
	invokeArgs := make(map[string]any, len(args)+2)
	maps.Copy(invokeArgs, args)
	invokeArgs["viewId"] = viewID
	invokeArgs["method"] = method
	return r.channel.Invoke("invokeViewMethod", invokeArgs)
}

func (r *PlatformViewRegistry) handleMethodCall(method string, args any) (any, error) {
	switch method {
	case "onViewCreated", "onViewDisposed":
		return nil, nil
	default:
		return nil, ErrMethodNotFound
	}
}

// handleEvent routes a native view event to its view on the UI thread.
func (r *PlatformViewRegistry) handleEvent(data any) {
	m := parseMap(data)
	if m == nil {
		errors.Report(&errors.Error{
			Op:      "platform.PlatformViewRegistry.handleEvent",
			Kind:    errors.KindParsing,
			Channel: platformViewsChannel,
			Err:     &errors.ParseError{Channel: platformViewsChannel, DataType: "map", Got: data},
		})
		return
	}
	viewID, ok := toInt64(m["viewId"])
	if !ok {
		errors.Report(&errors.Error{
			Op:      "platform.PlatformViewRegistry.handleEvent",
			Kind:    errors.KindParsing,
			Channel: platformViewsChannel,
			Err:     fmt.Errorf("event without viewId: %v", m["method"]),
		})
		return
	}
	method := parseString(m["method"])

	deliver := func() {
		// Look the view up on the UI thread so events for views disposed
		// in the meantime are dropped.
		handler, ok := r.GetView(viewID).(ViewEventHandler)
		if !ok {
			return
		}
		defer errors.Recover("platform.PlatformViewRegistry.handleEvent")
		handler.HandleViewEvent(method, m)
	}
	if !Dispatch(deliver) {
		deliver()
	}
}
