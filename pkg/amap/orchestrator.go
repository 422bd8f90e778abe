package amap

import (
	"context"
	"slices"

	"github.com/go-drift/mapkit/pkg/errors"
	"github.com/go-drift/mapkit/pkg/platform"
)

// LifecycleState is the stage of a map instance.
type LifecycleState int

const (
	Unmounted LifecycleState = iota
	Loading
	Ready
	Unmounting
	Destroyed
)

func (s LifecycleState) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Unmounting:
		return "unmounting"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Props are the inputs of one map instance.
type Props struct {
	Center  Center
	Zoom    float64
	Key     string
	Version string
	Plugins []string
	Style   string
	Width   float64
	Height  float64
	Events  Events
}

// loadOptions always requests the geocoder: a coordinate center may later
// be replaced by a place name.
func (p Props) loadOptions() LoadOptions {
	plugins := append([]string(nil), p.Plugins...)
	if !slices.Contains(plugins, GeocoderPlugin) {
		plugins = append(plugins, GeocoderPlugin)
	}
	return LoadOptions{Key: p.Key, Version: p.Version, Plugins: plugins}
}

// Deps are the collaborators of an [Orchestrator]. Zero fields fall back to
// the package defaults.
type Deps struct {
	Loader   EngineLoader
	Resolver Resolver
	Factory  MapFactory
	Binder   EventBinder
	Renames  map[string]string
	// Dispatch posts a callback to the UI thread and reports whether it was
	// scheduled. It must not run the callback on the calling goroutine.
	// Defaults to platform.Dispatch.
	Dispatch func(func()) bool
}

func (d Deps) withDefaults() Deps {
	if d.Loader == nil {
		d.Loader = DefaultLoader
	}
	if d.Resolver == nil {
		d.Resolver = DefaultResolver
	}
	if d.Factory == nil {
		d.Factory = DefaultFactory
	}
	if d.Binder == nil {
		d.Binder = DefaultBinder
	}
	if d.Renames == nil {
		d.Renames = DefaultRenames
	}
	if d.Dispatch == nil {
		d.Dispatch = platform.Dispatch
	}
	return d
}

// Orchestrator drives one map instance through load, resolve, construct,
// bind and publish, routes prop updates to the live map, and tears it all
// down on unmount.
//
// All methods must be called on the UI thread. Blocking steps run on worker
// goroutines and resume through Deps.Dispatch; each continuation carries the
// generation it was started in and is dropped if the generation has moved
// on, so nothing happens to an instance after Unmount. Workers never touch
// the orchestrator's state: when no dispatcher accepts a continuation, the
// step is dropped and reported as [ErrNoDispatcher].
type Orchestrator struct {
	// OnReady is called once the map is constructed and its handlers bound.
	OnReady func(engine *Engine, handle MapHandle)
	// OnTeardown is called when a published map is withdrawn.
	OnTeardown func()

	deps       Deps
	state      LifecycleState
	generation uint64
	props      Props
	ctx        context.Context
	cancel     context.CancelFunc
	engine     *Engine
	handle     MapHandle
	events     EventTable
}

// NewOrchestrator creates an orchestrator in the Unmounted state.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps.withDefaults()}
}

// State returns the lifecycle state.
func (o *Orchestrator) State() LifecycleState {
	return o.state
}

// Engine returns the loaded engine, or nil before it has loaded.
func (o *Orchestrator) Engine() *Engine {
	return o.engine
}

// Map returns the live map handle. It is non-nil only while Ready.
func (o *Orchestrator) Map() MapHandle {
	return o.handle
}

// Events returns the currently bound event table.
func (o *Orchestrator) Events() EventTable {
	return o.events
}

// Props returns the most recently supplied props.
func (o *Orchestrator) Props() Props {
	return o.props
}

// post runs fn on the UI thread if gen is still current.
func (o *Orchestrator) post(ctx context.Context, gen uint64, fn func()) {
	o.postOr(ctx, gen, fn, nil)
}

// postOr runs fn on the UI thread if gen is still current, and stale
// otherwise. It is called from workers, so it reads only immutable fields
// until the continuation is on the UI thread. A continuation no dispatcher
// accepts is dropped: stale runs on the worker and the failure is reported
// unless the instance was unmounted.
func (o *Orchestrator) postOr(ctx context.Context, gen uint64, fn, stale func()) {
	run := func() {
		if o.generation != gen {
			if stale != nil {
				stale()
			}
			return
		}
		fn()
	}
	if o.deps.Dispatch(run) {
		return
	}
	if stale != nil {
		stale()
	}
	if ctx.Err() == nil {
		errors.Report(&errors.Error{
			Op:   "amap.Orchestrator.dispatch",
			Kind: errors.KindInit,
			Err:  ErrNoDispatcher,
		})
	}
}

// Mount starts the bootstrap: load the engine, resolve the center, construct
// the map, bind handlers, publish. Mount on a mounted instance is a no-op.
func (o *Orchestrator) Mount(props Props) {
	if o.state != Unmounted {
		return
	}
	o.props = props
	o.state = Loading
	o.ctx, o.cancel = context.WithCancel(context.Background())

	gen := o.generation
	ctx := o.ctx
	opts := props.loadOptions()
	go func() {
		engine, err := o.deps.Loader.Load(ctx, opts)
		o.post(ctx, gen, func() {
			o.engineLoaded(gen, props, engine, err)
		})
	}()
}

func (o *Orchestrator) engineLoaded(gen uint64, props Props, engine *Engine, err error) {
	if err != nil {
		o.fail("amap.Orchestrator.load", err)
		return
	}
	o.engine = engine

	ctx := o.ctx
	go func() {
		position, err := o.deps.Resolver.Resolve(ctx, engine, props.Center)
		o.post(ctx, gen, func() {
			o.centerResolved(gen, props, position, err)
		})
	}()
}

func (o *Orchestrator) centerResolved(gen uint64, props Props, position *LngLat, err error) {
	if err != nil {
		o.fail("amap.Orchestrator.resolve", err)
		return
	}

	ctx := o.ctx
	engine := o.engine
	opts := MapOptions{
		Center: position,
		Zoom:   props.Zoom,
		Style:  props.Style,
		Width:  props.Width,
		Height: props.Height,
	}
	go func() {
		handle, err := o.deps.Factory.NewMap(ctx, engine, opts)
		o.postOr(ctx, gen, func() {
			o.mapConstructed(props, handle, err)
		}, func() {
			// Torn down while the map was being built, or never resumed.
			if handle != nil {
				destroyQuietly(handle)
			}
		})
	}()
}

func (o *Orchestrator) mapConstructed(props Props, handle MapHandle, err error) {
	if err != nil {
		o.fail("amap.Orchestrator.construct", err)
		return
	}
	o.handle = handle
	o.events = o.deps.Binder.Bind(handle, props.Events, o.deps.Renames)
	o.state = Ready
	// Catch up with updates recorded while loading.
	o.apply(props, o.props)
	if o.OnReady != nil {
		o.OnReady(o.engine, handle)
	}
}

// fail reports a bootstrap failure. The instance stays in Loading.
func (o *Orchestrator) fail(op string, err error) {
	errors.Report(&errors.Error{
		Op:   op,
		Kind: errors.KindInit,
		Err:  err,
	})
}

// Update records new props. While Ready, a zoom change is applied at once,
// a coordinate center is applied at once, and a place center is geocoded
// and applied when it resolves to a match. Updates made while loading are
// applied once the map is ready. Handler changes are not rebound.
func (o *Orchestrator) Update(props Props) {
	prev := o.props
	o.props = props
	if o.state != Ready {
		return
	}
	o.apply(prev, props)
}

// apply routes the zoom and center differences between prev and next to
// the live map.
func (o *Orchestrator) apply(prev, next Props) {
	if next.Zoom != prev.Zoom {
		report("amap.Orchestrator.setZoom", o.handle.SetZoom(next.Zoom))
	}
	if sameCenter(next.Center, prev.Center) {
		return
	}
	switch center := normalizeCenter(next.Center).(type) {
	case LngLat:
		report("amap.Orchestrator.setCenter", o.handle.SetCenter(center))
	case Place:
		gen := o.generation
		ctx := o.ctx
		engine := o.engine
		go func() {
			position, err := o.deps.Resolver.Resolve(ctx, engine, center)
			o.post(ctx, gen, func() {
				if err != nil {
					errors.Report(&errors.Error{
						Op:   "amap.Orchestrator.resolve",
						Kind: errors.KindGeocode,
						Err:  err,
					})
					return
				}
				if position != nil {
					report("amap.Orchestrator.setCenter", o.handle.SetCenter(*position))
				}
			})
		}()
	}
}

// Unmount detaches handlers, clears overlays and destroys the map, whatever
// stage the bootstrap reached. Pending continuations become no-ops. Calling
// Unmount again is a no-op.
func (o *Orchestrator) Unmount() {
	switch o.state {
	case Unmounting, Destroyed:
		return
	case Unmounted:
		o.events = o.deps.Binder.Unbind(o.events)
		o.state = Destroyed
		return
	}

	published := o.state == Ready
	o.state = Unmounting
	o.generation++
	if o.cancel != nil {
		o.cancel()
	}

	o.events = o.deps.Binder.Unbind(o.events)
	if o.handle != nil {
		handle := o.handle
		o.handle = nil
		swallow(handle.ClearMap)
		swallow(handle.ClearInfoWindow)
		destroyQuietly(handle)
	}
	if published && o.OnTeardown != nil {
		o.OnTeardown()
	}
	o.state = Destroyed
}

// Dispose unmounts the instance. It lets a State own the orchestrator
// through core.UseController.
func (o *Orchestrator) Dispose() {
	o.Unmount()
}

func swallow(fn func() error) {
	defer errors.Swallow()
	_ = fn()
}

func destroyQuietly(handle MapHandle) {
	swallow(handle.Destroy)
}
