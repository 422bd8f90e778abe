package amap

import (
	"github.com/samber/lo"

	"github.com/go-drift/mapkit/pkg/core"
)

// Map embeds an AMap map. Children are built only once the map is ready,
// under a [MapScope] carrying the live map.
//
// MapKey, Version, Plugins and Style fall back to [DefaultConfig] when empty.
// After the map is ready, Zoom and Center changes are applied to the live
// map; changes to Events are not rebound.
type Map struct {
	core.StatefulBase

	Center  Center
	Zoom    float64
	MapKey  string
	Version string
	Plugins []string
	Width   float64
	Height  float64
	Style   string

	Events   Events
	Children []core.Widget

	// Loader, Resolver, Factory, Binder and Renames replace the package
	// defaults when set.
	Loader   EngineLoader
	Resolver Resolver
	Factory  MapFactory
	Binder   EventBinder
	Renames  map[string]string
}

func (m Map) CreateState() core.State { return &mapState{} }

func (m Map) props() Props {
	cfg := DefaultConfig()
	props := Props{
		Center:  m.Center,
		Zoom:    m.Zoom,
		Key:     lo.CoalesceOrEmpty(m.MapKey, cfg.Key),
		Version: lo.CoalesceOrEmpty(m.Version, cfg.Version, DefaultVersion),
		Plugins: m.Plugins,
		Style:   lo.CoalesceOrEmpty(m.Style, cfg.Style, DefaultStyle),
		Width:   m.Width,
		Height:  m.Height,
		Events:  m.Events,
	}
	if len(props.Plugins) == 0 {
		props.Plugins = cfg.Plugins
	}
	return props
}

func (m Map) deps() Deps {
	return Deps{
		Loader:   m.Loader,
		Resolver: m.Resolver,
		Factory:  m.Factory,
		Binder:   m.Binder,
		Renames:  m.Renames,
	}
}

type mapState struct {
	core.StateBase
	orchestrator *Orchestrator

	ready  bool
	engine *Engine
	handle MapHandle
}

func (s *mapState) widget() Map {
	return s.Element().Widget().(Map)
}

func (s *mapState) InitState() {
	w := s.widget()
	s.orchestrator = core.UseController(s, func() *Orchestrator {
		o := NewOrchestrator(w.deps())
		o.OnReady = func(engine *Engine, handle MapHandle) {
			s.SetState(func() {
				s.ready = true
				s.engine = engine
				s.handle = handle
			})
		}
		o.OnTeardown = func() {
			s.ready = false
			s.engine = nil
			s.handle = nil
		}
		return o
	})
	s.orchestrator.Mount(w.props())
}

func (s *mapState) DidUpdateWidget(core.StatefulWidget) {
	s.orchestrator.Update(s.widget().props())
}

func (s *mapState) Build(core.BuildContext) core.Widget {
	if !s.ready {
		return nil
	}
	return MapScope{
		Engine: s.engine,
		Map:    s.handle,
		Child:  core.Fragment{Children: singleInfoWindow(s.widget().Children)},
	}
}

// singleInfoWindow drops every InfoWindow but the last. In debug mode it
// warns when it had to drop any.
func singleInfoWindow(children []core.Widget) []core.Widget {
	_, last, found := lo.FindLastIndexOf(children, isInfoWindow)
	if !found {
		return children
	}
	if count := lo.CountBy(children, isInfoWindow); count > 1 && core.DebugMode() {
		log().Warn("amap: Map supports a single InfoWindow child; only the last is shown", "count", count)
	}
	return lo.Filter(children, func(child core.Widget, i int) bool {
		return !isInfoWindow(child) || i == last
	})
}

func isInfoWindow(w core.Widget) bool {
	_, ok := w.(InfoWindow)
	return ok
}
