package amap

import (
	"reflect"

	"github.com/go-drift/mapkit/pkg/core"
)

// MapScope publishes a ready map to its descendants. [Map] inserts it only
// after the map is ready, so descendants never see a loading map.
type MapScope struct {
	core.InheritedBase
	Engine *Engine
	Map    MapHandle
	Child  core.Widget
}

func (s MapScope) ChildWidget() core.Widget { return s.Child }

func (s MapScope) UpdateShouldNotify(oldWidget core.InheritedWidget) bool {
	old, ok := oldWidget.(MapScope)
	return !ok || old.Engine != s.Engine || old.Map != s.Map
}

var mapScopeType = reflect.TypeFor[MapScope]()

// MaybeMapOf returns the nearest MapScope and registers ctx for rebuilds
// when it changes. ok is false outside a ready map.
func MaybeMapOf(ctx core.BuildContext) (scope MapScope, ok bool) {
	scope, ok = ctx.DependOnInherited(mapScopeType).(MapScope)
	return scope, ok
}

// MapOf returns the nearest MapScope. It panics outside a ready map; use
// MaybeMapOf in widgets that may be built elsewhere.
func MapOf(ctx core.BuildContext) MapScope {
	scope, ok := MaybeMapOf(ctx)
	if !ok {
		panic("amap.MapOf: no MapScope in context")
	}
	return scope
}
