package amap

import (
	"github.com/go-drift/mapkit/pkg/core"
	"github.com/go-drift/mapkit/pkg/errors"
)

// InfoWindow shows the map's info window at Position while it is mounted.
// A map has one info window; when several InfoWindow children are given,
// [Map] keeps the last.
type InfoWindow struct {
	core.StatefulBase
	Position LngLat
	Content  string
}

func (w InfoWindow) CreateState() core.State { return &infoWindowState{} }

type infoWindowState struct {
	core.StateBase
	handle MapHandle
}

func (s *infoWindowState) widget() InfoWindow {
	return s.Element().Widget().(InfoWindow)
}

func (s *infoWindowState) InitState() {
	s.attach()
}

func (s *infoWindowState) DidChangeDependencies() {
	s.attach()
}

// attach opens the window on the scope's map if it differs from the one it
// is open on.
func (s *infoWindowState) attach() {
	scope, ok := MaybeMapOf(s.Element())
	if !ok || scope.Map == nil || scope.Map == s.handle {
		return
	}
	s.handle = scope.Map
	w := s.widget()
	report("amap.InfoWindow.open", s.handle.OpenInfoWindow(InfoWindowOptions{
		Position: w.Position,
		Content:  w.Content,
	}))
}

func (s *infoWindowState) DidUpdateWidget(oldWidget core.StatefulWidget) {
	if s.handle == nil {
		return
	}
	old := oldWidget.(InfoWindow)
	w := s.widget()
	switch {
	case old.Content != w.Content:
		report("amap.InfoWindow.open", s.handle.OpenInfoWindow(InfoWindowOptions{
			Position: w.Position,
			Content:  w.Content,
		}))
	case old.Position != w.Position:
		report("amap.InfoWindow.move", s.handle.MoveInfoWindow(w.Position))
	}
}

func (s *infoWindowState) Dispose() {
	if s.handle != nil {
		swallow(s.handle.CloseInfoWindow)
		s.handle = nil
	}
	s.StateBase.Dispose()
}

func (s *infoWindowState) Build(core.BuildContext) core.Widget {
	return nil
}

func report(op string, err error) {
	if err != nil {
		errors.Report(&errors.Error{
			Op:   op,
			Kind: errors.KindPlatform,
			Err:  err,
		})
	}
}
