package amap

import (
	"fmt"

	"github.com/go-drift/mapkit/pkg/platform"
)

// Center is where a map should be centered: a [Place] to geocode or a
// concrete [LngLat]. A nil Center leaves the engine's default center.
type Center interface {
	isCenter()
}

// Place is a symbolic center, such as a city name, resolved by the engine's
// geocoder.
type Place string

func (Place) isCenter() {}

// LngLat is a concrete coordinate.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

func (LngLat) isCenter() {}

func (p LngLat) String() string {
	return fmt.Sprintf("(%g, %g)", p.Lng, p.Lat)
}

func (p LngLat) toMap() map[string]any {
	return map[string]any{"lng": p.Lng, "lat": p.Lat}
}

// normalizeCenter replaces a *LngLat with its value so centers compare by
// position.
func normalizeCenter(c Center) Center {
	if p, ok := c.(*LngLat); ok {
		if p == nil {
			return nil
		}
		return *p
	}
	return c
}

func sameCenter(a, b Center) bool {
	return normalizeCenter(a) == normalizeCenter(b)
}

// Pixel is a screen position relative to the map view.
type Pixel struct {
	X float64
	Y float64
}

// GeocodeResult is one match returned by the engine geocoder.
type GeocodeResult struct {
	Position         LngLat
	FormattedAddress string
	Level            string
}

// MapEvent is a native map event delivered to a handler in [Events].
type MapEvent struct {
	// Type is the native event name, e.g. "click" or "dblclick".
	Type string
	// LngLat is the geographic position of the event, if any.
	LngLat *LngLat
	// Pixel is the screen position of the event, if any.
	Pixel *Pixel
	// Raw is the payload as received from native.
	Raw map[string]any
}

func parseMapEvent(args map[string]any) MapEvent {
	event := MapEvent{
		Type: platform.ParseString(args["type"]),
		Raw:  args,
	}
	lng, okLng := platform.ToFloat64(args["lng"])
	lat, okLat := platform.ToFloat64(args["lat"])
	if okLng && okLat {
		event.LngLat = &LngLat{Lng: lng, Lat: lat}
	}
	x, okX := platform.ToFloat64(args["x"])
	y, okY := platform.ToFloat64(args["y"])
	if okX && okY {
		event.Pixel = &Pixel{X: x, Y: y}
	}
	return event
}

func parseLngLat(v any) (LngLat, bool) {
	m := platform.ParseMap(v)
	if m == nil {
		return LngLat{}, false
	}
	lng, okLng := platform.ToFloat64(m["lng"])
	lat, okLat := platform.ToFloat64(m["lat"])
	if !okLng || !okLat {
		return LngLat{}, false
	}
	return LngLat{Lng: lng, Lat: lat}, true
}
