// Package amap embeds AMap maps in a drift-style widget tree.
//
// The [Map] widget loads the AMap engine through the "drift/amap" method
// channel, resolves its center (a [Place] name is geocoded, a [LngLat] is used
// as is), creates an "amap_view" platform view and attaches the handlers in
// [Events]. Once all of that has finished, the map's children are built under
// a [MapScope] so descendants such as [InfoWindow] can reach the live
// [MapHandle]:
//
//	amap.Map{
//	    Center: amap.Place("Hangzhou"),
//	    Zoom:   10,
//	    MapKey: apiKey,
//	    Events: amap.Events{
//	        OnClick: func(e amap.MapEvent) { slog.Info("click", "at", e.LngLat) },
//	    },
//	    Children: []core.Widget{
//	        amap.InfoWindow{Position: amap.LngLat{Lng: 120.15, Lat: 30.28}, Content: "Here"},
//	    },
//	}
//
// The asynchronous part of the lifecycle lives in [Orchestrator]. Blocking
// native calls run on goroutines and every continuation is posted back to the
// UI thread, where it is dropped if the widget was unmounted in the meantime.
package amap
