// Package core provides the widget and element tree that mapkit widgets are
// built on.
//
// Widget is an immutable description of part of the UI. Element is the
// instantiation of a Widget at a location in the tree; it owns identity and
// lifecycle. Stateful widgets keep mutable data in a State whose lifecycle
// hooks mirror the element's:
//
//	InitState          the element was mounted
//	DidUpdateWidget    the parent rebuilt with a new configuration
//	Build              describe the subtree
//	Dispose            the element was unmounted
//
// Rendering and layout are left to the host; the tree here only tracks
// structure, rebuild scheduling and inherited-widget dependencies.
//
// # Stateful Widgets
//
// Embed StateBase in your state struct:
//
//	type counterState struct {
//	    core.StateBase
//	    count int
//	}
//
//	func (s *counterState) Build(ctx core.BuildContext) core.Widget {
//	    return label{Text: strconv.Itoa(s.count)}
//	}
//
// # Threading
//
// The tree is single threaded. Work that blocks (platform channel calls,
// network) runs on a goroutine and hops back with platform.Dispatch before
// touching state.
package core
