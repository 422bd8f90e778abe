package core

import "reflect"

// Widget describes part of the UI. Widgets are immutable configuration.
type Widget interface {
	CreateElement() Element
	Key() any
}

// StatelessWidget builds its subtree purely from its own fields.
type StatelessWidget interface {
	Widget
	Build(ctx BuildContext) Widget
}

// StatefulWidget creates a State that persists across rebuilds.
type StatefulWidget interface {
	Widget
	CreateState() State
}

// State holds mutable data for a StatefulWidget.
type State interface {
	InitState()
	Build(ctx BuildContext) Widget
	DidUpdateWidget(oldWidget StatefulWidget)
	DidChangeDependencies()
	Dispose()
}

// InheritedWidget exposes data to every descendant that depends on it.
type InheritedWidget interface {
	Widget
	ChildWidget() Widget
	// UpdateShouldNotify reports whether dependents must rebuild when this
	// widget replaces oldWidget.
	UpdateShouldNotify(oldWidget InheritedWidget) bool
}

// BuildContext is the handle a widget receives while building.
type BuildContext interface {
	Widget() Widget
	FindAncestor(predicate func(Element) bool) Element
	// DependOnInherited returns the nearest ancestor inherited widget of the
	// given type, registering the caller for rebuilds, or nil.
	DependOnInherited(inheritedType reflect.Type) any
}

// Element is a widget instantiated at a location in the tree.
type Element interface {
	BuildContext
	Mount(parent Element, slot any)
	Update(newWidget Widget)
	Unmount()
	RebuildIfNeeded()
	MarkNeedsBuild()
	VisitChildren(visitor func(Element) bool)
	Depth() int
}

// Disposable is implemented by controllers that release resources.
type Disposable interface {
	Dispose()
}
