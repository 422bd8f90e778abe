package core

import (
	"reflect"
)

// InheritedElement hosts an [InheritedWidget] and tracks the descendants
// that depend on it.
//
// When a descendant calls [BuildContext.DependOnInherited] it registers as a
// dependent. When the widget is replaced and
// [InheritedWidget.UpdateShouldNotify] returns true, every dependent gets
// DidChangeDependencies and is scheduled for rebuild.
type InheritedElement struct {
	elementBase
	child      Element
	dependents map[Element]struct{}
}

// NewInheritedElement creates an InheritedElement.
// The widget and build owner are set by the framework during inflation.
func NewInheritedElement() *InheritedElement {
	element := &InheritedElement{
		dependents: make(map[Element]struct{}),
	}
	element.setSelf(element)
	return element
}

func (e *InheritedElement) Mount(parent Element, slot any) {
	e.mountBase(parent, slot)
	e.RebuildIfNeeded()
}

func (e *InheritedElement) Update(newWidget Widget) {
	oldWidget := e.widget.(InheritedWidget)
	e.widget = newWidget
	if newWidget.(InheritedWidget).UpdateShouldNotify(oldWidget) {
		for dependent := range e.dependents {
			notifyDependent(dependent)
		}
	}
	e.MarkNeedsBuild()
}

func (e *InheritedElement) Unmount() {
	e.mounted = false
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
	e.dependents = nil
}

func (e *InheritedElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	childWidget := e.widget.(InheritedWidget).ChildWidget()
	e.child = updateChild(e.child, childWidget, e, e.buildOwner)
}

func (e *InheritedElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

// AddDependent registers an element as depending on this inherited widget.
func (e *InheritedElement) AddDependent(dependent Element) {
	if e.dependents == nil {
		e.dependents = make(map[Element]struct{})
	}
	e.dependents[dependent] = struct{}{}
}

// RemoveDependent unregisters an element.
func (e *InheritedElement) RemoveDependent(dependent Element) {
	delete(e.dependents, dependent)
}

func notifyDependent(element Element) {
	if mountable, ok := element.(interface{ isMounted() bool }); ok && !mountable.isMounted() {
		return
	}
	if stateful, ok := element.(*StatefulElement); ok && stateful.state != nil {
		stateful.state.DidChangeDependencies()
	}
	element.MarkNeedsBuild()
}

// dependOnInherited walks up from start to the nearest InheritedElement whose
// widget has the requested type and registers dependent on it.
func dependOnInherited(dependent, start Element, inheritedType reflect.Type) any {
	current := start
	for current != nil {
		if inherited, ok := current.(*InheritedElement); ok {
			widgetType := reflect.TypeOf(inherited.widget)
			if widgetType == inheritedType || (widgetType.Kind() == reflect.Pointer && widgetType.Elem() == inheritedType) {
				if dependent != nil {
					inherited.AddDependent(dependent)
				}
				return inherited.widget
			}
		}
		base, ok := current.(interface{ parentElement() Element })
		if !ok {
			break
		}
		current = base.parentElement()
	}
	return nil
}
