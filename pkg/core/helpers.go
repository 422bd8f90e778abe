package core

// StatelessBase provides default CreateElement and Key implementations for
// stateless widgets:
//
//	type Greeting struct {
//	    core.StatelessBase
//	    Name string
//	}
type StatelessBase struct{}

// CreateElement returns a new StatelessElement.
func (StatelessBase) CreateElement() Element { return NewStatelessElement(nil, nil) }

// Key returns nil (no key).
func (StatelessBase) Key() any { return nil }

// StatefulBase provides default CreateElement and Key implementations for
// stateful widgets:
//
//	type Counter struct {
//	    core.StatefulBase
//	}
//
//	func (Counter) CreateState() core.State { return &counterState{} }
type StatefulBase struct{}

// CreateElement returns a new StatefulElement.
func (StatefulBase) CreateElement() Element { return NewStatefulElement(nil, nil) }

// Key returns nil (no key).
func (StatefulBase) Key() any { return nil }

// InheritedBase provides default CreateElement and Key implementations for
// inherited widgets. Embed it along with a Child field and implement
// [InheritedWidget.UpdateShouldNotify] and [InheritedWidget.ChildWidget].
type InheritedBase struct{}

// CreateElement returns a new InheritedElement.
func (InheritedBase) CreateElement() Element { return NewInheritedElement() }

// Key returns nil (no key).
func (InheritedBase) Key() any { return nil }

// Fragment groups several widgets under one parent without adding anything
// of its own. Nil children are skipped.
type Fragment struct {
	Children []Widget
}

// CreateElement returns a new MultiChildElement.
func (Fragment) CreateElement() Element { return NewMultiChildElement() }

// Key returns nil (no key).
func (Fragment) Key() any { return nil }

// ChildWidgets returns the non-nil children.
func (f Fragment) ChildWidgets() []Widget {
	out := make([]Widget, 0, len(f.Children))
	for _, child := range f.Children {
		if child != nil {
			out = append(out, child)
		}
	}
	return out
}
