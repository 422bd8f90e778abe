package core

import (
	"reflect"
	"testing"

	"github.com/go-drift/mapkit/pkg/errors"
)

// testStatelessWidget is a simple stateless widget for testing.
type testStatelessWidget struct {
	buildFn func(BuildContext) Widget
}

func (w testStatelessWidget) CreateElement() Element {
	return NewStatelessElement(w, nil)
}

func (w testStatelessWidget) Key() any {
	return nil
}

func (w testStatelessWidget) Build(ctx BuildContext) Widget {
	if w.buildFn != nil {
		return w.buildFn(ctx)
	}
	return nil
}

// testStatefulWidget is a simple stateful widget for testing.
type testStatefulWidget struct {
	key           any
	createStateFn func() State
}

func (w testStatefulWidget) CreateElement() Element {
	return NewStatefulElement(w, nil)
}

func (w testStatefulWidget) Key() any {
	return w.key
}

func (w testStatefulWidget) CreateState() State {
	if w.createStateFn != nil {
		return w.createStateFn()
	}
	return &testState{}
}

type testState struct {
	StateBase
	buildFn   func(BuildContext) Widget
	inits     int
	updates   int
	depChange int
	disposed  int
}

func (s *testState) InitState() { s.inits++ }

func (s *testState) DidUpdateWidget(StatefulWidget) { s.updates++ }

func (s *testState) DidChangeDependencies() { s.depChange++ }

func (s *testState) Dispose() {
	s.disposed++
	s.StateBase.Dispose()
}

func (s *testState) Build(ctx BuildContext) Widget {
	if s.buildFn != nil {
		return s.buildFn(ctx)
	}
	return nil
}

// testErrorHandler captures build errors for testing.
type testErrorHandler struct {
	errors.LogHandler
	buildErrors []*errors.BuildError
}

func (h *testErrorHandler) HandleBuildError(err *errors.BuildError) {
	h.buildErrors = append(h.buildErrors, err)
}

// testInherited exposes a value to descendants.
type testInherited struct {
	InheritedBase
	value int
	child Widget
}

func (w testInherited) ChildWidget() Widget { return w.child }

func (w testInherited) UpdateShouldNotify(old InheritedWidget) bool {
	return w.value != old.(testInherited).value
}

func TestStatelessElement_BuildPanic_ReportsError(t *testing.T) {
	handler := &testErrorHandler{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	widget := testStatelessWidget{
		buildFn: func(ctx BuildContext) Widget {
			panic("test panic in stateless build")
		},
	}

	owner := NewBuildOwner()
	element := NewStatelessElement(widget, owner)
	element.Mount(nil, nil)

	if len(handler.buildErrors) != 1 {
		t.Fatalf("expected 1 build error, got %d", len(handler.buildErrors))
	}
	err := handler.buildErrors[0]
	if err.Recovered != "test panic in stateless build" {
		t.Errorf("expected panic value 'test panic in stateless build', got %v", err.Recovered)
	}
	if err.Widget == "" {
		t.Error("expected Widget type to be set")
	}
	if err.StackTrace == "" {
		t.Error("expected StackTrace to be captured")
	}
}

func TestStatefulElement_Lifecycle(t *testing.T) {
	state := &testState{}
	owner := NewBuildOwner()
	widget := testStatefulWidget{createStateFn: func() State { return state }}

	root := MountRoot(widget, owner)
	if state.inits != 1 {
		t.Fatalf("expected InitState once, got %d", state.inits)
	}
	if state.Element() == nil {
		t.Fatal("expected SetElement to be called during mount")
	}

	root = UpdateRoot(root, testStatefulWidget{createStateFn: func() State { return &testState{} }}, owner)
	if state.updates != 1 {
		t.Errorf("expected DidUpdateWidget once, got %d", state.updates)
	}
	if state.inits != 1 {
		t.Errorf("expected state to be reused, got %d inits", state.inits)
	}

	UpdateRoot(root, nil, owner)
	if state.disposed != 1 {
		t.Errorf("expected Dispose once, got %d", state.disposed)
	}
	if !state.IsDisposed() {
		t.Error("expected StateBase to be disposed")
	}
}

func TestUpdateRoot_KeyChangeRemounts(t *testing.T) {
	var states []*testState
	create := func() State {
		s := &testState{}
		states = append(states, s)
		return s
	}
	owner := NewBuildOwner()
	root := MountRoot(testStatefulWidget{key: "a", createStateFn: create}, owner)
	UpdateRoot(root, testStatefulWidget{key: "b", createStateFn: create}, owner)

	if len(states) != 2 {
		t.Fatalf("expected a fresh state after key change, got %d states", len(states))
	}
	if states[0].disposed != 1 {
		t.Errorf("expected old state disposed, got %d", states[0].disposed)
	}
}

func TestSetState_SchedulesRebuild(t *testing.T) {
	builds := 0
	state := &testState{buildFn: func(BuildContext) Widget {
		builds++
		return nil
	}}
	owner := NewBuildOwner()
	MountRoot(testStatefulWidget{createStateFn: func() State { return state }}, owner)
	if builds != 1 {
		t.Fatalf("expected initial build, got %d", builds)
	}

	state.SetState(nil)
	if !owner.NeedsWork() {
		t.Fatal("expected SetState to schedule work")
	}
	owner.FlushBuild()
	if builds != 2 {
		t.Errorf("expected rebuild after flush, got %d builds", builds)
	}

	state.Dispose()
	state.SetState(func() { t.Error("SetState after dispose must not run fn") })
}

func TestFragment_MountsChildrenInOrder(t *testing.T) {
	var order []string
	leaf := func(name string) Widget {
		return testStatelessWidget{buildFn: func(BuildContext) Widget {
			order = append(order, name)
			return nil
		}}
	}
	owner := NewBuildOwner()
	root := MountRoot(Fragment{Children: []Widget{leaf("a"), nil, leaf("b")}}, owner)

	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Errorf("unexpected build order: %v", order)
	}
	count := 0
	root.VisitChildren(func(Element) bool {
		count++
		return true
	})
	if count != 2 {
		t.Errorf("expected 2 children, got %d", count)
	}
}

func TestInherited_NotifiesDependents(t *testing.T) {
	var seen []int
	state := &testState{}
	state.buildFn = func(ctx BuildContext) Widget {
		if w, ok := ctx.DependOnInherited(reflect.TypeOf(testInherited{})).(testInherited); ok {
			seen = append(seen, w.value)
		}
		return nil
	}
	child := testStatefulWidget{createStateFn: func() State { return state }}

	owner := NewBuildOwner()
	root := MountRoot(testInherited{value: 1, child: child}, owner)
	root = UpdateRoot(root, testInherited{value: 1, child: child}, owner)
	if state.depChange != 0 {
		t.Errorf("expected no dependency change for equal value, got %d", state.depChange)
	}

	UpdateRoot(root, testInherited{value: 2, child: child}, owner)
	owner.FlushBuild()
	if state.depChange != 1 {
		t.Errorf("expected one dependency change, got %d", state.depChange)
	}
	if seen[len(seen)-1] != 2 {
		t.Errorf("expected dependent to observe 2, got %v", seen)
	}
}

func TestDependOnInherited_Missing(t *testing.T) {
	var got any = "unset"
	widget := testStatelessWidget{buildFn: func(ctx BuildContext) Widget {
		got = ctx.DependOnInherited(reflect.TypeOf(testInherited{}))
		return nil
	}}
	MountRoot(widget, NewBuildOwner())
	if got != nil {
		t.Errorf("expected nil without ancestor, got %v", got)
	}
}
