package amap

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/mapkit/pkg/errors"
)

func TestNativeEventName(t *testing.T) {
	tests := []struct {
		handler string
		want    string
	}{
		{"OnClick", "click"},
		{"OnDoubleClick", "dblclick"},
		{"OnContextMenu", "rightclick"},
		{"OnDrag", "dragging"},
		{"OnDragStart", "dragstart"},
		{"OnMoveEnd", "moveend"},
		{"OnHotSpotClick", "hotspotclick"},
		{"OnZoomChange", "zoomchange"},
	}
	for _, tt := range tests {
		if got := NativeEventName(tt.handler, DefaultRenames); got != tt.want {
			t.Errorf("NativeEventName(%q) = %q, want %q", tt.handler, got, tt.want)
		}
	}
}

func TestNativeEventName_OverrideWins(t *testing.T) {
	renames := map[string]string{"OnClick": "tap"}
	if got := NativeEventName("OnClick", renames); got != "tap" {
		t.Errorf("expected override, got %q", got)
	}
	if got := NativeEventName("OnDoubleClick", nil); got != "doubleclick" {
		t.Errorf("expected plain transform without renames, got %q", got)
	}
}

func TestBind_UsesRenameTable(t *testing.T) {
	rec := &recorder{}
	m := &fakeMap{rec: rec}
	noop := func(MapEvent) {}

	table := Bind(m, Events{OnDoubleClick: noop, OnContextMenu: noop, OnDrag: noop}, DefaultRenames)

	want := []string{"on dblclick", "on rightclick", "on dragging"}
	if diff := cmp.Diff(want, rec.list()); diff != "" {
		t.Errorf("attached events mismatch (-want +got):\n%s", diff)
	}
	for _, naive := range []string{"on doubleclick", "on contextmenu", "on drag"} {
		if rec.count(naive) != 0 {
			t.Errorf("handler attached to naive name %q", naive)
		}
	}
	if diff := cmp.Diff([]string{"OnContextMenu", "OnDoubleClick", "OnDrag"}, table.Names()); diff != "" {
		t.Errorf("table names mismatch (-want +got):\n%s", diff)
	}
	if table["OnDrag"].Event != "dragging" {
		t.Errorf("expected token for dragging, got %+v", table["OnDrag"])
	}
}

func TestBind_EveryHandler(t *testing.T) {
	rec := &recorder{}
	m := &fakeMap{rec: rec}

	// Fill every handler field.
	var events Events
	value := reflect.ValueOf(&events).Elem()
	for i := range value.NumField() {
		value.Field(i).Set(reflect.ValueOf(func(MapEvent) {}))
	}

	table := Bind(m, events, DefaultRenames)
	if len(table) != 26 {
		t.Errorf("expected 26 bound handlers, got %d", len(table))
	}
	if len(rec.list()) != 26 {
		t.Errorf("expected one listener per handler, got %d", len(rec.list()))
	}
}

type failingMap struct {
	fakeMap
}

func (m *failingMap) On(event string, handler func(MapEvent)) (Listener, error) {
	if event == "click" {
		return Listener{}, stderrors.New("unsupported event")
	}
	return m.fakeMap.On(event, handler)
}

func TestBind_AttachFailureReported(t *testing.T) {
	handler := captureErrors(t)
	m := &failingMap{fakeMap{rec: &recorder{}}}

	table := Bind(m, Events{OnClick: func(MapEvent) {}, OnResize: func(MapEvent) {}}, DefaultRenames)

	if diff := cmp.Diff([]string{"OnResize"}, table.Names()); diff != "" {
		t.Errorf("table names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]errors.ErrorKind{errors.KindPlatform}, handler.kinds()); diff != "" {
		t.Errorf("reported kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestBind_NilHandle(t *testing.T) {
	table := Bind(nil, Events{OnClick: func(MapEvent) {}}, DefaultRenames)
	if table == nil || len(table) != 0 {
		t.Errorf("expected empty table, got %v", table)
	}
}

func TestUnbind_Idempotent(t *testing.T) {
	rec := &recorder{}
	m := &fakeMap{rec: rec}
	table := Bind(m, Events{OnClick: func(MapEvent) {}}, DefaultRenames)

	table = Unbind(table)
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %v", table)
	}
	mark := len(rec.list())

	table = Unbind(table)
	if got := rec.since(mark); got != nil {
		t.Errorf("unbinding an empty table should do nothing, got %v", got)
	}
	if table == nil {
		t.Error("expected a non-nil empty table")
	}
	if got := Unbind(nil); got == nil || len(got) != 0 {
		t.Errorf("Unbind(nil) = %v, want empty table", got)
	}
}

func TestUnbind_SwallowsFailures(t *testing.T) {
	handler := captureErrors(t)
	calls := 0
	table := EventTable{
		"OnClick": NewListener("click", 1, func() error {
			calls++
			return stderrors.New("map disposed")
		}),
		"OnDrag": NewListener("dragging", 2, func() error {
			calls++
			panic("engine gone")
		}),
		"OnResize": NewListener("resize", 3, nil),
	}

	if got := Unbind(table); len(got) != 0 {
		t.Errorf("expected empty table, got %v", got)
	}
	if calls != 2 {
		t.Errorf("expected both detach functions to run, got %d", calls)
	}
	if len(handler.reported) != 0 {
		t.Errorf("detach failures must be swallowed, got %v", handler.kinds())
	}
}
