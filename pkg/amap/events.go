package amap

import (
	"reflect"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/go-drift/mapkit/pkg/errors"
)

// Events holds the map event handlers. Nil handlers are not attached.
//
// Each handler is attached to the native event named by stripping the "On"
// prefix and lower-casing the rest (OnMoveEnd listens to "moveend"), unless
// the rename table passed to [Bind] says otherwise.
type Events struct {
	OnClick        func(MapEvent)
	OnDoubleClick  func(MapEvent)
	OnContextMenu  func(MapEvent)
	OnMouseMove    func(MapEvent)
	OnMouseWheel   func(MapEvent)
	OnMouseOver    func(MapEvent)
	OnMouseOut     func(MapEvent)
	OnMouseUp      func(MapEvent)
	OnMouseDown    func(MapEvent)
	OnTouchStart   func(MapEvent)
	OnTouchMove    func(MapEvent)
	OnTouchEnd     func(MapEvent)
	OnComplete     func(MapEvent)
	OnMapMove      func(MapEvent)
	OnMoveStart    func(MapEvent)
	OnMoveEnd      func(MapEvent)
	OnZoomChange   func(MapEvent)
	OnZoomStart    func(MapEvent)
	OnZoomEnd      func(MapEvent)
	OnDragStart    func(MapEvent)
	OnDrag         func(MapEvent)
	OnDragEnd      func(MapEvent)
	OnResize       func(MapEvent)
	OnHotSpotClick func(MapEvent)
	OnHotSpotOver  func(MapEvent)
	OnHotSpotOut   func(MapEvent)
}

// handlerPrefix marks handler fields of [Events].
const handlerPrefix = "On"

// DefaultRenames maps handler names whose native event is not the plain
// lower-cased name.
var DefaultRenames = map[string]string{
	"OnDoubleClick": "dblclick",
	"OnContextMenu": "rightclick",
	"OnDrag":        "dragging",
}

// NativeEventName returns the native event for a handler name. A rename
// entry wins over the default transform.
func NativeEventName(handler string, renames map[string]string) string {
	if native, ok := renames[handler]; ok {
		return native
	}
	return strings.ToLower(strings.TrimPrefix(handler, handlerPrefix))
}

// EventTable maps handler names to their attached listeners.
type EventTable map[string]Listener

// Names returns the bound handler names in sorted order.
func (t EventTable) Names() []string {
	names := lo.Keys(t)
	slices.Sort(names)
	return names
}

type handlerProp struct {
	name    string
	handler func(MapEvent)
}

var eventsType = reflect.TypeFor[Events]()

// handlerProps returns the non-nil handlers in field order.
func handlerProps(events Events) []handlerProp {
	value := reflect.ValueOf(events)
	var props []handlerProp
	for i := range eventsType.NumField() {
		field := eventsType.Field(i)
		if !strings.HasPrefix(field.Name, handlerPrefix) {
			continue
		}
		handler, ok := value.Field(i).Interface().(func(MapEvent))
		if !ok || handler == nil {
			continue
		}
		props = append(props, handlerProp{name: field.Name, handler: handler})
	}
	return props
}

// EventBinder attaches and detaches event handlers on a map.
type EventBinder interface {
	Bind(handle MapHandle, events Events, renames map[string]string) EventTable
	Unbind(table EventTable) EventTable
}

type defaultBinder struct{}

func (defaultBinder) Bind(handle MapHandle, events Events, renames map[string]string) EventTable {
	return Bind(handle, events, renames)
}

func (defaultBinder) Unbind(table EventTable) EventTable {
	return Unbind(table)
}

// DefaultBinder binds with [Bind] and [Unbind].
var DefaultBinder EventBinder = defaultBinder{}

// Bind attaches one listener per non-nil handler in events. Handlers that
// fail to attach are reported and left out of the table.
func Bind(handle MapHandle, events Events, renames map[string]string) EventTable {
	table := make(EventTable)
	if handle == nil {
		return table
	}
	for _, prop := range handlerProps(events) {
		native := NativeEventName(prop.name, renames)
		listener, err := handle.On(native, prop.handler)
		if err != nil {
			errors.Report(&errors.Error{
				Op:   "amap.Bind " + prop.name,
				Kind: errors.KindPlatform,
				Err:  err,
			})
			continue
		}
		table[prop.name] = listener
	}
	return table
}

// Unbind detaches every listener in table and returns an empty table.
// Detach failures, including panics, are swallowed so teardown always
// completes.
func Unbind(table EventTable) EventTable {
	for _, name := range table.Names() {
		detachQuietly(table[name])
	}
	return EventTable{}
}

func detachQuietly(listener Listener) {
	defer errors.Swallow()
	_ = listener.Detach()
}
