package platform

import (
	"sync"
)

// noopBridge is a NativeBridge that accepts all calls without side effects.
type noopBridge struct{}

func (noopBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return DefaultCodec.Encode(nil)
}
func (noopBridge) StartEventStream(string) error { return nil }
func (noopBridge) StopEventStream(string) error  { return nil }

// SetupTestBridge installs a no-op native bridge and synchronous dispatch
// function for testing. The cleanup function should be testing.T.Cleanup or
// equivalent; it registers a teardown that calls ResetForTest.
//
// Dispatched callbacks run on the dispatching goroutine. Tests of code that
// dispatches from worker goroutines should register a WidgetTester after
// calling SetupTestBridge.
//
//	platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) {
	SetNativeBridge(noopBridge{})
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
}

// RecordedCall is a native method call captured by a RecordingBridge.
type RecordedCall struct {
	Channel string
	Method  string
	Args    map[string]any
}

// RecordingBridge is a NativeBridge for tests that records every call and
// answers with a scripted responder.
//
//	bridge := platform.NewRecordingBridge(func(call platform.RecordedCall) (any, error) {
//	    if call.Method == "load" {
//	        return map[string]any{"version": "2.0.5"}, nil
//	    }
//	    return nil, nil
//	})
//	platform.SetNativeBridge(bridge)
type RecordingBridge struct {
	mu      sync.Mutex
	calls   []RecordedCall
	respond func(RecordedCall) (any, error)
}

// NewRecordingBridge creates a RecordingBridge. A nil respond answers every
// call with nil.
func NewRecordingBridge(respond func(RecordedCall) (any, error)) *RecordingBridge {
	return &RecordingBridge{respond: respond}
}

// InvokeMethod records the call and returns the responder's encoded result.
func (b *RecordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	call := RecordedCall{Channel: channel, Method: method, Args: parseMap(decoded)}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	respond := b.respond
	b.mu.Unlock()

	var result any
	if respond != nil {
		result, err = respond(call)
		if err != nil {
			return nil, err
		}
	}
	return DefaultCodec.Encode(result)
}

func (b *RecordingBridge) StartEventStream(string) error { return nil }
func (b *RecordingBridge) StopEventStream(string) error  { return nil }

// Calls returns a copy of the recorded calls.
func (b *RecordingBridge) Calls() []RecordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	calls := make([]RecordedCall, len(b.calls))
	copy(calls, b.calls)
	return calls
}

// Methods returns the recorded method names, using the view method name for
// invokeViewMethod calls.
func (b *RecordingBridge) Methods() []string {
	var methods []string
	for _, call := range b.Calls() {
		if call.Method == "invokeViewMethod" {
			methods = append(methods, parseString(call.Args["method"]))
			continue
		}
		methods = append(methods, call.Method)
	}
	return methods
}
