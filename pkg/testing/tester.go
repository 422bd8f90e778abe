package testing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/mapkit/pkg/core"
	"github.com/go-drift/mapkit/pkg/platform"
)

// settleWindow is how long PumpAndSettle waits for a late dispatch before
// treating the tree as idle.
const settleWindow = 25 * time.Millisecond

var (
	// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
	ErrSettleTimeout = errors.New("PumpAndSettle timed out: framework did not settle")
	// ErrPumpTimeout is returned when PumpUntil's condition never holds.
	ErrPumpTimeout = errors.New("PumpUntil timed out: condition not met")
)

// WidgetTester provides isolated widget testing without a native host.
// It drives the same dispatch and build phases as the engine on the test
// goroutine.
type WidgetTester struct {
	buildOwner *core.BuildOwner

	root core.Element

	mu         sync.Mutex
	dispatches []func()
	wake       chan struct{}
}

// NewWidgetTester creates a tester with default test environment.
// Call Cleanup() when done, or use NewWidgetTesterWithT() instead.
func NewWidgetTester() *WidgetTester {
	t := &WidgetTester{
		buildOwner: core.NewBuildOwner(),
		wake:       make(chan struct{}, 1),
	}
	// Register this tester's dispatch function with the platform package
	// so that platform.Dispatch works during tests
	platform.RegisterDispatch(t.Dispatch)
	return t
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree and unregisters the dispatch function. Must be
// called if not using NewWidgetTesterWithT.
func (t *WidgetTester) Cleanup() {
	t.Unmount()
	platform.RegisterDispatch(nil)
}

// PumpWidget mounts a widget, or updates the existing root in place when the
// widget type and key match, and runs one frame.
func (t *WidgetTester) PumpWidget(widget core.Widget) error {
	if t.root == nil {
		t.root = core.MountRoot(widget, t.buildOwner)
	} else {
		t.root = core.UpdateRoot(t.root, widget, t.buildOwner)
	}
	return t.Pump()
}

// Unmount tears down the mounted tree, then drains any callbacks the
// teardown queued.
func (t *WidgetTester) Unmount() {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
	t.drain()
}

// Pump runs a single frame cycle: dispatches, then build.
func (t *WidgetTester) Pump() error {
	t.drain()
	t.buildOwner.FlushBuild()
	return nil
}

func (t *WidgetTester) drain() {
	t.mu.Lock()
	dispatches := t.dispatches
	t.dispatches = nil
	t.mu.Unlock()

	for _, fn := range dispatches {
		fn()
	}
}

// PumpUntil pumps frames, waiting for dispatched callbacks between them,
// until cond returns true or the timeout elapses.
func (t *WidgetTester) PumpUntil(cond func() bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := t.Pump(); err != nil {
			return err
		}
		if cond() {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrPumpTimeout
		}
		select {
		case <-t.wake:
		case <-time.After(min(remaining, settleWindow)):
		}
	}
}

// PumpAndSettle runs frames until the framework is idle and no callback
// has been dispatched for a short window. Returns ErrSettleTimeout if the
// framework does not settle within timeout.
func (t *WidgetTester) PumpAndSettle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := t.Pump(); err != nil {
			return err
		}
		if t.needsWork() {
			continue
		}
		select {
		case <-t.wake:
		case <-time.After(settleWindow):
			if !t.needsWork() {
				return nil
			}
		}
	}
	return ErrSettleTimeout
}

// needsWork returns true if the framework has pending work.
func (t *WidgetTester) needsWork() bool {
	t.mu.Lock()
	pending := len(t.dispatches) > 0
	t.mu.Unlock()
	return pending || t.buildOwner.NeedsWork()
}

// Dispatch queues a callback for the next frame, mirroring the engine's
// UI-thread dispatch. Safe to call from any goroutine.
func (t *WidgetTester) Dispatch(fn func()) {
	t.mu.Lock()
	t.dispatches = append(t.dispatches, fn)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// RootElement returns the root element of the mounted tree.
func (t *WidgetTester) RootElement() core.Element {
	return t.root
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.root),
		finder:   finder,
	}
}
