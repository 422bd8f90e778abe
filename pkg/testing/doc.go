// Package testing provides a widget testing harness for mapkit.
//
// # Quick Start
//
// Create a tester, pump a widget, and make assertions:
//
//	func TestMyWidget(t *testing.T) {
//	    tester := drifttest.NewWidgetTesterWithT(t)
//	    tester.PumpWidget(MyWidget{})
//
//	    if !tester.Find(drifttest.ByType[MyChild]()).Exists() {
//	        t.Error("expected MyChild")
//	    }
//	}
//
// # Asynchronous Work
//
// Widgets that start goroutines post their results back through
// platform.Dispatch. The tester queues those callbacks and runs them on the
// next Pump, so continuations always execute on the test goroutine. Use
// PumpUntil to wait for a condition, or PumpAndSettle to wait until no more
// callbacks arrive:
//
//	release <- struct{}{}
//	if err := tester.PumpUntil(func() bool { return ready }, time.Second); err != nil {
//	    t.Fatal(err)
//	}
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import drifttest "github.com/go-drift/mapkit/pkg/testing"
package testing
