package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/mapkit/pkg/core"
)

// Finder locates elements in the mounted tree.
type Finder interface {
	// Evaluate returns the matches under root in depth-first pre-order.
	Evaluate(root core.Element) []core.Element
	// Description names the finder in failure messages.
	Description() string
}

// FinderResult holds the matches of one Find call.
type FinderResult struct {
	elements []core.Element
	finder   Finder
}

// First returns the first match. It panics when nothing matched.
func (r FinderResult) First() core.Element {
	if len(r.elements) == 0 {
		desc := "<nil finder>"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic("drifttest: no element matches " + desc)
	}
	return r.elements[0]
}

func (r FinderResult) Count() int { return len(r.elements) }

func (r FinderResult) Exists() bool { return len(r.elements) > 0 }

// Widget returns the widget of the first match.
func (r FinderResult) Widget() core.Widget {
	return r.First().Widget()
}

// matchFinder matches elements satisfying a predicate.
type matchFinder struct {
	match func(core.Element) bool
	desc  string
}

func (f matchFinder) Evaluate(root core.Element) []core.Element {
	var out []core.Element
	walk(root, func(e core.Element) {
		if f.match(e) {
			out = append(out, e)
		}
	})
	return out
}

func (f matchFinder) Description() string { return f.desc }

// ByType matches elements whose widget has type T.
func ByType[T core.Widget]() Finder {
	want := reflect.TypeFor[T]()
	return matchFinder{
		match: func(e core.Element) bool { return reflect.TypeOf(e.Widget()) == want },
		desc:  fmt.Sprintf("ByType(%s)", want),
	}
}

// ByState matches stateful elements whose state has type T.
func ByState[T core.State]() Finder {
	want := reflect.TypeFor[T]()
	return matchFinder{
		match: func(e core.Element) bool {
			stateful, ok := e.(*core.StatefulElement)
			return ok && stateful.State() != nil && reflect.TypeOf(stateful.State()) == want
		},
		desc: fmt.Sprintf("ByState(%s)", want),
	}
}

// StateOf returns the state of the first match as T. It panics when nothing
// matched or the match is not stateful.
func StateOf[T core.State](result FinderResult) T {
	return result.First().(*core.StatefulElement).State().(T)
}

// Descendant matches elements found by matching strictly below an element
// found by of.
func Descendant(of, matching Finder) Finder {
	return relationFinder{of: of, matching: matching, below: true}
}

// Ancestor matches elements found by matching that strictly contain an
// element found by of.
func Ancestor(of, matching Finder) Finder {
	return relationFinder{of: of, matching: matching}
}

type relationFinder struct {
	of, matching Finder
	below        bool
}

func (f relationFinder) Evaluate(root core.Element) []core.Element {
	anchors := f.of.Evaluate(root)
	var out []core.Element
	for _, candidate := range f.matching.Evaluate(root) {
		for _, anchor := range anchors {
			upper, lower := candidate, anchor
			if f.below {
				upper, lower = anchor, candidate
			}
			if upper != lower && contains(upper, lower) {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

func (f relationFinder) Description() string {
	rel := "Ancestor"
	if f.below {
		rel = "Descendant"
	}
	return fmt.Sprintf("%s(of: %s, matching: %s)", rel, f.of.Description(), f.matching.Description())
}

func contains(root, target core.Element) bool {
	found := false
	walk(root, func(e core.Element) {
		found = found || e == target
	})
	return found
}

func walk(root core.Element, visit func(core.Element)) {
	visit(root)
	root.VisitChildren(func(child core.Element) bool {
		walk(child, visit)
		return true
	})
}
