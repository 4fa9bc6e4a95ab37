package object

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/jscore/value"
)

var log = commonlog.GetLogger("jscore.object")

// DefaultMaxDepth bounds nested internal-method calls when no configuration
// says otherwise.
const DefaultMaxDepth = 512

// Agent is the execution context every internal method receives. It owns
// the heap and the recursion guard; an interpreter embedding this package
// would hang its own state off the same value.
type Agent struct {
	Heap *value.Heap

	maxDepth int
	depth    int
	peak     int
}

// NewAgent creates an agent over h. A non-positive maxDepth selects
// DefaultMaxDepth.
func NewAgent(h *value.Heap, maxDepth int) *Agent {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Agent{Heap: h, maxDepth: maxDepth}
}

// enter claims one level of recursion. Every dispatched internal method
// goes through it, so prototype walks and accessor calls are bounded.
func (a *Agent) enter() error {
	if a.depth >= a.maxDepth {
		log.Debugf("depth guard tripped at %d", a.depth)
		return ErrStackOverflow
	}
	a.depth++
	if a.depth > a.peak {
		a.peak = a.depth
	}
	return nil
}

func (a *Agent) leave() {
	a.depth--
}

// Depth returns the current nesting of internal-method calls.
func (a *Agent) Depth() int { return a.depth }

// PeakDepth returns the deepest nesting seen so far.
func (a *Agent) PeakDepth() int { return a.peak }

// MaxDepth returns the configured recursion limit.
func (a *Agent) MaxDepth() int { return a.maxDepth }

// Object resolves an object-tagged value to its record. The pointer is
// borrowed; it is only meaningful while v is kept alive.
func (a *Agent) Object(v value.Value) *Object {
	if !v.IsObject() {
		panic(fmt.Sprintf("Agent.Object: %s is not an object", v.Kind()))
	}
	o, ok := a.Heap.Record(v).(*Object)
	if !ok {
		panic("Agent.Object: object handle does not hold an *Object")
	}
	return o
}

// ObjectOrNil is like Object but returns nil for null.
func (a *Agent) ObjectOrNil(v value.Value) *Object {
	if v.IsNull() {
		return nil
	}
	return a.Object(v)
}

// Drop releases an owned value.
func (a *Agent) Drop(v value.Value) { a.Heap.Drop(v) }
