package object

import (
	"errors"
	"fmt"

	"github.com/chazu/jscore/value"
)

// Errors returned by internal methods. Legality rejections are plain bool
// results; these are the abrupt completions.
var (
	ErrStackOverflow = errors.New("maximum call depth exceeded")
	ErrNotCallable   = errors.New("value is not callable")
	ErrWrongKind     = errors.New("object has the wrong native kind")
)

// Throw carries a value thrown by user code (a getter, setter or native
// function) up through the internal methods. The error owns one reference
// to Value; whoever catches it drops it.
type Throw struct {
	Value value.Value
}

func (t *Throw) Error() string {
	return fmt.Sprintf("uncaught exception: %s", t.Value)
}

// TypeError is raised by the abstract operations that turn a false result
// into an exception (the OrThrow helpers) and by type checks on arguments.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return "TypeError: " + e.Message
}

func typeErrorf(format string, args ...any) error {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}
