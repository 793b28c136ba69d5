package value

import "fmt"

// RuntimeError is a raised exception, carrying a source position (0:0
// when raised through the `raise` builtin) plus a payload value, a
// (reason, detail) Tuple when built by [Raise] — this is the runtime
// counterpart of the compiler's
// exact diagnostic strings ("No match of rhs value", "Couldn't match any
// clause") which a Try/EndTry handler or the top-level driver unwraps and
// reports (grounded on original_source/vm/src/error.rs's InterpretError,
// adapted here to decorate a Fen value instead of wrapping an io::Error).
type RuntimeError struct {
	Line    int
	Column  int
	Payload Value
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[%d:%d] %s", e.Line, e.Column, e.Payload.Inspect())
}

// Raise builds a RuntimeError carrying a two-element (reason, detail)
// tuple, the shape every built-in raise site in this package uses.
func Raise(line, col int, reason string, detail Value) *RuntimeError {
	return &RuntimeError{Line: line, Column: col, Payload: Tuple{Elems: []Value{Str{Value: reason}, detail}}}
}

// ErrNoMatchRHS is the message raised when a `let pattern = value`
// binding's pattern fails to match its right-hand side.
const ErrNoMatchRHS = "No match of rhs value"

// ErrNoMatchClause is the message raised when every arm of a `match`
// expression fails to match its scrutinee.
const ErrNoMatchClause = "Couldn't match any clause"

// ListHead implements the `List.head` member of the prelude's `List`
// module (installed by [NewGlobalEnv]), returning Nil on an empty list rather
// than raising (grounded on original_source/vm/src/prelude/list.rs's
// `head`, which likewise returns `nil()` instead of erroring).
func ListHead(v Value) (Value, error) {
	l, ok := v.(*List)
	if !ok {
		return nil, fmt.Errorf("head() expected a list, found %s", v.Type())
	}
	if l == nil {
		return Nil{}, nil
	}
	return l.Head, nil
}

// ListTail implements the `List.tail` member. The tail of an empty list
// is the empty list, matching original_source/vm/src/prelude/list.rs's
// `tail`.
func ListTail(v Value) (*List, error) {
	l, ok := v.(*List)
	if !ok {
		return nil, fmt.Errorf("tail() expected a list, found %s", v.Type())
	}
	if l == nil {
		return EmptyList, nil
	}
	return l.Tail, nil
}
