package value

import (
	"fmt"

	"github.com/fen-lang/fen/code"
)

// Fn is a compiled function value: a slice of instructions plus the
// arity and captured environment the VM needs to build a call frame for
// it (spec.md §3, "Fn { code, arity, captured_args = [] }").
type Fn struct {
	Instructions []code.Instruction
	Arity        int
	Captured     []Value
	Name         string
}

// Type returns [FN_T].
func (*Fn) Type() Type { return FN_T }

// Inspect renders the function's name and arity, never its body.
func (f *Fn) Inspect() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("fn<%s/%d>", name, f.Arity)
}
