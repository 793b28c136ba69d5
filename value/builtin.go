package value

import "fmt"

// Builtin is a VM-native function — the prelude surface spec.md assumes
// but leaves to the VM collaborator: `raise(msg, tag)` and the `List`
// global's `head`/`tail` (spec.md §9, original_source/vm/src/prelude/list.rs,
// original_source/vm/src/error.rs). Grounded on the teacher's
// object.Builtin{Fn}, generalized from a variadic signature to a slice
// since Fen's Call opcode always passes a fixed argument count.
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

// Type returns [BUILTIN_T].
func (*Builtin) Type() Type { return BUILTIN_T }

// Inspect renders the builtin's name.
func (b *Builtin) Inspect() string { return fmt.Sprintf("builtin<%s>", b.Name) }

// BUILTIN_T names the dynamic type of a [Builtin].
const BUILTIN_T = "BUILTIN"
