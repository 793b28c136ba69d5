package value

import "fmt"

// NewGlobalEnv builds the VM-native global bindings every compiled unit
// assumes exist (spec.md §9's list-pattern open question; §4.5/§4.6's
// raise-tail emission): `raise`, and the `List` module exposing `head`
// and `tail`. Grounded on the teacher's evaluator.builtins map, keyed by
// name exactly as Loag(sym) looks them up.
func NewGlobalEnv() map[string]Value {
	return map[string]Value{
		"raise": &Builtin{Name: "raise", Fn: builtinRaise},
		"List":  listModule(),
	}
}

// builtinRaise implements the `raise(msg, tag)` global (spec.md §9,
// original_source/vm/src/error.rs). The two call sites that invoke it —
// the compiler's own emitRaiseTail (emitted directly, with no RevN
// normalization) and an ordinary source-level `raise(msg, tag)` call
// (normalized by RevN/Rev like any other application) — hand the VM
// their two arguments in opposite stack order, so this builtin
// identifies the message and the tag by type rather than position.
func builtinRaise(args []Value) (Value, error) {
	var msg Str
	var tag Value = Nil{}
	for _, a := range args {
		switch v := a.(type) {
		case Str:
			msg = v
		case Sym:
			tag = v
		}
	}
	return nil, Raise(0, 0, msg.Value, tag)
}

func listModule() *Module {
	m := NewModule("List")
	m.Fields.Insert("head", &Builtin{Name: "List.head", Fn: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("head() expects 1 argument, got %d", len(args))
		}
		return ListHead(args[0])
	}})
	m.Fields.Insert("tail", &Builtin{Name: "List.tail", Fn: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("tail() expects 1 argument, got %d", len(args))
		}
		t, err := ListTail(args[0])
		if err != nil {
			return nil, err
		}
		return t, nil
	}})
	return m
}
