package value

import "fmt"

// Module is a named collection of fields (members and tag constructors),
// installed into the constant pool once and thereafter compared by
// identity, never by structure (spec.md §3, §4.7: "a type declaration
// compiles to a Module value... module values are never deduplicated").
//
// Its Fields table is built in two passes by the compiler's type-
// declaration emitter: the module's constant slot is reserved first, so
// non-nullary variant constructors can push it by index, and it is
// installed with its member functions and those constructors; it is then
// patched with the now-buildable Tagged values for the nullary variants
// (see compiler/typedecl.go). Once installed, Fields is treated
// as frozen by convention — nothing in this package enforces that, the
// same way spec.md leaves enforcement of similar invariants to the
// compiler rather than the value representation.
type Module struct {
	Name   string
	Fields *Table
}

// NewModule creates a module with an empty field table.
func NewModule(name string) *Module {
	return &Module{Name: name, Fields: NewTable()}
}

// Type returns [MODULE_T].
func (*Module) Type() Type { return MODULE_T }

// Inspect renders the module's name.
func (m *Module) Inspect() string { return fmt.Sprintf("module %s", m.Name) }

// Get looks up a member or tag constructor by name.
func (m *Module) Get(name string) (Value, bool) { return m.Fields.Get(name) }

// Tagged is a value constructed by one of a module's variant
// constructors: a tag name (dotted path, e.g. "Option.Some") paired with
// a tuple payload and the module it belongs to (spec.md §3, "Tagged {
// module, tag, payload: Tuple }"). Nullary variants still carry an empty
// Tuple payload so TupGet/TagOf have a uniform representation to work
// with regardless of arity.
type Tagged struct {
	Module  *Module
	TagPath string
	Payload Tuple
}

// Type returns [TAGGED_T].
func (*Tagged) Type() Type { return TAGGED_T }

// Inspect renders e.g. "Some(3)" or "None".
func (t *Tagged) Inspect() string {
	if len(t.Payload.Elems) == 0 {
		return t.TagPath
	}
	return t.TagPath + t.Payload.Inspect()
}
