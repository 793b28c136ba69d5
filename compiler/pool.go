package compiler

import "github.com/fen-lang/fen/value"

// ConstantPool is the compiled unit's constant table (spec.md §4.2). Every
// distinct scalar literal (number, string, symbol, boolean, nil) and the
// empty list is interned once; structurally identical ones share a slot.
// Function values are not deduplicated: each compiled lambda takes a slot
// of its own. Module values are never deduplicated either — each
// type declaration's module is a fresh identity (spec.md §3, "modules
// compare by identity") and is never deduplicated against another
// module, even one with matching fields, since two type declarations
// that happen to look alike must still produce distinct Tagged values.
type ConstantPool struct {
	values []value.Value
	index  map[string]int
}

// NewConstantPool creates an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[string]int)}
}

// Values returns the pool's backing slice, the Constants a Bytecode carries.
func (p *ConstantPool) Values() []value.Value { return p.values }

// Get returns the constant at index.
func (p *ConstantPool) Get(index int) value.Value { return p.values[index] }

// Intern adds v to the pool, returning an existing index if a
// structurally-equal scalar or empty-list constant is already present;
// any other value (a module, a function) always gets a new slot.
func (p *ConstantPool) Intern(v value.Value) int {
	if _, isModule := v.(*value.Module); !isModule {
		if key, ok := dedupKey(v); ok {
			if idx, found := p.index[key]; found {
				return idx
			}
			idx := p.add(v)
			p.index[key] = idx
			return idx
		}
	}
	return p.add(v)
}

// Reserve appends a placeholder module value, returning its index, so a
// self-referential value (a type declaration's module) can be built and
// installed into the very slot its own constructors will reference
// (spec.md §4.2, §4.7).
func (p *ConstantPool) Reserve() int {
	return p.add(value.NewModule(""))
}

// Fill overwrites the value at a previously reserved index.
func (p *ConstantPool) Fill(index int, v value.Value) {
	p.values[index] = v
}

func (p *ConstantPool) add(v value.Value) int {
	p.values = append(p.values, v)
	return len(p.values) - 1
}

// dedupKey returns a string uniquely identifying a leaf constant's
// structural identity, for types cheap and safe to dedup. Compound
// values that can embed a Module (Tuple, List, Tagged) are intentionally
// excluded, since the compiler never emits them as whole-constant
// literals directly (they're always built at runtime via Tup/Prep/Tag).
func dedupKey(v value.Value) (string, bool) {
	switch vv := v.(type) {
	case value.Number:
		return "n:" + vv.Inspect(), true
	case value.Str:
		return "s:" + vv.Value, true
	case value.Sym:
		return "y:" + vv.Value, true
	case value.Bool:
		return "b:" + vv.Inspect(), true
	case value.Nil:
		return "nil", true
	case *value.List:
		// The only *value.List ever pushed as a whole constant is the
		// empty list (value.EmptyList, a nil pointer) — both the ExList
		// empty-literal arm and the pattern compiler's EmptyList arm push
		// it independently, so it must dedup to one pool slot (spec.md
		// §8 scenario 3). A non-nil *List is always built at runtime via
		// Prep, never interned directly.
		if vv == nil {
			return "list:empty", true
		}
		return "", false
	default:
		return "", false
	}
}
