package value

import "strings"

// List is a persistent singly-linked list. A nil *List represents the
// empty list, so [EmptyList] is a valid, shareable, zero-allocation
// constant — every compiled unit's empty-list constant can point at the
// very same (nil) value, which is exactly what the constant pool's
// deduplication relies on (spec.md §4.4, Pattern::EmptyList / ExprKind::List).
type List struct {
	Head Value
	Tail *List
}

// EmptyList is the canonical empty list value.
var EmptyList *List

// Cons prepends head to tail, implementing the `Prep` opcode.
func Cons(head Value, tail *List) *List {
	return &List{Head: head, Tail: tail}
}

// Type returns [LIST_T]. Valid to call on a nil receiver.
func (l *List) Type() Type { return LIST_T }

// Inspect renders the list as "[a, b, c]". Valid to call on a nil receiver.
func (l *List) Inspect() string {
	var b strings.Builder
	b.WriteByte('[')
	for n, first := l, true; n != nil; n, first = n.Tail, false {
		if !first {
			b.WriteString(", ")
		}
		b.WriteString(n.Head.Inspect())
	}
	b.WriteByte(']')
	return b.String()
}

// Len returns the number of elements in the list.
func (l *List) Len() int {
	n := 0
	for cur := l; cur != nil; cur = cur.Tail {
		n++
	}
	return n
}

func (l *List) equal(o *List) bool {
	a, b := l, o
	for a != nil && b != nil {
		if !Equal(a.Head, b.Head) {
			return false
		}
		a, b = a.Tail, b.Tail
	}
	return a == nil && b == nil
}
