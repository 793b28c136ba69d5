package value

import "testing"

func TestEqualStructural(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers equal", Number{Value: 3}, Number{Value: 3}, true},
		{"numbers differ", Number{Value: 3}, Number{Value: 4}, false},
		{"strings equal", Str{Value: "a"}, Str{Value: "a"}, true},
		{"symbols equal", Sym{Value: "ok"}, Sym{Value: "ok"}, true},
		{"bools differ", Bool{Value: true}, Bool{Value: false}, false},
		{"nils equal", Nil{}, Nil{}, true},
		{"different types", Number{Value: 0}, Str{Value: "0"}, false},
		{
			"tuples equal",
			Tuple{Elems: []Value{Number{Value: 1}, Str{Value: "x"}}},
			Tuple{Elems: []Value{Number{Value: 1}, Str{Value: "x"}}},
			true,
		},
		{
			"tuples differ by length",
			Tuple{Elems: []Value{Number{Value: 1}}},
			Tuple{Elems: []Value{Number{Value: 1}, Number{Value: 2}}},
			false,
		},
		{
			"lists equal",
			Cons(Number{Value: 1}, Cons(Number{Value: 2}, nil)),
			Cons(Number{Value: 1}, Cons(Number{Value: 2}, nil)),
			true,
		},
		{"empty lists equal", (*List)(nil), (*List)(nil), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tc.a.Inspect(), tc.b.Inspect(), got, tc.want)
			}
		})
	}
}

// Modules compare by identity, never by structure, even with identical names.
func TestModuleEqualityIsByIdentity(t *testing.T) {
	a := NewModule("Option")
	b := NewModule("Option")
	if Equal(a, b) {
		t.Error("two distinct modules with the same name must not be Equal")
	}
	if !Equal(a, a) {
		t.Error("a module must be Equal to itself")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Bool{Value: false}, false},
		{Bool{Value: true}, true},
		{Nil{}, false},
		{Number{Value: 0}, true},
		{Str{Value: ""}, true},
	}
	for _, tc := range tests {
		if got := Truthy(tc.v); got != tc.want {
			t.Errorf("Truthy(%s) = %v, want %v", tc.v.Inspect(), got, tc.want)
		}
	}
}

func TestListHeadAndTail(t *testing.T) {
	l := Cons(Number{Value: 1}, Cons(Number{Value: 2}, nil))

	head, err := ListHead(l)
	if err != nil || !Equal(head, Number{Value: 1}) {
		t.Fatalf("ListHead = %v, %v; want 1, nil", head, err)
	}

	tail, err := ListTail(l)
	if err != nil || !Equal(tail, Cons(Number{Value: 2}, nil)) {
		t.Fatalf("ListTail = %v, %v; want [2], nil", tail, err)
	}

	emptyHead, err := ListHead((*List)(nil))
	if err != nil {
		t.Fatalf("ListHead(empty) errored: %v", err)
	}
	if _, ok := emptyHead.(Nil); !ok {
		t.Errorf("ListHead(empty) = %T, want Nil", emptyHead)
	}

	emptyTail, err := ListTail((*List)(nil))
	if err != nil || emptyTail != nil {
		t.Errorf("ListTail(empty) = %v, %v; want (nil *List), nil", emptyTail, err)
	}
}

func TestNewGlobalEnvHasRaiseAndList(t *testing.T) {
	globals := NewGlobalEnv()

	raiseFn, ok := globals["raise"].(*Builtin)
	if !ok {
		t.Fatalf("globals[\"raise\"] = %T, want *Builtin", globals["raise"])
	}
	if _, err := raiseFn.Fn([]Value{Str{Value: "boom"}, Sym{Value: "Err"}}); err == nil {
		t.Error("raise(...) must return a non-nil error")
	}

	listMod, ok := globals["List"].(*Module)
	if !ok {
		t.Fatalf("globals[\"List\"] = %T, want *Module", globals["List"])
	}
	if _, ok := listMod.Get("head"); !ok {
		t.Error("List module missing head")
	}
	if _, ok := listMod.Get("tail"); !ok {
		t.Error("List module missing tail")
	}
}
