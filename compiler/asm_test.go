package compiler

import (
	"strings"
	"testing"

	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// Assemble reads back the exact instructions and constants Disassemble wrote.
func TestAssembleDisassembleRoundTrip(t *testing.T) {
	bc := mustCompile(t, "1 + 2")

	text := Disassemble(bc)
	got, err := Assemble(text)
	if err != nil {
		t.Fatalf("Assemble error: %v\ninput:\n%s", err, text)
	}

	if len(got.Instructions) != len(bc.Instructions) {
		t.Fatalf("got %d instructions, want %d", len(got.Instructions), len(bc.Instructions))
	}
	for i, ins := range bc.Instructions {
		if got.Instructions[i].Op != ins.Op || got.Instructions[i].Operand != ins.Operand || got.Instructions[i].Sym != ins.Sym {
			t.Errorf("instruction %d: got %+v, want %+v", i, got.Instructions[i], ins)
		}
	}
	if len(got.Constants) != len(bc.Constants) {
		t.Fatalf("got %d constants, want %d", len(got.Constants), len(bc.Constants))
	}
	for i, c := range bc.Constants {
		if !value.Equal(got.Constants[i], c) {
			t.Errorf("constant %d: got %s, want %s", i, got.Constants[i].Inspect(), c.Inspect())
		}
	}
}

// Hand-written pseudo-assembly assembles into the instructions it names,
// the format documented at the top of asm.go.
func TestAssembleHandWritten(t *testing.T) {
	src := []byte(`
constants:
	number 3
	number 4
code:
	push 0
	push 1
	add
`)
	bc, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(bc.Constants) != 2 || !value.Equal(bc.Constants[0], value.Number{Value: 3}) {
		t.Fatalf("got constants %v, want [3, 4]", bc.Constants)
	}
	wantOps := []code.Opcode{code.Push, code.Push, code.Add}
	if len(bc.Instructions) != len(wantOps) {
		t.Fatalf("got %d instructions, want %d", len(bc.Instructions), len(wantOps))
	}
	for i, op := range wantOps {
		if bc.Instructions[i].Op != op {
			t.Errorf("instruction %d: got %s, want %s", i, bc.Instructions[i].Op.Name(), op.Name())
		}
	}
}

// A non-scalar constant (here a module, produced only by a type
// declaration) disassembles to a comment rather than failing the dump.
func TestDisassembleUnrepresentableConstant(t *testing.T) {
	bc := mustCompile(t, "type Option =\n  | None\n  | Some(x)\nend\nSome(3)\n")
	text := string(Disassemble(bc))
	if !strings.Contains(text, "unrepresentable") {
		t.Errorf("expected an unrepresentable-constant comment for a module constant, got:\n%s", text)
	}
}

func TestAssembleRejectsUnknownOpcode(t *testing.T) {
	_, err := Assemble([]byte("code:\n\tbogus 1\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown opcode")
	}
}
