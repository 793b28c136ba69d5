package vm

import (
	"testing"

	"github.com/fen-lang/fen/compiler"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/parser"
	"github.com/fen-lang/fen/value"
)

// runAST compiles src through the AST front-end and runs it to completion.
func runAST(t *testing.T, src string) value.Value {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	bc, err := compiler.CompileAST(prog)
	if err != nil {
		t.Fatalf("compile error for %q: %v", src, err)
	}
	result, err := New(bc).Run()
	if err != nil {
		t.Fatalf("runtime error for %q: %v", src, err)
	}
	return result
}

// runTokens compiles src through the token-driven front-end and runs it.
func runTokens(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	bc, err := compiler.CompileTokens(lexer.New(src))
	if err != nil {
		return nil, err
	}
	return New(bc).Run()
}

// Scenario 1: let x = 1 in x + 2 -> 3.
func TestLetBinding(t *testing.T) {
	got := runAST(t, "let x = 1 in x + 2")
	want := value.Number{Value: 3}
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", got.Inspect(), want.Inspect())
	}
}

// Scenario 2: if 1 == 1 then :ok else :err -> :ok.
func TestIfBranch(t *testing.T) {
	got := runAST(t, "if 1 == 1 then :ok else :err")
	want := value.Sym{Value: "ok"}
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", got.Inspect(), want.Inspect())
	}
}

// Scenario 3: match [1,2] with | x :: xs -> xs | [] -> [] end -> [2].
func TestMatchListCons(t *testing.T) {
	got := runAST(t, "match [1,2] with | x :: xs -> xs | [] -> [] end")
	want := value.Cons(value.Number{Value: 2}, nil)
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", got.Inspect(), want.Inspect())
	}
}

// Scenario 4: a nullary and a unary ADT constructor.
func TestTypeDeclConstructors(t *testing.T) {
	got := runAST(t, `
type Option =
  | None
  | Some(x)
end
Some(3)
`)
	tagged, ok := got.(*value.Tagged)
	if !ok {
		t.Fatalf("got %T, want *value.Tagged", got)
	}
	if tagged.TagPath != "Option.Some" {
		t.Errorf("got tag %q, want Option.Some", tagged.TagPath)
	}
	if len(tagged.Payload.Elems) != 1 || !value.Equal(tagged.Payload.Elems[0], value.Number{Value: 3}) {
		t.Errorf("got payload %s, want (3)", tagged.Payload.Inspect())
	}
}

// Scenario 4b: the nullary variant is a Tagged value with an empty payload.
func TestTypeDeclNullaryConstructor(t *testing.T) {
	got := runAST(t, `
type Option =
  | None
  | Some(x)
end
None
`)
	tagged, ok := got.(*value.Tagged)
	if !ok {
		t.Fatalf("got %T, want *value.Tagged", got)
	}
	if tagged.TagPath != "Option.None" || len(tagged.Payload.Elems) != 0 {
		t.Errorf("got %s, want Option.None with no payload", tagged.Inspect())
	}
}

// Scenario 5: fn x y -> x + y called as f(1,2) -> 3.
func TestLambdaApplication(t *testing.T) {
	got := runAST(t, "def f = fn x y -> x + y in f(1, 2)")
	want := value.Number{Value: 3}
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", got.Inspect(), want.Inspect())
	}
}

// Scenario 6: try raise("e", :E) rescue e => e -> "e".
func TestTryRescue(t *testing.T) {
	got := runAST(t, `try raise("e", :E) rescue e => e`)
	want := value.Str{Value: "e"}
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", got.Inspect(), want.Inspect())
	}
}

// An unrescued raise propagates out of Run as an error.
func TestUnrescuedRaisePropagates(t *testing.T) {
	_, err := runTokens(t, `raise("boom", :Err)`)
	if err == nil {
		t.Fatal("expected an error, got none")
	}
}

// Tail-recursive functions never grow the frame stack unboundedly: a
// large countdown must return promptly via TCall reusing the frame.
// loop is a top-level def, so its own body reaches it as a global.
func TestTailCallDoesNotGrowFrames(t *testing.T) {
	src := `
def loop = fn n acc -> if n == 0 then acc else loop(n - 1, acc + 1)
loop(100000, 0)
`
	got := runAST(t, src)
	want := value.Number{Value: 100000}
	if !value.Equal(got, want) {
		t.Errorf("got %s, want %s", got.Inspect(), want.Inspect())
	}
}

// List.head/List.tail prelude members behave as the pattern compiler
// expects: head of empty is nil, tail of empty is empty.
func TestListPrelude(t *testing.T) {
	got := runAST(t, "List.head([])")
	if _, ok := got.(value.Nil); !ok {
		t.Errorf("got %T, want value.Nil", got)
	}

	got = runAST(t, "List.tail([])")
	l, ok := got.(*value.List)
	if !ok || l != nil {
		t.Errorf("got %#v, want the empty list", got)
	}
}

// The token-driven front-end produces an equivalent result to the AST
// front-end for the same source, despite its distinct Rev-per-argument
// calling convention (spec.md §9).
func TestTokenFrontEndMatchesASTFrontEnd(t *testing.T) {
	src := "def f = fn x y -> x + y in f(1, 2)"
	astResult := runAST(t, src)
	tokenResult, err := runTokens(t, src)
	if err != nil {
		t.Fatalf("token front-end error: %v", err)
	}
	if !value.Equal(astResult, tokenResult) {
		t.Errorf("AST front-end gave %s, token front-end gave %s", astResult.Inspect(), tokenResult.Inspect())
	}
}

// Running the token front-end on the textual dump of an AST and the AST
// front-end on the AST itself produce behaviorally equivalent results
// (spec.md §8's "textual dump of an AST" property).
func TestTokenFrontEndMatchesASTFrontEndViaPrinter(t *testing.T) {
	sources := []string{
		"let x = 1 in x + 2",
		"if 1 == 1 then :ok else :err",
		"match [1, 2] with | x :: xs -> xs | [] -> [] end",
		"def f = fn x y -> x + y in f(1, 2)",
		"try 1(2) rescue e => -1",
		"def pair = (1, 2) in pair",
		"type color = | Red | Green | Blue end\nmatch Red with | color.Red -> :red | _ -> :other end",
	}

	for _, src := range sources {
		p := parser.New(lexer.New(src))
		prog := p.ParseProgram()
		if errs := p.Errors(); len(errs) != 0 {
			t.Fatalf("parse errors for %q: %v", src, errs)
		}

		bc, err := compiler.CompileAST(prog)
		if err != nil {
			t.Fatalf("AST compile error for %q: %v", src, err)
		}
		astResult, err := New(bc).Run()
		if err != nil {
			t.Fatalf("AST runtime error for %q: %v", src, err)
		}

		dump := prog.String()
		tokenResult, err := runTokens(t, dump)
		if err != nil {
			t.Fatalf("token front-end error for dump %q (from %q): %v", dump, src, err)
		}

		if !value.Equal(astResult, tokenResult) {
			t.Errorf("src %q: AST front-end gave %s, token front-end on dump %q gave %s",
				src, astResult.Inspect(), dump, tokenResult.Inspect())
		}
	}
}
