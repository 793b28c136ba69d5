package parser

import (
	"testing"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/lexer"
)

func parseOne(t *testing.T, src string) *ast.Stmt {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements for %q, want 1", len(prog.Statements), src)
	}
	return prog.Statements[0]
}

// Multiplication binds tighter than addition: "1 + 2 * 3" parses as
// "1 + (2 * 3)", not "(1 + 2) * 3".
func TestPrecedenceMulOverAdd(t *testing.T) {
	stmt := parseOne(t, "1 + 2 * 3")
	e := stmt.Value
	if e.Kind != ast.ExBinary || e.BOp != ast.Add {
		t.Fatalf("got %v, want top-level Add", e)
	}
	if e.Right.Kind != ast.ExBinary || e.Right.BOp != ast.Mul {
		t.Fatalf("got right operand %v, want a Mul", e.Right)
	}
}

// Cons binds looser than addition: "1 + 1 :: xs" parses as "(1 + 1) :: xs".
func TestPrecedenceConsLooserThanSum(t *testing.T) {
	stmt := parseOne(t, "1 + 1 :: xs")
	e := stmt.Value
	if e.Kind != ast.ExCons {
		t.Fatalf("got %v, want top-level Cons", e)
	}
	if e.Head.Kind != ast.ExBinary || e.Head.BOp != ast.Add {
		t.Fatalf("got head %v, want an Add", e.Head)
	}
}

// Call binds tighter than every binary operator: "f(1) + 2" is
// "(f(1)) + 2", not f applied to "(1) + 2".
func TestPrecedenceCallOverSum(t *testing.T) {
	stmt := parseOne(t, "f(1) + 2")
	e := stmt.Value
	if e.Kind != ast.ExBinary || e.BOp != ast.Add {
		t.Fatalf("got %v, want top-level Add", e)
	}
	if e.Left.Kind != ast.ExApp {
		t.Fatalf("got left operand %v, want an application", e.Left)
	}
}

// `let ... in` with a cons pattern binds head and tail names; the
// trailing `in` makes it an ExLet expression statement, not a bare StLet.
func TestParseLetConsPattern(t *testing.T) {
	stmt := parseOne(t, "let x :: xs = [1, 2] in xs")
	if stmt.Kind != ast.StExpr || stmt.Value.Kind != ast.ExLet {
		t.Fatalf("got %v, want an StExpr wrapping ExLet", stmt)
	}
	bind := stmt.Value.Bind
	if bind.Kind != ast.PatList {
		t.Fatalf("got pattern kind %v, want PatList", bind.Kind)
	}
	if bind.Head.Name != "x" || bind.Tail.Name != "xs" {
		t.Errorf("got head %q tail %q, want x, xs", bind.Head.Name, bind.Tail.Name)
	}
}

// A wildcard let-binding parses to a non-binding PatID named "_".
func TestParseLetWildcardPattern(t *testing.T) {
	stmt := parseOne(t, "let _ = 1 in 2")
	bind := stmt.Value.Bind
	if !bind.IsWildcard() {
		t.Errorf("got pattern %v, want the wildcard", bind)
	}
}

// A lambda's parameter list is read until `->`, not `=`.
func TestParseLambdaArrowNotEquals(t *testing.T) {
	stmt := parseOne(t, "def f = fn x y -> x + y")
	if stmt.Kind != ast.StDef {
		t.Fatalf("got stmt kind %v, want StDef", stmt.Kind)
	}
	lam := stmt.Value
	if lam.Kind != ast.ExLambda {
		t.Fatalf("got %v, want ExLambda", lam)
	}
	if len(lam.LambdaArgs) != 2 || lam.LambdaArgs[0].Name != "x" || lam.LambdaArgs[1].Name != "y" {
		t.Errorf("got args %v, want [x y]", lam.LambdaArgs)
	}
}

// A single-element parenthesized expression collapses to the element
// itself, never an ExTuple; the grammar has no one-element tuple literal.
func TestParenSingleElementIsNotATuple(t *testing.T) {
	stmt := parseOne(t, "(1)")
	if stmt.Value.Kind == ast.ExTuple {
		t.Errorf("got ExTuple for a single parenthesized element, want the bare literal")
	}
	if stmt.Value.Kind != ast.ExLit {
		t.Errorf("got %v, want ExLit", stmt.Value)
	}
}

func TestParseTupleLiteral(t *testing.T) {
	stmt := parseOne(t, "(1, 2, 3)")
	if stmt.Value.Kind != ast.ExTuple || len(stmt.Value.Elems) != 3 {
		t.Fatalf("got %v, want a 3-element ExTuple", stmt.Value)
	}
}

// A type declaration records every variant's short name and argument names.
func TestParseTypeDeclaration(t *testing.T) {
	stmt := parseOne(t, "type Option =\n  | None\n  | Some(x)\nend")
	if stmt.Kind != ast.StType || stmt.TypeName != "Option" {
		t.Fatalf("got %v, want StType Option", stmt)
	}
	if len(stmt.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(stmt.Variants))
	}
	none, some := stmt.Variants[0], stmt.Variants[1]
	if none.ShortName != "None" || len(none.Args) != 0 {
		t.Errorf("got None variant %v, want nullary", none)
	}
	if some.ShortName != "Some" || len(some.Args) != 1 || some.Args[0] != "x" {
		t.Errorf("got Some variant %v, want one arg %q", some, "x")
	}
}

// A match expression's arms keep their guard and pattern distinct.
func TestParseMatchWithGuard(t *testing.T) {
	stmt := parseOne(t, "match x with | n when n > 0 -> :pos | _ -> :other end")
	if stmt.Value.Kind != ast.ExMatch || len(stmt.Value.Arms) != 2 {
		t.Fatalf("got %v, want a 2-arm ExMatch", stmt.Value)
	}
	if stmt.Value.Arms[0].Guard == nil {
		t.Errorf("expected the first arm to carry a guard")
	}
	if stmt.Value.Arms[1].Guard != nil {
		t.Errorf("expected the wildcard arm to carry no guard")
	}
}

// A malformed statement is reported via Errors(), not a panic.
func TestParseErrorIsReported(t *testing.T) {
	p := New(lexer.New("let = 1 in 2"))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Error("expected a parse error for a missing pattern")
	}
}

// A self-recursive call in tail position is marked Tail by
// ParseProgram's call to ast.MarkProgramTailCalls.
func TestParseProgramMarksTailCalls(t *testing.T) {
	p := New(lexer.New("def f = fn n -> f(n) in f(1)"))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	def := prog.Statements[0].Value
	if def.Kind != ast.ExDef {
		t.Fatalf("got %v, want ExDef", def)
	}
	body := def.Value.LambdaBody
	if body.Kind != ast.ExApp || !body.Tail {
		t.Errorf("got lambda body %v, want a tail-marked application", body)
	}
}
