package compiler

import (
	"testing"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/parser"
	"github.com/fen-lang/fen/value"
)

func mustCompile(t *testing.T, src string) *Bytecode {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	bc, err := CompileAST(prog)
	if err != nil {
		t.Fatalf("compile error for %q: %v", src, err)
	}
	return bc
}

// Every Jmp/Jmf/Try target lands within [0, len(instructions)], and every
// Push references a valid constant-pool slot (spec.md §8's jump-target
// and constant-index invariants).
func TestJumpAndConstantIndicesAreInBounds(t *testing.T) {
	sources := []string{
		"if 1 == 1 then :ok else :err",
		"match [1,2] with | x :: xs -> xs | [] -> [] end",
		`try raise("e", :E) rescue e => e`,
		"let x = 1 in x + 2",
		"def f = fn x y -> x + y in f(1, 2)",
	}
	for _, src := range sources {
		bc := mustCompile(t, src)
		for i, ins := range bc.Instructions {
			switch ins.Op {
			case code.Jmp, code.Jmf, code.Try:
				if ins.Operand < 0 || ins.Operand > len(bc.Instructions) {
					t.Errorf("%q: instruction %d (%s) target %d out of [0,%d]",
						src, i, ins.Op.Name(), ins.Operand, len(bc.Instructions))
				}
			case code.Push:
				if ins.Operand < 0 || ins.Operand >= len(bc.Constants) {
					t.Errorf("%q: instruction %d Push(%d) out of range, pool has %d constants",
						src, i, ins.Operand, len(bc.Constants))
				}
			}
		}
	}
}

// Scenario 3: the pattern compiler's EmptyList arm and the literal `[]`
// arm both reference the very same pool slot — no duplicate empty-list
// constant appears for one compiled program (spec.md §8 Deduplication).
func TestEmptyListConstantIsDeduplicated(t *testing.T) {
	bc := mustCompile(t, "match [1,2] with | x :: xs -> xs | [] -> [] end")

	slots := map[int]bool{}
	for _, ins := range bc.Instructions {
		if ins.Op == code.Push && bc.Constants[ins.Operand].Type() == "LIST" {
			slots[ins.Operand] = true
		}
	}
	if len(slots) != 1 {
		t.Errorf("got %d distinct empty-list constant slots referenced, want 1", len(slots))
	}
}

// Boundary: an empty list literal compiles to exactly one Push, no Prep.
func TestEmptyListLiteralEmitsNoPrep(t *testing.T) {
	bc := mustCompile(t, "[]")
	for _, ins := range bc.Instructions {
		if ins.Op == code.Prep {
			t.Fatalf("[] must not emit Prep, got %v", bc.Instructions)
		}
	}
}

// Boundary: a single-element tuple compiles to Tup(1), no RevN. The
// parser collapses a parenthesized single expression to that expression
// itself (never an ExTuple), so a one-element ast.ExTuple is built
// directly to exercise this path.
func TestSingleElementTupleEmitsNoRevN(t *testing.T) {
	c := New()
	loc := ast.Location{Line: 1, Column: 1}
	tup := &ast.Expr{Kind: ast.ExTuple, Loc: loc, Elems: []*ast.Expr{{Kind: ast.ExLit, Loc: loc, Lit: ast.Num(1)}}}
	if err := c.compileExpr(tup); err != nil {
		t.Fatalf("compile error: %v", err)
	}

	sawTup1 := false
	for _, ins := range c.current().instructions {
		if ins.Op == code.RevN {
			t.Fatalf("single-element tuple must not emit RevN, got %v", c.current().instructions)
		}
		if ins.Op == code.Tup && ins.Operand == 1 {
			sawTup1 = true
		}
	}
	if !sawTup1 {
		t.Errorf("expected a Tup(1), got %v", c.current().instructions)
	}
}

// Boundary: tail-position application emits TCall, a non-tail one emits Call.
// The self call sits in the lambda body, compiled into the Fn constant's
// own instructions; the outer f(1) is top-level code.
func TestTailCallEmitsTCall(t *testing.T) {
	bc := mustCompile(t, "def f = fn n -> f(n) in f(1)")

	sawTCall := false
	for _, k := range bc.Constants {
		if fn, ok := k.(*value.Fn); ok {
			for _, ins := range fn.Instructions {
				if ins.Op == code.TCall {
					sawTCall = true
				}
			}
		}
	}
	if !sawTCall {
		t.Errorf("self tail call must emit TCall, got constants %v", bc.Constants)
	}

	sawCall := false
	for _, ins := range bc.Instructions {
		if ins.Op == code.Call {
			sawCall = true
		}
	}
	if !sawCall {
		t.Errorf("non-tail f(1) must emit Call, got %v", bc.Instructions)
	}
}

// Scenario 6: exactly one Try, one EndTry, and one Jmp over the handler.
func TestTryRescueEmitsExactlyOneHandler(t *testing.T) {
	bc := mustCompile(t, `try raise("e", :E) rescue e => e`)

	var tries, endTries, jmps int
	for _, ins := range bc.Instructions {
		switch ins.Op {
		case code.Try:
			tries++
		case code.EndTry:
			endTries++
		case code.Jmp:
			jmps++
		}
	}
	if tries != 1 || endTries != 1 || jmps != 1 {
		t.Errorf("got Try=%d EndTry=%d Jmp=%d, want exactly one each", tries, endTries, jmps)
	}
}

// Wildcard pattern `_` binds nothing and emits exactly one Pop.
func TestWildcardPatternEmitsOnePop(t *testing.T) {
	bc := mustCompile(t, "let _ = 1 in 2")

	pops := 0
	for _, ins := range bc.Instructions {
		if ins.Op == code.Pop {
			pops++
		}
	}
	if pops != 1 {
		t.Errorf("wildcard binding must emit exactly one Pop, got %d in %v", pops, bc.Instructions)
	}
}

// After compiling any single top-level item, the synthetic-temp counter
// resets to 0 so the next item's fresh names don't collide (spec.md §8).
func TestFreshCounterResetsPerTopLevelItem(t *testing.T) {
	c := New()
	p := parser.New(lexer.New("match [1] with | x :: xs -> xs | [] -> [] end"))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	for _, stmt := range prog.Statements {
		if err := c.compileStmt(stmt); err != nil {
			t.Fatalf("compile error: %v", err)
		}
	}
	if c.freshCounter != 0 {
		t.Errorf("got freshCounter %d after a top-level item, want 0", c.freshCounter)
	}
}

// Local slot indices within one scope are a contiguous [0,k) prefix.
func TestLocalSlotsAreContiguous(t *testing.T) {
	bc := mustCompile(t, "def f = fn a b c -> a + b + c in f(1, 2, 3)")

	maxSlot := -1
	saves := map[int]bool{}
	for _, ins := range bc.Instructions {
		if ins.Op == code.Save {
			saves[ins.Operand] = true
			if ins.Operand > maxSlot {
				maxSlot = ins.Operand
			}
		}
	}
	for i := 0; i <= maxSlot; i++ {
		if !saves[i] {
			t.Errorf("local slot %d was never Saved; slots must be contiguous from 0, got %v", i, saves)
		}
	}
}
