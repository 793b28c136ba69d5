package ast

import "testing"

var loc0 = Location{Line: 1, Column: 1}

func call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExApp, Loc: loc0, Callee: Var(name, loc0), Args: args}
}

func TestMarkTailCallsIfBranchesInheritTailPosition(t *testing.T) {
	e := &Expr{Kind: ExIf, Loc: loc0, Cond: call("cond"), Then: call("a"), Else: call("b")}
	MarkTailCalls(e, true)
	if e.Cond.Tail {
		t.Error("an if's condition is never a tail call")
	}
	if !e.Then.Tail || !e.Else.Tail {
		t.Error("both branches of a tail-position if must inherit tail position")
	}
}

func TestMarkTailCallsMatchArmBodiesInheritTailPosition(t *testing.T) {
	e := &Expr{
		Kind:      ExMatch,
		Loc:       loc0,
		Scrutinee: call("scrutinee"),
		Arms: []*MatchArm{
			{Loc: loc0, Guard: call("guard"), Body: call("armBody")},
		},
	}
	MarkTailCalls(e, true)
	if e.Scrutinee.Tail || e.Arms[0].Guard.Tail {
		t.Error("a match's scrutinee and arm guards are never tail calls")
	}
	if !e.Arms[0].Body.Tail {
		t.Error("a tail-position match's arm body must inherit tail position")
	}
}

func TestMarkTailCallsTryBodyNeverTail(t *testing.T) {
	e := &Expr{Kind: ExTry, Loc: loc0, TryBody: call("risky"), Rescue: call("handler")}
	MarkTailCalls(e, true)
	if e.TryBody.Tail {
		t.Error("a try body unwinds on raise, so it is never a tail call")
	}
	if !e.Rescue.Tail {
		t.Error("a tail-position try's rescue branch must inherit tail position")
	}
}

func TestMarkTailCallsArgumentsAndCalleeNeverTail(t *testing.T) {
	inner := call("inner")
	e := call("outer", inner)
	e.Tail = false
	MarkTailCalls(e, true)
	if !e.Tail {
		t.Error("the application itself must be marked tail")
	}
	if inner.Tail {
		t.Error("an argument expression is never itself a tail call")
	}
	if e.Callee.Tail {
		t.Error("a callee expression is never itself a tail call")
	}
}

func TestMarkTailCallsLambdaBodyIsAlwaysTail(t *testing.T) {
	lam := &Expr{Kind: ExLambda, Loc: loc0, LambdaBody: call("body")}
	MarkTailCalls(lam, false)
	if !lam.LambdaBody.Tail {
		t.Error("a lambda's own body is always in tail position regardless of the lambda's own context")
	}
}

func TestMarkProgramTailCallsSkipsOpenStatements(t *testing.T) {
	prog := &Program{Statements: []*Stmt{{Kind: StOpen, Loc: loc0, Path: "x.fen"}}}
	MarkProgramTailCalls(prog)
}
