package ast

// MarkTailCalls walks an expression and sets Expr.Tail on every ExApp node
// that sits in tail position, so the compiler can emit TCall instead of
// Call for it (spec.md §4.5, "Application f(a1..an, tail?)").
//
// Determining tail position is ordinarily performed by whatever produces
// the AST this compiler core consumes (spec.md §9 treats this kind of
// desugaring as the parser/resolver's job, outside the core); Fen's own
// parser runs this pass once, right after building the program, so both
// of its front-ends see the same tail marking on every node.
func MarkTailCalls(e *Expr, tail bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ExApp:
		e.Tail = tail
		for _, a := range e.Args {
			MarkTailCalls(a, false)
		}
		MarkTailCalls(e.Callee, false)
	case ExIf:
		MarkTailCalls(e.Cond, false)
		MarkTailCalls(e.Then, tail)
		MarkTailCalls(e.Else, tail)
	case ExMatch:
		MarkTailCalls(e.Scrutinee, false)
		for _, arm := range e.Arms {
			MarkTailCalls(arm.Guard, false)
			MarkTailCalls(arm.Body, tail)
		}
	case ExLet:
		MarkTailCalls(e.Value, false)
		MarkTailCalls(e.Body, tail)
	case ExDef:
		MarkTailCalls(e.Value, false)
		MarkTailCalls(e.Body, tail)
	case ExTry:
		// A raised exception unwinds the try body, so its result is never a
		// tail position with respect to the enclosing function; the rescue
		// branch's result is.
		MarkTailCalls(e.TryBody, false)
		MarkTailCalls(e.Rescue, tail)
	case ExLambda:
		MarkTailCalls(e.LambdaBody, true)
	case ExBinary:
		MarkTailCalls(e.Left, false)
		MarkTailCalls(e.Right, false)
	case ExUnary:
		MarkTailCalls(e.Right, false)
	case ExList, ExTuple:
		for _, x := range e.Elems {
			MarkTailCalls(x, false)
		}
	case ExCons:
		MarkTailCalls(e.Head, false)
		MarkTailCalls(e.TailE, false)
	case ExMethodRef:
		MarkTailCalls(e.MethodTy, false)
	}
}

// MarkProgramTailCalls runs [MarkTailCalls] over every top-level statement's
// expression(s). Top-level code runs outside any function frame, so nothing
// at that level is in tail position.
func MarkProgramTailCalls(prog *Program) {
	for _, s := range prog.Statements {
		switch s.Kind {
		case StDef, StExpr, StLet:
			MarkTailCalls(s.Value, false)
		case StType:
			for _, m := range s.Members {
				MarkTailCalls(m.Value, false)
			}
		case StOpen:
			// No expression to mark; the imported unit marks its own tail
			// calls when it is compiled.
		}
	}
}
