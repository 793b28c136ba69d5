package compiler

import (
	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// compileExpr lowers e so that exactly one value is left on the stack
// (spec.md §4.5).
func (c *Compiler) compileExpr(e *ast.Expr) error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExLit:
		c.emitPush(litValue(e.Lit), e.Loc)
		return nil

	case ast.ExVar:
		if idx, ok := c.lookup(e.Name); ok {
			c.emit(code.Load, idx, e.Loc)
		} else {
			c.emitSym(code.Loag, e.Name, e.Loc)
		}
		return nil

	case ast.ExApp:
		return c.compileApp(e)

	case ast.ExIf:
		return c.compileIf(e)

	case ast.ExMatch:
		return c.compileMatch(e)

	case ast.ExLet:
		return c.compileLet(e)

	case ast.ExDef:
		if err := c.compileExpr(e.Value); err != nil {
			return err
		}
		idx := c.save(e.Name2)
		c.emit(code.Save, idx, e.Loc)
		return c.compileExpr(e.Body)

	case ast.ExBinary:
		return c.compileBinary(e)

	case ast.ExUnary:
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		switch e.UOp {
		case ast.Not:
			c.emit(code.Not, 0, e.Loc)
		case ast.Neg:
			c.emit(code.Neg, 0, e.Loc)
		case ast.Length:
			c.emit(code.Len, 0, e.Loc)
		}
		return nil

	case ast.ExList:
		for _, x := range e.Elems {
			if err := c.compileExpr(x); err != nil {
				return err
			}
		}
		c.emitPush(value.EmptyList, e.Loc)
		for range e.Elems {
			c.emit(code.Prep, 0, e.Loc)
		}
		return nil

	case ast.ExCons:
		if err := c.compileExpr(e.Head); err != nil {
			return err
		}
		if err := c.compileExpr(e.TailE); err != nil {
			return err
		}
		c.emit(code.Prep, 0, e.Loc)
		return nil

	case ast.ExTuple:
		for i := len(e.Elems) - 1; i >= 0; i-- {
			if err := c.compileExpr(e.Elems[i]); err != nil {
				return err
			}
		}
		c.emit(code.Tup, len(e.Elems), e.Loc)
		return nil

	case ast.ExMethodRef:
		if err := c.compileExpr(e.MethodTy); err != nil {
			return err
		}
		c.emitSym(code.Ref, e.Method, e.Loc)
		return nil

	case ast.ExTry:
		return c.compileTry(e)

	case ast.ExLambda:
		idx, err := c.compileLambda(e.LambdaArgs, e.LambdaBody, "")
		if err != nil {
			return err
		}
		c.emit(code.Push, idx, e.Loc)
		return nil

	default:
		return errAt(e.Loc, "unknown expression kind")
	}
}

func (c *Compiler) compileApp(e *ast.Expr) error {
	for i, a := range e.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
		if c.revPerArg && i > 0 {
			c.emit(code.Rev, 0, e.Loc)
		}
	}
	if !c.revPerArg && len(e.Args) > 1 {
		c.emit(code.RevN, len(e.Args), e.Loc)
	}
	if err := c.compileExpr(e.Callee); err != nil {
		return err
	}
	if e.Tail {
		c.emit(code.TCall, len(e.Args), e.Loc)
	} else {
		c.emit(code.Call, len(e.Args), e.Loc)
	}
	return nil
}

func (c *Compiler) compileIf(e *ast.Expr) error {
	if err := c.compileExpr(e.Cond); err != nil {
		return err
	}
	siteA := c.emit(code.Jmf, 0, e.Loc)
	if err := c.compileExpr(e.Then); err != nil {
		return err
	}
	siteB := c.emit(code.Jmp, 0, e.Loc)
	c.patch(siteA, c.ip())
	if err := c.compileExpr(e.Else); err != nil {
		return err
	}
	c.patch(siteB, c.ip())
	return nil
}

// StripMatchMarker disables the "Starting match" debug breadcrumb
// compileMatch otherwise emits ahead of every match expression (spec.md
// §9's documented escape hatch). It is a package-level switch rather than
// a per-Compiler field since it is meant to be set once, from the CLI's
// -strip-match-marker flag, before any compilation happens.
var StripMatchMarker bool

// compileMatch lowers a match expression, storing the scrutinee into a
// synthetic temp that every arm reloads, and appending the "Starting
// match" debug breadcrumb (spec.md §9) ahead of it, unless
// [StripMatchMarker] is set.
func (c *Compiler) compileMatch(e *ast.Expr) error {
	if !StripMatchMarker {
		c.emitPush(value.Str{Value: "Starting match"}, e.Loc)
		c.emit(code.Pop, 0, e.Loc)
	}

	if err := c.compileExpr(e.Scrutinee); err != nil {
		return err
	}
	tmp := c.freshTemp()
	tidx := c.save(tmp)
	c.emit(code.Save, tidx, e.Loc)

	var ends []int
	for _, arm := range e.Arms {
		c.emit(code.Load, tidx, arm.Loc)
		end, err := c.compileArm(arm)
		if err != nil {
			return err
		}
		ends = append(ends, end)
	}
	c.emitRaiseTail(value.ErrNoMatchClause, e.Loc)
	target := c.ip()
	for _, end := range ends {
		c.patch(end, target)
	}
	c.current().symbols.Remove(tmp)
	return nil
}

func (c *Compiler) compileArm(arm *ast.MatchArm) (int, error) {
	decls, fails := c.compilePattern(arm.Cond, false)

	guardSite := -1
	if arm.Guard != nil {
		if err := c.compileExpr(arm.Guard); err != nil {
			return 0, err
		}
		guardSite = c.emit(code.Jmf, 0, arm.Loc)
	}

	if err := c.compileExpr(arm.Body); err != nil {
		return 0, err
	}
	c.removeDecls(decls)

	end := c.emit(code.Jmp, 0, arm.Loc)
	target := c.ip()
	for _, f := range fails {
		c.patch(f, target)
	}
	if guardSite >= 0 {
		c.patch(guardSite, target)
	}
	return end, nil
}

func (c *Compiler) compileLet(e *ast.Expr) error {
	if err := c.compileExpr(e.Value); err != nil {
		return err
	}
	decls, fails := c.compilePattern(e.Bind, false)
	if err := c.compileExpr(e.Body); err != nil {
		return err
	}
	c.removeDecls(decls)

	jmpSite := c.emit(code.Jmp, 0, e.Loc)
	target := c.ip()
	for _, f := range fails {
		c.patch(f, target)
	}
	c.emitRaiseTail(value.ErrNoMatchRHS, e.Loc)
	c.patch(jmpSite, c.ip())
	return nil
}

var binOpcodes = map[ast.BinOp][]code.Opcode{
	ast.Add: {code.Add}, ast.Sub: {code.Sub}, ast.Mul: {code.Mul},
	ast.Div: {code.Div}, ast.Rem: {code.Rem},
	ast.Eq: {code.Eq}, ast.Ne: {code.Eq, code.Not},
	ast.Gt: {code.Gt}, ast.Ge: {code.Ge}, ast.Lt: {code.Lt}, ast.Le: {code.Le},
	ast.BitAnd: {code.BitAnd}, ast.BitOr: {code.BitOr}, ast.BitXor: {code.BitXor},
	ast.Shl: {code.Shl}, ast.Shr: {code.Shr},
}

func (c *Compiler) compileBinary(e *ast.Expr) error {
	if e.BOp == ast.And || e.BOp == ast.Or {
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		c.emit(code.Dup, 0, e.Loc)
		if e.BOp == ast.Or {
			c.emit(code.Not, 0, e.Loc)
		}
		site := c.emit(code.Jmf, 0, e.Loc)
		c.emit(code.Pop, 0, e.Loc)
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		c.patch(site, c.ip())
		return nil
	}

	if err := c.compileExpr(e.Left); err != nil {
		return err
	}
	if err := c.compileExpr(e.Right); err != nil {
		return err
	}
	ops, ok := binOpcodes[e.BOp]
	if !ok {
		return errAt(e.Loc, "unknown binary operator")
	}
	for _, op := range ops {
		c.emit(op, 0, e.Loc)
	}
	return nil
}

// compileTry lowers a try/rescue expression (spec.md §4.5). The handler
// entry begins with a Pop matching the VM's convention of leaving a
// stray marker on the stack when it unwinds into a handler, before the
// raised payload is bound to the rescue clause's name.
func (c *Compiler) compileTry(e *ast.Expr) error {
	siteT := c.emit(code.Try, 0, e.Loc)
	if err := c.compileExpr(e.TryBody); err != nil {
		return err
	}
	c.emit(code.EndTry, 0, e.Loc)
	siteE := c.emit(code.Jmp, 0, e.Loc)

	c.patch(siteT, c.ip())
	c.emit(code.Pop, 0, e.Loc)
	idx := c.save(e.RescueBind)
	c.emit(code.Save, idx, e.Loc)
	if err := c.compileExpr(e.Rescue); err != nil {
		return err
	}
	c.patch(siteE, c.ip())
	return nil
}
