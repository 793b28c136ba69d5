package compiler

import (
	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// compilePattern lowers pat against the value implicitly on top of the
// VM stack (spec.md §4.4). It returns the names bound on a successful
// match and the patch sites of every `Jmf(0)` that must jump to the
// next clause's entry on failure. global selects `Savg` instead of
// `Save` for identifier bindings, used by top-level `let`.
func (c *Compiler) compilePattern(pat *ast.Pattern, global bool) (decls []string, fails []int) {
	loc := pat.Loc
	switch pat.Kind {
	case ast.PatLit:
		c.emitPush(litValue(pat.Lit), loc)
		c.emit(code.Eq, 0, loc)
		fails = append(fails, c.emit(code.Jmf, 0, loc))

	case ast.PatID:
		if pat.IsWildcard() {
			c.emit(code.Pop, 0, loc)
			return nil, nil
		}
		if global {
			c.defineGlobal(pat.Name, loc)
		} else {
			idx := c.save(pat.Name)
			c.emit(code.Save, idx, loc)
		}
		decls = append(decls, pat.Name)

	case ast.PatVariant:
		tmp := c.freshTemp()
		c.emit(code.Dup, 0, loc)
		tidx := c.save(tmp)
		c.emit(code.Save, tidx, loc)

		c.emit(code.TagOf, 0, loc)
		c.emitPush(value.Str{Value: pat.TagName()}, loc)
		c.emit(code.Eq, 0, loc)
		fails = append(fails, c.emit(code.Jmf, 0, loc))

		c.emit(code.Load, tidx, loc)
		c.emit(code.TagTup, 0, loc)
		c.emit(code.Len, 0, loc)
		c.emitPush(value.Number{Value: float64(len(pat.Args))}, loc)
		c.emit(code.Eq, 0, loc)
		fails = append(fails, c.emit(code.Jmf, 0, loc))

		for i, arg := range pat.Args {
			c.emit(code.Load, tidx, loc)
			c.emit(code.TagTup, 0, loc)
			c.emit(code.TupGet, i, loc)
			d, f := c.compilePattern(arg, global)
			decls = append(decls, d...)
			fails = append(fails, f...)
		}
		c.current().symbols.Remove(tmp)

	case ast.PatTuple:
		tmp := c.freshTemp()
		tidx := c.save(tmp)
		c.emit(code.Save, tidx, loc)

		c.emit(code.Load, tidx, loc)
		c.emit(code.Len, 0, loc)
		c.emitPush(value.Number{Value: float64(len(pat.Args))}, loc)
		c.emit(code.Eq, 0, loc)
		fails = append(fails, c.emit(code.Jmf, 0, loc))

		for i, arg := range pat.Args {
			c.emit(code.Load, tidx, loc)
			c.emit(code.TupGet, i, loc)
			d, f := c.compilePattern(arg, global)
			decls = append(decls, d...)
			fails = append(fails, f...)
		}
		c.current().symbols.Remove(tmp)

	case ast.PatList:
		tmp := c.freshTemp()
		tidx := c.save(tmp)
		c.emit(code.Save, tidx, loc)

		c.emit(code.Load, tidx, loc)
		c.emitSym(code.Loag, "List", loc)
		c.emitSym(code.Ref, "head", loc)
		c.emit(code.Call, 1, loc)
		dh, fh := c.compilePattern(pat.Head, global)
		decls = append(decls, dh...)
		fails = append(fails, fh...)

		c.emit(code.Load, tidx, loc)
		c.emitSym(code.Loag, "List", loc)
		c.emitSym(code.Ref, "tail", loc)
		c.emit(code.Call, 1, loc)
		dt, ft := c.compilePattern(pat.Tail, global)
		decls = append(decls, dt...)
		fails = append(fails, ft...)

		c.current().symbols.Remove(tmp)

	case ast.PatEmptyList:
		c.emitPush(value.EmptyList, loc)
		c.emit(code.Eq, 0, loc)
		fails = append(fails, c.emit(code.Jmf, 0, loc))
	}
	return decls, fails
}
