package compiler

import (
	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// compileLambda lowers a lambda's parameter patterns and body into a
// fresh scope (spec.md §4.6), interns the resulting [value.Fn], and
// returns its constant-pool index. name, when non-empty, is attached to
// the Fn purely for REPL/debugging display (Inspect); it plays no role
// in name resolution since Fen's lambdas are structurally anonymous.
func (c *Compiler) compileLambda(params []*ast.Pattern, body *ast.Expr, name string) (int, error) {
	c.pushScope()

	var fails []int
	for _, p := range params {
		_, f := c.compilePattern(p, false)
		fails = append(fails, f...)
	}

	if err := c.compileExpr(body); err != nil {
		c.popScope()
		return 0, err
	}

	endSite := c.emit(code.Jmp, 0, body.Loc)
	target := c.ip()
	for _, f := range fails {
		c.patch(f, target)
	}
	c.emitRaiseTail(value.ErrNoMatchRHS, body.Loc)
	c.patch(endSite, c.ip())

	s := c.popScope()
	fn := &value.Fn{Instructions: s.instructions, Arity: len(params), Name: name}
	return c.pool.Intern(fn), nil
}
