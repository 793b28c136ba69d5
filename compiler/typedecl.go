package compiler

import (
	"strings"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// compileTypeDecl lowers a `type T = | V1(args) | ... def m = ... end`
// declaration into a self-referential module value (spec.md §4.7): the
// module's constant-pool slot is reserved before any constructor closure
// is compiled, since a non-nullary constructor's body references the
// module by that very index; nullary variants are patched into the
// module's field table only after it has been installed, since they
// need the finished module handle to build their Tagged value. Finally
// the module is bound as a global under the type's name, and each variant
// under its short name, so `Some(3)` or `None` resolve without the module
// prefix.
func (c *Compiler) compileTypeDecl(s *ast.Stmt) error {
	modIdx := c.pool.Reserve()
	mod := value.NewModule(s.TypeName)

	for _, m := range s.Members {
		lambda := m.Value
		idx, err := c.compileLambda(lambda.LambdaArgs, lambda.LambdaBody, m.Name)
		if err != nil {
			return err
		}
		mod.Fields.Insert(m.Name, c.pool.Get(idx))
	}

	var nullary []ast.Variant
	for _, v := range s.Variants {
		if len(v.Args) == 0 {
			nullary = append(nullary, v)
			continue
		}
		c.pushScope()
		c.emit(code.Tup, len(v.Args), s.Loc)
		c.emit(code.Push, modIdx, s.Loc)
		c.emitSym(code.Tag, strings.Join(v.Path, "."), s.Loc)
		scope := c.popScope()
		ctor := &value.Fn{Instructions: scope.instructions, Arity: len(v.Args), Name: v.ShortName}
		mod.Fields.Insert(v.ShortName, ctor)
	}

	c.pool.Fill(modIdx, mod)

	for _, v := range nullary {
		tagPath := strings.Join(v.Path, ".")
		mod.Fields.Insert(v.ShortName, &value.Tagged{Module: mod, TagPath: tagPath, Payload: value.Tuple{}})
	}

	c.emit(code.Push, modIdx, s.Loc)
	c.defineGlobal(s.TypeName, s.Loc)

	for _, v := range s.Variants {
		c.emit(code.Push, modIdx, s.Loc)
		c.emitSym(code.Ref, v.ShortName, s.Loc)
		c.defineGlobal(v.ShortName, s.Loc)
	}
	return nil
}
