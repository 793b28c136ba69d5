package compiler

import (
	"os"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/value"
)

// compileOpen implements the import/relocator (spec.md §4.8): read the
// file at s.Path, compile it with the same front-end (recursively, via
// CompileTokens), then splice its constants and instructions into the
// current unit.
//
// Unlike a byte-addressed single flat code segment, a Fen [value.Fn]
// already owns its own self-contained Instructions slice — an internal
// Jmp/Jmf inside a function body is relative to that slice's own start,
// never to the surrounding program's instruction stream — so importing a
// function constant only ever needs its embedded Push(i) constant
// indices shifted by C (the current pool's length before the splice);
// its jump targets are untouched. Only the imported unit's own top-level
// instruction stream is spliced directly into the current scope's
// buffer, so only that stream's Jmp/Jmf addresses need the +B shift
// spec.md describes.
func (c *Compiler) compileOpen(s *ast.Stmt) error {
	src, err := os.ReadFile(s.Path)
	if err != nil {
		return errAt(s.Loc, "could not open %q: %v", s.Path, err)
	}

	imported, err := CompileTokens(lexer.New(string(src)))
	if err != nil {
		return err
	}

	cBase := len(c.pool.Values())
	for _, k := range imported.Constants {
		c.pool.add(relocateConstant(k, cBase))
	}

	bBase := c.ip()
	for _, ins := range imported.Instructions {
		c.current().emit(relocateInstruction(ins, cBase, bBase))
	}
	return nil
}

func relocateConstant(v value.Value, cBase int) value.Value {
	switch vv := v.(type) {
	case *value.Fn:
		shifted := make([]code.Instruction, len(vv.Instructions))
		for i, ins := range vv.Instructions {
			shifted[i] = relocateFnInstruction(ins, cBase)
		}
		return &value.Fn{Instructions: shifted, Arity: vv.Arity, Captured: vv.Captured, Name: vv.Name}
	case *value.Module:
		fields := value.NewTable()
		for name, f := range vv.Fields.Fields {
			fields.Insert(name, relocateConstant(f, cBase))
		}
		return &value.Module{Name: vv.Name, Fields: fields}
	default:
		return v
	}
}

// relocateFnInstruction shifts only the constant-pool index a function
// body's own Push carries; its Jmp/Jmf targets are self-relative and
// never touched.
func relocateFnInstruction(ins code.Instruction, cBase int) code.Instruction {
	if ins.Op == code.Push {
		return code.New(code.Push, ins.Operand+cBase, ins.Line, ins.Column)
	}
	return ins
}

// relocateInstruction shifts both the constant-pool index (Push) and the
// jump target (Jmp/Jmf/Try) of a top-level instruction being spliced
// directly into the current scope's shared buffer.
func relocateInstruction(ins code.Instruction, cBase, bBase int) code.Instruction {
	switch ins.Op {
	case code.Push:
		return code.New(code.Push, ins.Operand+cBase, ins.Line, ins.Column)
	case code.Jmp, code.Jmf, code.Try:
		return code.New(ins.Op, ins.Operand+bBase, ins.Line, ins.Column)
	default:
		return ins
	}
}
