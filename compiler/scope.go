package compiler

import "github.com/fen-lang/fen/code"

// scope holds the instruction buffer being built for one function body
// (or the top-level program). The compiler keeps a stack of these so a
// lambda nested inside another expression compiles into its own buffer
// without disturbing the enclosing one (spec.md §4.1).
type scope struct {
	instructions []code.Instruction
	symbols      *SymbolTable
}

func newScope() *scope {
	return &scope{symbols: NewSymbolTable()}
}

// ip returns the address the next emitted instruction will occupy.
func (s *scope) ip() int { return len(s.instructions) }

// emit appends an instruction and returns its address.
func (s *scope) emit(ins code.Instruction) int {
	s.instructions = append(s.instructions, ins)
	return s.ip() - 1
}

// patchOperand rewrites the integer operand of the instruction at pos —
// used to back-patch a Jmp/Jmf emitted with a placeholder 0 target once
// the real destination address is known (spec.md §4.3).
func (s *scope) patchOperand(pos, operand int) {
	s.instructions[pos].Operand = operand
}
