// Package code provides bytecode instruction definitions and utilities for
// the compiler and virtual machine.
//
// This package defines the opcode set the compiler emits and the VM
// executes (spec.md §6). Unlike a byte-packed instruction encoding, Fen's
// [Instruction] is a plain record — spec.md §6 states the output contract
// literally as "an ordered sequence of (opcode, line, column) records",
// with no wire format required, so there is no encoding to design here:
// each instruction carries its own optional integer operand and/or symbol
// operand directly, plus its source position.
//
// Key components:
//   - [Opcode]: the instruction set
//   - [Instruction]: one (opcode, operand, location) record
//   - [Disassemble]: human-readable dump, used by tests
package code

import (
	"fmt"
	"strings"
)

// Opcode is a single bytecode instruction's operation.
type Opcode int

//nolint:revive
const (
	Push Opcode = iota
	Pop
	Dup
	Rev
	RevN
	Save
	Load
	Savg
	Loag
	Jmp
	Jmf
	Call
	TCall
	Try
	EndTry
	Tup
	TupGet
	Tag
	TagOf
	TagTup
	Ref
	Insert
	Prep
	Index
	Len

	Add
	Sub
	Mul
	Div
	Rem
	Eq
	Ne
	Gt
	Ge
	Lt
	Le
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Not
	Neg
)

// operandKind describes what Instruction fields an opcode's operand occupies.
type operandKind int

const (
	noOperand operandKind = iota
	intOperand
	symOperand
)

// OperandKind is the exported form of operandKind, for callers outside
// this package that need to know how to render or parse an opcode's
// operand (the assembler/disassembler in package compiler).
type OperandKind = operandKind

// Re-exported operand-kind constants.
const (
	NoOperand  = noOperand
	IntOperand = intOperand
	SymOperand = symOperand
)

// Kind reports what kind of operand op takes.
func Kind(op Opcode) OperandKind { return kinds[op] }

var reverseNames map[string]Opcode

func init() {
	reverseNames = make(map[string]Opcode, len(names))
	for op, n := range names {
		reverseNames[strings.ToUpper(n)] = op
	}
}

// Lookup finds the opcode named name (case-insensitive), for the
// assembler's textual format.
func Lookup(name string) (Opcode, bool) {
	op, ok := reverseNames[strings.ToUpper(name)]
	return op, ok
}

var names = map[Opcode]string{
	Push: "Push", Pop: "Pop", Dup: "Dup", Rev: "Rev", RevN: "RevN",
	Save: "Save", Load: "Load", Savg: "Savg", Loag: "Loag",
	Jmp: "Jmp", Jmf: "Jmf", Call: "Call", TCall: "TCall",
	Try: "Try", EndTry: "EndTry", Tup: "Tup", TupGet: "TupGet",
	Tag: "Tag", TagOf: "TagOf", TagTup: "TagTup", Ref: "Ref", Insert: "Insert",
	Prep: "Prep", Index: "Index", Len: "Len",
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Rem: "Rem",
	Eq: "Eq", Ne: "Ne", Gt: "Gt", Ge: "Ge", Lt: "Lt", Le: "Le",
	BitAnd: "BitAnd", BitOr: "BitOr", BitXor: "BitXor", Shl: "Shl", Shr: "Shr",
	Not: "Not", Neg: "Neg",
}

var kinds = map[Opcode]operandKind{
	Push: intOperand, RevN: intOperand, Save: intOperand, Load: intOperand,
	Jmp: intOperand, Jmf: intOperand, Call: intOperand,
	TCall: intOperand, Try: intOperand, Tup: intOperand, TupGet: intOperand,
	Savg: symOperand, Loag: symOperand, Tag: symOperand, Ref: symOperand,
	Insert: symOperand,
}

// Name returns the mnemonic for an opcode.
func (op Opcode) Name() string {
	if n, ok := names[op]; ok {
		return n
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instruction is one (opcode, operand, location) record.
type Instruction struct {
	Op Opcode

	// Operand holds the integer operand for opcodes that take an index,
	// count, or jump address (Push, Save, Load, RevN, Jmp, Jmf, Call,
	// TCall, Try, Tup, TupGet). Unused by other opcodes.
	Operand int

	// Sym holds the symbol operand for opcodes that take a name (Savg,
	// Loag, Tag, Ref, Insert). Unused by other opcodes.
	Sym string

	Line   int
	Column int
}

// New builds an Instruction with an integer operand at the given location.
func New(op Opcode, operand int, line, col int) Instruction {
	return Instruction{Op: op, Operand: operand, Line: line, Column: col}
}

// NewSym builds an Instruction with a symbol operand at the given location.
func NewSym(op Opcode, sym string, line, col int) Instruction {
	return Instruction{Op: op, Sym: sym, Line: line, Column: col}
}

// String renders a single instruction for disassembly.
func (ins Instruction) String() string {
	switch kinds[ins.Op] {
	case intOperand:
		return fmt.Sprintf("%s %d", ins.Op.Name(), ins.Operand)
	case symOperand:
		return fmt.Sprintf("%s %s", ins.Op.Name(), ins.Sym)
	default:
		return ins.Op.Name()
	}
}

// Disassemble renders a sequence of instructions, one per line, prefixed
// with its address, for debugging.
func Disassemble(code []Instruction) string {
	var b strings.Builder
	for i, ins := range code {
		fmt.Fprintf(&b, "%04d %s\n", i, ins.String())
	}
	return b.String()
}
