package compiler

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// This file implements a human-readable/writable textual form of a
// compiled unit, grounded on the pseudo-assembly round-trip in
// mna-nenuphar/lang/compiler/asm.go: a line-oriented format with a
// `constants:` section followed by a `code:` section, intended to drive
// the VM directly in tests without going through the lexer/parser/
// pattern compiler. Only the scalar constant kinds (number, string, sym,
// bool, nil) are representable here — [value.Fn], [value.Module], and
// [value.Tagged] are always compiler-produced and have no surface syntax
// of their own, so code exercising those goes through [CompileAST] or
// [CompileTokens] instead.
//
// Format:
//
//	constants:
//		number 3.5
//		string "abc"
//		sym foo
//		bool true
//		nil
//	code:
//		push 0        # operand is a constant-pool index
//		push 1
//		add
//		savg x        # operand is a symbol
//		jmf 6         # operand is a code index, not a byte address
const (
	secConstants = "constants:"
	secCode      = "code:"
)

// Assemble parses src in the format above into a [Bytecode].
func Assemble(src []byte) (*Bytecode, error) {
	a := &asmReader{s: bufio.NewScanner(bytes.NewReader(src))}
	fields := a.next()

	if len(fields) > 0 && fields[0] == secConstants {
		fields = a.constants()
	}
	if a.err != nil {
		return nil, a.err
	}
	if len(fields) == 0 || fields[0] != secCode {
		return nil, fmt.Errorf("expected %q section, found %v", secCode, fields)
	}
	bc, err := a.codeSection()
	if err != nil {
		return nil, err
	}
	bc.Constants = a.constants_
	return bc, nil
}

type asmReader struct {
	s          *bufio.Scanner
	rawLine    string
	constants_ []value.Value
	err        error
}

func (a *asmReader) next() []string {
	a.rawLine = ""
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		line := a.s.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		for i, f := range fields {
			if strings.HasPrefix(f, "#") {
				fields = fields[:i]
				break
			}
		}
		a.rawLine = line
		return fields
	}
	a.err = a.s.Err()
	return nil
}

func (a *asmReader) constants() []string {
	var fields []string
	for fields = a.next(); len(fields) > 0 && fields[0] != secCode; fields = a.next() {
		v, err := parseConstant(fields, a.rawLine)
		if err != nil {
			a.err = err
			return nil
		}
		a.constants_ = append(a.constants_, v)
	}
	return fields
}

func parseConstant(fields []string, rawLine string) (value.Value, error) {
	switch fields[0] {
	case "number":
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid number constant: %q", rawLine)
		}
		n, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number constant %q: %w", fields[1], err)
		}
		return value.Number{Value: n}, nil
	case "string":
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rawLine), "string"))
		s, err := strconv.Unquote(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid string constant %q: %w", rest, err)
		}
		return value.Str{Value: s}, nil
	case "sym":
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid sym constant: %q", rawLine)
		}
		return value.Sym{Value: fields[1]}, nil
	case "bool":
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid bool constant: %q", rawLine)
		}
		return value.Bool{Value: fields[1] == "true"}, nil
	case "nil":
		return value.Nil{}, nil
	default:
		return nil, fmt.Errorf("unknown constant kind: %s", fields[0])
	}
}

func (a *asmReader) codeSection() (*Bytecode, error) {
	var ins []code.Instruction
	for fields := a.next(); len(fields) > 0; fields = a.next() {
		name := strings.ToUpper(fields[0])
		op, ok := code.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown opcode: %s", fields[0])
		}
		switch code.Kind(op) {
		case code.IntOperand:
			if len(fields) != 2 {
				return nil, fmt.Errorf("opcode %s expects one integer operand, got %d fields", name, len(fields)-1)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("invalid operand for %s: %w", name, err)
			}
			ins = append(ins, code.New(op, n, 0, 0))
		case code.SymOperand:
			if len(fields) != 2 {
				return nil, fmt.Errorf("opcode %s expects one symbol operand, got %d fields", name, len(fields)-1)
			}
			ins = append(ins, code.NewSym(op, fields[1], 0, 0))
		default:
			if len(fields) != 1 {
				return nil, fmt.Errorf("opcode %s expects no operand, got %d fields", name, len(fields)-1)
			}
			ins = append(ins, code.New(op, 0, 0, 0))
		}
	}
	return &Bytecode{Instructions: ins}, nil
}

// Disassemble renders bc back into the textual format [Assemble] reads.
// Constant rendering covers the scalar kinds only; a non-scalar constant
// (a [value.Fn], [value.Module], or [value.Tagged] emitted by a type
// declaration or lambda) is written as a `# unrepresentable` comment
// line rather than failing the whole dump, since a disassembly is
// primarily a debugging aid.
func Disassemble(bc *Bytecode) []byte {
	var buf bytes.Buffer
	if len(bc.Constants) > 0 {
		buf.WriteString(secConstants + "\n")
		for i, c := range bc.Constants {
			buf.WriteString("\t" + renderConstant(c) + fmt.Sprintf("\t# %03d\n", i))
		}
	}
	buf.WriteString(secCode + "\n")
	for i, ins := range bc.Instructions {
		buf.WriteString("\t" + strings.ToLower(ins.Op.Name()))
		switch code.Kind(ins.Op) {
		case code.IntOperand:
			buf.WriteString(fmt.Sprintf(" %d", ins.Operand))
		case code.SymOperand:
			buf.WriteString(" " + ins.Sym)
		}
		buf.WriteString(fmt.Sprintf("\t# %03d\n", i))
	}
	return buf.Bytes()
}

func renderConstant(v value.Value) string {
	switch vv := v.(type) {
	case value.Number:
		return fmt.Sprintf("number %g", vv.Value)
	case value.Str:
		return fmt.Sprintf("string %q", vv.Value)
	case value.Sym:
		return "sym " + vv.Value
	case value.Bool:
		return fmt.Sprintf("bool %t", vv.Value)
	case value.Nil:
		return "nil"
	default:
		return fmt.Sprintf("# unrepresentable constant of type %T", v)
	}
}
