package vm

import (
	"fmt"

	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/compiler"
	"github.com/fen-lang/fen/value"
)

const maxFrames = 1 << 20

// handler is one installed Try site: where to resume, and how far to
// unwind the frame stack and operand stack before resuming there
// (spec.md §4.5, "Try body rescue(bind) => rescue").
type handler struct {
	frameDepth int
	stackDepth int
	target     int
}

// VM executes a compiled unit against a shared operand stack, a global
// environment, and a stack of call frames — the minimal stack machine
// spec.md's opcode table (§6) describes, grounded in the teacher's
// frame-based design but without a frame's basePointer into a shared
// stack, since Fen's locals are a per-frame slice (see frame.go).
type VM struct {
	stack     []value.Value
	constants []value.Value

	globals map[string]value.Value
	frames  []*Frame

	handlers []handler
}

// New creates a VM with a fresh prelude global environment ([value.NewGlobalEnv]).
func New(bc *compiler.Bytecode) *VM {
	return NewWithGlobals(bc, value.NewGlobalEnv())
}

// NewWithGlobals creates a VM sharing an existing global environment —
// used by the REPL to carry bindings from one compiled line to the next.
func NewWithGlobals(bc *compiler.Bytecode, globals map[string]value.Value) *VM {
	top := &value.Fn{Instructions: bc.Instructions}
	return &VM{
		constants: bc.Constants,
		globals:   globals,
		frames:    []*Frame{newFrame(top)},
	}
}

// Globals exposes the shared global environment, so a REPL can list or
// reuse bindings across successive compilations.
func (m *VM) Globals() map[string]value.Value { return m.globals }

func (m *VM) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() value.Value {
	n := len(m.stack) - 1
	v := m.stack[n]
	m.stack = m.stack[:n]
	return v
}

func (m *VM) top() value.Value { return m.stack[len(m.stack)-1] }

func (m *VM) currentFrame() *Frame { return m.frames[len(m.frames)-1] }

// Run drives the fetch-decode-execute loop to completion and returns the
// single value left on the stack by the outermost (program-level) frame.
func (m *VM) Run() (value.Value, error) {
	for {
		frame := m.currentFrame()
		if frame.ip >= len(frame.fn.Instructions) {
			if len(m.frames) == 1 {
				break
			}
			m.frames = m.frames[:len(m.frames)-1]
			continue
		}

		ins := frame.fn.Instructions[frame.ip]
		frame.ip++

		if err := m.execute(ins); err != nil {
			if !m.unwind(err) {
				return nil, err
			}
		}
	}
	if len(m.stack) == 0 {
		return value.Nil{}, nil
	}
	return m.top(), nil
}

// unwind resolves a runtime error against the innermost active handler,
// truncating the frame and operand stacks to where Try installed it and
// resuming at its target with the raised value ready for the compiled
// Pop; Save(slot) sequence to bind (spec.md §4.5). Returns false if no
// handler is active, meaning the error should propagate out of Run.
func (m *VM) unwind(err error) bool {
	if len(m.handlers) == 0 {
		return false
	}
	h := m.handlers[len(m.handlers)-1]
	m.handlers = m.handlers[:len(m.handlers)-1]

	m.frames = m.frames[:h.frameDepth]
	m.stack = m.stack[:h.stackDepth]

	m.push(payloadOf(err))
	m.push(value.Nil{})

	m.currentFrame().ip = h.target
	return true
}

// payloadOf extracts the value a rescue clause should bind: for a
// [value.RuntimeError] built by [value.Raise] (reason, detail), this is
// the reason alone, matching the original's `raise(msg, tag)` contract
// where rescue only ever sees the message (spec.md §8 scenario 6: `try
// raise("e", E) rescue e => e` yields `"e"`, not a (msg, tag) pair).
func payloadOf(err error) value.Value {
	if re, ok := err.(*value.RuntimeError); ok {
		if t, ok := re.Payload.(value.Tuple); ok && len(t.Elems) > 0 {
			return t.Elems[0]
		}
	}
	return value.Str{Value: err.Error()}
}

func (m *VM) execute(ins code.Instruction) error {
	switch ins.Op {
	case code.Push:
		if ins.Operand < 0 || ins.Operand >= len(m.constants) {
			return fmt.Errorf("constant index %d out of range", ins.Operand)
		}
		m.push(m.constants[ins.Operand])

	case code.Pop:
		m.pop()

	case code.Dup:
		m.push(m.top())

	case code.Rev:
		a, b := m.pop(), m.pop()
		m.push(a)
		m.push(b)

	case code.RevN:
		n := ins.Operand
		s := m.stack[len(m.stack)-n:]
		for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
			s[i], s[j] = s[j], s[i]
		}

	case code.Save:
		m.currentFrame().save(ins.Operand, m.pop())

	case code.Load:
		m.push(m.currentFrame().load(ins.Operand))

	case code.Savg:
		m.globals[ins.Sym] = m.pop()

	case code.Loag:
		v, ok := m.globals[ins.Sym]
		if !ok {
			return fmt.Errorf("undefined global %q", ins.Sym)
		}
		m.push(v)

	case code.Jmp:
		m.currentFrame().ip = ins.Operand

	case code.Jmf:
		if !value.Truthy(m.pop()) {
			m.currentFrame().ip = ins.Operand
		}

	case code.Call:
		return m.call(ins.Operand, false)

	case code.TCall:
		return m.call(ins.Operand, true)

	case code.Try:
		m.handlers = append(m.handlers, handler{
			frameDepth: len(m.frames),
			stackDepth: len(m.stack),
			target:     ins.Operand,
		})

	case code.EndTry:
		if len(m.handlers) > 0 {
			m.handlers = m.handlers[:len(m.handlers)-1]
		}

	case code.Tup:
		elems := make([]value.Value, ins.Operand)
		for i := range elems {
			elems[i] = m.pop()
		}
		m.push(value.Tuple{Elems: elems})

	case code.TupGet:
		t, ok := m.pop().(value.Tuple)
		if !ok {
			return fmt.Errorf("TupGet: not a tuple")
		}
		if ins.Operand < 0 || ins.Operand >= len(t.Elems) {
			return fmt.Errorf("TupGet: index %d out of range", ins.Operand)
		}
		m.push(t.Elems[ins.Operand])

	case code.Tag:
		mod, ok := m.pop().(*value.Module)
		if !ok {
			return fmt.Errorf("Tag: not a module")
		}
		payload, ok := m.pop().(value.Tuple)
		if !ok {
			return fmt.Errorf("Tag: not a tuple payload")
		}
		m.push(&value.Tagged{Module: mod, TagPath: ins.Sym, Payload: payload})

	case code.TagOf:
		t, ok := m.pop().(*value.Tagged)
		if !ok {
			return fmt.Errorf("TagOf: not a tagged value")
		}
		m.push(value.Str{Value: t.TagPath})

	case code.TagTup:
		t, ok := m.pop().(*value.Tagged)
		if !ok {
			return fmt.Errorf("TagTup: not a tagged value")
		}
		m.push(t.Payload)

	case code.Ref:
		return m.ref(ins.Sym)

	case code.Insert:
		v := m.pop()
		tbl, ok := m.top().(*value.Table)
		if !ok {
			return fmt.Errorf("Insert: not a table")
		}
		tbl.Insert(ins.Sym, v)

	case code.Prep:
		list, ok := m.pop().(*value.List)
		if !ok {
			return fmt.Errorf("Prep: not a list")
		}
		head := m.pop()
		m.push(value.Cons(head, list))

	case code.Index:
		idx, ok := m.pop().(value.Number)
		if !ok {
			return fmt.Errorf("Index: not a number")
		}
		list, ok := m.pop().(*value.List)
		if !ok {
			return fmt.Errorf("Index: not a list")
		}
		n := int(idx.Value)
		cur := list
		for i := 0; i < n && cur != nil; i++ {
			cur = cur.Tail
		}
		if cur == nil {
			return fmt.Errorf("Index: out of range")
		}
		m.push(cur.Head)

	case code.Len:
		switch v := m.pop().(type) {
		case *value.List:
			m.push(value.Number{Value: float64(v.Len())})
		case value.Tuple:
			m.push(value.Number{Value: float64(len(v.Elems))})
		case value.Str:
			m.push(value.Number{Value: float64(len(v.Value))})
		default:
			return fmt.Errorf("Len: unsupported operand")
		}

	case code.Not:
		m.push(value.Bool{Value: !value.Truthy(m.pop())})

	case code.Neg:
		n, ok := m.pop().(value.Number)
		if !ok {
			return fmt.Errorf("Neg: not a number")
		}
		m.push(value.Number{Value: -n.Value})

	default:
		return m.binary(ins.Op)
	}
	return nil
}

// ref implements field access on the top (module/table), spec.md §6's
// `Ref(sym)`.
func (m *VM) ref(sym string) error {
	switch v := m.pop().(type) {
	case *value.Module:
		field, ok := v.Get(sym)
		if !ok {
			return fmt.Errorf("module %s has no member %q", v.Name, sym)
		}
		m.push(field)
	case *value.Table:
		field, ok := v.Get(sym)
		if !ok {
			return fmt.Errorf("table has no field %q", sym)
		}
		m.push(field)
	default:
		return fmt.Errorf("Ref: not a module or table")
	}
	return nil
}

// call applies the value on top of the stack to the n arguments below
// it (spec.md §4.5, "Application"). tail reuses the current frame
// instead of pushing a new one (spec.md glossary, "Tail call").
func (m *VM) call(n int, tail bool) error {
	callee := m.pop()
	switch c := callee.(type) {
	case *value.Fn:
		if len(m.frames) >= maxFrames {
			return fmt.Errorf("call stack exceeded")
		}
		if tail {
			m.currentFrame().reset(c)
		} else {
			m.frames = append(m.frames, newFrame(c))
		}
		return nil

	case *value.Builtin:
		args := make([]value.Value, n)
		for i := range args {
			args[i] = m.pop()
		}
		result, err := c.Fn(args)
		if err != nil {
			return err
		}
		if result == nil {
			result = value.Nil{}
		}
		m.push(result)
		return nil

	default:
		return fmt.Errorf("not callable: %s", callee.Type())
	}
}

func (m *VM) binary(op code.Opcode) error {
	b := m.pop()
	a := m.pop()

	switch op {
	case code.Eq:
		m.push(value.Bool{Value: value.Equal(a, b)})
		return nil
	case code.Ne:
		m.push(value.Bool{Value: !value.Equal(a, b)})
		return nil
	}

	an, aok := a.(value.Number)
	bn, bok := b.(value.Number)
	if !aok || !bok {
		return fmt.Errorf("operator %s requires numbers, got %s and %s", op.Name(), a.Type(), b.Type())
	}

	switch op {
	case code.Add:
		m.push(value.Number{Value: an.Value + bn.Value})
	case code.Sub:
		m.push(value.Number{Value: an.Value - bn.Value})
	case code.Mul:
		m.push(value.Number{Value: an.Value * bn.Value})
	case code.Div:
		m.push(value.Number{Value: an.Value / bn.Value})
	case code.Rem:
		m.push(value.Number{Value: float64(int64(an.Value) % int64(bn.Value))})
	case code.Gt:
		m.push(value.Bool{Value: an.Value > bn.Value})
	case code.Ge:
		m.push(value.Bool{Value: an.Value >= bn.Value})
	case code.Lt:
		m.push(value.Bool{Value: an.Value < bn.Value})
	case code.Le:
		m.push(value.Bool{Value: an.Value <= bn.Value})
	case code.BitAnd:
		m.push(value.Number{Value: float64(int64(an.Value) & int64(bn.Value))})
	case code.BitOr:
		m.push(value.Number{Value: float64(int64(an.Value) | int64(bn.Value))})
	case code.BitXor:
		m.push(value.Number{Value: float64(int64(an.Value) ^ int64(bn.Value))})
	case code.Shl:
		m.push(value.Number{Value: float64(int64(an.Value) << int64(bn.Value))})
	case code.Shr:
		m.push(value.Number{Value: float64(int64(an.Value) >> int64(bn.Value))})
	default:
		return fmt.Errorf("unknown opcode %s", op.Name())
	}
	return nil
}
