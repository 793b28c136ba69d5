// Package vm is a small reference stack machine that executes the
// bytecode package compiler produces. It is the external collaborator
// spec.md §1 places deliberately out of scope for the compiler core —
// included here only so the compiler's output is testable end-to-end
// (spec.md §8's "Executing yields N" scenarios), grounded in the
// teacher's vm/frame.go.
package vm

import "github.com/fen-lang/fen/value"

// Frame tracks one call's execution state: the function whose
// instructions are being run, the next instruction's index, and its
// local-variable slots.
//
// Unlike the teacher's Frame, there is no basePointer into a shared
// stack: a Fen [value.Fn] owns a fully self-contained instruction
// slice, and each frame owns its own locals slice rather than carving a
// window out of the shared operand stack, since nothing in the
// compiled output (spec.md §3, §4.1) records how many local slots a
// function needs ahead of time — Save(i) simply grows the frame's
// locals as needed.
type Frame struct {
	fn     *value.Fn
	ip     int
	locals []value.Value
}

// newFrame creates a frame positioned at the first instruction of fn.
func newFrame(fn *value.Fn) *Frame {
	return &Frame{fn: fn}
}

// reset repositions an existing frame at the first instruction of fn,
// discarding its locals — used by TCall to reuse the current frame
// instead of pushing a new one (spec.md glossary, "Tail call").
func (f *Frame) reset(fn *value.Fn) {
	f.fn = fn
	f.ip = 0
	f.locals = nil
}

func (f *Frame) save(i int, v value.Value) {
	for len(f.locals) <= i {
		f.locals = append(f.locals, value.Nil{})
	}
	f.locals[i] = v
}

func (f *Frame) load(i int) value.Value {
	if i < 0 || i >= len(f.locals) {
		return value.Nil{}
	}
	return f.locals[i]
}
