// Package compiler transforms abstract syntax tree (AST) nodes — or a
// raw token stream — into bytecode instructions for the Fen virtual
// machine.
//
// This package provides a compiler that traverses a program and
// generates the (opcode, line, column) instruction records and constant
// pool a companion stack VM executes. The compiler handles expression
// evaluation, control flow, pattern matching, lambda compilation,
// algebraic type declarations, and module imports.
//
// # Architecture
//
// The compiler uses a stack-based bytecode generation approach with:
//
//   - A stack of compilation scopes, one per function body, each owning
//     its own instruction buffer and a local-name-to-slot map
//   - A single shared constant pool, deduplicating scalar constants and
//     the empty list; module values (which compare by identity, never
//     structure) and function values always get a slot of their own
//   - Forward-jump patching: placeholder `Jmp(0)`/`Jmf(0)`/`Try(0)`
//     instructions rewritten in place once their target address is known
//
// Unlike the teacher's Monkey compiler, scope lookup here is strictly
// single-level: a name unresolved in the current scope compiles to a
// global load rather than walking outer scopes for a free variable —
// this language's closures are expected to have already been desugared
// into explicit arguments upstream of this core.
//
// Two front-ends share this emitter: [CompileAST] consumes a pre-built
// *ast.Program, and [CompileTokens] compiles directly from a token
// stream, one top-level item at a time, without ever materializing a
// whole-program AST. Both lower every node the same way except
// applications: the token front-end orders call arguments with a `Rev`
// after each argument past the first instead of a single `RevN(n)`.
package compiler

import (
	"fmt"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/code"
	"github.com/fen-lang/fen/value"
)

// Bytecode is the compiled artifact: the linear instruction stream and
// the constant pool it references.
type Bytecode struct {
	Instructions []code.Instruction
	Constants    []value.Value
}

// ParseError reports a position-tagged compilation failure — the single
// error kind spec.md §7 names for the whole front-end, covering both
// malformed input the parser already rejected and anything the emitter
// itself refuses (an unreadable `open`ed file, an unknown pattern
// construct).
type ParseError struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("[%d:%d] %s", e.Line, e.Column, e.Message)
}

func errAt(loc ast.Location, format string, args ...any) *ParseError {
	return &ParseError{Line: loc.Line, Column: loc.Column, Message: fmt.Sprintf(format, args...)}
}

// Compiler holds all state shared across a single compilation unit: the
// scope stack, the constant pool, and the synthetic-temp-name counter.
type Compiler struct {
	pool         *ConstantPool
	scopes       []*scope
	freshCounter int
	globals      *Globals

	// revPerArg selects the token-driven front-end's call-argument
	// ordering (spec.md §9: a `Rev` after each argument past the first)
	// instead of the AST front-end's single `RevN(n)`. Both orderings
	// are correct so long as the callee receives arguments in the
	// declared order; this is a deliberately preserved duplicated quirk
	// between the two front-ends, not a bug.
	revPerArg bool
}

// New creates a compiler with a single outer scope and an empty constant pool.
func New() *Compiler {
	return &Compiler{pool: NewConstantPool(), scopes: []*scope{newScope()}, globals: NewGlobals()}
}

// GlobalNames returns every top-level name installed by a `def`, `let`,
// or `type` declaration so far, in no particular order — used by the
// REPL to list bindings introduced by a line of input.
func (c *Compiler) GlobalNames() []string {
	names := make([]string, 0, len(c.globals.names))
	for n := range c.globals.names {
		names = append(names, n)
	}
	return names
}

// CompileAST compiles a complete program already parsed into an AST.
func CompileAST(prog *ast.Program) (*Bytecode, error) {
	c := New()
	for _, stmt := range prog.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	return &Bytecode{Instructions: c.current().instructions, Constants: c.pool.Values()}, nil
}

func (c *Compiler) current() *scope { return c.scopes[len(c.scopes)-1] }

func (c *Compiler) pushScope() *scope {
	s := newScope()
	c.scopes = append(c.scopes, s)
	return s
}

func (c *Compiler) popScope() *scope {
	s := c.current()
	c.scopes = c.scopes[:len(c.scopes)-1]
	return s
}

func (c *Compiler) emit(op code.Opcode, operand int, loc ast.Location) int {
	return c.current().emit(code.New(op, operand, loc.Line, loc.Column))
}

func (c *Compiler) emitSym(op code.Opcode, sym string, loc ast.Location) int {
	return c.current().emit(code.NewSym(op, sym, loc.Line, loc.Column))
}

// defineGlobal emits Savg for name and records it in the compiler's
// known-globals set (exposed via [Compiler.GlobalNames]).
func (c *Compiler) defineGlobal(name string, loc ast.Location) int {
	c.globals.Define(name)
	return c.emitSym(code.Savg, name, loc)
}

func (c *Compiler) emitPush(v value.Value, loc ast.Location) int {
	return c.emit(code.Push, c.pool.Intern(v), loc)
}

func (c *Compiler) patch(pos, target int) { c.current().patchOperand(pos, target) }
func (c *Compiler) ip() int               { return c.current().ip() }

func (c *Compiler) save(name string) int {
	if sym, ok := c.current().symbols.ResolveLocal(name); ok {
		return sym.Index
	}
	return c.current().symbols.DefineLocal(name).Index
}

func (c *Compiler) lookup(name string) (int, bool) {
	sym, ok := c.current().symbols.ResolveLocal(name)
	return sym.Index, ok
}

func (c *Compiler) removeDecls(names []string) {
	for _, n := range names {
		c.current().symbols.Remove(n)
	}
}

// freshTemp produces the next synthetic local name of the form `#N`,
// used by the pattern compiler to hold a matchee under inspection.
func (c *Compiler) freshTemp() string {
	n := fmt.Sprintf("#%d", c.freshCounter)
	c.freshCounter++
	return n
}

func litValue(l ast.Literal) value.Value {
	switch l.Kind {
	case ast.LitNum:
		return value.Number{Value: l.Num}
	case ast.LitStr:
		return value.Str{Value: l.Str}
	case ast.LitSym:
		return value.Sym{Value: l.Sym}
	case ast.LitBool:
		return value.Bool{Value: l.Bool}
	default:
		return value.Nil{}
	}
}

// emitRaiseTail emits the standard "pattern match failed" tail: push the
// message, push the `MatchError` tag symbol, then call the prelude's
// `raise` with both (spec.md §4.5, §4.6, §7). message is one of
// [value.ErrNoMatchRHS] (a let/lambda-argument/top-level-let binding
// pattern failed) or [value.ErrNoMatchClause] (every match arm failed).
func (c *Compiler) emitRaiseTail(message string, loc ast.Location) {
	c.emitPush(value.Str{Value: message}, loc)
	c.emitPush(value.Sym{Value: "MatchError"}, loc)
	c.emitSym(code.Loag, "raise", loc)
	c.emit(code.Call, 2, loc)
}

// compileStmt compiles one top-level statement and resets the
// synthetic-name counter afterward (spec.md §4.9: "synthetic names live
// only within a single top-level item").
func (c *Compiler) compileStmt(s *ast.Stmt) error {
	defer func() { c.freshCounter = 0 }()

	switch s.Kind {
	case ast.StDef:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		c.defineGlobal(s.Name, s.Loc)
		return nil

	case ast.StLet:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		decls, fails := c.compilePattern(s.Bind, true)
		jmpSite := c.emit(code.Jmp, 0, s.Loc)
		target := c.ip()
		for _, f := range fails {
			c.patch(f, target)
		}
		c.emitRaiseTail(value.ErrNoMatchRHS, s.Loc)
		c.patch(jmpSite, c.ip())
		c.removeDecls(decls)
		return nil

	case ast.StType:
		return c.compileTypeDecl(s)

	case ast.StOpen:
		return c.compileOpen(s)

	case ast.StExpr:
		return c.compileExpr(s.Value)

	default:
		return errAt(s.Loc, "unknown statement kind")
	}
}
