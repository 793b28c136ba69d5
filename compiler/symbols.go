package compiler

// SymbolScope distinguishes where a name resolves to.
type SymbolScope string

const (
	// GlobalScope is a top-level `def`/`let` binding, stored by name
	// (Savg/Loag).
	GlobalScope SymbolScope = "GLOBAL"

	// LocalScope is a binding local to the current function scope, stored
	// by slot index (Save/Load).
	LocalScope SymbolScope = "LOCAL"
)

// Symbol names a single resolved binding.
type Symbol struct {
	Name  string
	Scope SymbolScope
	Index int
}

// SymbolTable resolves names within exactly one function scope. Fen's
// scoping is deliberately single-level (spec.md §4.1): a lambda body can
// see its own parameters and the globals installed by top-level def/let,
// but not an enclosing lambda's locals — there is no free-variable
// capture to resolve, unlike the teacher's closure-supporting table.
// The lambda compiler leaves a compiled Fn's Captured list empty
// (spec.md §3, "Fn { ..., captured_args = [] }"); nothing here resolves
// names into it.
type SymbolTable struct {
	locals         map[string]Symbol
	numDefinitions int
}

// NewSymbolTable creates an empty single-level symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{locals: make(map[string]Symbol)}
}

// DefineLocal adds a local binding at the next free slot.
func (s *SymbolTable) DefineLocal(name string) Symbol {
	sym := Symbol{Name: name, Scope: LocalScope, Index: s.numDefinitions}
	s.locals[name] = sym
	s.numDefinitions++
	return sym
}

// ResolveLocal looks up name in this scope only.
func (s *SymbolTable) ResolveLocal(name string) (Symbol, bool) {
	sym, ok := s.locals[name]
	return sym, ok
}

// NumDefinitions returns the number of locals defined so far, i.e. the
// number of stack slots this scope's frame needs.
func (s *SymbolTable) NumDefinitions() int { return s.numDefinitions }

// Remove forgets a local binding once it goes out of scope (a pattern's
// bound names after its enclosing let/arm/lambda-parameter is compiled,
// or a pattern compiler's synthetic temp once no longer needed). The
// slot itself is not reclaimed — Save/Load indices already emitted must
// stay valid — only the name-to-slot mapping is dropped, so a later
// pattern reusing the name gets a fresh slot rather than aliasing a
// stale one.
func (s *SymbolTable) Remove(name string) {
	delete(s.locals, name)
}

// Globals tracks top-level def/let names, resolved by name rather than
// slot (Savg/Loag operate on symbols, not indices).
type Globals struct {
	names map[string]bool
}

// NewGlobals creates an empty global name set.
func NewGlobals() *Globals { return &Globals{names: make(map[string]bool)} }

// Define records name as a known global.
func (g *Globals) Define(name string) { g.names[name] = true }

// Has reports whether name was defined as a global.
func (g *Globals) Has(name string) bool { return g.names[name] }
