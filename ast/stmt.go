package ast

// StmtKind discriminates the variants of [Stmt].
type StmtKind int

//nolint:revive
const (
	// StDef is a top-level `def name = value`.
	StDef StmtKind = iota
	// StLet is a top-level `let pattern = value`.
	StLet
	// StType is a top-level algebraic type declaration.
	StType
	// StExpr is a bare top-level expression, a Fen-specific addition beyond
	// spec.md's Def/Let/Type statement kinds, used so a script's final
	// expression produces an observable result.
	StExpr
	// StOpen is `open "path"`, spliced in by the import/relocator (spec.md §4.8).
	StOpen
)

// Stmt is a single top-level statement.
type Stmt struct {
	Kind StmtKind
	Loc  Location

	Name  string // StDef
	Value *Expr  // StDef, StLet, StExpr

	Bind *Pattern // StLet

	TypeName string    // StType
	Variants []Variant // StType
	Members  []Member  // StType

	Path string // StOpen: the imported file's path, as written in source
}

// Variant is one `| Name(args...)` arm of a type declaration.
type Variant struct {
	// Path is the fully dotted tag path, e.g. ["Option", "Some"].
	Path []string
	// ShortName is the last segment of Path, the name installed on the module's field table.
	ShortName string
	// Args names the variant's constructor parameters; empty for a nullary variant.
	Args []string
}

// Member is a `def name = lambda` member function of a type declaration.
type Member struct {
	Name  string
	Value *Expr // always an ExLambda
}
