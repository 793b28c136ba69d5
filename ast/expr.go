package ast

// BinOp enumerates Fen's binary operators.
type BinOp int

//nolint:revive
const (
	Add BinOp = iota
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
	And
	Or
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
)

// UnOp enumerates Fen's unary operators.
type UnOp int

//nolint:revive
const (
	Not UnOp = iota
	Neg
	Length
)

// ExprKind discriminates the variants of [Expr].
type ExprKind int

//nolint:revive
const (
	ExLit ExprKind = iota
	ExVar
	ExApp
	ExIf
	ExMatch
	ExLet
	ExDef
	ExBinary
	ExUnary
	ExList
	ExCons
	ExTuple
	ExMethodRef
	ExTry
	ExLambda
)

// Expr is a single expression node. Exactly the fields relevant to its
// Kind are populated; see spec.md §4.5–§4.6 for the lowering of each kind.
type Expr struct {
	Kind ExprKind
	Loc  Location

	Lit Literal // ExLit

	Name string // ExVar

	Callee *Expr   // ExApp
	Args   []*Expr // ExApp
	Tail   bool    // ExApp: compiled to TCall instead of Call

	Cond, Then, Else *Expr // ExIf

	Scrutinee *Expr      // ExMatch
	Arms      []*MatchArm // ExMatch

	Bind  *Pattern // ExLet
	Value *Expr    // ExLet, ExDef
	Body  *Expr    // ExLet, ExDef
	Name2 string   // ExDef: the bound name (Def binds a plain name, not a pattern)

	BOp   BinOp // ExBinary
	UOp   UnOp  // ExUnary
	Left  *Expr // ExBinary
	Right *Expr // ExBinary, ExUnary

	Elems []*Expr // ExList, ExTuple

	Head *Expr // ExCons
	TailE *Expr // ExCons

	MethodTy *Expr  // ExMethodRef
	Method   string // ExMethodRef

	TryBody     *Expr  // ExTry
	RescueBind  string // ExTry
	Rescue      *Expr  // ExTry

	LambdaArgs []*Pattern // ExLambda
	LambdaBody *Expr      // ExLambda
}

// MatchArm is a single `| pattern [when guard] -> body` arm of a match
// expression.
type MatchArm struct {
	Loc   Location
	Cond  *Pattern
	Guard *Expr
	Body  *Expr
}

// Lit builds a literal expression node.
func Lit(lit Literal, loc Location) *Expr { return &Expr{Kind: ExLit, Lit: lit, Loc: loc} }

// Var builds a variable-reference expression node.
func Var(name string, loc Location) *Expr { return &Expr{Kind: ExVar, Name: name, Loc: loc} }
