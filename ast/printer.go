package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the program back into Fen source text. It backs the
// "textual dump of an AST" property test (spec.md §8, see
// vm.TestTokenFrontEndMatchesASTFrontEndViaPrinter) — the token front-end
// compiling String()'s output is checked for behavioral equivalence
// against the AST front-end compiling the tree directly — and the REPL's
// `:ast` inspection command (package repl).
func (p *Program) String() string {
	var b strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// String renders a single top-level statement.
func (s *Stmt) String() string {
	switch s.Kind {
	case StDef:
		return fmt.Sprintf("def %s = %s", s.Name, s.Value.String())
	case StLet:
		return fmt.Sprintf("let %s = %s", s.Bind.String(), s.Value.String())
	case StType:
		var b strings.Builder
		fmt.Fprintf(&b, "type %s =", s.TypeName)
		for _, v := range s.Variants {
			if len(v.Args) == 0 {
				fmt.Fprintf(&b, "\n  | %s", v.ShortName)
			} else {
				fmt.Fprintf(&b, "\n  | %s(%s)", v.ShortName, strings.Join(v.Args, ", "))
			}
		}
		for _, m := range s.Members {
			fmt.Fprintf(&b, "\n  def %s = %s", m.Name, m.Value.String())
		}
		b.WriteString("\nend")
		return b.String()
	case StExpr:
		return s.Value.String()
	case StOpen:
		return fmt.Sprintf("open %q", s.Path)
	default:
		return "<stmt>"
	}
}

// String renders a literal value in Fen surface syntax.
func (l Literal) String() string {
	switch l.Kind {
	case LitNum:
		return strconv.FormatFloat(l.Num, 'g', -1, 64)
	case LitStr:
		return strconv.Quote(l.Str)
	case LitSym:
		return ":" + l.Sym
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitNil:
		return "nil"
	default:
		return "<lit>"
	}
}

// String renders a pattern in Fen surface syntax.
func (p *Pattern) String() string {
	switch p.Kind {
	case PatLit:
		return p.Lit.String()
	case PatID:
		return p.Name
	case PatVariant:
		if len(p.Args) == 0 {
			return p.TagName()
		}
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", p.TagName(), strings.Join(args, ", "))
	case PatTuple:
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			args[i] = a.String()
		}
		return "(" + strings.Join(args, ", ") + ")"
	case PatList:
		return fmt.Sprintf("%s :: %s", p.Head.String(), p.Tail.String())
	case PatEmptyList:
		return "[]"
	default:
		return "<pattern>"
	}
}

var binOpSyntax = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Rem: "%",
	Eq: "==", Ne: "!=", Gt: ">", Ge: ">=", Lt: "<", Le: "<=",
	And: "and", Or: "or",
	BitAnd: "&&&", BitOr: "|||", BitXor: "^^^", Shl: "<<<", Shr: ">>>",
}

var unOpSyntax = map[UnOp]string{
	Not: "!", Neg: "-", Length: "#",
}

// String renders an expression in Fen surface syntax.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExLit:
		return e.Lit.String()
	case ExVar:
		return e.Name
	case ExApp:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.Callee.String(), strings.Join(args, ", "))
	case ExIf:
		return fmt.Sprintf("if %s then %s else %s", e.Cond.String(), e.Then.String(), e.Else.String())
	case ExMatch:
		var b strings.Builder
		fmt.Fprintf(&b, "match %s with", e.Scrutinee.String())
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				fmt.Fprintf(&b, " | %s when %s -> %s", arm.Cond.String(), arm.Guard.String(), arm.Body.String())
			} else {
				fmt.Fprintf(&b, " | %s -> %s", arm.Cond.String(), arm.Body.String())
			}
		}
		b.WriteString(" end")
		return b.String()
	case ExLet:
		return fmt.Sprintf("let %s = %s in %s", e.Bind.String(), e.Value.String(), e.Body.String())
	case ExDef:
		return fmt.Sprintf("def %s = %s in %s", e.Name2, e.Value.String(), e.Body.String())
	case ExBinary:
		return fmt.Sprintf("(%s %s %s)", e.Left.String(), binOpSyntax[e.BOp], e.Right.String())
	case ExUnary:
		return fmt.Sprintf("(%s%s)", unOpSyntax[e.UOp], e.Right.String())
	case ExList:
		elems := make([]string, len(e.Elems))
		for i, x := range e.Elems {
			elems[i] = x.String()
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case ExCons:
		return fmt.Sprintf("%s :: %s", e.Head.String(), e.TailE.String())
	case ExTuple:
		elems := make([]string, len(e.Elems))
		for i, x := range e.Elems {
			elems[i] = x.String()
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case ExMethodRef:
		return fmt.Sprintf("%s.%s", e.MethodTy.String(), e.Method)
	case ExTry:
		return fmt.Sprintf("try %s rescue %s => %s", e.TryBody.String(), e.RescueBind, e.Rescue.String())
	case ExLambda:
		args := make([]string, len(e.LambdaArgs))
		for i, a := range e.LambdaArgs {
			args[i] = a.String()
		}
		return fmt.Sprintf("fn %s -> %s", strings.Join(args, " "), e.LambdaBody.String())
	default:
		return "<expr>"
	}
}
