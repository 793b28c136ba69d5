// Package parser implements the syntactic analyzer for the Fen
// programming language.
//
// The parser takes a stream of tokens from the lexer and constructs an
// Abstract Syntax Tree (it is the producer that feeds the compiler's
// AST-driven front-end, CompileAST). It implements a recursive descent
// parser with Pratt parsing (precedence climbing) for expressions, the
// same structure the teacher's Monkey parser uses, generalized to Fen's
// richer statement and pattern grammar (let/def/type/match/try/lambda,
// tuples, cons lists, method references, symbols).
//
// Key features:
//   - Top-down parsing of statements and expressions
//   - Precedence-based expression parsing
//   - A separate pattern sub-parser shared by let-bindings, lambda
//     parameters, and match arms
//   - Error reporting with line/column positions
//
// The main entry point is [New], which creates a [Parser], and
// [Parser.ParseProgram], which parses a complete Fen program and marks
// tail calls via ast.MarkProgramTailCalls before returning it.
package parser

import (
	"fmt"
	"strconv"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/token"
)

const (
	_ int = iota

	Lowest
	Or          // or
	And         // and
	Equals      // == !=
	LessGreater // < <= > >=
	BitOrPrec   // |||
	BitXorPrec  // ^^^
	BitAndPrec  // &&&
	ShiftPrec   // <<< >>>
	ConsPrec    // ::
	Sum         // + -
	Product     // * / %
	Prefix      // -x !x #x
	Call        // f(x), x.y
)

var precedences = map[token.Type]int{
	token.OR:     Or,
	token.AND:    And,
	token.EQ:     Equals,
	token.NE:     Equals,
	token.LT:     LessGreater,
	token.LE:     LessGreater,
	token.GT:     LessGreater,
	token.GE:     LessGreater,
	token.BITOR:  BitOrPrec,
	token.BITXOR: BitXorPrec,
	token.BITAND: BitAndPrec,
	token.SHL:    ShiftPrec,
	token.SHR:    ShiftPrec,
	token.CONS:   ConsPrec,
	token.ADD:    Sum,
	token.SUB:    Sum,
	token.MUL:    Product,
	token.DIV:    Product,
	token.REM:    Product,
	token.LPAREN: Call,
	token.DOT:    Call,
}

var binOps = map[token.Type]ast.BinOp{
	token.ADD: ast.Add, token.SUB: ast.Sub, token.MUL: ast.Mul,
	token.DIV: ast.Div, token.REM: ast.Rem,
	token.EQ: ast.Eq, token.NE: ast.Ne, token.GT: ast.Gt, token.GE: ast.Ge,
	token.LT: ast.Lt, token.LE: ast.Le, token.AND: ast.And, token.OR: ast.Or,
	token.BITAND: ast.BitAnd, token.BITOR: ast.BitOr, token.BITXOR: ast.BitXor,
	token.SHL: ast.Shl, token.SHR: ast.Shr,
}

type (
	prefixParseFn func() *ast.Expr
	infixParseFn  func(*ast.Expr) *ast.Expr
)

// Parser parses Fen source into an [ast.Program].
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a new Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.NUM, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.SYM, p.parseSymbol)
	p.registerPrefix(token.TRUE, p.parseBool)
	p.registerPrefix(token.FALSE, p.parseBool)
	p.registerPrefix(token.NIL, p.parseNilLit)
	p.registerPrefix(token.NAME, p.parseIdentOrApp)
	p.registerPrefix(token.NOT, p.parseUnary)
	p.registerPrefix(token.SUB, p.parseUnary)
	p.registerPrefix(token.LEN, p.parseUnary)
	p.registerPrefix(token.LPAREN, p.parseParenOrTuple)
	p.registerPrefix(token.LBRACK, p.parseListLiteral)
	p.registerPrefix(token.FN, p.parseLambda)
	p.registerPrefix(token.IF, p.parseIf)
	p.registerPrefix(token.MATCH, p.parseMatch)
	p.registerPrefix(token.LET, p.parseLetExpr)
	p.registerPrefix(token.DEF, p.parseDefExpr)
	p.registerPrefix(token.TRY, p.parseTry)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	for tt := range binOps {
		p.registerInfix(tt, p.parseBinary)
	}
	p.registerInfix(token.CONS, p.parseCons)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.DOT, p.parseMethodRef)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)    { p.infixParseFns[t] = fn }

// Errors returns every error collected while parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) loc() ast.Location { return ast.Location{Line: p.curToken.Line, Column: p.curToken.Column} }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected next token to be %s, got %s instead", t, p.peekToken.Type)
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("[%d:%d] %s", p.curToken.Line, p.curToken.Column, fmt.Sprintf(format, args...)))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return Lowest
}

// ParseProgram parses a complete Fen program, running the tail-call
// marking pass before returning it. Check [Parser.Errors] afterwards.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.peekIs(token.SEMICOLON) {
			p.nextToken()
		}
		p.nextToken()
	}
	ast.MarkProgramTailCalls(prog)
	return prog
}

func (p *Parser) parseStatement() *ast.Stmt {
	switch p.curToken.Type {
	case token.DEF:
		return p.parseDefStatement()
	case token.LET:
		return p.parseLetStatement()
	case token.TYPE:
		return p.parseTypeStatement()
	case token.OPEN:
		return p.parseOpenStatement()
	default:
		loc := p.loc()
		expr := p.parseExpression(Lowest)
		return &ast.Stmt{Kind: ast.StExpr, Loc: loc, Value: expr}
	}
}

func (p *Parser) parseDefStatement() *ast.Stmt {
	loc := p.loc()
	if !p.expectPeek(token.NAME) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)

	if p.peekIs(token.IN) {
		p.nextToken()
		p.nextToken()
		body := p.parseExpression(Lowest)
		def := &ast.Expr{Kind: ast.ExDef, Loc: loc, Name2: name, Value: value, Body: body}
		return &ast.Stmt{Kind: ast.StExpr, Loc: loc, Value: def}
	}
	return &ast.Stmt{Kind: ast.StDef, Loc: loc, Name: name, Value: value}
}

func (p *Parser) parseLetStatement() *ast.Stmt {
	loc := p.loc()
	p.nextToken()
	pat := p.parsePattern()
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)

	if p.peekIs(token.IN) {
		p.nextToken()
		p.nextToken()
		body := p.parseExpression(Lowest)
		let := &ast.Expr{Kind: ast.ExLet, Loc: loc, Bind: pat, Value: value, Body: body}
		return &ast.Stmt{Kind: ast.StExpr, Loc: loc, Value: let}
	}
	return &ast.Stmt{Kind: ast.StLet, Loc: loc, Bind: pat, Value: value}
}

func (p *Parser) parseTypeStatement() *ast.Stmt {
	loc := p.loc()
	if !p.expectPeek(token.NAME) {
		return nil
	}
	typeName := p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	stmt := &ast.Stmt{Kind: ast.StType, Loc: loc, TypeName: typeName}

	for p.peekIs(token.PIPE) {
		p.nextToken()
		if !p.expectPeek(token.NAME) {
			return nil
		}
		vname := p.curToken.Literal
		var args []string
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			if !p.peekIs(token.RPAREN) {
				p.nextToken()
				args = append(args, p.curToken.Literal)
				for p.peekIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					args = append(args, p.curToken.Literal)
				}
			}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		}
		stmt.Variants = append(stmt.Variants, ast.Variant{
			Path: []string{typeName, vname}, ShortName: vname, Args: args,
		})
	}

	for p.peekIs(token.DEF) {
		p.nextToken()
		if !p.expectPeek(token.NAME) {
			return nil
		}
		mname := p.curToken.Literal
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		mval := p.parseExpression(Lowest)
		stmt.Members = append(stmt.Members, ast.Member{Name: mname, Value: mval})
	}

	if !p.expectPeek(token.END) {
		return nil
	}
	return stmt
}

func (p *Parser) parseOpenStatement() *ast.Stmt {
	loc := p.loc()
	if !p.expectPeek(token.STRING) {
		return nil
	}
	return &ast.Stmt{Kind: ast.StOpen, Loc: loc, Path: p.curToken.Literal}
}

func (p *Parser) parseExpression(precedence int) *ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf("no prefix parse function for %s found", p.curToken.Type)
		return nil
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseNumber() *ast.Expr {
	loc := p.loc()
	n, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf("could not parse %q as number", p.curToken.Literal)
		return nil
	}
	return ast.Lit(ast.Num(n), loc)
}

func (p *Parser) parseString() *ast.Expr {
	return ast.Lit(ast.Str(p.curToken.Literal), p.loc())
}

func (p *Parser) parseSymbol() *ast.Expr {
	return ast.Lit(ast.Sym(p.curToken.Literal), p.loc())
}

func (p *Parser) parseBool() *ast.Expr {
	return ast.Lit(ast.Bool(p.curIs(token.TRUE)), p.loc())
}

func (p *Parser) parseNilLit() *ast.Expr {
	return ast.Lit(ast.Nil, p.loc())
}

func (p *Parser) parseIdentOrApp() *ast.Expr {
	return ast.Var(p.curToken.Literal, p.loc())
}

func (p *Parser) parseUnary() *ast.Expr {
	loc := p.loc()
	var op ast.UnOp
	switch p.curToken.Type {
	case token.NOT:
		op = ast.Not
	case token.SUB:
		op = ast.Neg
	case token.LEN:
		op = ast.Length
	}
	p.nextToken()
	right := p.parseExpression(Prefix)
	return &ast.Expr{Kind: ast.ExUnary, Loc: loc, UOp: op, Right: right}
}

func (p *Parser) parseBinary(left *ast.Expr) *ast.Expr {
	loc := p.loc()
	op := binOps[p.curToken.Type]
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.Expr{Kind: ast.ExBinary, Loc: loc, BOp: op, Left: left, Right: right}
}

func (p *Parser) parseCons(left *ast.Expr) *ast.Expr {
	loc := p.loc()
	p.nextToken()
	right := p.parseExpression(ConsPrec - 1)
	return &ast.Expr{Kind: ast.ExCons, Loc: loc, Head: left, TailE: right}
}

func (p *Parser) parseCall(callee *ast.Expr) *ast.Expr {
	loc := p.loc()
	args := p.parseExprList(token.RPAREN)
	return &ast.Expr{Kind: ast.ExApp, Loc: loc, Callee: callee, Args: args}
}

func (p *Parser) parseMethodRef(left *ast.Expr) *ast.Expr {
	loc := p.loc()
	if !p.expectPeek(token.NAME) {
		return nil
	}
	return &ast.Expr{Kind: ast.ExMethodRef, Loc: loc, MethodTy: left, Method: p.curToken.Literal}
}

func (p *Parser) parseExprList(end token.Type) []*ast.Expr {
	var list []*ast.Expr
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(Lowest))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(Lowest))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseParenOrTuple() *ast.Expr {
	loc := p.loc()
	elems := p.parseExprList(token.RPAREN)
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.Expr{Kind: ast.ExTuple, Loc: loc, Elems: elems}
}

func (p *Parser) parseListLiteral() *ast.Expr {
	loc := p.loc()
	elems := p.parseExprList(token.RBRACK)
	return &ast.Expr{Kind: ast.ExList, Loc: loc, Elems: elems}
}

func (p *Parser) parseLambda() *ast.Expr {
	loc := p.loc()
	var args []*ast.Pattern
	for !p.peekIs(token.ARROW) {
		p.nextToken()
		args = append(args, p.parsePattern())
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(Lowest)
	return &ast.Expr{Kind: ast.ExLambda, Loc: loc, LambdaArgs: args, LambdaBody: body}
}

func (p *Parser) parseIf() *ast.Expr {
	loc := p.loc()
	p.nextToken()
	cond := p.parseExpression(Lowest)
	if !p.expectPeek(token.THEN) {
		return nil
	}
	p.nextToken()
	then := p.parseExpression(Lowest)
	if !p.expectPeek(token.ELSE) {
		return nil
	}
	p.nextToken()
	els := p.parseExpression(Lowest)
	return &ast.Expr{Kind: ast.ExIf, Loc: loc, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseMatch() *ast.Expr {
	loc := p.loc()
	p.nextToken()
	scrutinee := p.parseExpression(Lowest)
	if !p.expectPeek(token.WITH) {
		return nil
	}

	expr := &ast.Expr{Kind: ast.ExMatch, Loc: loc, Scrutinee: scrutinee}
	for p.peekIs(token.PIPE) {
		p.nextToken()
		armLoc := p.loc()
		p.nextToken()
		pat := p.parsePattern()
		var guard *ast.Expr
		if p.peekIs(token.WHEN) {
			p.nextToken()
			p.nextToken()
			guard = p.parseExpression(Lowest)
		}
		if !p.expectPeek(token.ARROW) {
			return nil
		}
		p.nextToken()
		body := p.parseExpression(Lowest)
		expr.Arms = append(expr.Arms, &ast.MatchArm{Loc: armLoc, Cond: pat, Guard: guard, Body: body})
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	return expr
}

func (p *Parser) parseLetExpr() *ast.Expr {
	loc := p.loc()
	p.nextToken()
	pat := p.parsePattern()
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(Lowest)
	return &ast.Expr{Kind: ast.ExLet, Loc: loc, Bind: pat, Value: value, Body: body}
}

func (p *Parser) parseDefExpr() *ast.Expr {
	loc := p.loc()
	if !p.expectPeek(token.NAME) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(Lowest)
	return &ast.Expr{Kind: ast.ExDef, Loc: loc, Name2: name, Value: value, Body: body}
}

func (p *Parser) parseTry() *ast.Expr {
	loc := p.loc()
	p.nextToken()
	body := p.parseExpression(Lowest)
	if !p.expectPeek(token.RESCUE) {
		return nil
	}
	if !p.expectPeek(token.NAME) {
		return nil
	}
	bind := p.curToken.Literal
	if !p.expectPeek(token.FATARROW) {
		return nil
	}
	p.nextToken()
	handler := p.parseExpression(Lowest)
	return &ast.Expr{Kind: ast.ExTry, Loc: loc, TryBody: body, RescueBind: bind, Rescue: handler}
}

// parsePattern parses the pattern sub-language used by let-bindings,
// lambda parameters, and match arms (spec.md §3, §4.4).
func (p *Parser) parsePattern() *ast.Pattern {
	left := p.parseSimplePattern()
	if p.peekIs(token.CONS) {
		p.nextToken()
		loc := p.loc()
		p.nextToken()
		tail := p.parsePattern()
		return &ast.Pattern{Kind: ast.PatList, Loc: loc, Head: left, Tail: tail}
	}
	return left
}

func (p *Parser) parseSimplePattern() *ast.Pattern {
	loc := p.loc()
	switch p.curToken.Type {
	case token.NUM:
		n, _ := strconv.ParseFloat(p.curToken.Literal, 64)
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Num(n)}
	case token.STRING:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Str(p.curToken.Literal)}
	case token.SYM:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Sym(p.curToken.Literal)}
	case token.TRUE, token.FALSE:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Bool(p.curIs(token.TRUE))}
	case token.NIL:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Nil}
	case token.NAME:
		path := []string{p.curToken.Literal}
		for p.peekIs(token.DOT) {
			p.nextToken()
			if !p.expectPeek(token.NAME) {
				return nil
			}
			path = append(path, p.curToken.Literal)
		}
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			args := p.parsePatternList(token.RPAREN)
			return &ast.Pattern{Kind: ast.PatVariant, Loc: loc, Path: path, Args: args}
		}
		if len(path) > 1 {
			return &ast.Pattern{Kind: ast.PatVariant, Loc: loc, Path: path}
		}
		return ast.NewIDPattern(path[0], loc)
	case token.LBRACK:
		if !p.expectPeek(token.RBRACK) {
			return nil
		}
		return &ast.Pattern{Kind: ast.PatEmptyList, Loc: loc}
	case token.LPAREN:
		args := p.parsePatternList(token.RPAREN)
		if len(args) == 1 {
			return args[0]
		}
		return &ast.Pattern{Kind: ast.PatTuple, Loc: loc, Args: args}
	default:
		p.errorf("no pattern parse function for %s found", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parsePatternList(end token.Type) []*ast.Pattern {
	var list []*ast.Pattern
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parsePattern())
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parsePattern())
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}
