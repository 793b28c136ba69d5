package compiler

import (
	"strconv"

	"github.com/fen-lang/fen/ast"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/token"
)

// tokenPrecedences mirrors package parser's precedence table; kept as a
// private copy since this front-end never imports package parser (spec.md
// §9 treats the two front-ends as independent consumers of a token
// stream, sharing only the emitter core in this package).
var tokenPrecedences = map[token.Type]int{
	token.OR:     tpOr,
	token.AND:    tpAnd,
	token.EQ:     tpEquals,
	token.NE:     tpEquals,
	token.LT:     tpLessGreater,
	token.LE:     tpLessGreater,
	token.GT:     tpLessGreater,
	token.GE:     tpLessGreater,
	token.BITOR:  tpBitOr,
	token.BITXOR: tpBitXor,
	token.BITAND: tpBitAnd,
	token.SHL:    tpShift,
	token.SHR:    tpShift,
	token.CONS:   tpCons,
	token.ADD:    tpSum,
	token.SUB:    tpSum,
	token.MUL:    tpProduct,
	token.DIV:    tpProduct,
	token.REM:    tpProduct,
	token.LPAREN: tpCall,
	token.DOT:    tpCall,
}

const (
	_ int = iota
	tpLowest
	tpOr
	tpAnd
	tpEquals
	tpLessGreater
	tpBitOr
	tpBitXor
	tpBitAnd
	tpShift
	tpCons
	tpSum
	tpProduct
	tpPrefix
	tpCall
)

var tokenBinOps = map[token.Type]ast.BinOp{
	token.ADD: ast.Add, token.SUB: ast.Sub, token.MUL: ast.Mul,
	token.DIV: ast.Div, token.REM: ast.Rem,
	token.EQ: ast.Eq, token.NE: ast.Ne, token.GT: ast.Gt, token.GE: ast.Ge,
	token.LT: ast.Lt, token.LE: ast.Le, token.AND: ast.And, token.OR: ast.Or,
	token.BITAND: ast.BitAnd, token.BITOR: ast.BitOr, token.BITXOR: ast.BitXor,
	token.SHL: ast.Shl, token.SHR: ast.Shr,
}

// tokenFront drives a lexer one top-level statement at a time, building
// each statement's [ast.Expr]/[ast.Pattern] node shapes (the bounded,
// single-statement fragments the ast package's doc comment describes),
// compiling it immediately via the shared emitter, then discarding it —
// the whole program is never assembled into one [ast.Program].
type tokenFront struct {
	c    *Compiler
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
}

// CompileTokens compiles Fen source read directly from l's token stream,
// without first building a complete *ast.Program (spec.md §6, "Input:
// either a lexer yielding a sequence of positioned tokens... or a
// pre-parsed AST"). Each top-level statement is parsed into its own small
// AST fragment, tail-marked, and compiled before the next one is read.
func CompileTokens(l *lexer.Lexer) (*Bytecode, error) {
	c := New()
	c.revPerArg = true
	tf := &tokenFront{c: c, l: l}
	tf.next()
	tf.next()

	for !tf.curIs(token.EOF) {
		if tf.curIs(token.SEMICOLON) {
			tf.next()
			continue
		}
		stmt, err := tf.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			ast.MarkTailCalls(stmtValue(stmt), false)
			if err := c.compileStmt(stmt); err != nil {
				return nil, err
			}
		}
		if tf.peekIs(token.SEMICOLON) {
			tf.next()
		}
		tf.next()
	}
	return &Bytecode{Instructions: c.current().instructions, Constants: c.pool.Values()}, nil
}

// stmtValue returns the expression(s) a single statement's tail-call
// marking pass applies to (mirrors ast.MarkProgramTailCalls' per-kind
// dispatch, one statement at a time).
func stmtValue(s *ast.Stmt) *ast.Expr {
	switch s.Kind {
	case ast.StDef, ast.StExpr, ast.StLet:
		return s.Value
	case ast.StType:
		for _, m := range s.Members {
			ast.MarkTailCalls(m.Value, false)
		}
	}
	return nil
}

func (tf *tokenFront) next() {
	tf.cur = tf.peek
	tf.peek = tf.l.NextToken()
}

func (tf *tokenFront) curIs(t token.Type) bool  { return tf.cur.Type == t }
func (tf *tokenFront) peekIs(t token.Type) bool { return tf.peek.Type == t }

func (tf *tokenFront) loc() ast.Location { return ast.Location{Line: tf.cur.Line, Column: tf.cur.Column} }

func (tf *tokenFront) expect(t token.Type) error {
	if tf.peekIs(t) {
		tf.next()
		return nil
	}
	return errAt(tf.loc(), "expected next token to be %s, got %s instead", t, tf.peek.Type)
}

func (tf *tokenFront) errorf(format string, args ...any) error {
	return errAt(tf.loc(), format, args...)
}

func (tf *tokenFront) peekPrecedence() int {
	if pr, ok := tokenPrecedences[tf.peek.Type]; ok {
		return pr
	}
	return tpLowest
}

func (tf *tokenFront) curPrecedence() int {
	if pr, ok := tokenPrecedences[tf.cur.Type]; ok {
		return pr
	}
	return tpLowest
}

func (tf *tokenFront) parseStatement() (*ast.Stmt, error) {
	switch tf.cur.Type {
	case token.DEF:
		return tf.parseDefStatement()
	case token.LET:
		return tf.parseLetStatement()
	case token.TYPE:
		return tf.parseTypeStatement()
	case token.OPEN:
		return tf.parseOpenStatement()
	default:
		loc := tf.loc()
		expr, err := tf.parseExpression(tpLowest)
		if err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StExpr, Loc: loc, Value: expr}, nil
	}
}

func (tf *tokenFront) parseDefStatement() (*ast.Stmt, error) {
	loc := tf.loc()
	if err := tf.expect(token.NAME); err != nil {
		return nil, err
	}
	name := tf.cur.Literal
	if err := tf.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	tf.next()
	value, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}

	if tf.peekIs(token.IN) {
		tf.next()
		tf.next()
		body, err := tf.parseExpression(tpLowest)
		if err != nil {
			return nil, err
		}
		def := &ast.Expr{Kind: ast.ExDef, Loc: loc, Name2: name, Value: value, Body: body}
		return &ast.Stmt{Kind: ast.StExpr, Loc: loc, Value: def}, nil
	}
	return &ast.Stmt{Kind: ast.StDef, Loc: loc, Name: name, Value: value}, nil
}

func (tf *tokenFront) parseLetStatement() (*ast.Stmt, error) {
	loc := tf.loc()
	tf.next()
	pat, err := tf.parsePattern()
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	tf.next()
	value, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}

	if tf.peekIs(token.IN) {
		tf.next()
		tf.next()
		body, err := tf.parseExpression(tpLowest)
		if err != nil {
			return nil, err
		}
		let := &ast.Expr{Kind: ast.ExLet, Loc: loc, Bind: pat, Value: value, Body: body}
		return &ast.Stmt{Kind: ast.StExpr, Loc: loc, Value: let}, nil
	}
	return &ast.Stmt{Kind: ast.StLet, Loc: loc, Bind: pat, Value: value}, nil
}

func (tf *tokenFront) parseTypeStatement() (*ast.Stmt, error) {
	loc := tf.loc()
	if err := tf.expect(token.NAME); err != nil {
		return nil, err
	}
	typeName := tf.cur.Literal
	if err := tf.expect(token.ASSIGN); err != nil {
		return nil, err
	}

	stmt := &ast.Stmt{Kind: ast.StType, Loc: loc, TypeName: typeName}

	for tf.peekIs(token.PIPE) {
		tf.next()
		if err := tf.expect(token.NAME); err != nil {
			return nil, err
		}
		vname := tf.cur.Literal
		var args []string
		if tf.peekIs(token.LPAREN) {
			tf.next()
			if !tf.peekIs(token.RPAREN) {
				tf.next()
				args = append(args, tf.cur.Literal)
				for tf.peekIs(token.COMMA) {
					tf.next()
					tf.next()
					args = append(args, tf.cur.Literal)
				}
			}
			if err := tf.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		stmt.Variants = append(stmt.Variants, ast.Variant{
			Path: []string{typeName, vname}, ShortName: vname, Args: args,
		})
	}

	for tf.peekIs(token.DEF) {
		tf.next()
		if err := tf.expect(token.NAME); err != nil {
			return nil, err
		}
		mname := tf.cur.Literal
		if err := tf.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		tf.next()
		mval, err := tf.parseExpression(tpLowest)
		if err != nil {
			return nil, err
		}
		stmt.Members = append(stmt.Members, ast.Member{Name: mname, Value: mval})
	}

	if err := tf.expect(token.END); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (tf *tokenFront) parseOpenStatement() (*ast.Stmt, error) {
	loc := tf.loc()
	if err := tf.expect(token.STRING); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StOpen, Loc: loc, Path: tf.cur.Literal}, nil
}

func (tf *tokenFront) parseExpression(precedence int) (*ast.Expr, error) {
	left, err := tf.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < tf.peekPrecedence() {
		if !tf.hasInfix(tf.peek.Type) {
			return left, nil
		}
		tf.next()
		left, err = tf.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (tf *tokenFront) hasInfix(t token.Type) bool {
	if _, ok := tokenBinOps[t]; ok {
		return true
	}
	return t == token.CONS || t == token.LPAREN || t == token.DOT
}

func (tf *tokenFront) parsePrefix() (*ast.Expr, error) {
	loc := tf.loc()
	switch tf.cur.Type {
	case token.NUM:
		n, err := strconv.ParseFloat(tf.cur.Literal, 64)
		if err != nil {
			return nil, tf.errorf("could not parse %q as number", tf.cur.Literal)
		}
		return ast.Lit(ast.Num(n), loc), nil
	case token.STRING:
		return ast.Lit(ast.Str(tf.cur.Literal), loc), nil
	case token.SYM:
		return ast.Lit(ast.Sym(tf.cur.Literal), loc), nil
	case token.TRUE, token.FALSE:
		return ast.Lit(ast.Bool(tf.curIs(token.TRUE)), loc), nil
	case token.NIL:
		return ast.Lit(ast.Nil, loc), nil
	case token.NAME:
		return ast.Var(tf.cur.Literal, loc), nil
	case token.NOT, token.SUB, token.LEN:
		var op ast.UnOp
		switch tf.cur.Type {
		case token.NOT:
			op = ast.Not
		case token.SUB:
			op = ast.Neg
		case token.LEN:
			op = ast.Length
		}
		tf.next()
		right, err := tf.parseExpression(tpPrefix)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExUnary, Loc: loc, UOp: op, Right: right}, nil
	case token.LPAREN:
		return tf.parseParenOrTuple()
	case token.LBRACK:
		return tf.parseListLiteral()
	case token.FN:
		return tf.parseLambda()
	case token.IF:
		return tf.parseIf()
	case token.MATCH:
		return tf.parseMatch()
	case token.LET:
		return tf.parseLetExprInline()
	case token.DEF:
		return tf.parseDefExprInline()
	case token.TRY:
		return tf.parseTry()
	default:
		return nil, tf.errorf("no prefix parse function for %s found", tf.cur.Type)
	}
}

func (tf *tokenFront) parseInfix(left *ast.Expr) (*ast.Expr, error) {
	loc := tf.loc()
	switch tf.cur.Type {
	case token.CONS:
		tf.next()
		right, err := tf.parseExpression(tpCons - 1)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExCons, Loc: loc, Head: left, TailE: right}, nil
	case token.LPAREN:
		args, err := tf.parseExprList(token.RPAREN)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExApp, Loc: loc, Callee: left, Args: args}, nil
	case token.DOT:
		if err := tf.expect(token.NAME); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExMethodRef, Loc: loc, MethodTy: left, Method: tf.cur.Literal}, nil
	default:
		op, ok := tokenBinOps[tf.cur.Type]
		if !ok {
			return nil, tf.errorf("no infix parse function for %s found", tf.cur.Type)
		}
		prec := tf.curPrecedence()
		tf.next()
		right, err := tf.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExBinary, Loc: loc, BOp: op, Left: left, Right: right}, nil
	}
}

func (tf *tokenFront) parseExprList(end token.Type) ([]*ast.Expr, error) {
	var list []*ast.Expr
	if tf.peekIs(end) {
		tf.next()
		return list, nil
	}
	tf.next()
	e, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	list = append(list, e)
	for tf.peekIs(token.COMMA) {
		tf.next()
		tf.next()
		e, err := tf.parseExpression(tpLowest)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := tf.expect(end); err != nil {
		return nil, err
	}
	return list, nil
}

func (tf *tokenFront) parseParenOrTuple() (*ast.Expr, error) {
	loc := tf.loc()
	elems, err := tf.parseExprList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &ast.Expr{Kind: ast.ExTuple, Loc: loc, Elems: elems}, nil
}

func (tf *tokenFront) parseListLiteral() (*ast.Expr, error) {
	loc := tf.loc()
	elems, err := tf.parseExprList(token.RBRACK)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExList, Loc: loc, Elems: elems}, nil
}

func (tf *tokenFront) parseLambda() (*ast.Expr, error) {
	loc := tf.loc()
	var args []*ast.Pattern
	for !tf.peekIs(token.ARROW) {
		tf.next()
		p, err := tf.parsePattern()
		if err != nil {
			return nil, err
		}
		args = append(args, p)
	}
	if err := tf.expect(token.ARROW); err != nil {
		return nil, err
	}
	tf.next()
	body, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExLambda, Loc: loc, LambdaArgs: args, LambdaBody: body}, nil
}

func (tf *tokenFront) parseIf() (*ast.Expr, error) {
	loc := tf.loc()
	tf.next()
	cond, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.THEN); err != nil {
		return nil, err
	}
	tf.next()
	then, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.ELSE); err != nil {
		return nil, err
	}
	tf.next()
	els, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExIf, Loc: loc, Cond: cond, Then: then, Else: els}, nil
}

func (tf *tokenFront) parseMatch() (*ast.Expr, error) {
	loc := tf.loc()
	tf.next()
	scrutinee, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.WITH); err != nil {
		return nil, err
	}

	expr := &ast.Expr{Kind: ast.ExMatch, Loc: loc, Scrutinee: scrutinee}
	for tf.peekIs(token.PIPE) {
		tf.next()
		armLoc := tf.loc()
		tf.next()
		pat, err := tf.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard *ast.Expr
		if tf.peekIs(token.WHEN) {
			tf.next()
			tf.next()
			guard, err = tf.parseExpression(tpLowest)
			if err != nil {
				return nil, err
			}
		}
		if err := tf.expect(token.ARROW); err != nil {
			return nil, err
		}
		tf.next()
		body, err := tf.parseExpression(tpLowest)
		if err != nil {
			return nil, err
		}
		expr.Arms = append(expr.Arms, &ast.MatchArm{Loc: armLoc, Cond: pat, Guard: guard, Body: body})
	}
	if err := tf.expect(token.END); err != nil {
		return nil, err
	}
	return expr, nil
}

func (tf *tokenFront) parseLetExprInline() (*ast.Expr, error) {
	loc := tf.loc()
	tf.next()
	pat, err := tf.parsePattern()
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	tf.next()
	value, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.IN); err != nil {
		return nil, err
	}
	tf.next()
	body, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExLet, Loc: loc, Bind: pat, Value: value, Body: body}, nil
}

func (tf *tokenFront) parseDefExprInline() (*ast.Expr, error) {
	loc := tf.loc()
	if err := tf.expect(token.NAME); err != nil {
		return nil, err
	}
	name := tf.cur.Literal
	if err := tf.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	tf.next()
	value, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.IN); err != nil {
		return nil, err
	}
	tf.next()
	body, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExDef, Loc: loc, Name2: name, Value: value, Body: body}, nil
}

func (tf *tokenFront) parseTry() (*ast.Expr, error) {
	loc := tf.loc()
	tf.next()
	body, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	if err := tf.expect(token.RESCUE); err != nil {
		return nil, err
	}
	if err := tf.expect(token.NAME); err != nil {
		return nil, err
	}
	bind := tf.cur.Literal
	if err := tf.expect(token.FATARROW); err != nil {
		return nil, err
	}
	tf.next()
	handler, err := tf.parseExpression(tpLowest)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExTry, Loc: loc, TryBody: body, RescueBind: bind, Rescue: handler}, nil
}

// parsePattern parses the pattern sub-language (spec.md §3, §4.4). It is
// a byte-for-byte duplicate of package parser's pattern grammar, since a
// pattern is always a small, bounded fragment — reading it directly off
// the token stream here never requires materializing anything beyond the
// single let/lambda-argument/match-arm pattern at hand.
func (tf *tokenFront) parsePattern() (*ast.Pattern, error) {
	left, err := tf.parseSimplePattern()
	if err != nil {
		return nil, err
	}
	if tf.peekIs(token.CONS) {
		tf.next()
		loc := tf.loc()
		tf.next()
		tail, err := tf.parsePattern()
		if err != nil {
			return nil, err
		}
		return &ast.Pattern{Kind: ast.PatList, Loc: loc, Head: left, Tail: tail}, nil
	}
	return left, nil
}

func (tf *tokenFront) parseSimplePattern() (*ast.Pattern, error) {
	loc := tf.loc()
	switch tf.cur.Type {
	case token.NUM:
		n, _ := strconv.ParseFloat(tf.cur.Literal, 64)
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Num(n)}, nil
	case token.STRING:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Str(tf.cur.Literal)}, nil
	case token.SYM:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Sym(tf.cur.Literal)}, nil
	case token.TRUE, token.FALSE:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Bool(tf.curIs(token.TRUE))}, nil
	case token.NIL:
		return &ast.Pattern{Kind: ast.PatLit, Loc: loc, Lit: ast.Nil}, nil
	case token.NAME:
		path := []string{tf.cur.Literal}
		for tf.peekIs(token.DOT) {
			tf.next()
			if err := tf.expect(token.NAME); err != nil {
				return nil, err
			}
			path = append(path, tf.cur.Literal)
		}
		if tf.peekIs(token.LPAREN) {
			tf.next()
			args, err := tf.parsePatternList(token.RPAREN)
			if err != nil {
				return nil, err
			}
			return &ast.Pattern{Kind: ast.PatVariant, Loc: loc, Path: path, Args: args}, nil
		}
		if len(path) > 1 {
			return &ast.Pattern{Kind: ast.PatVariant, Loc: loc, Path: path}, nil
		}
		return ast.NewIDPattern(path[0], loc), nil
	case token.LBRACK:
		if err := tf.expect(token.RBRACK); err != nil {
			return nil, err
		}
		return &ast.Pattern{Kind: ast.PatEmptyList, Loc: loc}, nil
	case token.LPAREN:
		args, err := tf.parsePatternList(token.RPAREN)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return args[0], nil
		}
		return &ast.Pattern{Kind: ast.PatTuple, Loc: loc, Args: args}, nil
	default:
		return nil, tf.errorf("no pattern parse function for %s found", tf.cur.Type)
	}
}

func (tf *tokenFront) parsePatternList(end token.Type) ([]*ast.Pattern, error) {
	var list []*ast.Pattern
	if tf.peekIs(end) {
		tf.next()
		return list, nil
	}
	tf.next()
	p, err := tf.parsePattern()
	if err != nil {
		return nil, err
	}
	list = append(list, p)
	for tf.peekIs(token.COMMA) {
		tf.next()
		tf.next()
		p, err := tf.parsePattern()
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := tf.expect(end); err != nil {
		return nil, err
	}
	return list, nil
}
