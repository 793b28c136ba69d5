package lexer

import (
	"testing"

	"github.com/fen-lang/fen/token"
)

// TestNextToken tests the functionality of the NextToken method in the Lexer to ensure all tokens are correctly identified.
func TestNextToken(t *testing.T) {
	input := `let x = 1 in x + 2
def double = fn n -> n * 2
if 1 == 1 then :ok else :err
[1, 2] :: xs
(a, b, 3.5)
type Option =
  | None
  | Some(x)
end
try raise("e", :E) rescue e => e
-> => :: # &&& ||| ^^^ <<< >>> <= >= != and or
foo.bar
`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.NAME, "x"},
		{token.ASSIGN, "="},
		{token.NUM, "1"},
		{token.IN, "in"},
		{token.NAME, "x"},
		{token.ADD, "+"},
		{token.NUM, "2"},
		{token.DEF, "def"},
		{token.NAME, "double"},
		{token.ASSIGN, "="},
		{token.FN, "fn"},
		{token.NAME, "n"},
		{token.ARROW, "->"},
		{token.NAME, "n"},
		{token.MUL, "*"},
		{token.NUM, "2"},
		{token.IF, "if"},
		{token.NUM, "1"},
		{token.EQ, "=="},
		{token.NUM, "1"},
		{token.THEN, "then"},
		{token.SYM, "ok"},
		{token.ELSE, "else"},
		{token.SYM, "err"},
		{token.LBRACK, "["},
		{token.NUM, "1"},
		{token.COMMA, ","},
		{token.NUM, "2"},
		{token.RBRACK, "]"},
		{token.CONS, "::"},
		{token.NAME, "xs"},
		{token.LPAREN, "("},
		{token.NAME, "a"},
		{token.COMMA, ","},
		{token.NAME, "b"},
		{token.COMMA, ","},
		{token.NUM, "3.5"},
		{token.RPAREN, ")"},
		{token.TYPE, "type"},
		{token.NAME, "Option"},
		{token.ASSIGN, "="},
		{token.PIPE, "|"},
		{token.NAME, "None"},
		{token.PIPE, "|"},
		{token.NAME, "Some"},
		{token.LPAREN, "("},
		{token.NAME, "x"},
		{token.RPAREN, ")"},
		{token.END, "end"},
		{token.TRY, "try"},
		{token.NAME, "raise"},
		{token.LPAREN, "("},
		{token.STRING, "e"},
		{token.COMMA, ","},
		{token.SYM, "E"},
		{token.RPAREN, ")"},
		{token.RESCUE, "rescue"},
		{token.NAME, "e"},
		{token.FATARROW, "=>"},
		{token.NAME, "e"},
		{token.ARROW, "->"},
		{token.FATARROW, "=>"},
		{token.CONS, "::"},
		{token.LEN, "#"},
		{token.BITAND, "&&&"},
		{token.BITOR, "|||"},
		{token.BITXOR, "^^^"},
		{token.SHL, "<<<"},
		{token.SHR, ">>>"},
		{token.LE, "<="},
		{token.GE, ">="},
		{token.NE, "!="},
		{token.AND, "and"},
		{token.OR, "or"},
		{token.NAME, "foo"},
		{token.DOT, "."},
		{token.NAME, "bar"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("a\nbb")

	first := l.NextToken()
	if first.Line != 1 || first.Column != 1 {
		t.Fatalf("expected first token at 1:1, got %d:%d", first.Line, first.Column)
	}

	second := l.NextToken()
	if second.Line != 2 || second.Column != 1 {
		t.Fatalf("expected second token at 2:1, got %d:%d", second.Line, second.Column)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
}
