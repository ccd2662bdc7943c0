package compiler

import (
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `Map<String, out ns.List<*>>`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenIdentifier, "Map"},
		{TokenLAngle, "<"},
		{TokenIdentifier, "String"},
		{TokenComma, ","},
		{TokenIdentifier, "out"},
		{TokenIdentifier, "ns.List"},
		{TokenLAngle, "<"},
		{TokenStar, "*"},
		{TokenRAngle, ">"},
		{TokenRAngle, ">"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("List<\n  Int>")
	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 4, Line: 1, Column: 5},
		{Offset: 8, Line: 2, Column: 3},
		{Offset: 11, Line: 2, Column: 6},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Pos != w {
			t.Errorf("token[%d] %s pos = %+v, want %+v", i, tok, tok.Pos, w)
		}
	}
}

func TestLexerTrailingDot(t *testing.T) {
	l := NewLexer("ns.")
	tok := l.NextToken()
	if tok.Type != TokenIdentifier || tok.Literal != "ns" {
		t.Errorf("first token = %s, want IDENTIFIER(\"ns\")", tok)
	}
	if tok := l.NextToken(); tok.Type != TokenError {
		t.Errorf("second token = %s, want ERROR", tok)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	tok := NewLexer("#").NextToken()
	if tok.Type != TokenError {
		t.Errorf("token = %s, want ERROR", tok)
	}
}
