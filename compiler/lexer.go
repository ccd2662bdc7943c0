package compiler

import (
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for type expressions
// ---------------------------------------------------------------------------

// Lexer tokenizes type expressions such as "Map<String, out List<Int>>".
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position()
	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}
	case l.ch == '<':
		l.readChar()
		return Token{Type: TokenLAngle, Literal: "<", Pos: pos}
	case l.ch == '>':
		l.readChar()
		return Token{Type: TokenRAngle, Literal: ">", Pos: pos}
	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}
	case l.ch == '*':
		l.readChar()
		return Token{Type: TokenStar, Literal: "*", Pos: pos}
	case isIdentStart(l.ch):
		return Token{Type: TokenIdentifier, Literal: l.readIdentifier(), Pos: pos}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenError, Literal: "unexpected character " + string(ch), Pos: pos}
}

// readIdentifier reads a possibly dotted name (ns.Name). A dot must be
// followed by another identifier character.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentPart(l.ch) || (l.ch == '.' && isIdentStart(l.peekChar())) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
