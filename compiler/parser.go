package compiler

import (
	"fmt"

	"github.com/chazu/reify/reify"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for type expressions
//
//	type := '*' | name [ '<' arg { ',' arg } '>' ]
//	arg  := [ 'out' | 'in' | 'inv' | 'bi' ] type
// ---------------------------------------------------------------------------

// ParseError is a syntax error at a source position.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parser parses type expressions.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []*ParseError
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// ParseType parses src as a single type expression.
func ParseType(src string) (TypeExpr, error) {
	p := NewParser(src)
	expr := p.ParseTypeExpr()
	if !p.curTokenIs(TokenEOF) && len(p.errors) == 0 {
		p.errorf("unexpected %s after type", p.curToken)
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return expr, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken)
	return false
}

// errorf records a parse error at the current token.
func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, &ParseError{Pos: p.curToken.Pos, Msg: fmt.Sprintf(format, args...)})
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// ParseTypeExpr parses one type expression starting at the current token.
func (p *Parser) ParseTypeExpr() TypeExpr {
	switch p.curToken.Type {
	case TokenStar:
		pos := p.curToken.Pos
		p.nextToken()
		return &StarExpr{Position: pos}
	case TokenIdentifier:
		return p.parseNamedType()
	case TokenError:
		p.errorf("%s", p.curToken.Literal)
	default:
		p.errorf("expected type, got %s", p.curToken)
	}
	return nil
}

func (p *Parser) parseNamedType() TypeExpr {
	n := &NamedType{Position: p.curToken.Pos, Name: p.curToken.Literal}
	p.nextToken()
	if !p.curTokenIs(TokenLAngle) {
		return n
	}
	p.nextToken()

	for {
		arg, ok := p.parseTypeArg()
		if !ok {
			return nil
		}
		n.Args = append(n.Args, arg)
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.expect(TokenRAngle) {
		return nil
	}
	return n
}

func (p *Parser) parseTypeArg() (TypeArg, bool) {
	var arg TypeArg

	// A keyword only counts as a projection if a type follows it, so a
	// class may still be called "in" or "out".
	if p.curTokenIs(TokenIdentifier) && varianceKeywords[p.curToken.Literal] &&
		(p.peekToken.Type == TokenIdentifier || p.peekToken.Type == TokenStar) {
		v, err := reify.ParseVariance(p.curToken.Literal)
		if err != nil {
			p.errorf("%v", err)
			return arg, false
		}
		arg.Variance = v
		arg.Explicit = true
		p.nextToken()
	}

	arg.Type = p.ParseTypeExpr()
	return arg, arg.Type != nil
}
