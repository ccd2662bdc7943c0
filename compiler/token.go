package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the type-expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	TokenIdentifier // List, Int, collections.Map

	// Delimiters
	TokenLAngle // <
	TokenRAngle // >
	TokenComma  // ,
	TokenStar   // *
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenIdentifier: "IDENTIFIER",
	TokenLAngle:     "<",
	TokenRAngle:     ">",
	TokenComma:      ",",
	TokenStar:       "*",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// varianceKeywords are identifiers that act as projection keywords when
// they precede a type argument.
var varianceKeywords = map[string]bool{
	"out": true,
	"in":  true,
	"inv": true,
	"bi":  true,
}
