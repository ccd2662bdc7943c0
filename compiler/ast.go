package compiler

import (
	"strings"

	"github.com/chazu/reify/reify"
)

// Position represents a location in source code.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// ---------------------------------------------------------------------------
// Type expression AST
// ---------------------------------------------------------------------------

// TypeExpr is a parsed type expression.
type TypeExpr interface {
	Pos() Position
	String() string
	typeExpr()
}

// StarExpr is the star projection "*".
type StarExpr struct {
	Position Position
}

func (s *StarExpr) Pos() Position  { return s.Position }
func (s *StarExpr) String() string { return "*" }
func (s *StarExpr) typeExpr()      {}

// NamedType is a class name, possibly applied to type arguments, or a
// reference to a type parameter in scope.
type NamedType struct {
	Position Position
	Name     string
	Args     []TypeArg
}

func (n *NamedType) Pos() Position { return n.Position }
func (n *NamedType) typeExpr()     {}

func (n *NamedType) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	var sb strings.Builder
	sb.WriteString(n.Name)
	sb.WriteByte('<')
	for i, a := range n.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a.Explicit {
			sb.WriteString(a.Variance.String())
			sb.WriteByte(' ')
		}
		sb.WriteString(a.Type.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// TypeArg is one argument of a NamedType. Explicit is false when no
// projection keyword was written; the declared variance of the class
// then applies.
type TypeArg struct {
	Variance reify.Variance
	Explicit bool
	Type     TypeExpr
}
