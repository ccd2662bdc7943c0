package reify

import "fmt"

// Variance is the projection kind of a type argument position.
type Variance uint8

const (
	Invariant Variance = iota
	Out                // covariant
	In                 // contravariant
	Bivariant          // accepts anything
)

// Valid reports whether v is one of the four known variance tags.
func (v Variance) Valid() bool {
	return v <= Bivariant
}

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "inv"
	case Out:
		return "out"
	case In:
		return "in"
	case Bivariant:
		return "bi"
	}
	return fmt.Sprintf("Variance(%d)", uint8(v))
}

// keyword returns the prefix used when rendering a type argument.
// Invariant arguments are written without one.
func (v Variance) keyword() string {
	if v == Invariant {
		return ""
	}
	return v.String()
}

// ParseVariance converts a variance keyword into a Variance.
// The empty string is invariant.
func ParseVariance(s string) (Variance, error) {
	switch s {
	case "", "inv", "invariant":
		return Invariant, nil
	case "out":
		return Out, nil
	case "in":
		return In, nil
	case "bi", "bivariant", "*":
		return Bivariant, nil
	}
	return 0, fmt.Errorf("reify: unknown variance %q", s)
}
