package reify

import (
	"errors"
	"fmt"
)

var (
	ErrNilClass          = errors.New("reify: nil class")
	ErrNilDescriptor     = errors.New("reify: nil descriptor")
	ErrArityMismatch     = errors.New("reify: arity mismatch")
	ErrForeignDescriptor = errors.New("reify: descriptor belongs to another registry")
	ErrParentAlreadySet  = errors.New("reify: parent already set")
	ErrParentCycle       = errors.New("reify: parent chain would form a cycle")
	ErrClassExists       = errors.New("reify: class already defined")
)

// CastError is returned by Cast when the value is not an instance of the
// target descriptor.
type CastError struct {
	Target *Descriptor
	Value  any
}

func (e *CastError) Error() string {
	return fmt.Sprintf("reify: cannot cast %s to %s", describeValue(e.Value), e.Target)
}

// NewCastError builds a CastError for target and value.
func NewCastError(target *Descriptor, value any) *CastError {
	return &CastError{Target: target, Value: value}
}

// IllegalVarianceError reports a variance tag outside the closed set.
type IllegalVarianceError struct {
	Variance Variance
}

func (e *IllegalVarianceError) Error() string {
	return fmt.Sprintf("reify: illegal variance %d", uint8(e.Variance))
}

func describeValue(v any) string {
	if v == nil {
		return "nil"
	}
	if d := descriptorOf(v); d != nil {
		return d.String()
	}
	if c, ok := v.(Classed); ok && c.ReifyClass() != nil {
		return c.ReifyClass().FullName()
	}
	return fmt.Sprintf("%T", v)
}
