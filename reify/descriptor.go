package reify

import (
	"strings"
	"sync/atomic"

	"github.com/chazu/reify/reify/hash"
)

// ---------------------------------------------------------------------------
// Descriptor: one canonical reified type shape
// ---------------------------------------------------------------------------

// ID is a descriptor's position in its registry. IDs start at 1; NoID means
// "no descriptor" wherever an ID is optional.
type ID uint32

const NoID ID = 0

// Descriptor is the runtime representation of one concrete or parametric
// type instantiation. Descriptors are only created by Registry.Register and
// are immutable afterwards, apart from the one-time parent link and the
// one-shot first-registration flag.
type Descriptor struct {
	reg      *Registry
	id       ID
	class    *Class        // nil only for the star projection
	args     []*Descriptor // canonical type arguments
	variance []Variance    // one per argument
	shape    hash.Shape
	key      hash.Key

	parent   atomic.Uint32 // ID of the nearest reified ancestor, NoID if none
	firstReg atomic.Bool
}

// ID returns the registry id of the descriptor.
func (d *Descriptor) ID() ID { return d.id }

// Class returns the underlying class, or nil for the star projection.
func (d *Descriptor) Class() *Class { return d.class }

// Registry returns the registry that owns d.
func (d *Descriptor) Registry() *Registry { return d.reg }

// NumArgs returns the number of type arguments.
func (d *Descriptor) NumArgs() int { return len(d.args) }

// Arg returns the i-th type argument.
func (d *Descriptor) Arg(i int) *Descriptor { return d.args[i] }

// ArgVariance returns the projection variance of the i-th type argument.
func (d *Descriptor) ArgVariance(i int) Variance { return d.variance[i] }

// Args returns a copy of the type arguments.
func (d *Descriptor) Args() []*Descriptor {
	result := make([]*Descriptor, len(d.args))
	copy(result, d.args)
	return result
}

// Variance returns a copy of the per-argument variance tags.
func (d *Descriptor) Variance() []Variance {
	result := make([]Variance, len(d.variance))
	copy(result, d.variance)
	return result
}

// Shape returns the structural identity of d.
func (d *Descriptor) Shape() hash.Shape { return d.shape }

// Key returns the structural hash of d.
func (d *Descriptor) Key() hash.Key { return d.key }

// Parent returns the nearest reified ancestor, or nil.
func (d *Descriptor) Parent() *Descriptor {
	id := ID(d.parent.Load())
	if id == NoID {
		return nil
	}
	return d.reg.ByID(id)
}

// HasParent reports whether a parent link has been attached.
func (d *Descriptor) HasParent() bool {
	return d.parent.Load() != uint32(NoID)
}

// IsStar reports whether d is the star projection.
func (d *Descriptor) IsStar() bool { return d.class == nil }

// IsRaw reports whether d has neither type arguments nor a parent. A raw
// descriptor stands for an erased value whose parametric identity is
// unknown.
func (d *Descriptor) IsRaw() bool {
	return len(d.args) == 0 && !d.HasParent()
}

// isParametric is the complement of IsRaw, named for the checker.
func (d *Descriptor) isParametric() bool {
	return !d.IsRaw()
}

// FirstReg returns true exactly once per descriptor: to the first caller
// after the descriptor was inserted. Every later call returns false.
func (d *Descriptor) FirstReg() bool {
	return d.firstReg.CompareAndSwap(true, false)
}

// String renders the descriptor in source form, e.g. "Map<String, out Int>".
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	var sb strings.Builder
	d.writeTo(&sb)
	return sb.String()
}

func (d *Descriptor) writeTo(sb *strings.Builder) {
	if d.class == nil {
		sb.WriteByte('*')
		return
	}
	sb.WriteString(d.class.FullName())
	if len(d.args) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, a := range d.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if kw := d.variance[i].keyword(); kw != "" && !a.IsStar() {
			sb.WriteString(kw)
			sb.WriteByte(' ')
		}
		a.writeTo(sb)
	}
	sb.WriteByte('>')
}
