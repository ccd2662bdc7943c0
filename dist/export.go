package dist

import (
	"errors"
	"fmt"

	"github.com/chazu/reify/reify"
	"github.com/chazu/reify/reify/hash"
	"github.com/google/uuid"
)

var (
	ErrHashVersion   = errors.New("dist: unsupported hash version")
	ErrClassMismatch = errors.New("dist: class does not match snapshot")
	ErrUnknownClass  = errors.New("dist: unknown class")
	ErrCorrupt       = errors.New("dist: corrupt snapshot")
)

// Class references inside portable shape keys. Declared classes are
// numbered from firstClassRef in snapshot order.
const (
	anyClassRef     uint64 = 1
	nothingClassRef uint64 = 2
	firstClassRef   uint64 = 3
)

// Export captures every descriptor of reg, in id order, together with the
// classes they mention and those classes' supertypes.
func Export(reg *reify.Registry) *Snapshot {
	s := &Snapshot{
		Session:     uuid.New(),
		HashVersion: hash.HashVersion,
	}

	refs := classRefs{}
	var addClass func(c *reify.Class)
	addClass = func(c *reify.Class) {
		if c == nil || c == reify.AnyClass || c == reify.NothingClass {
			return
		}
		if _, ok := refs[c]; ok {
			return
		}
		refs[c] = firstClassRef + uint64(len(s.Classes))

		rec := ClassRecord{
			Name:      c.Name,
			Namespace: c.Namespace,
			Doc:       c.DocString,
		}
		for _, p := range c.Params {
			rec.Params = append(rec.Params, ParamRecord{Name: p.Name, Variance: uint8(p.Variance)})
		}
		for _, sup := range c.Supers {
			rec.Supers = append(rec.Supers, sup.FullName())
		}
		s.Classes = append(s.Classes, rec)

		for _, sup := range c.Supers {
			addClass(sup)
		}
	}

	all := reg.All()
	s.Descriptors = make([]DescriptorRecord, 0, len(all))
	for _, d := range all {
		addClass(d.Class())

		rec := DescriptorRecord{ID: uint32(d.ID())}
		if c := d.Class(); c != nil {
			rec.Class = c.FullName()
		}
		for i := 0; i < d.NumArgs(); i++ {
			rec.Args = append(rec.Args, uint32(d.Arg(i).ID()))
			rec.Variance = append(rec.Variance, uint8(d.ArgVariance(i)))
		}
		if p := d.Parent(); p != nil {
			rec.Parent = uint32(p.ID())
		}
		rec.Hash = portableKey(refs, d)
		s.Descriptors = append(s.Descriptors, rec)
	}
	return s
}

type classRefs map[*reify.Class]uint64

func (r classRefs) ref(c *reify.Class) uint64 {
	switch c {
	case reify.AnyClass:
		return anyClassRef
	case reify.NothingClass:
		return nothingClassRef
	}
	return r[c]
}

// portableKey hashes the shape of d with class serials replaced by snapshot
// class references, so the key is stable across processes.
func portableKey(refs classRefs, d *reify.Descriptor) [32]byte {
	shape := hash.Shape{Star: d.IsStar()}
	if !shape.Star {
		shape.Class = refs.ref(d.Class())
	}
	for i := 0; i < d.NumArgs(); i++ {
		shape.Args = append(shape.Args, hash.Arg{
			ID:       uint32(d.Arg(i).ID()),
			Variance: byte(d.ArgVariance(i)),
		})
	}
	return hash.Sum(shape)
}

// Summary renders a one-line description of the snapshot.
func (s *Snapshot) Summary() string {
	return fmt.Sprintf("session %s: %d classes, %d descriptors", s.Session, len(s.Classes), len(s.Descriptors))
}
