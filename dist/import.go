package dist

import (
	"fmt"
	"slices"

	"github.com/chazu/reify/reify"
	"github.com/chazu/reify/reify/hash"
)

// Import rebuilds a registry from a snapshot.
//
// Classes already present in classes are reused and must agree with the
// recorded type parameters; missing ones are created and defined there.
// Registrations are replayed in id order, so every descriptor receives
// its recorded id, and parents are attached once all descriptors exist.
func Import(s *Snapshot, classes *reify.ClassTable, opts ...reify.Option) (*reify.Registry, error) {
	if s.HashVersion != hash.HashVersion {
		return nil, fmt.Errorf("%w: %d", ErrHashVersion, s.HashVersion)
	}

	refs, err := importClasses(s.Classes, classes)
	if err != nil {
		return nil, err
	}
	byRef := make(map[string]*reify.Class, len(refs))
	for c := range refs {
		byRef[c.FullName()] = c
	}

	reg := reify.NewRegistry(opts...)
	descs := make([]*reify.Descriptor, len(s.Descriptors)+1)

	for i, rec := range s.Descriptors {
		if rec.ID != uint32(i+1) {
			return nil, fmt.Errorf("%w: descriptor %d out of order at position %d", ErrCorrupt, rec.ID, i)
		}
		if len(rec.Args) != len(rec.Variance) {
			return nil, fmt.Errorf("%w: descriptor %d has %d args and %d variances", ErrCorrupt, rec.ID, len(rec.Args), len(rec.Variance))
		}

		d, err := replay(reg, rec, byRef, descs)
		if err != nil {
			return nil, err
		}
		if uint32(d.ID()) != rec.ID {
			return nil, fmt.Errorf("%w: descriptor %d replayed as %d", ErrCorrupt, rec.ID, d.ID())
		}
		descs[rec.ID] = d
	}

	for _, rec := range s.Descriptors {
		if rec.Parent == 0 {
			continue
		}
		if rec.Parent >= uint32(len(descs)) {
			return nil, fmt.Errorf("%w: descriptor %d has unknown parent %d", ErrCorrupt, rec.ID, rec.Parent)
		}
		if err := reg.SetParent(descs[rec.ID], descs[rec.Parent]); err != nil {
			return nil, fmt.Errorf("dist: descriptor %d: %w", rec.ID, err)
		}
	}

	for _, rec := range s.Descriptors {
		if portableKey(refs, descs[rec.ID]) != rec.Hash {
			return nil, fmt.Errorf("%w: shape hash mismatch for %s", ErrCorrupt, descs[rec.ID])
		}
	}
	return reg, nil
}

func replay(reg *reify.Registry, rec DescriptorRecord, byRef map[string]*reify.Class, descs []*reify.Descriptor) (*reify.Descriptor, error) {
	switch rec.ID {
	case 1, 2, 3:
		sentinel := [...]*reify.Descriptor{reg.Any(), reg.Nothing(), reg.Star()}[rec.ID-1]
		want := ""
		if c := sentinel.Class(); c != nil {
			want = c.FullName()
		}
		if rec.Class != want || len(rec.Args) != 0 {
			return nil, fmt.Errorf("%w: descriptor %d is not %s", ErrCorrupt, rec.ID, sentinel)
		}
		return sentinel, nil
	}

	var class *reify.Class
	switch rec.Class {
	case reify.AnyClass.FullName():
		class = reify.AnyClass
	case reify.NothingClass.FullName():
		class = reify.NothingClass
	default:
		c, ok := byRef[rec.Class]
		if !ok {
			return nil, fmt.Errorf("%w: %q used by descriptor %d", ErrUnknownClass, rec.Class, rec.ID)
		}
		class = c
	}

	args := make([]*reify.Descriptor, len(rec.Args))
	variance := make([]reify.Variance, len(rec.Args))
	for i, id := range rec.Args {
		if id == 0 || id >= rec.ID {
			return nil, fmt.Errorf("%w: descriptor %d refers forward to %d", ErrCorrupt, rec.ID, id)
		}
		args[i] = descs[id]
		variance[i] = reify.Variance(rec.Variance[i])
	}

	d, inserted, err := reg.Register(class, args, variance, nil)
	if err != nil {
		return nil, fmt.Errorf("dist: descriptor %d: %w", rec.ID, err)
	}
	if !inserted {
		return nil, fmt.Errorf("%w: descriptor %d duplicates %d", ErrCorrupt, rec.ID, d.ID())
	}
	return d, nil
}

// importClasses resolves every class record against table, defining the
// ones it lacks. The returned map gives each class its snapshot reference.
func importClasses(records []ClassRecord, table *reify.ClassTable) (classRefs, error) {
	refs := make(classRefs, len(records))
	var created []int
	resolved := make([]*reify.Class, len(records))

	for i, rec := range records {
		params := make([]reify.TypeParam, len(rec.Params))
		for j, p := range rec.Params {
			params[j] = reify.TypeParam{Name: p.Name, Variance: reify.Variance(p.Variance)}
		}

		name := rec.FullName()
		c, ok := table.Lookup(name)
		if ok {
			if !slices.Equal(c.DeclaredVariance(), variances(params)) {
				return nil, fmt.Errorf("%w: %s has parameters %v, snapshot has %v", ErrClassMismatch, name, c.DeclaredVariance(), variances(params))
			}
		} else {
			c = reify.NewGenericClass(rec.Name, params)
			c.Namespace = rec.Namespace
			c.DocString = rec.Doc
			if err := table.Define(c); err != nil {
				return nil, fmt.Errorf("dist: %w", err)
			}
			created = append(created, i)
		}
		resolved[i] = c
		refs[c] = firstClassRef + uint64(i)
	}

	// Supertypes may be recorded in any order, so link them last.
	for _, i := range created {
		for _, name := range records[i].Supers {
			sup, ok := table.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q, supertype of %s", ErrUnknownClass, name, records[i].FullName())
			}
			resolved[i].Supers = append(resolved[i].Supers, sup)
		}
	}
	return refs, nil
}

func variances(params []reify.TypeParam) []reify.Variance {
	vs := make([]reify.Variance, len(params))
	for i, p := range params {
		vs[i] = p.Variance
	}
	return vs
}
