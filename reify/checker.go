package reify

// ---------------------------------------------------------------------------
// Instance / subtype checks
// ---------------------------------------------------------------------------

// IsInstance reports whether v is an instance of d.
//
// v may be a *Descriptor (when descriptors are compared with each other),
// a Parametric value carrying its descriptor, or a plain value. A false
// result is never an error.
func (d *Descriptor) IsInstance(v any) bool {
	if d == d.reg.anyDesc || d.IsStar() {
		return true
	}

	other := descriptorOf(v)
	if other == nil {
		// Plain value: no reified arguments to compare against.
		if d.isParametric() {
			return false
		}
		return d.class.Accepts(v)
	}
	if other.class == NothingClass {
		return true
	}

	if other.IsRaw() {
		// An erased value never satisfies a parametric target.
		if d.isParametric() {
			return false
		}
		return d.nominal(other)
	}

	frame := other
	for frame != nil && frame.class != d.class {
		frame = frame.Parent()
	}
	if frame == nil {
		// The reified chain only records generic ancestors; a raw target
		// may still be a plain nominal supertype.
		if !d.isParametric() {
			return d.nominal(other)
		}
		return false
	}
	return d.argsAccept(frame)
}

// IsSubtypeOf reports whether d is assignable to other.
func (d *Descriptor) IsSubtypeOf(other *Descriptor) bool {
	return other.IsInstance(d)
}

// Identical reports whether d and other describe the same instantiation:
// the same classes with the same projections all the way down. Unlike
// pointer equality it also holds across registries.
func (d *Descriptor) Identical(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.IsStar() || other.IsStar() {
		return d.IsStar() && other.IsStar()
	}
	if d.class != other.class || len(d.args) != len(other.args) {
		return false
	}
	for i := range d.args {
		if !isInstanceForFreshTypeVars(d.args[i], other.args[i], d.variance[i], other.variance[i], false) {
			return false
		}
	}
	return true
}

func (d *Descriptor) nominal(other *Descriptor) bool {
	return other.class != nil && other.class.IsSubclassOf(d.class)
}

// argsAccept compares d's type arguments with those of frame, the
// ancestor of the value's descriptor that has d's class.
func (d *Descriptor) argsAccept(frame *Descriptor) bool {
	if len(d.args) == 0 {
		// Erased target: any instantiation of the class will do.
		return true
	}
	if len(d.args) != len(frame.args) {
		return false
	}
	for i := range d.args {
		if !isInstanceForFreshTypeVars(d.args[i], frame.args[i], d.variance[i], frame.variance[i], true) {
			return false
		}
	}
	return true
}

// isInstanceForFreshTypeVars checks one aligned pair of type arguments.
//
// With checkBounds each side is split into a (lower, upper) pair by its
// variance and the other side's bounds must fit inside this side's.
// Without it the two arguments must be the same instantiation with the
// same projections.
func isInstanceForFreshTypeVars(thisArg, otherArg *Descriptor, thisVariance, otherVariance Variance, checkBounds bool) bool {
	if !checkBounds && (thisArg.IsStar() || otherArg.IsStar()) {
		return thisArg.IsStar() && otherArg.IsStar()
	}
	if thisArg.IsStar() {
		return true
	}

	if !checkBounds {
		if thisArg.class != otherArg.class || thisVariance != otherVariance {
			return false
		}
		if len(thisArg.args) != len(otherArg.args) {
			return false
		}
		for i := range thisArg.args {
			if !isInstanceForFreshTypeVars(thisArg.args[i], otherArg.args[i], thisArg.variance[i], otherArg.variance[i], false) {
				return false
			}
		}
		return true
	}

	thisLower, thisUpper := bounds(thisArg, thisVariance)
	otherLower, otherUpper := bounds(otherArg, otherVariance)
	return otherLower.IsInstance(thisLower) && thisUpper.IsInstance(otherUpper)
}

// bounds splits a projected argument into its lower and upper bound.
// The star projection is bounded by [Nothing, Any] whatever its variance.
func bounds(arg *Descriptor, v Variance) (lower, upper *Descriptor) {
	r := arg.reg
	if arg.IsStar() {
		return r.nothingDesc, r.anyDesc
	}
	switch v {
	case Invariant:
		return arg, arg
	case Out:
		return r.nothingDesc, arg
	case In:
		return arg, r.anyDesc
	case Bivariant:
		return r.nothingDesc, r.anyDesc
	}
	panic(&IllegalVarianceError{Variance: v})
}

// ---------------------------------------------------------------------------
// Casts
// ---------------------------------------------------------------------------

// Cast returns v unchanged if it is an instance of d, and a *CastError
// otherwise.
func (d *Descriptor) Cast(v any) (any, error) {
	if !d.IsInstance(v) {
		return nil, NewCastError(d, v)
	}
	return v, nil
}

// SafeCast returns v and true if it is an instance of d, and nil and
// false otherwise.
func (d *Descriptor) SafeCast(v any) (any, bool) {
	if !d.IsInstance(v) {
		return nil, false
	}
	return v, true
}

// CastAs checks v against d and converts it to T. It fails with a
// *CastError if either step fails.
func CastAs[T any](d *Descriptor, v any) (T, error) {
	var zero T
	if !d.IsInstance(v) {
		return zero, NewCastError(d, v)
	}
	t, ok := v.(T)
	if !ok {
		return zero, NewCastError(d, v)
	}
	return t, nil
}
