package reify

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/chazu/reify/reify/hash"
)

// ---------------------------------------------------------------------------
// Registry: canonicalizing descriptor table
// ---------------------------------------------------------------------------

// Registry interns descriptors by structure and owns their ids and parent
// links. It is an explicit object: every caller that needs descriptors is
// handed the registry it should use.
// It's thread-safe for concurrent access.
type Registry struct {
	mu    sync.RWMutex
	table map[hash.Key][]ID
	descs []*Descriptor // ID -> descriptor; index 0 is unused

	anyDesc     *Descriptor
	nothingDesc *Descriptor
	starDesc    *Descriptor

	log commonlog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger routes registry logging to l.
func WithLogger(l commonlog.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// NewRegistry creates a registry holding only the three sentinels:
// Any (id 1), Nothing (id 2) and the star projection (id 3).
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		table: make(map[hash.Key][]ID),
		descs: make([]*Descriptor, 1, 64),
		log:   commonlog.GetLogger("reify.registry"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.anyDesc = r.insertLocked(AnyClass, nil, nil, hash.Shape{Class: AnyClass.serial})
	r.nothingDesc = r.insertLocked(NothingClass, nil, nil, hash.Shape{Class: NothingClass.serial})
	r.starDesc = r.insertLocked(nil, nil, nil, hash.Shape{Star: true})
	return r
}

// Any returns the top descriptor; every value is an instance of it.
func (r *Registry) Any() *Descriptor { return r.anyDesc }

// Nothing returns the bottom descriptor; a value carrying it is an
// instance of every descriptor.
func (r *Registry) Nothing() *Descriptor { return r.nothingDesc }

// Star returns the star projection, whose bounds are [Nothing, Any].
func (r *Registry) Star() *Descriptor { return r.starDesc }

// Register returns the canonical descriptor for class applied to args.
//
// variance gives the projection of each argument; nil means the class's
// declaration-site variance (or invariant for all arguments when the class
// declares none). parent is attached only if this call inserted the
// descriptor, and inserted reports exactly that. An empty args list is
// always accepted and denotes the raw (erased) class.
func (r *Registry) Register(class *Class, args []*Descriptor, variance []Variance, parent *Descriptor) (d *Descriptor, inserted bool, err error) {
	shape, variance, err := r.shapeOf(class, args, variance)
	if err != nil {
		return nil, false, err
	}
	if parent != nil && parent.reg != r {
		return nil, false, ErrForeignDescriptor
	}
	key := hash.Sum(shape)

	// Fast path: read-only lookup
	r.mu.RLock()
	d = r.findLocked(key, shape)
	r.mu.RUnlock()
	if d != nil {
		return d, false, nil
	}

	// Slow path: need to add a new descriptor
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if d = r.findLocked(key, shape); d != nil {
		return d, false, nil
	}

	d = r.insertLocked(class, append([]*Descriptor(nil), args...), variance, shape)
	if parent != nil {
		d.parent.Store(uint32(parent.id))
	}
	r.log.Debugf("registered %s as #%d", d, d.id)
	return d, true, nil
}

// MustRegister is like Register but panics on error. It is meant for
// static setup code where the arguments are known to be well-formed.
func (r *Registry) MustRegister(class *Class, args []*Descriptor, variance []Variance, parent *Descriptor) *Descriptor {
	d, _, err := r.Register(class, args, variance, parent)
	if err != nil {
		panic(err)
	}
	return d
}

// Lookup returns the canonical descriptor for class applied to args
// without registering anything.
func (r *Registry) Lookup(class *Class, args []*Descriptor, variance []Variance) (*Descriptor, bool) {
	shape, _, err := r.shapeOf(class, args, variance)
	if err != nil {
		return nil, false
	}
	key := hash.Sum(shape)

	r.mu.RLock()
	defer r.mu.RUnlock()
	d := r.findLocked(key, shape)
	return d, d != nil
}

// SetParent attaches parent to d. It is the deferred half of the
// register-then-wire protocol and succeeds at most once per descriptor.
func (r *Registry) SetParent(d, parent *Descriptor) error {
	if d == nil || parent == nil {
		return ErrNilDescriptor
	}
	if d.reg != r || parent.reg != r {
		return ErrForeignDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d.HasParent() {
		return fmt.Errorf("%w: %s", ErrParentAlreadySet, d)
	}
	for p := parent; p != nil; p = r.byIDLocked(ID(p.parent.Load())) {
		if p == d {
			return fmt.Errorf("%w: %s -> %s", ErrParentCycle, d, parent)
		}
	}
	d.parent.Store(uint32(parent.id))
	r.log.Debugf("parent of %s is %s", d, parent)
	return nil
}

// ByID returns the descriptor with the given id, or nil.
func (r *Registry) ByID(id ID) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byIDLocked(id)
}

// Len returns the number of registered descriptors, sentinels included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descs) - 1
}

// All returns every descriptor in id order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Descriptor, len(r.descs)-1)
	copy(result, r.descs[1:])
	return result
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// shapeOf validates a registration request and builds its shape. It
// returns the effective variance list.
func (r *Registry) shapeOf(class *Class, args []*Descriptor, variance []Variance) (hash.Shape, []Variance, error) {
	if class == nil {
		return hash.Shape{}, nil, ErrNilClass
	}
	if (class == AnyClass || class == NothingClass) && len(args) > 0 {
		return hash.Shape{}, nil, fmt.Errorf("%w: %s takes no type arguments, got %d",
			ErrArityMismatch, class.FullName(), len(args))
	}
	if len(args) > 0 && class.Arity() > 0 && len(args) != class.Arity() {
		return hash.Shape{}, nil, fmt.Errorf("%w: %s takes %d type arguments, got %d",
			ErrArityMismatch, class.FullName(), class.Arity(), len(args))
	}

	switch {
	case variance == nil && class.Arity() == len(args):
		variance = class.DeclaredVariance()
	case variance == nil:
		variance = make([]Variance, len(args))
	case len(variance) != len(args):
		return hash.Shape{}, nil, fmt.Errorf("%w: %d variance tags for %d arguments",
			ErrArityMismatch, len(variance), len(args))
	default:
		variance = append([]Variance(nil), variance...)
	}

	shape := hash.Shape{Class: class.serial, Args: make([]hash.Arg, len(args))}
	for i, a := range args {
		if a == nil {
			return hash.Shape{}, nil, ErrNilDescriptor
		}
		if a.reg != r {
			return hash.Shape{}, nil, ErrForeignDescriptor
		}
		if !variance[i].Valid() {
			return hash.Shape{}, nil, &IllegalVarianceError{Variance: variance[i]}
		}
		shape.Args[i] = hash.Arg{ID: uint32(a.id), Variance: byte(variance[i])}
	}
	return shape, variance, nil
}

// findLocked returns the descriptor stored under key whose shape equals
// shape. Equal keys with unequal shapes are kept side by side.
func (r *Registry) findLocked(key hash.Key, shape hash.Shape) *Descriptor {
	for _, id := range r.table[key] {
		if d := r.descs[id]; d.shape.Equal(shape) {
			return d
		}
	}
	return nil
}

func (r *Registry) insertLocked(class *Class, args []*Descriptor, variance []Variance, shape hash.Shape) *Descriptor {
	d := &Descriptor{
		reg:      r,
		id:       ID(len(r.descs)),
		class:    class,
		args:     args,
		variance: variance,
		shape:    shape,
		key:      hash.Sum(shape),
	}
	d.firstReg.Store(true)
	r.descs = append(r.descs, d)
	r.table[d.key] = append(r.table[d.key], d.id)
	return d
}

func (r *Registry) byIDLocked(id ID) *Descriptor {
	if id == NoID || int(id) >= len(r.descs) {
		return nil
	}
	return r.descs[id]
}
