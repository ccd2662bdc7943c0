package reify

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Class: nominal type identity
// ---------------------------------------------------------------------------

// classSerial hands out identity serials. Serials start at 1 so that 0 can
// never name a real class.
var classSerial atomic.Uint64

// TypeParam is a declared type parameter with its declaration-site variance.
type TypeParam struct {
	Name     string
	Variance Variance
}

// Class is the nominal identity a descriptor is built over. Two classes
// are the same type only if they are the same *Class, regardless of name.
type Class struct {
	Name      string      // Class name
	Namespace string      // Namespace (empty for default)
	Supers    []*Class    // Nominal supertypes
	Params    []TypeParam // Declared type parameters (empty if not generic)
	DocString string

	// Predicate decides membership for plain values that carry neither a
	// descriptor nor a class. Nil means such values are never instances.
	Predicate func(v any) bool

	serial uint64
}

// Classed is implemented by plain values that know their nominal class
// but carry no reified type arguments.
type Classed interface {
	ReifyClass() *Class
}

// AnyClass is the top of the nominal hierarchy.
var AnyClass = &Class{
	Name:      "Any",
	Predicate: func(v any) bool { return v != nil },
	serial:    classSerial.Add(1),
}

// NothingClass is the bottom of the nominal hierarchy. No plain value is
// an instance of it.
var NothingClass = &Class{
	Name:   "Nothing",
	serial: classSerial.Add(1),
}

// NewClass creates a non-generic class with the given supertypes.
func NewClass(name string, supers ...*Class) *Class {
	return &Class{
		Name:   name,
		Supers: supers,
		serial: classSerial.Add(1),
	}
}

// NewGenericClass creates a class with declared type parameters.
func NewGenericClass(name string, params []TypeParam, supers ...*Class) *Class {
	c := NewClass(name, supers...)
	c.Params = params
	return c
}

// NewClassInNamespace creates a non-generic class within a namespace.
func NewClassInNamespace(namespace, name string, supers ...*Class) *Class {
	c := NewClass(name, supers...)
	c.Namespace = namespace
	return c
}

// Serial returns the identity serial of the class.
func (c *Class) Serial() uint64 {
	return c.serial
}

// FullName returns the namespace-qualified name of the class.
func (c *Class) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

func (c *Class) String() string {
	return c.FullName()
}

// Arity returns the number of declared type parameters.
func (c *Class) Arity() int {
	return len(c.Params)
}

// DeclaredVariance returns the declaration-site variance of each type
// parameter, in order.
func (c *Class) DeclaredVariance() []Variance {
	result := make([]Variance, len(c.Params))
	for i, p := range c.Params {
		result[i] = p.Variance
	}
	return result
}

// ParamIndex returns the position of the named type parameter, or -1.
func (c *Class) ParamIndex(name string) int {
	for i, p := range c.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// IsSubclassOf returns true if c is other or reaches other through its
// supertypes. Every class is a subclass of AnyClass and NothingClass is a
// subclass of every class.
func (c *Class) IsSubclassOf(other *Class) bool {
	if c == nil || other == nil {
		return false
	}
	if c == other || other == AnyClass || c == NothingClass {
		return true
	}

	// Supertypes form a DAG (interfaces may be reached twice).
	seen := map[*Class]bool{c: true}
	queue := append([]*Class(nil), c.Supers...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == nil || seen[current] {
			continue
		}
		if current == other {
			return true
		}
		seen[current] = true
		queue = append(queue, current.Supers...)
	}
	return false
}

// IsSuperclassOf returns true if c is a superclass of other (or is the same class).
func (c *Class) IsSuperclassOf(other *Class) bool {
	return other.IsSubclassOf(c)
}

// Accepts reports whether a plain value is an instance of c. Values that
// implement Classed are checked nominally; anything else goes through the
// class predicate.
func (c *Class) Accepts(v any) bool {
	if v == nil {
		return false
	}
	if cv, ok := v.(Classed); ok {
		if vc := cv.ReifyClass(); vc != nil {
			return vc.IsSubclassOf(c)
		}
	}
	if c.Predicate != nil {
		return c.Predicate(v)
	}
	return false
}

// ---------------------------------------------------------------------------
// ClassTable: name -> class
// ---------------------------------------------------------------------------

// ClassTable maps fully-qualified names to classes.
// It's thread-safe for concurrent access.
type ClassTable struct {
	mu     sync.RWMutex
	byName map[string]*Class
	order  []*Class
}

// NewClassTable creates a table that already knows Any and Nothing.
func NewClassTable() *ClassTable {
	ct := &ClassTable{
		byName: make(map[string]*Class),
	}
	ct.byName[AnyClass.FullName()] = AnyClass
	ct.byName[NothingClass.FullName()] = NothingClass
	ct.order = append(ct.order, AnyClass, NothingClass)
	return ct
}

// Define adds a class to the table. Defining a second class under an
// existing name fails with ErrClassExists.
func (ct *ClassTable) Define(c *Class) error {
	if c == nil {
		return ErrNilClass
	}
	name := c.FullName()

	ct.mu.Lock()
	defer ct.mu.Unlock()

	if old, ok := ct.byName[name]; ok {
		if old == c {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrClassExists, name)
	}
	ct.byName[name] = c
	ct.order = append(ct.order, c)
	return nil
}

// Lookup returns the class with the given fully-qualified name.
func (ct *ClassTable) Lookup(name string) (*Class, bool) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	c, ok := ct.byName[name]
	return c, ok
}

// Len returns the number of classes in the table.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.order)
}

// All returns all classes in definition order.
func (ct *ClassTable) All() []*Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	result := make([]*Class, len(ct.order))
	copy(result, ct.order)
	return result
}

// MustLookup is like Lookup but panics when the class is missing.
func (ct *ClassTable) MustLookup(name string) *Class {
	c, ok := ct.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("reify: unknown class %s", name))
	}
	return c
}
