package compiler

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/chazu/reify/reify"
)

var (
	ErrUnknownClass          = errors.New("compiler: unknown class")
	ErrParentNotSupertype    = errors.New("compiler: parent is not a supertype")
	ErrParentAlreadyDeclared = errors.New("compiler: parent already declared")
	ErrExpansiveParent       = errors.New("compiler: expansive parent")
)

// Env binds type parameter names to descriptors while a template is
// resolved.
type Env map[string]*reify.Descriptor

// ---------------------------------------------------------------------------
// Synthesizer: builds canonical descriptors for generic instantiations
// ---------------------------------------------------------------------------

// Synthesizer turns class instantiations and type expressions into
// canonical descriptors and wires each new descriptor to its reified
// parent. It only talks to the registry through Register and SetParent.
type Synthesizer struct {
	reg     *reify.Registry
	classes *reify.ClassTable
	sites   *SiteCache
	search  []string // namespaces tried for unqualified names

	mu      sync.RWMutex
	parents map[*reify.Class]TypeExpr // reified supertype templates

	wireMu sync.Mutex // held by the outermost parent wiring

	log commonlog.Logger
}

// NewSynthesizer creates a synthesizer over reg that resolves class names
// through classes.
func NewSynthesizer(reg *reify.Registry, classes *reify.ClassTable) *Synthesizer {
	return &Synthesizer{
		reg:     reg,
		classes: classes,
		sites:   NewSiteCache(),
		parents: make(map[*reify.Class]TypeExpr),
		log:     commonlog.GetLogger("reify.compiler"),
	}
}

// Registry returns the registry descriptors are interned in.
func (s *Synthesizer) Registry() *reify.Registry { return s.reg }

// Classes returns the class table used for name resolution.
func (s *Synthesizer) Classes() *reify.ClassTable { return s.classes }

// Sites returns the per-site descriptor cache.
func (s *Synthesizer) Sites() *SiteCache { return s.sites }

// SetSearchPath sets the namespaces tried, in order, when an unqualified
// class name is not found as written. It must be called before the
// synthesizer is shared.
func (s *Synthesizer) SetSearchPath(namespaces ...string) {
	s.search = namespaces
}

func (s *Synthesizer) lookupClass(name string) (*reify.Class, bool) {
	if c, ok := s.classes.Lookup(name); ok {
		return c, true
	}
	if strings.Contains(name, ".") {
		return nil, false
	}
	for _, ns := range s.search {
		if ns == "" {
			continue
		}
		if c, ok := s.classes.Lookup(ns + "." + name); ok {
			return c, true
		}
	}
	return nil, false
}

// DeclareParent records the reified supertype of c, written in terms of
// c's type parameters (e.g. "MutableList<E>" for ArrayList<E>). The head
// class of the template must be a nominal supertype of c.
func (s *Synthesizer) DeclareParent(c *reify.Class, parent TypeExpr) error {
	named, ok := parent.(*NamedType)
	if !ok {
		return fmt.Errorf("%w: %s cannot extend %s", ErrParentNotSupertype, c, parent)
	}
	head, ok := s.lookupClass(named.Name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, named.Name)
	}
	if head == c || !head.IsSuperclassOf(c) {
		return fmt.Errorf("%w: %s does not extend %s", ErrParentNotSupertype, c, head)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.parents[c]; exists {
		return fmt.Errorf("%w: %s", ErrParentAlreadyDeclared, c)
	}
	if err := s.checkExpansiveLocked(c, parent); err != nil {
		return err
	}
	s.parents[c] = parent
	return nil
}

// DeclareParentString parses src and calls DeclareParent.
func (s *Synthesizer) DeclareParentString(c *reify.Class, src string) error {
	expr, err := ParseType(src)
	if err != nil {
		return fmt.Errorf("compiler: parent of %s: %w", c, err)
	}
	return s.DeclareParent(c, expr)
}

// Instantiate returns the canonical descriptor of class applied to args,
// wired to its reified parent when its class declares one.
//
// A descriptor is registered before its parent is built, so a class that
// mentions itself in its supertype (Foo : Comparable<Foo>) finds itself
// already interned instead of recursing. Wiring runs under one lock; a
// caller that finds a descriptor still unwired waits for it, and a failed
// wiring is retried by the next caller.
func (s *Synthesizer) Instantiate(class *reify.Class, args []*reify.Descriptor, variance []reify.Variance) (*reify.Descriptor, error) {
	return s.instantiate(class, args, variance, nil)
}

// wiring tracks one top-level wiring pass, which holds s.wireMu.
type wiring struct {
	active map[*reify.Descriptor]bool
	depth  int
}

// maxWiringDepth bounds nested parent resolution.
const maxWiringDepth = 256

func (s *Synthesizer) instantiate(class *reify.Class, args []*reify.Descriptor, variance []reify.Variance, w *wiring) (*reify.Descriptor, error) {
	d, _, err := s.reg.Register(class, args, variance, nil)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	template, ok := s.parents[class]
	s.mu.RUnlock()
	if !ok || d.HasParent() {
		return d, nil
	}
	if class.Arity() > 0 && len(args) == 0 {
		// Raw use of a generic class stays raw.
		return d, nil
	}

	if w == nil {
		s.wireMu.Lock()
		defer s.wireMu.Unlock()
		w = &wiring{active: make(map[*reify.Descriptor]bool)}
	}
	if err := s.wire(d, template, w); err != nil {
		return nil, err
	}
	return d, nil
}

// wire resolves the parent template of d and attaches it. The caller
// holds s.wireMu.
func (s *Synthesizer) wire(d *reify.Descriptor, template TypeExpr, w *wiring) error {
	if d.HasParent() || w.active[d] {
		// Wired meanwhile, or d is being wired further up this pass.
		return nil
	}
	if w.depth >= maxWiringDepth {
		return fmt.Errorf("%w: wiring %s nests deeper than %d", ErrExpansiveParent, d, maxWiringDepth)
	}
	w.active[d] = true
	w.depth++
	defer func() {
		delete(w.active, d)
		w.depth--
	}()

	class := d.Class()
	env := make(Env, d.NumArgs())
	for i, p := range class.Params {
		env[p.Name] = d.Arg(i)
	}
	parent, err := s.resolve(template, env, w)
	if errors.Is(err, ErrExpansiveParent) {
		return err
	}
	if err != nil {
		return fmt.Errorf("compiler: parent of %s: %w", d, err)
	}
	if err := s.reg.SetParent(d, parent); err != nil {
		return err
	}
	s.log.Debugf("wired %s -> %s", d, parent)
	return nil
}

// Resolve turns a type expression into a canonical descriptor. Bare names
// bound in env resolve to their binding; other names are looked up in the
// class table.
func (s *Synthesizer) Resolve(expr TypeExpr, env Env) (*reify.Descriptor, error) {
	return s.resolve(expr, env, nil)
}

func (s *Synthesizer) resolve(expr TypeExpr, env Env, w *wiring) (*reify.Descriptor, error) {
	switch e := expr.(type) {
	case *StarExpr:
		return s.reg.Star(), nil

	case *NamedType:
		if len(e.Args) == 0 {
			if d, ok := env[e.Name]; ok {
				return d, nil
			}
		}
		class, ok := s.lookupClass(e.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s at line %d, col %d", ErrUnknownClass, e.Name, e.Position.Line, e.Position.Column)
		}

		args := make([]*reify.Descriptor, len(e.Args))
		variance := make([]reify.Variance, len(e.Args))
		for i, a := range e.Args {
			d, err := s.resolve(a.Type, env, w)
			if err != nil {
				return nil, err
			}
			args[i] = d
			switch {
			case a.Explicit:
				variance[i] = a.Variance
			case i < class.Arity():
				variance[i] = class.Params[i].Variance
			}
		}
		return s.instantiate(class, args, variance, w)
	}
	return nil, fmt.Errorf("compiler: cannot resolve %T", expr)
}

// ResolveString parses and resolves a closed type expression.
func (s *Synthesizer) ResolveString(src string) (*reify.Descriptor, error) {
	expr, err := ParseType(src)
	if err != nil {
		return nil, err
	}
	return s.Resolve(expr, nil)
}

// ---------------------------------------------------------------------------
// Generated check and cast sites
// ---------------------------------------------------------------------------

// SiteDescriptor returns the cached descriptor for a site whose target
// type is written as src.
func (s *Synthesizer) SiteDescriptor(site, src string) (*reify.Descriptor, error) {
	return s.sites.Get(site, func() (*reify.Descriptor, error) {
		return s.ResolveString(src)
	})
}

// CheckSite is the instance check emitted for "v is src" at site.
func (s *Synthesizer) CheckSite(site, src string, v any) (bool, error) {
	d, err := s.SiteDescriptor(site, src)
	if err != nil {
		return false, err
	}
	return d.IsInstance(v), nil
}

// CastSite is the cast emitted for "v as src" at site.
func (s *Synthesizer) CastSite(site, src string, v any) (any, error) {
	d, err := s.SiteDescriptor(site, src)
	if err != nil {
		return nil, err
	}
	return d.Cast(v)
}

// SafeCastSite is the cast emitted for "v as? src" at site.
func (s *Synthesizer) SafeCastSite(site, src string, v any) (any, bool, error) {
	d, err := s.SiteDescriptor(site, src)
	if err != nil {
		return nil, false, err
	}
	got, ok := d.SafeCast(v)
	return got, ok, nil
}
