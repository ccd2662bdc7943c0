package manifest

import (
	"fmt"
	"strings"

	"github.com/chazu/reify/compiler"
	"github.com/chazu/reify/reify"
)

// Universe is a manifest turned into live classes and descriptors.
type Universe struct {
	Manifest *Manifest
	Classes  *reify.ClassTable
	Registry *reify.Registry
	Synth    *compiler.Synthesizer
}

// kindPredicates map ClassDecl.Kind to predicates for plain Go values.
var kindPredicates = map[string]func(v any) bool{
	"int": func(v any) bool {
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	},
	"float": func(v any) bool {
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	},
	"string": func(v any) bool { _, ok := v.(string); return ok },
	"bool":   func(v any) bool { _, ok := v.(bool); return ok },
	"any":    func(v any) bool { return v != nil },
}

// Build defines every declared class, declares reified parents and
// registers the listed instantiations into a fresh registry.
func Build(m *Manifest, opts ...reify.Option) (*Universe, error) {
	ct := reify.NewClassTable()
	classes := make([]*reify.Class, len(m.Classes))

	// Pass 1: create classes so supertypes may be declared in any order.
	for i, decl := range m.Classes {
		params, err := ParseParams(decl.Params)
		if err != nil {
			return nil, fmt.Errorf("manifest: class %s: %w", decl.Name, err)
		}
		c := reify.NewGenericClass(decl.Name, params)
		c.Namespace = decl.Namespace
		c.DocString = decl.Doc
		if decl.Kind != "" {
			c.Predicate = kindPredicates[decl.Kind]
		}
		if err := ct.Define(c); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		classes[i] = c
	}

	// Pass 2: link supertypes.
	for i, decl := range m.Classes {
		for _, name := range decl.Supers {
			super, ok := lookupClass(ct, name, decl.Namespace, m.Project.Namespace)
			if !ok {
				return nil, fmt.Errorf("manifest: class %s: unknown supertype %s", decl.Name, name)
			}
			classes[i].Supers = append(classes[i].Supers, super)
		}
	}

	synth := compiler.NewSynthesizer(reify.NewRegistry(opts...), ct)
	synth.SetSearchPath(m.Project.Namespace)

	for i, decl := range m.Classes {
		if decl.Parent == "" {
			continue
		}
		if err := synth.DeclareParentString(classes[i], decl.Parent); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}

	for _, src := range m.Instances {
		if _, err := synth.ResolveString(src); err != nil {
			return nil, fmt.Errorf("manifest: instance %s: %w", src, err)
		}
	}

	return &Universe{
		Manifest: m,
		Classes:  ct,
		Registry: synth.Registry(),
		Synth:    synth,
	}, nil
}

// ParseParams parses type parameter declarations such as "out E".
func ParseParams(decls []string) ([]reify.TypeParam, error) {
	params := make([]reify.TypeParam, 0, len(decls))
	for _, d := range decls {
		fields := strings.Fields(d)
		var p reify.TypeParam
		switch len(fields) {
		case 1:
			p.Name = fields[0]
		case 2:
			v, err := reify.ParseVariance(fields[0])
			if err != nil {
				return nil, err
			}
			p = reify.TypeParam{Name: fields[1], Variance: v}
		default:
			return nil, fmt.Errorf("bad type parameter %q", d)
		}
		params = append(params, p)
	}
	return params, nil
}

func lookupClass(ct *reify.ClassTable, name string, namespaces ...string) (*reify.Class, bool) {
	if c, ok := ct.Lookup(name); ok {
		return c, true
	}
	for _, ns := range namespaces {
		if ns == "" {
			continue
		}
		if c, ok := ct.Lookup(QualifiedName(ns, name)); ok {
			return c, true
		}
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Declared checks
// ---------------------------------------------------------------------------

// CheckResult is the outcome of one declared check.
type CheckResult struct {
	Check CheckDecl
	Got   bool
	Err   error
}

// Passed reports whether the check ran and matched its expectation.
func (r CheckResult) Passed() bool {
	return r.Err == nil && r.Got == r.Check.Expect
}

// RunChecks evaluates every declared check. Each check is its own site,
// named after its position in the manifest.
func (u *Universe) RunChecks() []CheckResult {
	results := make([]CheckResult, len(u.Manifest.Checks))
	for i, c := range u.Manifest.Checks {
		results[i].Check = c
		value, err := u.Synth.ResolveString(c.Value)
		if err != nil {
			results[i].Err = err
			continue
		}
		site := fmt.Sprintf("%s#check%d", u.Manifest.Path, i)
		results[i].Got, results[i].Err = u.Synth.CheckSite(site, c.Type, reify.NewObject(value, nil))
	}
	return results
}
