package compiler

import (
	"fmt"

	"github.com/chazu/reify/reify"
)

// ---------------------------------------------------------------------------
// Expansive parent templates
// ---------------------------------------------------------------------------

// paramNode is one type parameter position of a class.
type paramNode struct {
	class *reify.Class
	index int
}

// paramEdge records that a parameter flows into the argument position to.
// The edge is expanding when the parameter ends up nested inside that
// argument rather than being the whole argument.
type paramEdge struct {
	to        paramNode
	expanding bool
}

// checkExpansiveLocked rejects tmpl as the parent of c if, together with
// the templates already declared, some type parameter reaches itself along
// a path with an expanding edge. Wiring such a template builds ever deeper
// instantiations (Foo<T> : Bar<Foo<Foo<T>>>) and never terminates.
// The caller holds s.mu.
func (s *Synthesizer) checkExpansiveLocked(c *reify.Class, tmpl TypeExpr) error {
	graph := make(map[paramNode][]paramEdge)
	for owner, t := range s.parents {
		s.addTemplateEdges(graph, owner, t)
	}
	s.addTemplateEdges(graph, c, tmpl)

	for from, edges := range graph {
		for _, e := range edges {
			if e.expanding && reaches(graph, e.to, from) {
				return fmt.Errorf("%w: %s : %s (parameter %s of %s nests inside itself)",
					ErrExpansiveParent, c, tmpl, from.class.Params[from.index].Name, from.class)
			}
		}
	}
	return nil
}

// addTemplateEdges adds the edges contributed by owner's template expr.
func (s *Synthesizer) addTemplateEdges(graph map[paramNode][]paramEdge, owner *reify.Class, expr TypeExpr) {
	named, ok := expr.(*NamedType)
	if !ok || len(named.Args) == 0 {
		return
	}
	target, ok := s.lookupClass(named.Name)
	if !ok {
		return
	}

	for i, a := range named.Args {
		to := paramNode{class: target, index: i}
		if p := paramRef(owner, a.Type); p >= 0 {
			from := paramNode{class: owner, index: p}
			graph[from] = append(graph[from], paramEdge{to: to})
		} else {
			for p := range paramsIn(owner, a.Type) {
				from := paramNode{class: owner, index: p}
				graph[from] = append(graph[from], paramEdge{to: to, expanding: true})
			}
		}
		s.addTemplateEdges(graph, owner, a.Type)
	}
}

// paramRef returns the index of the owner parameter expr names, or -1.
func paramRef(owner *reify.Class, expr TypeExpr) int {
	named, ok := expr.(*NamedType)
	if !ok || len(named.Args) > 0 {
		return -1
	}
	return owner.ParamIndex(named.Name)
}

// paramsIn collects the owner parameters mentioned anywhere in expr.
func paramsIn(owner *reify.Class, expr TypeExpr) map[int]bool {
	found := make(map[int]bool)
	var walk func(TypeExpr)
	walk = func(e TypeExpr) {
		named, ok := e.(*NamedType)
		if !ok {
			return
		}
		if p := paramRef(owner, named); p >= 0 {
			found[p] = true
			return
		}
		for _, a := range named.Args {
			walk(a.Type)
		}
	}
	walk(expr)
	return found
}

// reaches reports whether to is reachable from from.
func reaches(graph map[paramNode][]paramEdge, from, to paramNode) bool {
	seen := map[paramNode]bool{from: true}
	queue := []paramNode{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			return true
		}
		for _, e := range graph[n] {
			if !seen[e.to] {
				seen[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}
	return false
}
