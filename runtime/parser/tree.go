package parser

import (
	"fmt"

	"github.com/opal-lang/clc/core/invariant"
)

// builder walks the chart's back-pointers from the accepting item and runs
// the reductions bottom-up
type builder struct {
	chart    *chart
	resolver Resolver
	active   map[linkKey]bool // derivations on the current path, to break cycles
}

func (b *builder) build(it item, end int) (interface{}, error) {
	self := linkKey{it.key(), end}
	b.active[self] = true
	defer delete(b.active, self)

	rhs := it.prod.RHS
	children := make([]interface{}, len(rhs))
	cur := end
	for dot := len(rhs); dot > 0; dot-- {
		sym := rhs[dot-1]
		if !b.chart.g.IsNonterminal(sym) {
			invariant.Invariant(cur > 0, "terminal %s must consume a token", sym)
			children[dot-1] = b.chart.tokens[cur-1]
			cur--
			continue
		}

		at := item{prod: it.prod, dot: dot, origin: it.origin}
		child, err := b.choose(b.chart.links[linkKey{at.key(), cur}])
		if err != nil {
			return nil, err
		}
		val, err := b.build(child.child, child.state)
		if err != nil {
			return nil, err
		}
		children[dot-1] = val
		cur = child.child.origin
	}
	invariant.Postcondition(cur == it.origin, "derivation of %s must start at state %d, got %d", it.prod, it.origin, cur)

	if it.prod.Reduce == nil {
		return children, nil
	}
	return it.prod.Reduce(it.prod, children), nil
}

func (b *builder) choose(links []link) (link, error) {
	var usable []link
	for _, l := range links {
		if !b.active[linkKey{l.child.key(), l.state}] {
			usable = append(usable, l)
		}
	}
	invariant.Invariant(len(links) > 0, "advanced item must have a back-pointer")
	if len(usable) == 0 {
		return link{}, ambiguityError(candidates(links), fmt.Errorf("cyclic derivation"))
	}
	if len(usable) == 1 {
		return usable[0], nil
	}

	cands := candidates(usable)
	idx, err := b.resolver.Resolve(cands)
	if err != nil {
		return link{}, ambiguityError(cands, err)
	}
	if idx < 0 || idx >= len(usable) {
		return link{}, ambiguityError(cands, fmt.Errorf("resolver chose %d of %d candidates", idx, len(usable)))
	}
	return usable[idx], nil
}

func candidates(links []link) []Candidate {
	out := make([]Candidate, len(links))
	for i, l := range links {
		out[i] = Candidate{Production: l.child.prod, Origin: l.child.origin, State: l.state}
	}
	return out
}
