package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opal-lang/clc/runtime/lexer"
)

// Start is the synthetic start symbol added to every grammar
const Start = "START"

// epsilon marks empty-derivable symbols inside FIRST sets
const epsilon = ""

// ReduceFunc is the semantic action run when a production completes.
// Terminal children are passed as lexer.Token values; nonterminal
// children are the results of their own reductions.
type ReduceFunc func(prod *Production, children []interface{}) interface{}

// Rule is one grammar handler: one or more "lhs ::= rhs..." lines that
// share a reduction.
type Rule struct {
	Spec   string
	Reduce ReduceFunc
	Name   string // diagnostic name; defaults to the production's LHS
}

// Production is a single rewrite rule
type Production struct {
	LHS    string
	RHS    []string
	Reduce ReduceFunc
	Name   string

	index int
}

// String renders the production in grammar notation
func (p *Production) String() string {
	if len(p.RHS) == 0 {
		return p.LHS + " ::="
	}
	return p.LHS + " ::= " + strings.Join(p.RHS, " ")
}

// Grammar holds the productions and the prediction tables derived from them.
// It is immutable after NewGrammar returns.
type Grammar struct {
	start       *Production
	productions []*Production
	byLHS       map[string][]*Production
	first       map[string]map[string]bool
	lookahead   map[string]map[string][]*Production
	terminals   []string
}

// NewGrammar parses rule specifications and builds the FIRST sets and the
// lookahead table. start names the user start symbol.
func NewGrammar(start string, rules []Rule) (*Grammar, error) {
	g := &Grammar{
		byLHS: make(map[string][]*Production),
	}

	g.start = g.add(&Production{
		LHS:    Start,
		RHS:    []string{start, lexer.EOF},
		Reduce: func(_ *Production, children []interface{}) interface{} { return children[0] },
		Name:   Start,
	})

	for _, r := range rules {
		prods, err := parseSpec(r)
		if err != nil {
			return nil, err
		}
		for _, p := range prods {
			if p.LHS == Start {
				return nil, fmt.Errorf("%s is reserved for the synthetic start rule", Start)
			}
			g.add(p)
		}
	}

	if !g.IsNonterminal(start) {
		return nil, fmt.Errorf("start symbol %q has no productions", start)
	}

	g.collectTerminals()
	g.computeFirst()
	g.buildLookahead()
	return g, nil
}

// parseSpec splits a rule's specification into productions
func parseSpec(r Rule) ([]*Production, error) {
	var prods []*Production
	for _, line := range strings.Split(r.Spec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lhs, rhs, ok := strings.Cut(line, "::=")
		if !ok {
			return nil, fmt.Errorf("rule %q: missing '::=' in %q", r.Name, line)
		}
		lhs = strings.TrimSpace(lhs)
		if lhs == "" || strings.ContainsAny(lhs, " \t") {
			return nil, fmt.Errorf("rule %q: invalid left-hand side %q", r.Name, lhs)
		}
		name := r.Name
		if name == "" {
			name = lhs
		}
		prods = append(prods, &Production{
			LHS:    lhs,
			RHS:    strings.Fields(rhs),
			Reduce: r.Reduce,
			Name:   name,
		})
	}
	if len(prods) == 0 {
		return nil, fmt.Errorf("rule %q declares no productions", r.Name)
	}
	return prods, nil
}

func (g *Grammar) add(p *Production) *Production {
	p.index = len(g.productions)
	g.productions = append(g.productions, p)
	g.byLHS[p.LHS] = append(g.byLHS[p.LHS], p)
	return p
}

// IsNonterminal reports whether sym is the LHS of some production
func (g *Grammar) IsNonterminal(sym string) bool {
	_, ok := g.byLHS[sym]
	return ok
}

// Productions returns all productions, the synthetic start rule first
func (g *Grammar) Productions() []*Production {
	out := make([]*Production, len(g.productions))
	copy(out, g.productions)
	return out
}

// Terminals returns the sorted terminal symbols, EOF included
func (g *Grammar) Terminals() []string {
	out := make([]string, len(g.terminals))
	copy(out, g.terminals)
	return out
}

func (g *Grammar) collectTerminals() {
	set := make(map[string]bool)
	for _, p := range g.productions {
		for _, sym := range p.RHS {
			if !g.IsNonterminal(sym) {
				set[sym] = true
			}
		}
	}
	for t := range set {
		g.terminals = append(g.terminals, t)
	}
	sort.Strings(g.terminals)
}

// computeFirst iterates FIRST-set propagation to a fixed point
func (g *Grammar) computeFirst() {
	g.first = make(map[string]map[string]bool, len(g.byLHS))
	for nt := range g.byLHS {
		g.first[nt] = make(map[string]bool)
	}

	for changed := true; changed; {
		changed = false
		for _, p := range g.productions {
			set := g.first[p.LHS]
			before := len(set)
			if g.sequenceFirst(p.RHS, set) {
				set[epsilon] = true
			}
			if len(set) != before {
				changed = true
			}
		}
	}
}

// sequenceFirst adds FIRST(seq) minus epsilon into dst and reports
// whether every symbol of seq can derive the empty string.
func (g *Grammar) sequenceFirst(seq []string, dst map[string]bool) bool {
	for _, sym := range seq {
		if !g.IsNonterminal(sym) {
			dst[sym] = true
			return false
		}
		for t := range g.first[sym] {
			if t != epsilon {
				dst[t] = true
			}
		}
		if !g.first[sym][epsilon] {
			return false
		}
	}
	return true
}

// First returns the sorted FIRST set of a symbol. The empty string in
// the result stands for epsilon.
func (g *Grammar) First(sym string) []string {
	if !g.IsNonterminal(sym) {
		return []string{sym}
	}
	out := make([]string, 0, len(g.first[sym]))
	for t := range g.first[sym] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Nullable reports whether sym can derive the empty string
func (g *Grammar) Nullable(sym string) bool {
	return g.first[sym][epsilon]
}

// buildLookahead precomputes, for each (nonterminal, terminal) pair, the
// productions whose derivation can begin with that terminal. Productions
// that can derive the empty string are registered under every terminal.
func (g *Grammar) buildLookahead() {
	g.lookahead = make(map[string]map[string][]*Production, len(g.byLHS))
	for nt, prods := range g.byLHS {
		row := make(map[string][]*Production)
		for _, p := range prods {
			set := make(map[string]bool)
			if g.sequenceFirst(p.RHS, set) {
				for _, t := range g.terminals {
					set[t] = true
				}
			}
			for t := range set {
				row[t] = append(row[t], p)
			}
		}
		g.lookahead[nt] = row
	}
}

// Candidates returns the productions of nt that can start with terminal
func (g *Grammar) Candidates(nt, terminal string) []*Production {
	return g.lookahead[nt][terminal]
}
