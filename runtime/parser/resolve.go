package parser

// Candidate is one way a nonterminal could have been completed while
// reconstructing the tree: the completed production, the state where it
// began and the state where it ended.
type Candidate struct {
	Production *Production
	Origin     int
	State      int
}

// Resolver chooses among competing derivations. It returns the index of
// the chosen candidate, or an error when no choice can be made.
type Resolver interface {
	Resolve(cands []Candidate) (int, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(cands []Candidate) (int, error)

// Resolve implements Resolver
func (f ResolverFunc) Resolve(cands []Candidate) (int, error) {
	return f(cands)
}

// ShortestRule prefers the production with the fewest right-hand-side
// symbols. Ties go to the candidate found first during parsing.
var ShortestRule Resolver = ResolverFunc(func(cands []Candidate) (int, error) {
	best := 0
	for i := 1; i < len(cands); i++ {
		if len(cands[i].Production.RHS) < len(cands[best].Production.RHS) {
			best = i
		}
	}
	return best, nil
})
