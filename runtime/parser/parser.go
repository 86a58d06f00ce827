// Package parser implements an Earley chart parser over token streams.
//
// Grammars are given as rules in "lhs ::= sym sym ..." notation, each with
// a reduction that builds the semantic value of a completed production.
// Prediction is filtered through a FIRST-set lookahead table so only
// productions that can start with the current token are added to a state.
// Every parse runs against its own chart, so a Parser is safe for
// concurrent use.
package parser

import (
	"io"
	"log/slog"

	"github.com/opal-lang/clc/core/invariant"
	"github.com/opal-lang/clc/runtime/lexer"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Parser parses token streams with an immutable grammar
type Parser struct {
	grammar  *Grammar
	resolver Resolver
	logger   *slog.Logger
}

// NewParser builds the grammar for start and rules
func NewParser(start string, rules []Rule, opts ...ParserOpt) (*Parser, error) {
	g, err := NewGrammar(start, rules)
	if err != nil {
		return nil, err
	}
	cfg := &ParserConfig{resolver: ShortestRule, logger: discardLogger}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Parser{grammar: g, resolver: cfg.resolver, logger: cfg.logger}, nil
}

// Grammar returns the parser's grammar
func (p *Parser) Grammar() *Grammar {
	return p.grammar
}

// First returns the FIRST set of sym; see Grammar.First
func (p *Parser) First(sym string) []string {
	return p.grammar.First(sym)
}

// Parse recognizes tokens and returns the value produced by the start
// rule's reduction. An EOF token is appended when the stream lacks one.
func (p *Parser) Parse(tokens []lexer.Token) (interface{}, error) {
	tokens = withEOF(tokens)

	c := newChart(p.grammar, tokens)
	if err := c.recognize(p.logger); err != nil {
		return nil, err
	}

	b := &builder{chart: c, resolver: p.resolver, active: make(map[linkKey]bool)}
	accept := item{prod: p.grammar.start, dot: len(p.grammar.start.RHS), origin: 0}
	return b.build(accept, len(tokens))
}

func withEOF(tokens []lexer.Token) []lexer.Token {
	if n := len(tokens); n > 0 && tokens[n-1].Type == lexer.EOF {
		return tokens
	}
	line := 1
	if n := len(tokens); n > 0 {
		line = tokens[n-1].Line
	}
	out := make([]lexer.Token, len(tokens), len(tokens)+1)
	copy(out, tokens)
	return append(out, lexer.Token{Type: lexer.EOF, Line: line})
}

// item is a dotted production with the state where it began
type item struct {
	prod   *Production
	dot    int
	origin int
}

type itemKey struct {
	prod, dot, origin int
}

func (it item) key() itemKey {
	return itemKey{it.prod.index, it.dot, it.origin}
}

func (it item) complete() bool {
	return it.dot == len(it.prod.RHS)
}

func (it item) next() string {
	return it.prod.RHS[it.dot]
}

func (it item) advance() item {
	return item{prod: it.prod, dot: it.dot + 1, origin: it.origin}
}

// state is one Earley item set
type state struct {
	items     []item
	seen      map[itemKey]bool
	waiting   map[string][]item // items keyed by the symbol after the dot
	completed map[string][]item // completions that began in this same state
	predicted map[string]bool
}

func newState() *state {
	return &state{
		seen:      make(map[itemKey]bool),
		waiting:   make(map[string][]item),
		completed: make(map[string][]item),
		predicted: make(map[string]bool),
	}
}

// linkKey identifies an advanced item in a given state
type linkKey struct {
	item  itemKey
	state int
}

// link records the completed item that advanced a parent over a nonterminal
type link struct {
	child item
	state int
}

type chart struct {
	g      *Grammar
	tokens []lexer.Token
	states []*state
	links  map[linkKey][]link
}

func newChart(g *Grammar, tokens []lexer.Token) *chart {
	c := &chart{
		g:      g,
		tokens: tokens,
		states: make([]*state, len(tokens)+1),
		links:  make(map[linkKey][]link),
	}
	for i := range c.states {
		c.states[i] = newState()
	}
	return c
}

// add inserts it into state i. An item waiting on a nonterminal that has
// already completed empty in this state is advanced immediately.
func (c *chart) add(i int, it item) {
	s := c.states[i]
	k := it.key()
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.items = append(s.items, it)

	if it.complete() {
		return
	}
	sym := it.next()
	s.waiting[sym] = append(s.waiting[sym], it)
	for _, done := range s.completed[sym] {
		c.advanceOver(i, it, done)
	}
}

func (c *chart) advanceOver(i int, parent, child item) {
	adv := parent.advance()
	lk := linkKey{adv.key(), i}
	c.links[lk] = append(c.links[lk], link{child: child, state: i})
	c.add(i, adv)
}

func (c *chart) recognize(logger *slog.Logger) error {
	c.add(0, item{prod: c.g.start, dot: 0, origin: 0})

	last := len(c.tokens)
	for i := 0; i <= last; i++ {
		s := c.states[i]
		lookahead := lexer.EOF
		if i < last {
			lookahead = c.tokens[i].Type
		}

		for j := 0; j < len(s.items); j++ {
			it := s.items[j]
			switch {
			case it.complete():
				c.complete(i, it)
			case c.g.IsNonterminal(it.next()):
				c.predict(i, it.next(), lookahead)
			case i < last && it.next() == lookahead:
				c.add(i+1, it.advance())
			}
		}

		logger.Debug("earley state", "state", i, "items", len(s.items), "lookahead", lookahead)

		if i < last && len(c.states[i+1].items) == 0 {
			return syntaxError(c.tokens[i])
		}
	}

	accept := item{prod: c.g.start, dot: len(c.g.start.RHS), origin: 0}
	if !c.states[last].seen[accept.key()] {
		return syntaxError(c.tokens[last-1])
	}
	return nil
}

func (c *chart) complete(i int, done item) {
	lhs := done.prod.LHS
	if done.origin == i {
		c.states[i].completed[lhs] = append(c.states[i].completed[lhs], done)
	}
	parents := c.states[done.origin].waiting[lhs]
	// Items appended to waiting after this point are advanced by add
	// through the completed index.
	parents = parents[:len(parents):len(parents)]
	for _, parent := range parents {
		c.advanceOver(i, parent, done)
	}
}

func (c *chart) predict(i int, sym, lookahead string) {
	s := c.states[i]
	if s.predicted[sym] {
		return
	}
	s.predicted[sym] = true
	invariant.Invariant(c.g.IsNonterminal(sym), "predicted symbol %q must be a nonterminal", sym)
	for _, p := range c.g.Candidates(sym, lookahead) {
		c.add(i, item{prod: p, dot: 0, origin: i})
	}
}
