package ast

import (
	"fmt"

	"github.com/opal-lang/clc/runtime/lexer"
	"github.com/opal-lang/clc/runtime/parser"
)

// Builder is a parser whose reductions all build Nodes
type Builder struct {
	parser *parser.Parser
}

// NewBuilder creates a Builder for the grammar. The reductions attached
// to rules are replaced: every completed production becomes a node
// tagged with its left-hand side, and token children become leaves.
func NewBuilder(start string, rules []parser.Rule, opts ...parser.ParserOpt) (*Builder, error) {
	wrapped := make([]parser.Rule, len(rules))
	for i, r := range rules {
		wrapped[i] = parser.Rule{Spec: r.Spec, Name: r.Name, Reduce: reduce}
	}
	p, err := parser.NewParser(start, wrapped, opts...)
	if err != nil {
		return nil, err
	}
	return &Builder{parser: p}, nil
}

// Parser returns the underlying parser
func (b *Builder) Parser() *parser.Parser {
	return b.parser
}

// Build parses tokens into a tree
func (b *Builder) Build(tokens []lexer.Token) (*Node, error) {
	v, err := b.parser.Parse(tokens)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("parse produced %T, not a tree", v)
	}
	return n, nil
}

func reduce(prod *parser.Production, children []interface{}) interface{} {
	nodes := make([]*Node, 0, len(children))
	for _, c := range children {
		switch v := c.(type) {
		case *Node:
			nodes = append(nodes, v)
		case lexer.Token:
			nodes = append(nodes, Leaf(v))
		default:
			panic(fmt.Sprintf("ast: unexpected child %T in %s", c, prod))
		}
	}
	return New(prod.LHS, nodes...)
}
