// Package ast defines the generic syntax tree produced from CL source and
// the traversal framework the compiler passes are written against.
package ast

import (
	"fmt"
	"strings"

	"github.com/opal-lang/clc/runtime/lexer"
)

// Node is a generic tree node. Interior nodes are tagged with the
// production's left-hand side; leaves carry the token they wrap and are
// tagged with its type. Children are owned by exactly one parent.
type Node struct {
	Type     string
	Children []*Node
	Token    *lexer.Token // nil for interior nodes
	Line     int

	// Annotations written by the type pass
	ExprType    Type
	RequireType Type
}

// Leaf wraps a token in a node
func Leaf(tok lexer.Token) *Node {
	return &Node{Type: tok.Type, Token: &tok, Line: tok.Line}
}

// New creates an interior node; its line is that of its first child
// with a known line.
func New(typ string, children ...*Node) *Node {
	n := &Node{Type: typ, Children: children}
	for _, c := range children {
		if c != nil && c.Line > 0 {
			n.Line = c.Line
			break
		}
	}
	return n
}

// IsLeaf reports whether the node wraps a token
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// Text returns the token text of a leaf, or "" for interior nodes
func (n *Node) Text() string {
	if n.Token == nil {
		return ""
	}
	return n.Token.Text
}

// Child returns the i-th child, or nil when out of range
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Len returns the number of children
func (n *Node) Len() int {
	return len(n.Children)
}

// Find returns the first child of the given type
func (n *Node) Find(typ string) *Node {
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// Dump renders the tree one node per line, indented two spaces per level.
// Annotated nodes show their types as "expr->require".
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Type)
	if n.Token != nil && n.Token.Text != n.Type {
		fmt.Fprintf(b, " %q", n.Token.Text)
	}
	if n.ExprType != TypeUnset {
		fmt.Fprintf(b, " [%s->%s]", n.ExprType, n.RequireType)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.dump(b, depth+1)
	}
}
