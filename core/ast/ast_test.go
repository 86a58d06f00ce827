package ast

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/clc/runtime/lexer"
	"github.com/opal-lang/clc/runtime/parser"
)

var callRules = []parser.Rule{
	{Spec: "call ::= IDENT LPAREN args RPAREN\ncall ::= IDENT LPAREN RPAREN"},
	{Spec: "args ::= arg\nargs ::= args COMMA arg"},
	{Spec: "arg ::= IDENT\narg ::= NUM"},
}

func tok(typ, text string, line int) lexer.Token {
	return lexer.Token{Type: typ, Text: text, Line: line}
}

func buildCall(t *testing.T) *Node {
	t.Helper()
	b, err := NewBuilder("call", callRules)
	require.NoError(t, err)
	n, err := b.Build([]lexer.Token{
		tok("IDENT", "f", 2),
		tok("LPAREN", "(", 2),
		tok("IDENT", "x", 2),
		tok("COMMA", ",", 3),
		tok("NUM", "1", 3),
		tok("RPAREN", ")", 3),
	})
	require.NoError(t, err)
	return n
}

func TestBuilder(t *testing.T) {
	n := buildCall(t)

	want := strings.Join([]string{
		`call`,
		`  IDENT "f"`,
		`  LPAREN "("`,
		`  args`,
		`    args`,
		`      arg`,
		`        IDENT "x"`,
		`    COMMA ","`,
		`    arg`,
		`      NUM "1"`,
		`  RPAREN ")"`,
		``,
	}, "\n")
	if diff := cmp.Diff(want, n.Dump()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 2, n.Line)
	assert.Equal(t, 3, n.Child(2).Child(2).Line)
	assert.True(t, n.Child(0).IsLeaf())
	assert.Equal(t, "f", n.Child(0).Text())
	assert.Equal(t, "", n.Text())
	assert.Nil(t, n.Child(9))
	assert.Same(t, n.Child(2), n.Find("args"))
}

func TestBuilderSyntaxError(t *testing.T) {
	b, err := NewBuilder("call", callRules)
	require.NoError(t, err)
	_, err = b.Build([]lexer.Token{tok("IDENT", "f", 1), tok("RPAREN", ")", 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `syntax error at or near ")"`)
}

func TestPreorder(t *testing.T) {
	n := buildCall(t)

	var trace []string
	w := &Walker{
		Enter: map[string]Handler{
			"args": func(n *Node) Action {
				trace = append(trace, "enter args")
				return Continue
			},
			"arg": func(n *Node) Action {
				trace = append(trace, "arg "+n.Child(0).Text())
				return SkipChildren
			},
		},
		Exit: map[string]func(*Node){
			"args": func(n *Node) { trace = append(trace, "exit args") },
			"arg":  func(n *Node) { trace = append(trace, "never") },
		},
		Default: func(n *Node) Action {
			trace = append(trace, n.Type)
			return Continue
		},
	}
	w.Preorder(n)

	want := []string{
		"call", "IDENT", "LPAREN",
		"enter args", "enter args", "arg x", "exit args", "COMMA", "arg 1", "exit args",
		"RPAREN",
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestPostorder(t *testing.T) {
	n := buildCall(t)

	var trace []string
	w := &Walker{Default: func(n *Node) Action {
		if !n.IsLeaf() {
			trace = append(trace, n.Type)
		}
		return SkipChildren
	}}
	w.Postorder(n)

	if diff := cmp.Diff([]string{"arg", "args", "arg", "args", "call"}, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkerChildren(t *testing.T) {
	n := New("pair", Leaf(tok("B", "b", 1)), Leaf(tok("A", "a", 1)))

	var trace []string
	var w *Walker
	w = &Walker{
		Enter: map[string]Handler{
			"pair": func(n *Node) Action {
				// visit in reverse, then resume normally
				w.Preorder(n.Child(1))
				w.Preorder(n.Child(0))
				w.Children(n)
				return SkipChildren
			},
		},
		Default: func(n *Node) Action {
			trace = append(trace, n.Text())
			return Continue
		},
	}
	w.Preorder(n)

	if diff := cmp.Diff([]string{"a", "b", "b", "a"}, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeString(t *testing.T) {
	tests := map[Type]string{
		TypeUnset:  "unset",
		TypeInt:    "int",
		TypeFloat:  "float",
		TypeString: "string",
		TypeBool:   "bool",
		TypeIndef:  "indef",
		Type(42):   "unknown",
	}
	for typ, want := range tests {
		assert.Equal(t, want, typ.String())
	}
	assert.True(t, TypeInt.Numeric())
	assert.True(t, TypeFloat.Numeric())
	assert.False(t, TypeIndef.Numeric())
}

func TestDumpAnnotations(t *testing.T) {
	n := New("expr", Leaf(tok("INTEGER", "3", 1)))
	n.ExprType = TypeInt
	n.RequireType = TypeFloat

	want := "expr [int->float]\n  INTEGER \"3\"\n"
	if diff := cmp.Diff(want, n.Dump()); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}
