package compiler

import (
	"strconv"
	"strings"

	"github.com/opal-lang/clc/core/ast"
	"github.com/opal-lang/clc/runtime/cl"
)

type conversion struct {
	require, expr ast.Type
}

// conversions closes the gap between a node's required and inferred
// types. Pairs not listed are emitted unconverted.
var conversions = map[conversion]string{
	{ast.TypeInt, ast.TypeFloat}:     "iraf.integer",
	{ast.TypeInt, ast.TypeString}:    "iraf.integer",
	{ast.TypeInt, ast.TypeBool}:      "iraf.integer",
	{ast.TypeFloat, ast.TypeInt}:     "float",
	{ast.TypeFloat, ast.TypeString}:  "iraf.real",
	{ast.TypeFloat, ast.TypeBool}:    "iraf.real",
	{ast.TypeString, ast.TypeInt}:    "str",
	{ast.TypeString, ast.TypeFloat}:  "str",
	{ast.TypeString, ast.TypeBool}:   "iraf.bool2str",
	{ast.TypeBool, ast.TypeInt}:      "iraf.boolean",
	{ast.TypeBool, ast.TypeFloat}:    "iraf.boolean",
	{ast.TypeBool, ast.TypeString}:   "iraf.boolean",
}

var pyKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "exec": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"print": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// pyName maps a CL name component onto a Python identifier
func pyName(name string) string {
	name = strings.ReplaceAll(name, "$", "DOLLAR")
	if pyKeywords[name] {
		return "PY" + name
	}
	return name
}

func isField(name string) bool {
	return strings.HasPrefix(name, "p_")
}

// expr renders an expression node, converting it when its required type
// differs from its inferred one
func (g *generator) expr(n *ast.Node) string {
	s := g.raw(n)
	if n.RequireType != n.ExprType {
		if fn, ok := conversions[conversion{n.RequireType, n.ExprType}]; ok {
			return fn + "(" + s + ")"
		}
	}
	return s
}

func (g *generator) raw(n *ast.Node) string {
	if n.Len() == 1 && n.Type != cl.Constant && n.Type != cl.IdentRef {
		return g.expr(n.Child(0))
	}
	switch n.Type {
	case cl.Constant:
		return literal(n.Child(0))
	case cl.IdentRef:
		return g.ident(n.Child(0).Text())
	case cl.ArrayRef:
		return g.subscript(n.Child(0).Text(), n.Child(2))
	case cl.FuncCall:
		return g.funcCall(n)
	case cl.ParenExpr:
		return "(" + g.expr(n.Child(1)) + ")"
	case cl.Unary:
		operand := g.expr(n.Child(1))
		switch n.Child(0).Type {
		case cl.NOT:
			return "(not " + operand + ")"
		case cl.MINUS:
			return "-" + operand
		}
		return "+" + operand
	}
	l, r := g.expr(n.Child(0)), g.expr(n.Child(2))
	return l + " " + g.operator(n) + " " + r
}

// operator renders the binary operator of n
func (g *generator) operator(n *ast.Node) string {
	op := n.Child(1)
	switch op.Type {
	case cl.OROR:
		return "or"
	case cl.ANDAND:
		return "and"
	case cl.CONCAT:
		return "+"
	case cl.POW:
		return "**"
	case cl.SLASH:
		if n.ExprType == ast.TypeInt {
			return "//"
		}
	}
	return op.Text()
}

// ident renders a name reference
func (g *generator) ident(name string) string {
	parts := strings.Split(name, ".")
	last := parts[len(parts)-1]
	if _, bound := g.vars.Lookup(parts[0]); bound {
		if len(parts) == 2 && isField(last) {
			return "Vars.getParObject('" + parts[0] + "')." + last
		}
		return "Vars." + pyPath(parts)
	}
	if len(parts) == 1 {
		if name == "EOF" {
			return name
		}
		return g.taskHandle() + "." + pyName(name)
	}
	if isField(last) {
		owner := parts[len(parts)-2]
		prefix := g.taskHandle()
		if len(parts) > 2 {
			prefix = "iraf." + pyPath(parts[:len(parts)-2])
		}
		return prefix + ".getParObject('" + owner + "')." + last
	}
	return "iraf." + pyPath(parts)
}

// taskHandle is where unbound names are looked up
func (g *generator) taskHandle() string {
	if g.cfg.mode == ModeSingle {
		return "iraf"
	}
	return "taskObj"
}

func pyPath(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = pyName(p)
	}
	return strings.Join(out, ".")
}

func (g *generator) lvalue(n *ast.Node) string {
	if n.Len() == 1 {
		return g.ident(n.Child(0).Text())
	}
	return g.subscript(n.Child(0).Text(), n.Child(2))
}

// subscript renders an array element; CL subscripts start at one
func (g *generator) subscript(name string, list *ast.Node) string {
	base := "Vars." + pyPath(strings.Split(name, "."))
	if _, bound := g.vars.Lookup(strings.Split(name, ".")[0]); !bound {
		base = g.ident(name)
	}
	var idx []string
	for _, e := range flatten(list, cl.Expr) {
		if i, ok := intLiteral(e); ok {
			idx = append(idx, strconv.FormatInt(i-1, 10))
			continue
		}
		s := g.expr(e)
		if !simple(e) {
			s = "(" + s + ")"
		}
		idx = append(idx, s+"-1")
	}
	return base + "[" + strings.Join(idx, ", ") + "]"
}

// chain follows single-child expression nodes down to the first node
// that is not a pass-through
func chain(n *ast.Node) *ast.Node {
	for n.Len() == 1 && n.Type != cl.Constant && n.Type != cl.IdentRef &&
		n.RequireType == n.ExprType {
		n = n.Child(0)
	}
	return n
}

// intLiteral reports the value of an unconverted decimal integer
// expression
func intLiteral(e *ast.Node) (int64, bool) {
	n := chain(e)
	if n.Type != cl.Constant || n.Child(0).Type != cl.INTEGER || n.RequireType != n.ExprType {
		return 0, false
	}
	i, err := strconv.ParseInt(n.Child(0).Text(), 10, 64)
	return i, err == nil
}

// simple reports whether e renders as a single operand
func simple(e *ast.Node) bool {
	switch chain(e).Type {
	case cl.Constant, cl.IdentRef, cl.ArrayRef, cl.FuncCall, cl.ParenExpr:
		return true
	}
	return false
}

// scanFuncs take their output variables by name
var scanFuncs = map[string]bool{"scan": true, "scanf": true, "fscan": true, "fscanf": true}

var typeFuncs = map[string]string{
	"int": "iraf.integer", "real": "iraf.real", "double": "iraf.real", "bool": "iraf.boolean",
}

func (g *generator) funcCall(n *ast.Node) string {
	fn := n.Child(0)
	list := n.Find(cl.CallArgs)
	if fn.Type == cl.TYPE {
		name, ok := typeFuncs[fn.Text()]
		if !ok {
			name = "str"
		}
		return name + "(" + g.captureArgs(list, ", ") + ")"
	}

	name := "iraf." + pyPath(strings.Split(fn.Text(), "."))
	if list == nil {
		return name + "()"
	}
	if scanFuncs[fn.Text()] {
		args := []string{"locals()"}
		for _, arg := range flatten(list, cl.CallArg) {
			if ref := chain(arg.Child(0)); arg.Len() == 1 && ref.Type == cl.IdentRef {
				args = append(args, pyQuote(g.ident(ref.Child(0).Text())))
				continue
			}
			args = append(args, g.callArg(arg))
		}
		return name + "(" + strings.Join(args, ", ") + ")"
	}
	return name + "(" + g.captureArgs(list, ", ") + ")"
}

// captureArgs renders an argument list into its own buffer with commas
// written as sep
func (g *generator) captureArgs(list *ast.Node, sep string) string {
	if list == nil {
		return ""
	}
	var out string
	g.withTranslation(cl.COMMA, sep, func() {
		out = g.capture(func() {
			g.args.Preorder(list)
		})
	})
	return out
}

func (g *generator) callArg(n *ast.Node) string {
	if n.Len() == 1 {
		return stripParens(g.expr(n.Child(0)))
	}
	key := pyName(n.Child(0).Text())
	switch n.Child(1).Type {
	case cl.PLUS:
		return key + "=yes"
	case cl.MINUS:
		return key + "=no"
	}
	return key + "=" + stripParens(g.expr(n.Child(2)))
}

// stripParens removes parentheses enclosing the whole of s
func stripParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && enclosed(s) {
		s = s[1 : len(s)-1]
	}
	return s
}

// enclosed reports whether the opening parenthesis of s closes at its
// last byte
func enclosed(s string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i < len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}
