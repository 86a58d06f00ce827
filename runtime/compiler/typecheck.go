package compiler

import (
	"strings"

	"github.com/opal-lang/clc/core/ast"
	"github.com/opal-lang/clc/core/params"
	"github.com/opal-lang/clc/runtime/cl"
)

// builtinTypes maps CL intrinsic functions to their result type. Type
// conversions such as int(x) arrive as TYPE tokens and are typed by
// declaredType instead.
var builtinTypes = map[string]ast.Type{
	"nint": ast.TypeInt, "mod": ast.TypeInt,
	"strlen": ast.TypeInt, "stridx": ast.TypeInt, "strldx": ast.TypeInt,
	"strstr": ast.TypeInt, "fscan": ast.TypeInt, "fscanf": ast.TypeInt,
	"scan": ast.TypeInt, "scanf": ast.TypeInt, "radix": ast.TypeInt,

	"sin": ast.TypeFloat, "cos": ast.TypeFloat, "tan": ast.TypeFloat, "asin": ast.TypeFloat,
	"acos": ast.TypeFloat, "atan": ast.TypeFloat, "atan2": ast.TypeFloat,
	"exp": ast.TypeFloat, "log": ast.TypeFloat, "log10": ast.TypeFloat,
	"sqrt": ast.TypeFloat, "frac": ast.TypeFloat, "abs": ast.TypeFloat,
	"min": ast.TypeFloat, "max": ast.TypeFloat, "dsin": ast.TypeFloat,
	"dcos": ast.TypeFloat, "dtan": ast.TypeFloat, "deg": ast.TypeFloat,
	"rad": ast.TypeFloat,

	"str": ast.TypeString, "substr": ast.TypeString, "envget": ast.TypeString,
	"mktemp": ast.TypeString, "osfn": ast.TypeString, "clktime": ast.TypeString,
	"cltime": ast.TypeString, "upper": ast.TypeString, "lower": ast.TypeString,
	"trim": ast.TypeString, "triml": ast.TypeString, "trimr": ast.TypeString,
	"path": ast.TypeString,

	"access": ast.TypeBool, "defpac": ast.TypeBool, "defpar": ast.TypeBool,
	"deftask": ast.TypeBool, "defvar": ast.TypeBool, "imaccess": ast.TypeBool,
	"isindef": ast.TypeBool,
}

// fieldTypes maps parameter-field suffixes to their type; p_value and
// the bounds take the parameter's own type
var fieldTypes = map[string]ast.Type{
	"p_name": ast.TypeString, "p_type": ast.TypeString, "p_mode": ast.TypeString,
	"p_prompt": ast.TypeString, "p_enum": ast.TypeString, "p_xtype": ast.TypeString,
	"p_length": ast.TypeInt,
}

// declaredType maps a CL declaration type onto the expression lattice
func declaredType(typ string) ast.Type {
	if typ == "" {
		return ast.TypeIndef
	}
	switch params.TypeClass(typ) {
	case params.KindInt:
		return ast.TypeInt
	case params.KindFloat:
		return ast.TypeFloat
	case params.KindBool:
		return ast.TypeBool
	case params.KindIndef:
		return ast.TypeIndef
	}
	return ast.TypeString
}

type checker struct {
	vars *Variables
}

// CheckTypes annotates every expression node of tree with its inferred
// and required types. Running it again on the same tree yields the same
// annotations.
func CheckTypes(tree *ast.Node, vars *Variables) {
	c := &checker{vars: vars}
	w := &ast.Walker{Enter: map[string]ast.Handler{
		cl.Constant:   c.constant,
		cl.IdentRef:   c.identRef,
		cl.ArrayRef:   c.arrayRef,
		cl.FuncCall:   c.funcCall,
		cl.ParenExpr:  c.parenExpr,
		cl.Primary:    c.passThrough,
		cl.Expr:       c.passThrough,
		cl.OrExpr:     c.logical,
		cl.AndExpr:    c.logical,
		cl.CmpExpr:    c.comparison,
		cl.ConcatExpr: c.concat,
		cl.AddExpr:    c.add,
		cl.MulExpr:    c.arithmetic,
		cl.PowExpr:    c.arithmetic,
		cl.Unary:      c.unary,
		cl.Assignment: c.assignment,
	}}
	w.Postorder(tree)
}

func set(n *ast.Node, t ast.Type) ast.Action {
	n.ExprType = t
	n.RequireType = t
	return ast.Continue
}

// nameType resolves the type of a possibly dotted identifier
func (c *checker) nameType(name string) ast.Type {
	if name == nargsParam {
		return ast.TypeInt
	}
	parts := strings.Split(name, ".")
	v, ok := c.vars.Lookup(parts[0])
	if !ok {
		return ast.TypeIndef
	}
	switch len(parts) {
	case 1:
		return declaredType(v.Type)
	case 2:
		switch field := parts[1]; field {
		case "p_value", "p_min", "p_max":
			return declaredType(v.Type)
		default:
			if t, ok := fieldTypes[field]; ok {
				return t
			}
		}
	}
	return ast.TypeIndef
}

func (c *checker) constant(n *ast.Node) ast.Action {
	switch n.Child(0).Type {
	case cl.INTEGER, cl.OCTAL, cl.HEX:
		return set(n, ast.TypeInt)
	case cl.FLOAT, cl.SEXAGESIMAL:
		return set(n, ast.TypeFloat)
	case cl.STRING:
		return set(n, ast.TypeString)
	case cl.BOOL:
		return set(n, ast.TypeBool)
	}
	return set(n, ast.TypeIndef)
}

func (c *checker) identRef(n *ast.Node) ast.Action {
	return set(n, c.nameType(n.Child(0).Text()))
}

func (c *checker) arrayRef(n *ast.Node) ast.Action {
	return set(n, c.nameType(n.Child(0).Text()))
}

func (c *checker) funcCall(n *ast.Node) ast.Action {
	fn := n.Child(0)
	if fn.Type == cl.TYPE {
		return set(n, declaredType(fn.Text()))
	}
	if t, ok := builtinTypes[fn.Text()]; ok {
		return set(n, t)
	}
	return set(n, ast.TypeIndef)
}

func (c *checker) parenExpr(n *ast.Node) ast.Action {
	return set(n, n.Child(1).ExprType)
}

func (c *checker) passThrough(n *ast.Node) ast.Action {
	return set(n, n.Child(0).ExprType)
}

func (c *checker) logical(n *ast.Node) ast.Action {
	if n.Len() == 1 {
		return c.passThrough(n)
	}
	n.Child(0).RequireType = ast.TypeBool
	n.Child(2).RequireType = ast.TypeBool
	return set(n, ast.TypeBool)
}

// comparison yields bool; operands keep their own types so numeric and
// string comparisons are emitted as written
func (c *checker) comparison(n *ast.Node) ast.Action {
	if n.Len() == 1 {
		return c.passThrough(n)
	}
	return set(n, ast.TypeBool)
}

func (c *checker) concat(n *ast.Node) ast.Action {
	if n.Len() == 1 {
		return c.passThrough(n)
	}
	n.Child(0).RequireType = ast.TypeString
	n.Child(2).RequireType = ast.TypeString
	return set(n, ast.TypeString)
}

func (c *checker) add(n *ast.Node) ast.Action {
	if n.Len() == 1 {
		return c.passThrough(n)
	}
	l, r := n.Child(0), n.Child(2)
	if n.Child(1).Type == cl.PLUS && (l.ExprType == ast.TypeString || r.ExprType == ast.TypeString) {
		return c.concat(n)
	}
	return set(n, compose(l, r))
}

func (c *checker) arithmetic(n *ast.Node) ast.Action {
	if n.Len() == 1 {
		return c.passThrough(n)
	}
	return set(n, compose(n.Child(0), n.Child(2)))
}

// compose is the arithmetic composition rule for binary operators
func compose(l, r *ast.Node) ast.Type {
	ln, rn := l.ExprType.Numeric(), r.ExprType.Numeric()
	switch {
	case ln && rn:
		if l.ExprType == r.ExprType {
			return l.ExprType
		}
		return ast.TypeFloat
	case ln:
		r.RequireType = l.ExprType
		return l.ExprType
	case rn:
		l.RequireType = r.ExprType
		return r.ExprType
	}
	l.RequireType = ast.TypeFloat
	r.RequireType = ast.TypeFloat
	return ast.TypeFloat
}

func (c *checker) unary(n *ast.Node) ast.Action {
	if n.Len() == 1 {
		return c.passThrough(n)
	}
	operand := n.Child(1)
	if n.Child(0).Type == cl.NOT {
		operand.RequireType = ast.TypeBool
		return set(n, ast.TypeBool)
	}
	if operand.ExprType.Numeric() {
		return set(n, operand.ExprType)
	}
	operand.RequireType = ast.TypeFloat
	return set(n, ast.TypeFloat)
}

func (c *checker) assignment(n *ast.Node) ast.Action {
	target := c.nameType(n.Child(0).Child(0).Text())
	if target != ast.TypeIndef {
		n.Child(2).RequireType = target
	}
	return ast.Continue
}
