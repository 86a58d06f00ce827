package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opal-lang/clc/core/ast"
	clerrors "github.com/opal-lang/clc/core/errors"
	"github.com/opal-lang/clc/core/params"
	"github.com/opal-lang/clc/runtime/cl"
)

// constantValue decodes a constant leaf into a value
func constantValue(leaf *ast.Node) (params.Value, error) {
	text := leaf.Text()
	switch leaf.Type {
	case cl.INTEGER:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return params.None, literalError(leaf, err)
		}
		return params.Int(i), nil
	case cl.OCTAL:
		i, err := strconv.ParseInt(text[:len(text)-1], 8, 64)
		if err != nil {
			return params.None, literalError(leaf, err)
		}
		return params.Int(i), nil
	case cl.HEX:
		i, err := strconv.ParseInt(text[:len(text)-1], 16, 64)
		if err != nil {
			return params.None, literalError(leaf, err)
		}
		return params.Int(i), nil
	case cl.FLOAT:
		f, err := strconv.ParseFloat(exponent(text, "e"), 64)
		if err != nil {
			return params.None, literalError(leaf, err)
		}
		return params.Float(f), nil
	case cl.SEXAGESIMAL:
		f, err := sexagesimal(text)
		if err != nil {
			return params.None, literalError(leaf, err)
		}
		return params.Float(f), nil
	case cl.STRING:
		s, _ := leaf.Token.Value.(string)
		return params.String(s), nil
	case cl.BOOL:
		return params.Bool(text == "yes"), nil
	case cl.INDEF:
		return params.Indef, nil
	}
	return params.None, clerrors.New(clerrors.KindSyntax, leaf.Line, "unexpected literal %q", text)
}

func literalError(leaf *ast.Node, err error) error {
	return clerrors.Wrap(clerrors.KindConversion, leaf.Line, err, "invalid literal %q", leaf.Text())
}

// initValue decodes an init_value node: a constant with an optional sign
func initValue(n *ast.Node) (params.Value, error) {
	if n.Len() == 1 {
		return constantValue(n.Child(0).Child(0))
	}
	v, err := constantValue(n.Child(1).Child(0))
	if err != nil {
		return v, err
	}
	if n.Child(0).Type == cl.PLUS {
		if !v.Numeric() {
			return params.None, clerrors.New(clerrors.KindSyntax, n.Line, "unary + applied to %s literal", v.Kind)
		}
		return v, nil
	}
	switch v.Kind {
	case params.KindInt:
		return params.Int(-v.Int), nil
	case params.KindFloat:
		return params.Float(-v.Float), nil
	}
	return params.None, clerrors.New(clerrors.KindSyntax, n.Line, "unary - applied to %s literal", v.Kind)
}

func exponent(text, marker string) string {
	return strings.NewReplacer("d", marker, "D", marker, "e", marker, "E", marker).Replace(text)
}

func sexagesimal(text string) (float64, error) {
	parts := strings.Split(text, ":")
	var total float64
	scale := 1.0
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		total += f / scale
		scale *= 60
	}
	return total, nil
}

// stripZeros removes leading zeros from a decimal digit string, keeping
// a lone "0"
func stripZeros(digits string) string {
	s := strings.TrimLeft(digits, "0")
	if s == "" {
		return "0"
	}
	return s
}

// literal renders a constant leaf as Python source
func literal(leaf *ast.Node) string {
	text := leaf.Text()
	switch leaf.Type {
	case cl.INTEGER:
		return stripZeros(text)
	case cl.OCTAL:
		return "0o" + stripZeros(text[:len(text)-1])
	case cl.HEX:
		return "0x" + text[:len(text)-1]
	case cl.FLOAT:
		return exponent(text, "E")
	case cl.SEXAGESIMAL:
		parts := strings.Split(text, ":")
		for i, p := range parts {
			if !strings.Contains(p, ".") {
				parts[i] = stripZeros(p)
			}
		}
		return "iraf.clSexagesimal(" + strings.Join(parts, ", ") + ")"
	case cl.STRING:
		s, _ := leaf.Token.Value.(string)
		return pyQuote(s)
	case cl.BOOL, cl.INDEF:
		return text
	}
	return text
}

// valueLiteral renders a parameter value as Python source
func valueLiteral(v params.Value) string {
	switch v.Kind {
	case params.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case params.KindFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case params.KindString:
		return pyQuote(v.Str)
	case params.KindBool:
		if v.Bool {
			return "yes"
		}
		return "no"
	case params.KindIndef:
		return "INDEF"
	}
	return "None"
}

// pyQuote renders s as a Python string literal
func pyQuote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
