package compiler

import (
	"fmt"
	"strings"

	"github.com/opal-lang/clc/core/ast"
	clerrors "github.com/opal-lang/clc/core/errors"
	"github.com/opal-lang/clc/core/invariant"
	"github.com/opal-lang/clc/runtime/cl"
)

// argSep separates captured task arguments until they are laid out
const argSep = "\x00"

type generator struct {
	cfg  *config
	vars *Variables

	out     []*strings.Builder // top is the active buffer
	indent  int
	emitted []bool // per indentation level

	// translate maps token types to the text written for them while
	// capturing argument lists
	translate map[string]string

	pipes    int
	switches int
	usesPkg  bool

	warnings []string
	errs     []error

	stmts *ast.Walker
	args  *ast.Walker
}

// Generate translates an annotated tree into Python source. It returns
// the code and the warnings raised by this and the declaration pass.
// Fatal problems found anywhere in the tree are reported together.
func Generate(tree *ast.Node, vars *Variables, opts ...Option) (string, []string, error) {
	return generate(tree, vars, newConfig(opts))
}

func generate(tree *ast.Node, vars *Variables, cfg *config) (string, []string, error) {
	invariant.NotNil(tree, "tree")
	invariant.NotNil(vars, "vars")

	g := &generator{
		cfg:       cfg,
		vars:      vars,
		out:       []*strings.Builder{{}},
		translate: map[string]string{cl.COMMA: ", "},
		warnings:  append([]string(nil), vars.Warnings...),
	}
	g.stmts = &ast.Walker{
		Enter: map[string]ast.Handler{
			cl.ProcStmt:   skip,
			cl.ParamDecls: skip,
			cl.LocalDecls: skip,
			cl.Statement:  g.statement,
			cl.SimpleStmt: g.simpleStmt,
			cl.Assignment: g.assignmentStmt,
			cl.Pipeline:   g.pipeline,
			cl.IfStmt:     g.ifStmt,
			cl.WhileStmt:  g.whileStmt,
			cl.ForStmt:    g.forStmt,
			cl.SwitchStmt: g.switchStmt,
		},
	}
	g.args = &ast.Walker{
		Enter: map[string]ast.Handler{
			cl.CallArg: func(n *ast.Node) ast.Action {
				g.write(g.callArg(n))
				return ast.SkipChildren
			},
			cl.COMMA: func(n *ast.Node) ast.Action {
				g.write(g.translate[cl.COMMA])
				return ast.SkipChildren
			},
		},
	}

	g.push(1)
	g.stmts.Preorder(tree)
	invariant.Postcondition(g.indent == 1, "unbalanced indentation: %d", g.indent)
	invariant.Postcondition(len(g.out) == 1, "unreleased capture buffers: %d", len(g.out)-1)

	var code strings.Builder
	for _, line := range g.header() {
		code.WriteString(line)
		code.WriteByte('\n')
	}
	code.WriteString(g.out[0].String())
	for _, w := range g.warnings {
		code.WriteString("# Warning: ")
		code.WriteString(strings.ReplaceAll(w, "\n", " "))
		code.WriteByte('\n')
		cfg.logger.Warn(w, "procedure", vars.ProcName)
	}

	if len(g.errs) > 0 {
		return "", g.warnings, clerrors.Join(clerrors.KindGeneration, g.errs)
	}
	return code.String(), g.warnings, nil
}

func skip(*ast.Node) ast.Action { return ast.SkipChildren }

func (g *generator) write(s string) {
	g.out[len(g.out)-1].WriteString(s)
}

// line writes one statement at the current indentation. Continuation
// lines are indented one level further.
func (g *generator) line(first string, rest ...string) {
	g.write(strings.Repeat("\t", g.indent) + first + "\n")
	for _, r := range rest {
		g.write(strings.Repeat("\t", g.indent+1) + r + "\n")
	}
	g.emitted[g.indent] = true
}

func (g *generator) push(level int) {
	for len(g.emitted) <= level {
		g.emitted = append(g.emitted, false)
	}
	g.indent = level
	g.emitted[level] = false
}

// suite emits head, walks body one level deeper and closes the level,
// writing a pass statement when nothing was emitted inside it
func (g *generator) suite(head string, body func()) {
	g.line(head)
	g.push(g.indent + 1)
	body()
	if !g.emitted[g.indent] {
		g.line("pass")
	}
	g.indent--
}

// capture runs fn against a fresh buffer and returns what it wrote
func (g *generator) capture(fn func()) string {
	g.out = append(g.out, &strings.Builder{})
	defer func() { g.out = g.out[:len(g.out)-1] }()
	fn()
	return g.out[len(g.out)-1].String()
}

// withTranslation overrides the text emitted for a token type while fn
// runs
func (g *generator) withTranslation(typ, text string, fn func()) {
	prev, had := g.translate[typ]
	g.translate[typ] = text
	defer func() {
		if had {
			g.translate[typ] = prev
		} else {
			delete(g.translate, typ)
		}
	}()
	fn()
}

func (g *generator) warn(line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, line)
	}
	g.warnings = append(g.warnings, msg)
}

func (g *generator) fail(err error) {
	g.errs = append(g.errs, err)
}

func (g *generator) statement(n *ast.Node) ast.Action {
	switch first := n.Child(0); {
	case first.Type == cl.SEMI:
		return ast.SkipChildren
	case first.Type == cl.IDENT:
		g.warn(n.Line, "label '%s' ignored", first.Text())
		g.stmts.Preorder(n.Child(3))
		return ast.SkipChildren
	}
	return ast.Continue
}

func (g *generator) simpleStmt(n *ast.Node) ast.Action {
	switch n.Child(0).Type {
	case cl.BREAK:
		g.line("break")
	case cl.NEXT:
		g.line("continue")
	case cl.RETURN:
		g.line("return")
	case cl.GOTO:
		g.fail(clerrors.New(clerrors.KindSyntax, n.Line, "GOTO is not supported"))
	default:
		return ast.Continue
	}
	return ast.SkipChildren
}

func (g *generator) assignmentStmt(n *ast.Node) ast.Action {
	g.line(g.assignment(n))
	return ast.SkipChildren
}

func (g *generator) assignment(n *ast.Node) string {
	target := g.lvalue(n.Child(0))
	rhs := g.expr(n.Child(2))
	op := n.Child(1)
	if op.Type == cl.EQUALS {
		return target + " = " + rhs
	}
	switch op.Text() {
	case "//=":
		return target + " = " + target + " + " + rhs
	case "/=":
		if g.lvalueType(n.Child(0)) == ast.TypeInt {
			return target + " //= " + rhs
		}
	}
	return target + " " + op.Text() + " " + rhs
}

func (g *generator) lvalueType(n *ast.Node) ast.Type {
	return (&checker{vars: g.vars}).nameType(n.Child(0).Text())
}

func (g *generator) ifStmt(n *ast.Node) ast.Action {
	g.ifChain(n, "if")
	return ast.SkipChildren
}

// ifChain emits an if statement, folding else-if arms into elif
func (g *generator) ifChain(n *ast.Node, keyword string) {
	g.suite(keyword+" "+g.expr(n.Child(2))+":", func() {
		g.stmts.Preorder(n.Child(5))
	})
	if n.Len() < 9 {
		return
	}
	alt := n.Child(8)
	if alt.Len() == 1 && alt.Child(0).Type == cl.IfStmt {
		g.ifChain(alt.Child(0), "elif")
		return
	}
	g.suite("else:", func() {
		g.stmts.Preorder(alt)
	})
}

func (g *generator) whileStmt(n *ast.Node) ast.Action {
	g.suite("while "+g.expr(n.Child(2))+":", func() {
		g.stmts.Preorder(n.Child(5))
	})
	return ast.SkipChildren
}

// forStmt lowers for (init; test; incr) to init followed by a while loop
// whose body ends with incr
func (g *generator) forStmt(n *ast.Node) ast.Action {
	init, test, incr, body := n.Child(2), n.Child(4), n.Child(6), n.Child(9)
	if init.Len() > 0 {
		g.line(g.assignment(init.Child(0)))
	}
	cond := "1"
	if test.Len() > 0 {
		cond = g.expr(test.Child(0))
	}
	g.suite("while "+cond+":", func() {
		g.stmts.Preorder(body)
		if incr.Len() > 0 {
			g.line(g.assignment(incr.Child(0)))
		}
	})
	return ast.SkipChildren
}

// switchStmt lowers a switch to an if/elif chain over a temporary
func (g *generator) switchStmt(n *ast.Node) ast.Action {
	g.switches++
	tmp := fmt.Sprintf("SwitchVal%d", g.switches)
	g.line(tmp + " = " + g.expr(n.Child(2)))

	var dflt *ast.Node
	keyword := "if"
	for _, clause := range flatten(n.Child(6), cl.CaseClause) {
		if clause.Child(0).Type == cl.DEFAULT {
			if dflt != nil {
				g.fail(clerrors.New(clerrors.KindSyntax, clause.Line, "multiple default clauses in switch"))
			}
			dflt = clause
			continue
		}
		var vals []string
		for _, iv := range flatten(clause.Child(1), cl.InitValue) {
			vals = append(vals, initLiteral(iv))
		}
		body := clause.Child(4)
		g.suite(keyword+" "+tmp+" in ("+strings.Join(vals, ", ")+",):", func() {
			g.stmts.Preorder(body)
		})
		keyword = "elif"
	}
	if dflt != nil {
		head := "else:"
		if keyword == "if" {
			head = "if 1:"
		}
		g.suite(head, func() {
			g.stmts.Preorder(dflt.Child(3))
		})
	}
	return ast.SkipChildren
}

// initLiteral renders an optionally signed constant
func initLiteral(iv *ast.Node) string {
	if iv.Len() == 1 {
		return literal(iv.Child(0).Child(0))
	}
	return iv.Child(0).Text() + literal(iv.Child(1).Child(0))
}
