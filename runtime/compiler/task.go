package compiler

import (
	"fmt"
	"strings"

	"github.com/opal-lang/clc/core/ast"
	"github.com/opal-lang/clc/runtime/cl"
)

// lineWidth is the column budget for wrapped task calls; tabs count
// as eight columns
const lineWidth = 78

var taskRenames = map[string]string{
	"print":  "clPrint",
	"printf": "clPrintf",
	"cd":     "clChdir",
	"error":  "clError",
}

// redirections maps redirection operators to the keyword argument the
// task wrapper accepts
var redirections = map[string]string{
	">":   "Stdout",
	">>":  "StdoutAppend",
	"<":   "Stdin",
	">&":  "Stderr",
	">>&": "StderrAppend",
	">G":  "StdoutG",
	">>G": "StdoutAppendG",
	">I":  "StdoutI",
	">>I": "StdoutAppendI",
	">P":  "StdoutP",
	">>P": "StdoutAppendP",
}

// packageTasks receive the enclosing package name and binary path
var packageTasks = map[string]bool{"task": true, "package": true, "redefine": true}

// pipeline emits a task call, or a chain of calls connected through
// named output buffers
func (g *generator) pipeline(n *ast.Node) ast.Action {
	calls := flatten(n, cl.TaskCall)
	var input string
	for i, call := range calls {
		var extra []string
		if input != "" {
			extra = append(extra, "Stdin="+input)
		}
		assign := ""
		output := ""
		if i < len(calls)-1 {
			g.pipes++
			output = fmt.Sprintf("Pipe%d", g.pipes)
			assign = output + " = "
			extra = append(extra, "Stdout=1")
		}
		g.taskCall(call, assign, extra)
		if input != "" {
			g.line("del " + input)
		}
		input = output
	}
	return ast.SkipChildren
}

func (g *generator) taskCall(n *ast.Node, assign string, extra []string) {
	name := n.Child(0).Text()

	var args []string
	if list := n.Find(cl.CallArgs); list != nil {
		args = strings.Split(g.captureArgs(list, argSep), argSep)
	} else if list := n.Find(cl.CmdArgs); list != nil {
		for _, arg := range flatten(list, cl.CmdArg) {
			args = append(args, g.cmdArg(arg))
		}
	}
	for _, r := range flatten(n.Child(n.Len()-1), cl.Redir) {
		args = append(args, g.redirect(r))
	}
	if packageTasks[name] {
		g.usesPkg = true
		args = append(args, "PkgName=PkgName", "PkgBinary=PkgBinary")
		if name == "package" {
			assign = "PkgName, PkgBinary = "
		}
	}
	args = append(args, extra...)

	fn := "iraf." + pyPath(strings.Split(name, "."))
	if r, ok := taskRenames[name]; ok {
		fn = "iraf." + r
	}
	first, rest := g.wrap(assign+fn+"(", args)
	g.line(first, rest...)
}

func (g *generator) cmdArg(n *ast.Node) string {
	if n.Len() == 1 {
		return g.word(n.Child(0))
	}
	key := pyName(n.Child(0).Text())
	switch n.Child(1).Type {
	case cl.PLUS:
		return key + "=yes"
	case cl.MINUS:
		return key + "=no"
	}
	return key + "=" + g.word(n.Child(2))
}

// word renders a command-mode argument: constants keep their value and
// bare words are strings
func (g *generator) word(n *ast.Node) string {
	if n.Type == cl.CmdWord {
		return pyQuote(n.Child(0).Text())
	}
	return literal(n.Child(0))
}

func (g *generator) redirect(n *ast.Node) string {
	key := redirections[n.Child(0).Text()]
	target := n.Child(1)
	var value string
	switch first := target.Child(0); first.Type {
	case cl.STRING:
		value = literal(first)
	case cl.IDENT:
		value = pyQuote(first.Text())
	default:
		value = g.expr(target.Child(1))
	}
	return key + "=" + value
}

// wrap lays out a call within the column budget. It returns the first
// line and any continuation lines.
func (g *generator) wrap(head string, args []string) (string, []string) {
	var lines []string
	cur := head
	col := g.indent * 8
	for i, a := range args {
		piece := a
		if i < len(args)-1 {
			piece += ","
		} else {
			piece += ")"
		}
		switch {
		case i == 0:
			cur += piece
		case col+len(cur)+1+len(piece) > lineWidth:
			lines = append(lines, cur)
			cur = piece
			col = (g.indent + 1) * 8
		default:
			cur += " " + piece
		}
	}
	if len(args) == 0 {
		cur += ")"
	}
	lines = append(lines, cur)
	return lines[0], lines[1:]
}
