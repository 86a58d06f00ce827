package compiler

import (
	"strconv"
	"strings"

	"github.com/opal-lang/clc/core/params"
)

var imports = []string{
	"from pyraf import iraf",
	"from pyraf.irafpar import makeIrafPar, IrafParList",
	"from stsci.tools.irafglobals import *",
	"from pyraf.pyrafglobals import *",
}

// header renders the imports, the function signature and the statements
// rebuilding parameter metadata
func (g *generator) header() []string {
	lines := append([]string(nil), imports...)
	lines = append(lines, "")

	vars := g.vars.Params.Vars()
	formals := make([]string, 0, len(vars)+1)
	for _, v := range vars {
		formals = append(formals, pyName(v.Name)+"="+defaultLiteral(v))
	}
	formals = append(formals, taskParam+"=None")
	lines = append(lines, "def "+pyName(g.vars.ProcName)+"("+strings.Join(formals, ", ")+"):", "")

	filename := g.cfg.filename
	if filename == "" {
		filename = g.vars.ProcName
	}
	lines = append(lines, "\tVars = IrafParList("+taskParam+", "+pyQuote(g.vars.ProcName)+", "+pyQuote(filename)+")")
	for _, v := range vars {
		lines = append(lines, "\tVars.addParam("+makePar(pyName(v.Name), v)+")")
	}
	for _, v := range g.vars.Locals {
		lines = append(lines, "\tVars.addParam("+makePar(defaultLiteral(v), v)+")")
	}
	if g.usesPkg {
		lines = append(lines, "", "\tPkgName = iraf.curpack(); PkgBinary = iraf.curPkgbinary()")
	}
	return append(lines, "")
}

func defaultLiteral(v *params.Variable) string {
	if !v.IsArray() {
		return valueLiteral(v.Default())
	}
	parts := make([]string, len(v.Init))
	for i, val := range v.Init {
		parts[i] = valueLiteral(val)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// makePar renders the makeIrafPar call for v with the given value
// expression
func makePar(value string, v *params.Variable) string {
	args := []string{
		value,
		"datatype=" + pyQuote(v.Type),
		"name=" + pyQuote(v.Name),
	}
	if v.IsArray() {
		args = append(args, "array_size=("+strconv.Itoa(v.ArraySize)+",)")
	}
	if v.List {
		args = append(args, "list_flag=1")
	}
	if v.Mode != "" {
		args = append(args, "mode="+pyQuote(v.Mode))
	}
	o := v.Options
	if !o.Min.IsNone() {
		args = append(args, "min="+valueLiteral(o.Min))
	}
	if !o.Max.IsNone() {
		args = append(args, "max="+valueLiteral(o.Max))
	}
	if o.Enum != "" {
		args = append(args, "enum="+pyQuote(o.Enum))
	}
	if o.Prompt != "" {
		args = append(args, "prompt="+pyQuote(o.Prompt))
	}
	if o.Length > 0 {
		args = append(args, "length="+strconv.Itoa(o.Length))
	}
	return "makeIrafPar(" + strings.Join(args, ", ") + ")"
}
