package compiler

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/opal-lang/clc/core/ast"
	clerrors "github.com/opal-lang/clc/core/errors"
	"github.com/opal-lang/clc/core/params"
	"github.com/opal-lang/clc/runtime/cl"
)

const (
	modeParam  = "mode"
	nargsParam = "$nargs"
	taskParam  = "taskObj"
)

// Variables is the result of the declaration pass
type Variables struct {
	ProcName string
	HasProc  bool
	Args     []string // signature arguments in order
	Params   *params.ParameterList
	Locals   []*params.Variable
	Warnings []string
}

// Lookup returns the parameter or local variable declared under name
func (v *Variables) Lookup(name string) (*params.Variable, bool) {
	if p, ok := v.Params.Get(name); ok {
		return p, true
	}
	for _, l := range v.Locals {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Injected names a parameter synthesized for every procedure
func Injected(name string) bool {
	return name == modeParam || name == nargsParam || name == taskParam
}

type collector struct {
	cfg       *config
	validator *params.Validator

	procName string
	hasProc  bool
	args     []string
	params   *params.ParameterList
	locals   *params.ParameterList
	inLocals bool
	warnings []string
	err      error
}

var sharedValidator = params.NewValidator(0)

// CollectVariables walks the declarations of a parsed program. It
// returns the first declaration error it finds. Honors WithFilename and
// WithParameterList.
func CollectVariables(tree *ast.Node, opts ...Option) (*Variables, error) {
	return collectVariables(tree, newConfig(opts))
}

func collectVariables(tree *ast.Node, cfg *config) (*Variables, error) {
	c := &collector{
		cfg:       cfg,
		validator: sharedValidator,
		params:    params.NewParameterList(),
		locals:    params.NewParameterList(),
	}

	w := &ast.Walker{
		Enter: map[string]ast.Handler{
			cl.ProcStmt: c.procStmt,
			cl.ParamDecls: func(*ast.Node) ast.Action {
				c.inLocals = false
				return c.next()
			},
			cl.LocalDecls: func(*ast.Node) ast.Action {
				c.inLocals = true
				return c.next()
			},
			cl.DeclStmt: c.declStmt,
			// nothing below a statement list declares anything
			cl.StmtList: func(*ast.Node) ast.Action { return ast.SkipChildren },
		},
		Default: func(*ast.Node) ast.Action { return c.next() },
	}
	w.Preorder(tree)
	if c.err != nil {
		return nil, c.err
	}

	if err := c.finish(); err != nil {
		return nil, err
	}
	return &Variables{
		ProcName: c.procName,
		HasProc:  c.hasProc,
		Args:     c.args,
		Params:   c.params,
		Locals:   c.locals.Vars(),
		Warnings: c.warnings,
	}, nil
}

func (c *collector) next() ast.Action {
	if c.err != nil {
		return ast.SkipChildren
	}
	return ast.Continue
}

func (c *collector) fail(err error) ast.Action {
	if c.err == nil {
		c.err = err
	}
	return ast.SkipChildren
}

func (c *collector) procStmt(n *ast.Node) ast.Action {
	c.hasProc = true
	c.procName = n.Child(1).Text()
	if argList := n.Find(cl.ProcArgs); argList != nil {
		for _, arg := range flatten(argList, cl.IDENT) {
			name := arg.Text()
			if c.params.Has(name) {
				return c.fail(clerrors.New(clerrors.KindSyntax, arg.Line,
					"duplicate argument '%s' in procedure statement", name))
			}
			c.args = append(c.args, name)
			// placeholder until its declaration fills it in
			_ = c.params.Add(&params.Variable{Name: name, Mode: "a"})
		}
	}
	return ast.SkipChildren
}

func (c *collector) declStmt(n *ast.Node) ast.Action {
	if c.err != nil {
		return ast.SkipChildren
	}
	typ, _ := n.Child(0).Token.Value.(string)
	for _, spec := range flatten(n.Child(1), cl.DeclSpec) {
		v, err := c.declSpec(typ, spec)
		if err != nil {
			return c.fail(err)
		}
		if err := c.define(v, spec.Line); err != nil {
			return c.fail(err)
		}
		msgs, err := c.validator.CheckDefaults(v)
		if err != nil {
			c.cfg.logger.Debug("default validation skipped", "variable", v.Name, "error", err)
		}
		c.warnings = append(c.warnings, msgs...)
	}
	return ast.SkipChildren
}

func (c *collector) define(v *params.Variable, line int) error {
	if c.inLocals {
		if c.locals.Has(v.Name) {
			return clerrors.New(clerrors.KindSyntax, line, "local variable '%s' redeclared", v.Name)
		}
		if c.params.Has(v.Name) {
			return clerrors.New(clerrors.KindSyntax, line, "local variable '%s' conflicts with a parameter", v.Name)
		}
		if v.Mode == "" {
			v.Mode = "u"
		}
		return c.locals.Add(v)
	}

	if prev, ok := c.params.Get(v.Name); ok {
		if prev.Type != "" {
			return clerrors.New(clerrors.KindSyntax, line, "parameter '%s' redeclared", v.Name)
		}
		if v.Mode == "" {
			v.Mode = prev.Mode
		}
		c.params.Set(v)
		return nil
	}
	if v.Mode == "" {
		v.Mode = "h"
	}
	return c.params.Add(v)
}

// declSpec builds the variable declared by one decl_spec node
func (c *collector) declSpec(typ string, spec *ast.Node) (*params.Variable, error) {
	declVar := spec.Child(0)
	v := &params.Variable{Type: typ}

	name := declVar.Child(0)
	switch {
	case name.Child(0).Type == cl.STAR:
		v.Name = name.Child(1).Text()
		v.List = true
	case name.Len() == 4:
		v.Name = name.Child(0).Text()
		size, err := constantValue(name.Child(2))
		if err != nil {
			return nil, err
		}
		v.ArraySize = int(size.Int)
	default:
		v.Name = name.Child(0).Text()
	}

	var inits []params.Value
	given := false
	if list := declVar.Find(cl.InitList); list != nil {
		given = true
		for _, iv := range flatten(list, cl.InitValue) {
			val, err := c.convert(typ, iv)
			if err != nil {
				return nil, err
			}
			inits = append(inits, val)
		}
	}

	if opts := spec.Find(cl.DeclOpts); opts != nil {
		if list := opts.Find(cl.OptList); list != nil {
			for _, item := range flatten(list, cl.OptItem) {
				if item.Len() == 1 {
					if given {
						return nil, clerrors.New(clerrors.KindSyntax, item.Line,
							"initial value for '%s' given twice", v.Name)
					}
					val, err := c.convert(typ, item.Child(0))
					if err != nil {
						return nil, err
					}
					inits = append(inits, val)
					given = true
					continue
				}
				if err := c.option(v, item); err != nil {
					return nil, err
				}
			}
		}
	}

	capacity := 1
	if v.IsArray() {
		capacity = v.ArraySize
	}
	if len(inits) > capacity {
		return nil, clerrors.New(clerrors.KindSyntax, spec.Line, "too many initial values for '%s'", v.Name)
	}
	for len(inits) < capacity {
		inits = append(inits, params.None)
	}
	v.Init = inits
	return v, nil
}

func (c *collector) convert(typ string, iv *ast.Node) (params.Value, error) {
	val, err := initValue(iv)
	if err != nil {
		return params.None, err
	}
	val, err = params.Convert(typ, val)
	if err != nil {
		return params.None, clerrors.WithLine(err, iv.Line)
	}
	return val, nil
}

// option applies one name=value declaration option
func (c *collector) option(v *params.Variable, item *ast.Node) error {
	key := item.Child(0).Text()
	raw, err := initValue(item.Child(2))
	if err != nil {
		return err
	}
	switch key {
	case "mode":
		v.Mode = raw.String()
	case "prompt":
		v.Options.Prompt = raw.String()
	case "enum":
		v.Options.Enum = raw.String()
	case "length":
		if raw.Kind != params.KindInt {
			return clerrors.New(clerrors.KindSyntax, item.Line,
				"option 'length' of '%s' must be an integer", v.Name)
		}
		v.Options.Length = int(raw.Int)
	case "min", "max":
		val, err := params.Convert(v.Type, raw)
		if err != nil {
			return clerrors.WithLine(err, item.Line)
		}
		if key == "min" {
			v.Options.Min = val
		} else {
			v.Options.Max = val
		}
	default:
		msg := "unknown option '" + key + "' for variable '" + v.Name + "'"
		if s := suggest(key, params.OptionNames); s != "" {
			msg += "; did you mean '" + s + "'?"
		}
		return clerrors.New(clerrors.KindSyntax, item.Line, "%s", msg)
	}
	return nil
}

// suggest returns the candidate closest to target, or "" when nothing is
// close
func suggest(target string, candidates []string) string {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", 3
	for _, cand := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(target), cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

func (c *collector) finish() error {
	for _, arg := range c.args {
		if v, _ := c.params.Get(arg); v.Type == "" {
			return clerrors.New(clerrors.KindSyntax, 0, "procedure argument '%s' is not declared", arg)
		}
	}
	if !c.hasProc {
		c.procName = procNameFor(c.cfg.filename)
	}

	if ext := c.cfg.external; ext != nil {
		for _, l := range c.locals.Vars() {
			if ext.Has(l.Name) {
				return clerrors.New(clerrors.KindSyntax, 0,
					"local variable '%s' conflicts with external parameter list", l.Name)
			}
		}
		for _, msg := range withoutInjected(c.params).Compare(withoutInjected(ext)) {
			c.warnings = append(c.warnings, "external parameter list mismatch: "+msg)
		}
		if c.cfg.authoritative {
			c.params = ext.Clone()
		} else {
			for _, v := range ext.Clone().Vars() {
				c.params.Set(v)
			}
		}
	}

	if !c.params.Has(modeParam) {
		_ = c.params.Add(&params.Variable{
			Name: modeParam, Type: "string", Mode: "h",
			Init: []params.Value{params.String("al")},
		})
	}
	c.params.Remove(nargsParam)
	_ = c.params.Add(&params.Variable{
		Name: nargsParam, Type: "int", Mode: "h",
		Init: []params.Value{params.Int(0)},
	})
	c.params.Remove(taskParam)
	return nil
}

func withoutInjected(list *params.ParameterList) *params.ParameterList {
	cp := list.Clone()
	for _, name := range []string{modeParam, nargsParam, taskParam} {
		cp.Remove(name)
	}
	return cp
}

// procNameFor derives a procedure name from a source file name
func procNameFor(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "clscript"
	}
	var b strings.Builder
	for i, r := range base {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// flatten collects the descendants of typ in a left-recursive list node,
// in source order
func flatten(n *ast.Node, typ string) []*ast.Node {
	var out []*ast.Node
	for _, c := range n.Children {
		switch c.Type {
		case typ:
			out = append(out, c)
		case n.Type:
			out = append(out, flatten(c, typ)...)
		}
	}
	return out
}
