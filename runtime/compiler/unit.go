package compiler

import (
	"github.com/opal-lang/clc/core/params"
	"github.com/opal-lang/clc/runtime/cache"
)

// CompiledUnit is the result of a compilation: the generated Python plus
// the declaration metadata callers need to rebuild parameter objects
// without reparsing.
type CompiledUnit struct {
	Code     string
	Filename string
	ProcName string
	HasProc  bool // source began with a procedure statement
	Locals   []*params.Variable
	Params   *params.ParameterList
	Warnings []string
}

func (u *CompiledUnit) entry() *cache.Entry {
	e := &cache.Entry{
		Code:     u.Code,
		Filename: u.Filename,
		ProcName: u.ProcName,
		HasProc:  u.HasProc,
		Warnings: u.Warnings,
		Locals:   u.Locals,
	}
	if u.Params != nil {
		e.Params = u.Params.Vars()
	}
	return e
}

func unitFromEntry(e *cache.Entry) *CompiledUnit {
	return &CompiledUnit{
		Code:     e.Code,
		Filename: e.Filename,
		ProcName: e.ProcName,
		HasProc:  e.HasProc,
		Warnings: e.Warnings,
		Locals:   e.Locals,
		Params:   params.NewParameterList(e.Params...),
	}
}
