package params

import (
	"fmt"
)

// ParameterList is an ordered set of uniquely named variables
type ParameterList struct {
	vars  []*Variable
	index map[string]int
}

// NewParameterList creates a list holding vars; later duplicates replace
// earlier ones in place
func NewParameterList(vars ...*Variable) *ParameterList {
	p := &ParameterList{index: make(map[string]int, len(vars))}
	for _, v := range vars {
		p.Set(v)
	}
	return p
}

// Add appends v, failing if the name is taken
func (p *ParameterList) Add(v *Variable) error {
	if _, ok := p.index[v.Name]; ok {
		return fmt.Errorf("parameter %q already defined", v.Name)
	}
	p.index[v.Name] = len(p.vars)
	p.vars = append(p.vars, v)
	return nil
}

// Set replaces the variable of the same name, keeping its position, or
// appends v if there is none
func (p *ParameterList) Set(v *Variable) {
	if i, ok := p.index[v.Name]; ok {
		p.vars[i] = v
		return
	}
	p.index[v.Name] = len(p.vars)
	p.vars = append(p.vars, v)
}

// Remove deletes the named variable, reporting whether it existed
func (p *ParameterList) Remove(name string) bool {
	i, ok := p.index[name]
	if !ok {
		return false
	}
	p.vars = append(p.vars[:i], p.vars[i+1:]...)
	delete(p.index, name)
	for j := i; j < len(p.vars); j++ {
		p.index[p.vars[j].Name] = j
	}
	return true
}

// Get returns the named variable
func (p *ParameterList) Get(name string) (*Variable, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.vars[i], true
}

// Has reports whether name is defined
func (p *ParameterList) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Vars returns the variables in order
func (p *ParameterList) Vars() []*Variable {
	out := make([]*Variable, len(p.vars))
	copy(out, p.vars)
	return out
}

// Names returns the variable names in order
func (p *ParameterList) Names() []string {
	out := make([]string, len(p.vars))
	for i, v := range p.vars {
		out[i] = v.Name
	}
	return out
}

// Len returns the number of variables
func (p *ParameterList) Len() int {
	if p == nil {
		return 0
	}
	return len(p.vars)
}

// Clone returns a deep copy
func (p *ParameterList) Clone() *ParameterList {
	out := &ParameterList{index: make(map[string]int, len(p.vars))}
	for _, v := range p.vars {
		out.Set(v.Clone())
	}
	return out
}

// Compare lists the differences between p and other, in p's order
// followed by names only other defines. An empty result means the lists
// agree.
func (p *ParameterList) Compare(other *ParameterList) []string {
	var out []string
	for _, v := range p.vars {
		o, ok := other.Get(v.Name)
		if !ok {
			out = append(out, fmt.Sprintf("parameter '%s' is not in the other list", v.Name))
			continue
		}
		for _, d := range v.Diff(o) {
			out = append(out, fmt.Sprintf("parameter '%s' differs: %s", v.Name, d))
		}
	}
	for _, o := range other.vars {
		if !p.Has(o.Name) {
			out = append(out, fmt.Sprintf("parameter '%s' is only in the other list", o.Name))
		}
	}
	return out
}
