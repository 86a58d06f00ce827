package params

import (
	"fmt"
	"strings"
)

// Options holds the optional declaration attributes of a variable
type Options struct {
	Min    Value
	Max    Value
	Prompt string
	Enum   string // "|"-separated choices
	Length int
}

// OptionNames are the option keys accepted in a declaration's braces
var OptionNames = []string{"mode", "min", "max", "prompt", "enum", "length"}

// Variable is a declared CL parameter or local variable
type Variable struct {
	Name      string
	Type      string // CL type name: int, real, string, ...
	Mode      string
	ArraySize int // 0 for scalars
	Init      []Value
	List      bool // declared with a leading '*'
	Options   Options
}

// IsArray reports whether the variable is an array
func (v *Variable) IsArray() bool {
	return v.ArraySize > 0
}

// Default returns the scalar initial value, or None
func (v *Variable) Default() Value {
	if len(v.Init) == 0 {
		return None
	}
	return v.Init[0]
}

// Choices splits the enum option into its choices
func (v *Variable) Choices() []string {
	if v.Options.Enum == "" {
		return nil
	}
	return strings.Split(v.Options.Enum, "|")
}

// Clone returns a deep copy
func (v *Variable) Clone() *Variable {
	cp := *v
	if v.Init != nil {
		cp.Init = make([]Value, len(v.Init))
		copy(cp.Init, v.Init)
	}
	return &cp
}

// Diff describes how other differs from v; empty when they agree on
// type, mode, shape and initial value
func (v *Variable) Diff(other *Variable) []string {
	var out []string
	if v.Type != other.Type {
		out = append(out, fmt.Sprintf("type %s vs %s", v.Type, other.Type))
	}
	if v.Mode != other.Mode {
		out = append(out, fmt.Sprintf("mode %q vs %q", v.Mode, other.Mode))
	}
	if v.ArraySize != other.ArraySize {
		out = append(out, fmt.Sprintf("array size %d vs %d", v.ArraySize, other.ArraySize))
	}
	if v.List != other.List {
		out = append(out, fmt.Sprintf("list flag %t vs %t", v.List, other.List))
	}
	if !sameValues(v.Init, other.Init) {
		out = append(out, fmt.Sprintf("value %s vs %s", formatValues(v.Init), formatValues(other.Init)))
	}
	return out
}

func sameValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatValues(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String renders the variable as a CL declaration
func (v *Variable) String() string {
	var b strings.Builder
	b.WriteString(v.Type)
	b.WriteByte(' ')
	if v.List {
		b.WriteByte('*')
	}
	b.WriteString(v.Name)
	if v.IsArray() {
		fmt.Fprintf(&b, "[%d]", v.ArraySize)
	}
	if len(v.Init) > 0 && !v.Init[0].IsNone() {
		b.WriteString(" = ")
		parts := make([]string, len(v.Init))
		for i, val := range v.Init {
			parts[i] = val.String()
		}
		b.WriteString(strings.Join(parts, ", "))
	}
	if v.Mode != "" {
		fmt.Fprintf(&b, " {mode=%q}", v.Mode)
	}
	return b.String()
}
