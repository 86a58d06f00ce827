// Package params models CL parameters: typed values, variables with
// their declaration metadata, and ordered parameter lists.
package params

import (
	"encoding/json"
	"strconv"
)

// Kind identifies the dynamic type of a Value
type Kind int

const (
	// KindNone is the zero Value: no value given
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindIndef
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindIndef:
		return "indef"
	}
	return "unknown"
}

// Value is a CL literal value
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

var (
	// None is the absent value
	None = Value{}
	// Indef is the CL INDEF value
	Indef = Value{Kind: KindIndef}
)

func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func (v Value) IsNone() bool { return v.Kind == KindNone }
func (v Value) IsIndef() bool { return v.Kind == KindIndef }
func (v Value) Numeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// AsFloat returns the numeric value as a float64
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// String renders the value as CL would print it
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "yes"
		}
		return "no"
	case KindIndef:
		return "INDEF"
	}
	return ""
}

// jsonValue returns the value in the shape encoding/json would decode it
// into, for schema validation
func (v Value) jsonValue() interface{} {
	switch v.Kind {
	case KindInt:
		return json.Number(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		return json.Number(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	}
	return nil
}
