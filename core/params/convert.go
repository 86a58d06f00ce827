package params

import (
	"math"
	"strconv"
	"strings"

	clerrors "github.com/opal-lang/clc/core/errors"
)

// TypeClass groups CL declaration types by the kind of value they hold
func TypeClass(typ string) Kind {
	switch typ {
	case "int":
		return KindInt
	case "real", "double":
		return KindFloat
	case "bool":
		return KindBool
	case "pset":
		return KindIndef
	}
	return KindString
}

// Convert coerces a literal to the declared CL type. None and INDEF pass
// through unchanged.
func Convert(typ string, v Value) (Value, error) {
	if v.IsNone() || v.IsIndef() {
		return v, nil
	}

	switch TypeClass(typ) {
	case KindInt:
		switch v.Kind {
		case KindInt:
			return v, nil
		case KindFloat:
			if v.Float == math.Trunc(v.Float) {
				return Int(int64(v.Float)), nil
			}
		case KindString:
			s := strings.TrimSpace(v.Str)
			if s == "INDEF" {
				return Indef, nil
			}
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int(i), nil
			}
		}
	case KindFloat:
		switch v.Kind {
		case KindFloat:
			return v, nil
		case KindInt:
			return Float(float64(v.Int)), nil
		case KindString:
			s := strings.TrimSpace(v.Str)
			if s == "INDEF" {
				return Indef, nil
			}
			if f, err := strconv.ParseFloat(strings.NewReplacer("d", "e", "D", "e").Replace(s), 64); err == nil {
				return Float(f), nil
			}
		}
	case KindBool:
		switch v.Kind {
		case KindBool:
			return v, nil
		case KindString:
			switch strings.ToLower(strings.TrimSpace(v.Str)) {
			case "yes", "y":
				return Bool(true), nil
			case "no", "n":
				return Bool(false), nil
			}
		}
	case KindIndef:
		return v, nil
	default:
		if v.Kind == KindString {
			return v, nil
		}
		return String(v.String()), nil
	}

	return None, clerrors.New(clerrors.KindConversion, 0,
		"cannot convert %s value %q to %s", v.Kind, v.String(), typ)
}
