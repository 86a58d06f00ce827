package ast

// Type is the static type lattice of CL expressions
type Type int

const (
	TypeUnset Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	// TypeIndef is the type of INDEF and of anything whose type is unknown
	TypeIndef
)

var typeNames = [...]string{
	TypeUnset:  "unset",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeString: "string",
	TypeBool:   "bool",
	TypeIndef:  "indef",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Numeric reports whether t is int or float
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}
