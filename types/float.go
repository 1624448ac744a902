package types

import (
	"strconv"
	"strings"
)

// FloatValue represents a MOO floating point number
type FloatValue struct {
	Val float64
}

// NewFloat creates a new FloatValue
func NewFloat(val float64) FloatValue {
	return FloatValue{Val: val}
}

// Type returns the type code for floats
func (f FloatValue) Type() TypeCode {
	return TypeFloat
}

// String returns the MOO literal representation.
// Whole numbers still show a decimal point (3.0, not 3).
func (f FloatValue) String() string {
	s := strconv.FormatFloat(f.Val, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Equal checks deep equality
func (f FloatValue) Equal(other Value) bool {
	o, ok := other.(FloatValue)
	return ok && f.Val == o.Val
}
