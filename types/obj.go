package types

import "fmt"

// ObjValue represents a MOO object reference
type ObjValue struct {
	id ObjID
}

// NewObj creates a new object value
func NewObj(id ObjID) ObjValue {
	return ObjValue{id: id}
}

// String returns the MOO string representation
func (o ObjValue) String() string {
	return fmt.Sprintf("#%d", o.id)
}

// Type returns the MOO type
func (o ObjValue) Type() TypeCode {
	return TypeObj
}

// Equal compares two values for equality
func (o ObjValue) Equal(other Value) bool {
	v, ok := other.(ObjValue)
	return ok && o.id == v.id
}

// ID returns the object ID
func (o ObjValue) ID() ObjID {
	return o.id
}
