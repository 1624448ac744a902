package types

import "strings"

// ListValue represents a MOO list. The backing slice is never mutated
// in place; every modifying operation returns a fresh list.
type ListValue struct {
	elements []Value
}

// NewList creates a new list value over the given elements
func NewList(elements []Value) ListValue {
	return ListValue{elements: elements}
}

// NewEmptyList creates an empty list
func NewEmptyList() ListValue {
	return ListValue{elements: []Value{}}
}

// NewObjList creates a list of object values from the given IDs
func NewObjList(ids []ObjID) ListValue {
	elements := make([]Value, len(ids))
	for i, id := range ids {
		elements[i] = NewObj(id)
	}
	return ListValue{elements: elements}
}

// Len returns the number of elements
func (l ListValue) Len() int {
	return len(l.elements)
}

// Get returns the element at the 1-based MOO index, or nil if out of range
func (l ListValue) Get(i int) Value {
	if i < 1 || i > len(l.elements) {
		return nil
	}
	return l.elements[i-1]
}

// Elements returns the backing slice for iteration. Callers must not
// modify it.
func (l ListValue) Elements() []Value {
	return l.elements
}

// Append returns a new list with v added at the end
func (l ListValue) Append(v Value) ListValue {
	elements := make([]Value, len(l.elements)+1)
	copy(elements, l.elements)
	elements[len(l.elements)] = v
	return ListValue{elements: elements}
}

// Contains reports whether v is a member of the list
func (l ListValue) Contains(v Value) bool {
	for _, e := range l.elements {
		if e.Equal(v) {
			return true
		}
	}
	return false
}

// Remove returns a new list with every element equal to v removed
func (l ListValue) Remove(v Value) ListValue {
	elements := make([]Value, 0, len(l.elements))
	for _, e := range l.elements {
		if !e.Equal(v) {
			elements = append(elements, e)
		}
	}
	return ListValue{elements: elements}
}

// String returns the MOO string representation
func (l ListValue) String() string {
	if len(l.elements) == 0 {
		return "{}"
	}
	parts := make([]string, len(l.elements))
	for i, e := range l.elements {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Type returns the MOO type
func (l ListValue) Type() TypeCode {
	return TypeList
}

// Equal compares two values for equality (deep comparison)
func (l ListValue) Equal(other Value) bool {
	o, ok := other.(ListValue)
	if !ok || len(l.elements) != len(o.elements) {
		return false
	}
	for i, e := range l.elements {
		if !e.Equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// Enlist wraps a value in a single-element list unless it already is a
// list. Mirrors the polymorphic handling of relation fields: a scalar
// object and a one-element list mean the same set.
func Enlist(v Value) ListValue {
	if l, ok := v.(ListValue); ok {
		return l
	}
	return NewList([]Value{v})
}
