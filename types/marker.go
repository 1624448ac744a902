package types

// ClearValue marks a clear property slot: the property inherits its
// value from the defining ancestor. It has no payload on disk.
type ClearValue struct{}

func (ClearValue) Type() TypeCode { return TypeClear }

func (ClearValue) String() string { return "<clear>" }

func (ClearValue) Equal(other Value) bool {
	_, ok := other.(ClearValue)
	return ok
}

// NoneValue marks an uninitialized variable slot. No payload on disk.
type NoneValue struct{}

func (NoneValue) Type() TypeCode { return TypeNone }

func (NoneValue) String() string { return "<none>" }

func (NoneValue) Equal(other Value) bool {
	_, ok := other.(NoneValue)
	return ok
}
