package types

// ErrorCode represents a MOO error constant (E_TYPE, E_DIV, ...)
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrType
	ErrDiv
	ErrPerm
	ErrPropNF
	ErrVerbNF
	ErrVarNF
	ErrInvInd
	ErrRecMove
	ErrMaxRec
	ErrRange
	ErrArgs
	ErrNAcc
	ErrInvArg
	ErrQuota
	ErrFloat
	ErrFile
	ErrExec
)

// String returns the MOO name for an error code
func (e ErrorCode) String() string {
	names := []string{
		"E_NONE", "E_TYPE", "E_DIV", "E_PERM", "E_PROPNF", "E_VERBNF",
		"E_VARNF", "E_INVIND", "E_RECMOVE", "E_MAXREC", "E_RANGE",
		"E_ARGS", "E_NACC", "E_INVARG", "E_QUOTA", "E_FLOAT", "E_FILE",
		"E_EXEC",
	}
	if e >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "E_UNKNOWN"
}

// ErrValue represents a MOO error value
type ErrValue struct {
	code ErrorCode
}

// NewErr creates a new error value
func NewErr(code ErrorCode) ErrValue {
	return ErrValue{code: code}
}

// String returns the MOO string representation
func (e ErrValue) String() string {
	return e.code.String()
}

// Type returns the MOO type
func (e ErrValue) Type() TypeCode {
	return TypeErr
}

// Equal compares two values for equality
func (e ErrValue) Equal(other Value) bool {
	o, ok := other.(ErrValue)
	return ok && e.code == o.code
}

// Code returns the error code
func (e ErrValue) Code() ErrorCode {
	return e.code
}
