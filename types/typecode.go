package types

// TypeCode is the integer tag a value carries in the on-disk format.
// The numeric values are fixed by the database file format and must
// never be renumbered.
type TypeCode int

const (
	TypeInt     TypeCode = 0
	TypeObj     TypeCode = 1
	TypeStr     TypeCode = 2
	TypeErr     TypeCode = 3
	TypeList    TypeCode = 4
	TypeClear   TypeCode = 5 // clear property slot
	TypeNone    TypeCode = 6 // uninitialized variable
	TypeCatch   TypeCode = 7 // stack marker inside suspended tasks
	TypeFinally TypeCode = 8 // stack marker inside suspended tasks
	TypeFloat   TypeCode = 9
)

// String returns the string representation of the type code
func (t TypeCode) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeObj:
		return "OBJ"
	case TypeStr:
		return "STR"
	case TypeErr:
		return "ERR"
	case TypeList:
		return "LIST"
	case TypeClear:
		return "CLEAR"
	case TypeNone:
		return "NONE"
	case TypeCatch:
		return "CATCH"
	case TypeFinally:
		return "FINALLY"
	case TypeFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}
