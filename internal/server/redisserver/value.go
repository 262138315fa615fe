package redisserver

// Type identifies the shape of a Value. The constants are the RESP
// type prefix bytes.
type Type byte

const (
	TypeSimpleString Type = '+'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

// String returns a human-readable name for the type.
func (t Type) String() string {
	switch t {
	case TypeSimpleString:
		return "simple-string"
	case TypeBulkString:
		return "bulk-string"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one decoded protocol element.
//
// Null is meaningful for bulk strings and arrays only and marks the
// protocol-level "absent" value ($-1 / *-1), which is distinct from an
// empty string or an empty array.
type Value struct {
	Type  Type
	Str   string
	Elems []Value
	Null  bool
}

// SimpleString returns a simple string value.
func SimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: s}
}

// BulkString returns a non-null bulk string value.
func BulkString(s string) Value {
	return Value{Type: TypeBulkString, Str: s}
}

// NullBulkString returns the null bulk string.
func NullBulkString() Value {
	return Value{Type: TypeBulkString, Null: true}
}

// Array returns a non-null array holding elems. A call without
// arguments yields an empty, non-null array.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Type: TypeArray, Elems: elems}
}

// NullArray returns the null array.
func NullArray() Value {
	return Value{Type: TypeArray, Null: true}
}

// BulkText returns the payload of a concrete bulk string.
// ok is false for any other shape, including the null bulk string.
func (v Value) BulkText() (text string, ok bool) {
	if v.Type != TypeBulkString || v.Null {
		return "", false
	}
	return v.Str, true
}

// IsRequest reports whether v is a non-null array whose first element
// is a concrete bulk string, i.e. something a command can be read from.
func (v Value) IsRequest() bool {
	if v.Type != TypeArray || v.Null || len(v.Elems) == 0 {
		return false
	}
	_, ok := v.Elems[0].BulkText()
	return ok
}
