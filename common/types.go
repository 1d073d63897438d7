package common

import (
	"encoding/json"
	"strconv"
)

// Type identifies the data type of a column or literal.
type Type int8

const (
	// DefaultType marks an uninitialized Value.
	DefaultType Type = iota
	Int64Type
	Float64Type
	StringType
	BoolType
)

// String returns the short dtype name used in schemas and plan descriptions.
func (t Type) String() string {
	switch t {
	case Int64Type:
		return "i64"
	case Float64Type:
		return "f64"
	case StringType:
		return "str"
	case BoolType:
		return "bool"
	}
	return "unknown"
}

// MarshalText renders the type as its short name, so schemas serialize as
// readable JSON.
func (t Type) MarshalText() ([]byte, error) {
	if t == DefaultType {
		return nil, Errorf(SerializeError, "cannot serialize the default type")
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "i64":
		*t = Int64Type
	case "f64":
		*t = Float64Type
	case "str":
		*t = StringType
	case "bool":
		*t = BoolType
	default:
		return Errorf(SerializeError, "unknown type %q", string(text))
	}
	return nil
}

// Value represents a single data item: a typed scalar or a typed NULL.
// Values are immutable and cheap to copy.
type Value struct {
	t    Type
	null bool
	i    int64
	f    float64
	s    string
}

// NewInt64Value creates a new integer Value.
func NewInt64Value(v int64) Value {
	return Value{t: Int64Type, i: v}
}

// NewFloat64Value creates a new floating-point Value.
func NewFloat64Value(v float64) Value {
	return Value{t: Float64Type, f: v}
}

// NewStringValue creates a new string Value.
func NewStringValue(v string) Value {
	return Value{t: StringType, s: v}
}

// NewBoolValue creates a new boolean Value.
func NewBoolValue(v bool) Value {
	val := Value{t: BoolType}
	if v {
		val.i = 1
	}
	return val
}

// NewNullValue creates a NULL of the given type.
func NewNullValue(t Type) Value {
	Assert(t != DefaultType, "NULL requires a concrete type")
	return Value{t: t, null: true}
}

// IsNil returns true if the Value is uninitialized. This is NOT to be
// confused with NULL, which is a real value of a concrete type.
func (v Value) IsNil() bool {
	return v.t == DefaultType
}

// Type returns the type of the Value.
func (v Value) Type() Type {
	return v.t
}

// IsNull returns true if the Value is NULL.
func (v Value) IsNull() bool {
	return v.null
}

// Int64Value returns the underlying (non-NULL) integer.
func (v Value) Int64Value() int64 {
	Assert(v.t == Int64Type, "type mismatch in Int64Value")
	Assert(!v.null, "accessing value of NULL int")
	return v.i
}

// Float64Value returns the underlying (non-NULL) float.
func (v Value) Float64Value() float64 {
	Assert(v.t == Float64Type, "type mismatch in Float64Value")
	Assert(!v.null, "accessing value of NULL float")
	return v.f
}

// StringValue returns the underlying (non-NULL) string.
func (v Value) StringValue() string {
	Assert(v.t == StringType, "type mismatch in StringValue")
	Assert(!v.null, "accessing value of NULL string")
	return v.s
}

// BoolValue returns the underlying (non-NULL) boolean.
func (v Value) BoolValue() bool {
	Assert(v.t == BoolType, "type mismatch in BoolValue")
	Assert(!v.null, "accessing value of NULL bool")
	return v.i != 0
}

// Compare compares two Values of the same type.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
// NULL is considered less than non-NULL values; false less than true.
func (v Value) Compare(other Value) int {
	Assert(v.t == other.t, "type mismatch in comparison")

	if v.null && other.null {
		return 0
	}
	if v.null {
		return -1
	}
	if other.null {
		return 1
	}

	switch v.t {
	case Int64Type, BoolType:
		if v.i < other.i {
			return -1
		}
		if v.i > other.i {
			return 1
		}
		return 0
	case Float64Type:
		if v.f < other.f {
			return -1
		}
		if v.f > other.f {
			return 1
		}
		return 0
	case StringType:
		if v.s < other.s {
			return -1
		}
		if v.s > other.s {
			return 1
		}
		return 0
	}
	panic("unreachable")
}

// Equal reports whether two values have the same type, nullness, and payload.
func (v Value) Equal(other Value) bool {
	if v.t != other.t || v.null != other.null {
		return false
	}
	return v.null || v.Compare(other) == 0
}

// String renders the value the way a literal appears in a plan description:
// numbers bare, strings quoted, NULL as null.
func (v Value) String() string {
	if v.IsNil() {
		return "nil"
	}
	if v.null {
		return "null"
	}
	switch v.t {
	case Int64Type:
		return strconv.FormatInt(v.i, 10)
	case Float64Type:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case StringType:
		return strconv.Quote(v.s)
	case BoolType:
		if v.i != 0 {
			return "true"
		}
		return "false"
	}
	return "unknown"
}

// valueJSON is the wire form of a Value. Each type keeps its own field so
// integers survive the round trip exactly instead of passing through float64.
type valueJSON struct {
	Type  Type     `json:"type"`
	Null  bool     `json:"null,omitempty"`
	Int   *int64   `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`
	Str   *string  `json:"str,omitempty"`
	Bool  *bool    `json:"bool,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNil() {
		return nil, Errorf(SerializeError, "cannot serialize an uninitialized value")
	}
	out := valueJSON{Type: v.t, Null: v.null}
	if !v.null {
		switch v.t {
		case Int64Type:
			out.Int = &v.i
		case Float64Type:
			out.Float = &v.f
		case StringType:
			out.Str = &v.s
		case BoolType:
			b := v.i != 0
			out.Bool = &b
		}
	}
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Type == DefaultType {
		return Errorf(SerializeError, "value with unknown type")
	}
	if in.Null {
		*v = NewNullValue(in.Type)
		return nil
	}
	switch in.Type {
	case Int64Type:
		if in.Int == nil {
			return Errorf(SerializeError, "i64 value missing payload")
		}
		*v = NewInt64Value(*in.Int)
	case Float64Type:
		if in.Float == nil {
			return Errorf(SerializeError, "f64 value missing payload")
		}
		*v = NewFloat64Value(*in.Float)
	case StringType:
		if in.Str == nil {
			return Errorf(SerializeError, "str value missing payload")
		}
		*v = NewStringValue(*in.Str)
	case BoolType:
		if in.Bool == nil {
			return Errorf(SerializeError, "bool value missing payload")
		}
		*v = NewBoolValue(*in.Bool)
	default:
		return Errorf(SerializeError, "value with unknown type")
	}
	return nil
}
