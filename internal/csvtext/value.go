package csvtext

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value is a loosely typed cell value: String, Number, Bool, Null, List or Map.
type Value interface {
	csvValue()
}

type (
	String string
	Number float64
	Bool   bool
	Null   struct{}
	List   []Value
	Map    map[string]Value
)

func (String) csvValue() {}
func (Number) csvValue() {}
func (Bool) csvValue()   {}
func (Null) csvValue()   {}
func (List) csvValue()   {}
func (Map) csvValue()    {}

// ListSeparator joins list elements inside a single cell.
const ListSeparator = " | "

// Of converts a native Go value to a Value. Nil pointers become Null and
// unsupported types are JSON-encoded into a String.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case string:
		return String(x)
	case *string:
		if x == nil {
			return Null{}
		}
		return String(*x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case float64:
		return Number(x)
	case *float64:
		if x == nil {
			return Null{}
		}
		return Number(*x)
	case *int:
		if x == nil {
			return Null{}
		}
		return Number(float64(*x))
	case []string:
		l := make(List, len(x))
		for i, s := range x {
			l[i] = String(s)
		}
		return l
	case []any:
		l := make(List, len(x))
		for i, e := range x {
			l[i] = Of(e)
		}
		return l
	case map[string]any:
		m := make(Map, len(x))
		for k, e := range x {
			m[k] = Of(e)
		}
		return m
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Null{}
		}
		return String(b)
	}
}

// Text renders v as unescaped cell text.
func Text(v Value) string {
	switch x := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(x)
	case Number:
		return strconv.FormatFloat(float64(x), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(x))
	case List:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Text(e)
		}
		return strings.Join(parts, ListSeparator)
	case Map:
		b, err := json.Marshal(native(x))
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// Escape renders v as one CSV field.
func Escape(v Value) string {
	return EscapeString(Text(v))
}

// EscapeString quotes s when it contains a comma, a double quote or a line
// break, doubling any quotes inside. Other strings are returned unchanged.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// native converts a Value tree back to plain Go values for JSON encoding.
func native(v Value) any {
	switch x := v.(type) {
	case String:
		return string(x)
	case Number:
		return float64(x)
	case Bool:
		return bool(x)
	case List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = native(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = native(e)
		}
		return out
	default:
		return nil
	}
}
