// Package value defines the closed tagged value type flowing through the
// expression engine.
//
// Every value an expression can observe or produce has one of a fixed set of
// shapes: no-value, null, boolean, number, string, array, object, or an
// opaque host reference. Sanitization and allow-listing operate over this
// finite set instead of ad hoc runtime type inspection.
package value

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind string

const (
	// KindNoValue is the soft "no value" sentinel returned for ordinary
	// missing-data conditions (unknown identifier, absent property,
	// out-of-range index). It is not an error. The zero Value has this kind.
	KindNoValue Kind = ""

	KindNull    Kind = "null"
	KindBool    Kind = "bool"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindHostRef Kind = "hostref"
)

// HostRef is a read-only adapter exposing an opaque host value to
// expressions. Implementations forward allow-listed property reads only and
// must never expose functions. The sandbox boundary is this interface; there
// is no other way for an expression to observe a host value.
type HostRef interface {
	// Get returns the named property, or ok=false if the property is not
	// allow-listed or not present.
	Get(name string) (Value, bool)
}

// Value is an immutable tagged value. Construct values through the
// constructor functions; the zero Value is the "no value" sentinel.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
	host HostRef
}

// NoValue returns the soft "no value" sentinel.
func NoValue() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value. NaN is representable and participates in
// the soft-failure arithmetic rules.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array value. The slice is owned by the Value afterwards.
func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

// Object returns an object value. The map is owned by the Value afterwards.
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// Host returns an opaque host reference value.
func Host(ref HostRef) Value { return Value{kind: KindHostRef, host: ref} }

// Kind returns the shape tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNoValue reports whether the value is the soft sentinel.
func (v Value) IsNoValue() bool { return v.kind == KindNoValue }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNaN reports whether the value is the numeric NaN.
func (v Value) IsNaN() bool { return v.kind == KindNumber && math.IsNaN(v.n) }

// IsSoft reports whether the value is a soft-failure outcome: the no-value
// sentinel or NaN.
func (v Value) IsSoft() bool { return v.IsNoValue() || v.IsNaN() }

// BoolVal returns the boolean payload. Valid only for KindBool.
func (v Value) BoolVal() bool { return v.b }

// NumberVal returns the numeric payload. Valid only for KindNumber.
func (v Value) NumberVal() float64 { return v.n }

// StringVal returns the string payload. Valid only for KindString.
func (v Value) StringVal() string { return v.s }

// Len returns the element count for arrays, the rune count for strings, and
// the field count for objects; 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindString:
		return len([]rune(v.s))
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the array element at i, or ok=false when out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return NoValue(), false
	}
	return v.arr[i], true
}

// Field returns the named object field, or ok=false when absent.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return NoValue(), false
	}
	val, ok := v.obj[name]
	return val, ok
}

// FieldNames returns the object's field names in sorted order.
func (v Value) FieldNames() []string {
	if v.kind != KindObject {
		return nil
	}
	names := make([]string, 0, len(v.obj))
	for name := range v.obj {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HostVal returns the host reference payload. Valid only for KindHostRef.
func (v Value) HostVal() HostRef { return v.host }

// Truthy returns the boolean interpretation of the value: no-value, null,
// false, zero, NaN, and the empty string are falsy; everything else is
// truthy. Arrays and objects are truthy even when empty, matching the
// source language the engine sandboxes.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNoValue, KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString:
		return v.s != ""
	default:
		return true
	}
}

// AsNumber coerces the value to a number: numbers pass through, booleans
// become 0/1, null becomes 0, and numeric strings parse. Everything else,
// including the no-value sentinel, yields NaN with ok=false.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, !math.IsNaN(v.n)
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindNull:
		return 0, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return math.NaN(), false
		}
		return n, true
	default:
		return math.NaN(), false
	}
}

// Render returns the interpolation string form of the value. No-value and
// null render as the empty string so failed or absent placeholders disappear
// from templates.
func (v Value) Render() string {
	switch v.kind {
	case KindNoValue, KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.Render()
		}
		return strings.Join(parts, ",")
	case KindObject:
		var sb strings.Builder
		sb.WriteString("{")
		for i, name := range v.FieldNames() {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(name)
			sb.WriteString(":")
			sb.WriteString(v.obj[name].Render())
		}
		sb.WriteString("}")
		return sb.String()
	case KindHostRef:
		return "[host object]"
	default:
		return ""
	}
}

// FormatNumber formats a float the way template output expects: integral
// values print without a decimal point, NaN prints as "NaN".
func FormatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Equal reports deep structural equality between two values. NaN is not
// equal to anything, including itself.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNoValue, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n // NaN != NaN by float semantics
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for name, av := range a.obj {
			bv, ok := b.obj[name]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindHostRef:
		return a.host == b.host
	default:
		return false
	}
}
