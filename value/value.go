// Package value defines the instance tree that schemas describe: a closed set of
// JSON-like variants plus structural helpers (clone, equality, conversion) and
// JSON/YAML decoders.
//
// A nil Value stands for "undefined": a location that holds nothing. Containers
// never store nil; decoders and converters map JSON null to Null{}.
package value

import (
	"math"
	"sort"
	"strconv"
)

// Kind enumerates the instance variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON Schema type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one node of an instance tree. The implementations are exactly the
// types declared in this package.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// Null is the JSON null.
	Null struct{}
	// Bool is a JSON boolean.
	Bool bool
	// Number is a JSON number. Integers are numbers without a fractional part.
	Number float64
	// String is a JSON string.
	String string
	// Array is an ordered sequence of values.
	Array []Value
	// Object maps keys to values; key order is irrelevant.
	Object map[string]Value
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// MarshalJSON renders Null as the JSON literal rather than an empty object.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// TypeName reports the kind name of v, or "undefined" for nil.
func TypeName(v Value) string {
	if v == nil {
		return "undefined"
	}
	return v.Kind().String()
}

// IsContainer reports whether v is an Array or an Object.
func IsContainer(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return true
	}
	return false
}

// IsInteger reports whether v is a Number without a fractional part.
func IsInteger(v Value) bool {
	n, ok := v.(Number)
	if !ok {
		return false
	}
	f := float64(n)
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// Keys returns the keys of o in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}
