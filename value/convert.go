package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Clone returns a deep structural copy of v. Instance trees are acyclic by
// contract; cyclic input is not supported.
func Clone(v Value) Value {
	switch t := v.(type) {
	case Array:
		if t == nil {
			return Array{}
		}
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case Object:
		out := make(Object, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	default:
		// scalars are immutable values
		return v
	}
}

// Equal reports structural deep equality. It is type sensitive: String("1")
// never equals Number(1). Two nil values are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case Number:
		return x == b.(Number)
	case String:
		return x == b.(String)
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y := b.(Object)
		if len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// numberLike matches json.Number from encoding/json and goccy/go-json alike.
type numberLike interface {
	Float64() (float64, error)
	String() string
}

// FromAny converts a decoded Go tree into a Value. Supported inputs are nil,
// bool, string, every Go numeric kind, json.Number, []any, map[string]any,
// map[any]any with string keys (as produced by YAML decoders) and Values.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return Clone(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int8:
		return Number(t), nil
	case int16:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case uint:
		return Number(t), nil
	case uint8:
		return Number(t), nil
	case uint16:
		return Number(t), nil
	case uint32:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case numberLike:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("value: invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []any:
		out := make(Array, len(t))
		for i, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("value: [%d]: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(Object, len(t))
		for k, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("value: %s: %w", k, err)
			}
			out[k] = ev
		}
		return out, nil
	case map[any]any:
		out := make(Object, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("value: non-string object key %v (%T)", k, k)
			}
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("value: %s: %w", ks, err)
			}
			out[ks] = ev
		}
		return out, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

// fromReflect handles typed slices and string-keyed maps such as []string or
// map[string]int.
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Array, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("value: [%d]: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := FromAny(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("value: %s: %w", iter.Key().String(), err)
			}
			out[iter.Key().String()] = ev
		}
		return out, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromAny(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("value: unsupported Go type %s", rv.Type())
}

// MustFromAny is FromAny for literals known to be convertible; it panics on
// error.
func MustFromAny(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out
}

// ToAny converts v into plain Go values (nil, bool, float64, string, []any,
// map[string]any). A nil Value converts to nil.
func ToAny(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		return float64(t)
	case String:
		return string(t)
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToAny(e)
		}
		return out
	case Object:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = ToAny(e)
		}
		return out
	}
	return nil
}

// FormatNumber renders n the way JSON encoders do: integers without an
// exponent or fraction.
func FormatNumber(n Number) string {
	f := float64(n)
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
