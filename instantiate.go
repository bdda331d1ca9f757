package schemadoc

import (
	"sort"

	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

// Instantiate synthesizes a default instance for s. With requiredOnly set,
// object properties not listed in "required" are left out; otherwise every
// declared property is filled in.
//
// Each schema node is handled by the first matching rule:
//
//   - type object with properties: an Object of the instantiated properties,
//     with any allOf branches merged over it
//   - allOf: the branch results merged, later branches overwriting earlier keys
//   - type array: minItems elements instantiated from items (none without items)
//   - enum: default when present, else the first member, else undefined
//   - type object without properties: default when present, else {}
//   - primitive type: default when present, else the zero value
//
// A union type is defaulted as its first listed type. A schema without a
// usable type yields nil (undefined).
func Instantiate(s *jsonschema.Schema, requiredOnly bool) value.Value {
	if s == nil {
		return nil
	}
	typ := firstType(s)

	switch {
	case typ == "object" && s.Properties != nil:
		var out value.Value = instantiateProperties(s, requiredOnly)
		for _, branch := range s.AllOf {
			out = mergeDefault(out, instantiateBranch(branch, requiredOnly))
		}
		return out

	case len(s.AllOf) > 0:
		var out value.Value
		for _, branch := range s.AllOf {
			out = mergeDefault(out, Instantiate(branch, requiredOnly))
		}
		return out

	case typ == "array":
		n := 0
		if s.MinItems != nil {
			n = *s.MinItems
		}
		arr := value.Array{}
		if s.Items == nil && s.TupleItems == nil {
			return arr
		}
		for i := 0; i < n; i++ {
			item := s.ItemSchema(i)
			if item == nil {
				break
			}
			v := Instantiate(item, requiredOnly)
			if v == nil {
				v = value.Null{}
			}
			arr = append(arr, v)
		}
		return arr

	case s.HasEnum:
		if s.Default != nil {
			return value.Clone(s.Default)
		}
		if len(s.Enum) == 0 {
			return nil
		}
		return value.Clone(s.Enum[0])

	case typ == "object":
		if s.Default != nil {
			return value.Clone(s.Default)
		}
		return value.Object{}
	}

	zero, ok := primitiveZero(typ)
	if !ok {
		return nil
	}
	if s.Default != nil {
		return value.Clone(s.Default)
	}
	return zero
}

func instantiateProperties(s *jsonschema.Schema, requiredOnly bool) value.Object {
	obj := value.Object{}
	for _, name := range sortedKeys(s.Properties) {
		if requiredOnly && !s.IsRequired(name) {
			continue
		}
		if v := Instantiate(s.Properties[name], requiredOnly); v != nil {
			obj[name] = v
		}
	}
	return obj
}

// instantiateBranch defaults an allOf branch of an object schema. An untyped
// branch that declares properties contributes them as an object.
func instantiateBranch(b *jsonschema.Schema, requiredOnly bool) value.Value {
	if v := Instantiate(b, requiredOnly); v != nil {
		return v
	}
	if b != nil && b.Properties != nil {
		return instantiateProperties(b, requiredOnly)
	}
	return nil
}

func firstType(s *jsonschema.Schema) string {
	if len(s.Types) == 0 {
		return ""
	}
	return s.Types[0]
}

func primitiveZero(typ string) (value.Value, bool) {
	switch typ {
	case "string":
		return value.String(""), true
	case "number", "integer":
		return value.Number(0), true
	case "boolean":
		return value.Bool(false), true
	case "null":
		return value.Null{}, true
	}
	return nil, false
}

// mergeDefault folds next into acc: two objects merge key by key with next
// winning; anything else is replaced by next unless next is undefined.
func mergeDefault(acc, next value.Value) value.Value {
	if next == nil {
		return acc
	}
	a, aok := acc.(value.Object)
	n, nok := next.(value.Object)
	if !aok || !nok {
		return next
	}
	for k, v := range n {
		a[k] = v
	}
	return a
}

func sortedKeys(m map[string]*jsonschema.Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
