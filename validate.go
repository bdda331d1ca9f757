package schemadoc

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

// Validate checks v against s and returns every violation found, or nil when
// v conforms. Issue paths are dot-joined, the root being "".
func Validate(v value.Value, s *jsonschema.Schema) Issues {
	return ValidateAt(v, s, "")
}

// ValidateAt is Validate with issue paths prefixed by path.
func ValidateAt(v value.Value, s *jsonschema.Schema, path string) Issues {
	return validateNode(v, s, NewPathRef(path, "."))
}

// validateNode runs the rule groups in a fixed order: type, array, object,
// string, number, enum, composition. Groups do not short-circuit each other.
func validateNode(v value.Value, s *jsonschema.Schema, at PathRef) Issues {
	if s == nil {
		return nil
	}
	var iss Issues
	iss = append(iss, checkType(v, s, at)...)
	switch t := v.(type) {
	case value.Array:
		iss = append(iss, checkArray(t, s, at)...)
	case value.Object:
		iss = append(iss, checkObject(t, s, at)...)
	case value.String:
		iss = append(iss, checkString(t, s, at)...)
	case value.Number:
		iss = append(iss, checkNumber(t, s, at)...)
	}
	iss = append(iss, checkEnum(v, s, at)...)
	iss = append(iss, checkComposition(v, s, at)...)
	return iss
}

func conforms(v value.Value, s *jsonschema.Schema, at PathRef) bool {
	return len(validateNode(v, s, at)) == 0
}

func checkType(v value.Value, s *jsonschema.Schema, at PathRef) Issues {
	if len(s.Types) == 0 {
		return nil
	}
	for _, t := range s.Types {
		if typeMatches(v, t) {
			return nil
		}
	}
	return Issues{at.Issue(CodeInvalidType, "type", "expected", strings.Join(s.Types, "|"), "got", value.TypeName(v))}
}

func typeMatches(v value.Value, typ string) bool {
	switch typ {
	case "any":
		return true
	case "integer":
		return value.IsInteger(v)
	case "number":
		_, ok := v.(value.Number)
		return ok
	case "string", "boolean", "null", "array", "object":
		return v != nil && v.Kind().String() == typ
	}
	return false
}

func checkArray(arr value.Array, s *jsonschema.Schema, at PathRef) Issues {
	var iss Issues
	switch {
	case s.Items != nil:
		for i, e := range arr {
			iss = append(iss, validateNode(e, s.Items, at.Index(i))...)
		}
	case s.TupleItems != nil:
		for i, e := range arr {
			if i < len(s.TupleItems) {
				iss = append(iss, validateNode(e, s.TupleItems[i], at.Index(i))...)
				continue
			}
			if s.AdditionalItems.Forbidden {
				iss = append(iss, at.Issue(CodeAdditionalItems, "additionalItems", "max", len(s.TupleItems), "got", len(arr)))
				break
			}
			iss = append(iss, validateNode(e, s.AdditionalItems.Schema, at.Index(i))...)
		}
	}
	if s.MinItems != nil && len(arr) < *s.MinItems {
		iss = append(iss, at.Issue(CodeTooShort, "minItems", "min", *s.MinItems, "unit", "items", "got", len(arr)))
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		iss = append(iss, at.Issue(CodeTooLong, "maxItems", "max", *s.MaxItems, "unit", "items", "got", len(arr)))
	}
	if s.UniqueItems {
	scan:
		for i := 0; i < len(arr); i++ {
			for j := i + 1; j < len(arr); j++ {
				if value.Equal(arr[i], arr[j]) {
					iss = append(iss, at.Issue(CodeNotUnique, "uniqueItems", "first", i, "second", j))
					break scan
				}
			}
		}
	}
	return iss
}

func checkObject(obj value.Object, s *jsonschema.Schema, at PathRef) Issues {
	var iss Issues
	if s.MinProperties != nil && len(obj) < *s.MinProperties {
		iss = append(iss, at.Issue(CodeTooShort, "minProperties", "min", *s.MinProperties, "unit", "properties", "got", len(obj)))
	}
	if s.MaxProperties != nil && len(obj) > *s.MaxProperties {
		iss = append(iss, at.Issue(CodeTooLong, "maxProperties", "max", *s.MaxProperties, "unit", "properties", "got", len(obj)))
	}
	for _, name := range s.Required {
		if !obj.Has(name) {
			iss = append(iss, at.Field(name).Issue(CodeRequired, "required", "property", name))
		}
	}
	for _, key := range obj.Keys() {
		if dep, ok := s.Dependencies[key]; ok {
			for _, need := range dep.Names {
				if !obj.Has(need) {
					iss = append(iss, at.Issue(CodeDependency, "dependencies", "key", key, "missing", need))
				}
			}
			if dep.Schema != nil {
				iss = append(iss, validateNode(obj, dep.Schema, at)...)
			}
		}
		if s.AdditionalProperties.Forbidden && !s.Declares(key) {
			iss = append(iss, at.Field(key).Issue(CodeUnknownKey, "additionalProperties", "key", key))
			continue
		}
		for _, ps := range s.PropertySchemas(key) {
			iss = append(iss, validateNode(obj[key], ps, at.Field(key))...)
		}
	}
	return iss
}

func checkString(str value.String, s *jsonschema.Schema, at PathRef) Issues {
	var iss Issues
	n := utf8.RuneCountInString(string(str))
	if s.MaxLength != nil && n > *s.MaxLength {
		iss = append(iss, at.Issue(CodeTooLong, "maxLength", "max", *s.MaxLength, "unit", "characters", "got", n))
	}
	if s.MinLength != nil && n < *s.MinLength {
		iss = append(iss, at.Issue(CodeTooShort, "minLength", "min", *s.MinLength, "unit", "characters", "got", n))
	}
	if s.Pattern != nil && !s.Pattern.MatchString(string(str)) {
		iss = append(iss, at.Issue(CodePattern, "pattern", "pattern", s.Pattern.String()))
	}
	return iss
}

func checkNumber(num value.Number, s *jsonschema.Schema, at PathRef) Issues {
	var iss Issues
	n := float64(num)
	if s.MultipleOf != nil {
		if q := n / *s.MultipleOf; q != math.Trunc(q) {
			iss = append(iss, at.Issue(CodeNotMultiple, "multipleOf", "multipleOf", value.FormatNumber(value.Number(*s.MultipleOf))))
		}
	}
	if s.Minimum != nil {
		if s.ExclusiveMinimum.Strict && n <= *s.Minimum {
			iss = append(iss, at.Issue(CodeTooSmall, "exclusiveMinimum", "op", ">", "limit", value.FormatNumber(value.Number(*s.Minimum))))
		} else if !s.ExclusiveMinimum.Strict && n < *s.Minimum {
			iss = append(iss, at.Issue(CodeTooSmall, "minimum", "op", ">=", "limit", value.FormatNumber(value.Number(*s.Minimum))))
		}
	}
	if b := s.ExclusiveMinimum.Bound; b != nil && n <= *b {
		iss = append(iss, at.Issue(CodeTooSmall, "exclusiveMinimum", "op", ">", "limit", value.FormatNumber(value.Number(*b))))
	}
	if s.Maximum != nil {
		if s.ExclusiveMaximum.Strict && n >= *s.Maximum {
			iss = append(iss, at.Issue(CodeTooBig, "exclusiveMaximum", "op", "<", "limit", value.FormatNumber(value.Number(*s.Maximum))))
		} else if !s.ExclusiveMaximum.Strict && n > *s.Maximum {
			iss = append(iss, at.Issue(CodeTooBig, "maximum", "op", "<=", "limit", value.FormatNumber(value.Number(*s.Maximum))))
		}
	}
	if b := s.ExclusiveMaximum.Bound; b != nil && n >= *b {
		iss = append(iss, at.Issue(CodeTooBig, "exclusiveMaximum", "op", "<", "limit", value.FormatNumber(value.Number(*b))))
	}
	return iss
}

func checkEnum(v value.Value, s *jsonschema.Schema, at PathRef) Issues {
	if !s.HasEnum {
		return nil
	}
	for _, e := range s.Enum {
		if value.Equal(v, e) {
			return nil
		}
	}
	return Issues{at.Issue(CodeInvalidEnum, "enum")}
}

func checkComposition(v value.Value, s *jsonschema.Schema, at PathRef) Issues {
	var iss Issues
	for _, branch := range s.AllOf {
		iss = append(iss, validateNode(v, branch, at)...)
	}
	if len(s.AnyOf) > 0 {
		matched := false
		for _, branch := range s.AnyOf {
			if conforms(v, branch, at) {
				matched = true
				break
			}
		}
		if !matched {
			iss = append(iss, at.Issue(CodeAnyOf, "anyOf"))
		}
	}
	if len(s.OneOf) > 0 {
		matched := 0
		for _, branch := range s.OneOf {
			if conforms(v, branch, at) {
				matched++
			}
		}
		if matched != 1 {
			iss = append(iss, at.Issue(CodeOneOf, "oneOf", "matched", matched))
		}
	}
	if s.Not != nil && conforms(v, s.Not, at) {
		iss = append(iss, at.Issue(CodeNot, "not"))
	}
	return iss
}
