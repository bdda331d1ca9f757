package jsonschema

import (
	"fmt"
	"strconv"

	"github.com/reoring/schemadoc/value"
)

// ParseJSON parses a schema from JSON. Duplicate keys are rejected.
func ParseJSON(data []byte) (*Schema, error) {
	doc, err := value.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	return Parse(doc)
}

// ParseYAML parses a schema from a single YAML document.
func ParseYAML(data []byte) (*Schema, error) {
	doc, err := value.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	return Parse(doc)
}

// MustParseJSON is ParseJSON for literals in tests and examples.
func MustParseJSON(s string) *Schema {
	sc, err := ParseJSON([]byte(s))
	if err != nil {
		panic(err)
	}
	return sc
}

// Child returns the sub-schema governing seg, which may name a property or an
// array index. Object lookups try properties, then the first matching
// patternProperties entry, then an additionalProperties schema. Array lookups
// use items, the tuple entry, or additionalItems. Nil means unconstrained.
func (s *Schema) Child(seg string) *Schema {
	if s == nil {
		return nil
	}
	if i, err := strconv.Atoi(seg); err == nil && i >= 0 && (s.Items != nil || s.TupleItems != nil) {
		return s.ItemSchema(i)
	}
	if ss := s.PropertySchemas(seg); len(ss) > 0 {
		return ss[0]
	}
	return nil
}
