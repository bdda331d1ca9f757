// Package jsonschema holds the parsed form of the supported JSON Schema keyword
// subset:
//
//	type properties required items additionalItems additionalProperties
//	patternProperties default enum minItems maxItems uniqueItems minLength
//	maxLength pattern minimum maximum exclusiveMinimum exclusiveMaximum
//	multipleOf minProperties maxProperties dependencies allOf anyOf oneOf not
//
// Any other keyword ($ref, definitions, if/then/else, format, ...) is ignored
// without error. A Schema is immutable once parsed.
package jsonschema

import (
	"github.com/dlclark/regexp2"

	"github.com/reoring/schemadoc/value"
)

// Schema is a parsed schema node.
type Schema struct {
	raw value.Object

	// Core
	Types      []string    // nil when "type" is absent; a single type is a one-element slice
	Default    value.Value // nil when "default" is absent
	Enum       []value.Value
	HasEnum    bool // "enum" is present, possibly empty
	Properties map[string]*Schema

	// Object
	Required             []string
	PatternProperties    []PatternSchema
	AdditionalProperties Additional
	MinProperties        *int
	MaxProperties        *int
	Dependencies         map[string]Dependency

	// Array
	Items           *Schema   // "items" given as a single schema
	TupleItems      []*Schema // "items" given as an array of schemas
	AdditionalItems Additional
	MinItems        *int
	MaxItems        *int
	UniqueItems     bool

	// String
	MinLength *int
	MaxLength *int
	Pattern   *Pattern

	// Number
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum Exclusive
	ExclusiveMaximum Exclusive
	MultipleOf       *float64

	// Composition
	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema
}

// Additional is the parsed form of additionalItems/additionalProperties: the
// keyword is either a boolean or a schema.
type Additional struct {
	Forbidden bool    // the keyword is false
	Schema    *Schema // the keyword is a schema
}

// Exclusive is the parsed form of exclusiveMinimum/exclusiveMaximum. Draft 4
// uses a boolean that toggles the sibling bound to strict; a number is taken
// as a bound of its own.
type Exclusive struct {
	Strict bool     // boolean form set to true
	Bound  *float64 // numeric form
}

// Dependency is one entry of "dependencies": either property names that must
// accompany the key or a schema the whole instance must satisfy.
type Dependency struct {
	Names  []string
	Schema *Schema
}

// PatternSchema pairs a patternProperties regex with its schema.
type PatternSchema struct {
	Pattern *Pattern
	Schema  *Schema
}

// Pattern is an ECMAScript regular expression compiled once at parse time.
type Pattern struct {
	Source string
	re     *regexp2.Regexp
}

func compilePattern(src string) (*Pattern, error) {
	re, err := regexp2.Compile(src, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	return &Pattern{Source: src, re: re}, nil
}

// MatchString reports whether s contains a match of the pattern anywhere.
func (p *Pattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

func (p *Pattern) String() string { return p.Source }

// Raw returns a copy of the schema document this node was parsed from.
func (s *Schema) Raw() value.Object {
	return value.Clone(s.raw).(value.Object)
}

// HasType reports whether "type" lists name.
func (s *Schema) HasType(name string) bool {
	for _, t := range s.Types {
		if t == name {
			return true
		}
	}
	return false
}

// IsRequired reports whether name is listed in "required".
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Declares reports whether key is named in "properties" or matched by a
// "patternProperties" regex.
func (s *Schema) Declares(key string) bool {
	if _, ok := s.Properties[key]; ok {
		return true
	}
	for _, pp := range s.PatternProperties {
		if pp.Pattern.MatchString(key) {
			return true
		}
	}
	return false
}

// PropertySchemas returns every schema that governs key: the named property,
// each matching pattern, or additionalProperties when nothing else matched.
func (s *Schema) PropertySchemas(key string) []*Schema {
	var out []*Schema
	if ps, ok := s.Properties[key]; ok {
		out = append(out, ps)
	}
	for _, pp := range s.PatternProperties {
		if pp.Pattern.MatchString(key) {
			out = append(out, pp.Schema)
		}
	}
	if len(out) == 0 && s.AdditionalProperties.Schema != nil {
		out = append(out, s.AdditionalProperties.Schema)
	}
	return out
}

// ItemSchema returns the schema governing array element i, or nil.
func (s *Schema) ItemSchema(i int) *Schema {
	if s.Items != nil {
		return s.Items
	}
	if s.TupleItems != nil {
		if i < len(s.TupleItems) {
			return s.TupleItems[i]
		}
		return s.AdditionalItems.Schema
	}
	return nil
}
