package jsonschema

import (
	"fmt"
	"math"
	"strings"

	"github.com/reoring/schemadoc/value"
)

// ParseError reports a supported keyword carrying a value of the wrong shape.
type ParseError struct {
	Path    string // dot-joined location of the schema node, "" for the root
	Keyword string
	Msg     string
}

func (e *ParseError) Error() string {
	loc := e.Keyword
	if e.Path != "" {
		loc = e.Path + "." + e.Keyword
	}
	return fmt.Sprintf("jsonschema: %s: %s", loc, e.Msg)
}

// Parse builds a Schema from its document form. The document must be an
// object; sub-schemas are parsed recursively.
func Parse(doc value.Value) (*Schema, error) {
	return parseNode(doc, "")
}

// MustParse is Parse for schema literals; it panics on error.
func MustParse(doc value.Value) *Schema {
	s, err := Parse(doc)
	if err != nil {
		panic(err)
	}
	return s
}

func parseNode(doc value.Value, path string) (*Schema, error) {
	obj, ok := doc.(value.Object)
	if !ok {
		return nil, &ParseError{Path: parentPath(path), Keyword: lastKey(path), Msg: "schema must be an object, got " + value.TypeName(doc)}
	}
	p := &parser{obj: obj, path: path}
	s := &Schema{raw: obj}

	p.types(&s.Types)
	if d, ok := obj["default"]; ok {
		s.Default = value.Clone(d)
	}
	if e, ok := obj["enum"]; ok {
		arr, ok := e.(value.Array)
		if !ok {
			p.fail("enum", "expected array")
		} else {
			s.HasEnum = true
			s.Enum = value.Clone(arr).(value.Array)
		}
	}
	s.Properties = p.schemaMap("properties")
	s.Required = p.names("required")
	s.PatternProperties = p.patternSchemas("patternProperties")
	s.AdditionalProperties = p.additional("additionalProperties")
	s.MinProperties = p.count("minProperties")
	s.MaxProperties = p.count("maxProperties")
	s.Dependencies = p.dependencies("dependencies")

	if it, ok := obj["items"]; ok {
		if arr, isArr := it.(value.Array); isArr {
			s.TupleItems = p.schemaList("items", arr)
		} else {
			s.Items = p.sub(it, "items")
		}
	}
	s.AdditionalItems = p.additional("additionalItems")
	s.MinItems = p.count("minItems")
	s.MaxItems = p.count("maxItems")
	s.UniqueItems = p.boolean("uniqueItems")

	s.MinLength = p.count("minLength")
	s.MaxLength = p.count("maxLength")
	if src, ok := p.str("pattern"); ok {
		pat, err := compilePattern(src)
		if err != nil {
			p.fail("pattern", err.Error())
		}
		s.Pattern = pat
	}

	s.Minimum = p.number("minimum")
	s.Maximum = p.number("maximum")
	s.ExclusiveMinimum = p.exclusive("exclusiveMinimum")
	s.ExclusiveMaximum = p.exclusive("exclusiveMaximum")
	s.MultipleOf = p.number("multipleOf")
	if s.MultipleOf != nil && *s.MultipleOf <= 0 {
		p.fail("multipleOf", "expected a number greater than 0")
	}

	s.AllOf = p.composition("allOf")
	s.AnyOf = p.composition("anyOf")
	s.OneOf = p.composition("oneOf")
	if n, ok := obj["not"]; ok {
		s.Not = p.sub(n, "not")
	}

	if p.err != nil {
		return nil, p.err
	}
	return s, nil
}

// parser keeps the first error so keyword readers can be chained.
type parser struct {
	obj  value.Object
	path string
	err  error
}

func (p *parser) fail(keyword, msg string) {
	if p.err == nil {
		p.err = &ParseError{Path: p.path, Keyword: keyword, Msg: msg}
	}
}

func (p *parser) at(keyword string) string {
	if p.path == "" {
		return keyword
	}
	return p.path + "." + keyword
}

func (p *parser) sub(doc value.Value, keyword string) *Schema {
	if p.err != nil {
		return nil
	}
	s, err := parseNode(doc, p.at(keyword))
	if err != nil {
		p.err = err
		return nil
	}
	return s
}

func (p *parser) types(dst *[]string) {
	t, ok := p.obj["type"]
	if !ok {
		return
	}
	switch tv := t.(type) {
	case value.String:
		*dst = []string{string(tv)}
	case value.Array:
		out := make([]string, 0, len(tv))
		for _, e := range tv {
			s, ok := e.(value.String)
			if !ok {
				p.fail("type", "expected string or array of strings")
				return
			}
			out = append(out, string(s))
		}
		*dst = out
	default:
		p.fail("type", "expected string or array of strings")
	}
}

func (p *parser) str(keyword string) (string, bool) {
	v, ok := p.obj[keyword]
	if !ok {
		return "", false
	}
	s, ok := v.(value.String)
	if !ok {
		p.fail(keyword, "expected string")
		return "", false
	}
	return string(s), true
}

func (p *parser) boolean(keyword string) bool {
	v, ok := p.obj[keyword]
	if !ok {
		return false
	}
	b, ok := v.(value.Bool)
	if !ok {
		p.fail(keyword, "expected boolean")
		return false
	}
	return bool(b)
}

func (p *parser) number(keyword string) *float64 {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	n, ok := v.(value.Number)
	if !ok {
		p.fail(keyword, "expected number")
		return nil
	}
	f := float64(n)
	return &f
}

func (p *parser) count(keyword string) *int {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	if !value.IsInteger(v) || v.(value.Number) < 0 {
		p.fail(keyword, "expected non-negative integer")
		return nil
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if float64(v.(value.Number)) >= float64(math.MaxInt) {
		p.fail(keyword, "integer out of range")
		return nil
	}
	n := int(v.(value.Number))
	return &n
}

func (p *parser) exclusive(keyword string) Exclusive {
	v, ok := p.obj[keyword]
	if !ok {
		return Exclusive{}
	}
	switch t := v.(type) {
	case value.Bool:
		return Exclusive{Strict: bool(t)}
	case value.Number:
		f := float64(t)
		return Exclusive{Bound: &f}
	}
	p.fail(keyword, "expected boolean or number")
	return Exclusive{}
}

func (p *parser) names(keyword string) []string {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	return p.nameList(keyword, v)
}

func (p *parser) nameList(keyword string, v value.Value) []string {
	arr, ok := v.(value.Array)
	if !ok {
		p.fail(keyword, "expected array of strings")
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(value.String)
		if !ok {
			p.fail(keyword, "expected array of strings")
			return nil
		}
		out = append(out, string(s))
	}
	return out
}

func (p *parser) schemaMap(keyword string) map[string]*Schema {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	m, ok := v.(value.Object)
	if !ok {
		p.fail(keyword, "expected object")
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for _, k := range m.Keys() {
		out[k] = p.sub(m[k], keyword+"."+k)
	}
	return out
}

func (p *parser) schemaList(keyword string, arr value.Array) []*Schema {
	out := make([]*Schema, len(arr))
	for i, e := range arr {
		out[i] = p.sub(e, fmt.Sprintf("%s.%d", keyword, i))
	}
	return out
}

func (p *parser) composition(keyword string) []*Schema {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	arr, ok := v.(value.Array)
	if !ok {
		p.fail(keyword, "expected array of schemas")
		return nil
	}
	return p.schemaList(keyword, arr)
}

func (p *parser) additional(keyword string) Additional {
	v, ok := p.obj[keyword]
	if !ok {
		return Additional{}
	}
	if b, ok := v.(value.Bool); ok {
		return Additional{Forbidden: !bool(b)}
	}
	return Additional{Schema: p.sub(v, keyword)}
}

func (p *parser) patternSchemas(keyword string) []PatternSchema {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	m, ok := v.(value.Object)
	if !ok {
		p.fail(keyword, "expected object")
		return nil
	}
	keys := m.Keys()
	out := make([]PatternSchema, 0, len(keys))
	for _, k := range keys {
		pat, err := compilePattern(k)
		if err != nil {
			p.fail(keyword, fmt.Sprintf("pattern %q: %v", k, err))
			return nil
		}
		out = append(out, PatternSchema{Pattern: pat, Schema: p.sub(m[k], keyword+"."+k)})
	}
	return out
}

func (p *parser) dependencies(keyword string) map[string]Dependency {
	v, ok := p.obj[keyword]
	if !ok {
		return nil
	}
	m, ok := v.(value.Object)
	if !ok {
		p.fail(keyword, "expected object")
		return nil
	}
	out := make(map[string]Dependency, len(m))
	for _, k := range m.Keys() {
		switch dv := m[k].(type) {
		case value.Array:
			out[k] = Dependency{Names: p.nameList(keyword+"."+k, dv)}
		default:
			out[k] = Dependency{Schema: p.sub(dv, keyword+"."+k)}
		}
	}
	return out
}

func parentPath(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return ""
}

func lastKey(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
