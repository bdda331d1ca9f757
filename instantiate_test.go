package schemadoc_test

import (
	"testing"

	"github.com/reoring/schemadoc"
	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

const presetSchema = `{
	"type": "object",
	"required": ["name", "size"],
	"properties": {
		"name": {"type": "string", "default": "New Preset"},
		"size": {"type": "integer", "default": 12, "minimum": 1},
		"mode": {"type": "string", "enum": ["fast", "slow"]},
		"tags": {"type": "array", "items": {"type": "string"}, "uniqueItems": true},
		"pos":  {"type": "array", "items": {"type": "number"}, "minItems": 2},
		"box":  {
			"type": "object",
			"required": ["w"],
			"properties": {"w": {"type": "number"}, "h": {"type": "number", "default": 1}}
		}
	}
}`

func TestInstantiate_RequiredOnlyVsAll(t *testing.T) {
	s := jsonschema.MustParseJSON(presetSchema)

	got := schemadoc.Instantiate(s, true)
	want := value.MustParseJSON(`{"name":"New Preset","size":12}`)
	if !value.Equal(got, want) {
		t.Fatalf("required only: got %v", got)
	}

	got = schemadoc.Instantiate(s, false)
	want = value.MustParseJSON(`{"name":"New Preset","size":12,"mode":"fast","tags":[],"pos":[0,0],"box":{"w":0,"h":1}}`)
	if !value.Equal(got, want) {
		t.Fatalf("all properties: got %v", got)
	}
}

func TestInstantiate_UnionPicksFirstType(t *testing.T) {
	s := jsonschema.MustParseJSON(`{"type":["null","number"]}`)
	if got := schemadoc.Instantiate(s, false); !value.Equal(got, value.Null{}) {
		t.Fatalf("expected null, got %v", got)
	}
	s = jsonschema.MustParseJSON(`{"type":["number","null"]}`)
	if got := schemadoc.Instantiate(s, false); !value.Equal(got, value.Number(0)) {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestInstantiate_Enum(t *testing.T) {
	cases := []struct {
		schema string
		want   value.Value
	}{
		{`{"enum":["a","b"]}`, value.String("a")},
		{`{"type":"string","enum":["a","b"],"default":"b"}`, value.String("b")},
		{`{"enum":[]}`, nil},
	}
	for _, tc := range cases {
		got := schemadoc.Instantiate(jsonschema.MustParseJSON(tc.schema), false)
		if !value.Equal(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.schema, got, tc.want)
		}
	}
}

func TestInstantiate_Arrays(t *testing.T) {
	cases := []struct {
		schema string
		want   string
	}{
		{`{"type":"array","minItems":3}`, `[]`},
		{`{"type":"array","minItems":2,"items":{"type":"boolean"}}`, `[false,false]`},
		{`{"type":"array","minItems":3,"items":[{"type":"string"},{"type":"number"}],"additionalItems":{"type":"null"}}`, `["",0,null]`},
		{`{"type":"array","minItems":3,"items":[{"type":"string"}]}`, `[""]`},
	}
	for _, tc := range cases {
		got := schemadoc.Instantiate(jsonschema.MustParseJSON(tc.schema), false)
		if !value.Equal(got, value.MustParseJSON(tc.want)) {
			t.Fatalf("%s: got %v want %s", tc.schema, got, tc.want)
		}
	}
}

func TestInstantiate_AllOfLastWriteWins(t *testing.T) {
	s := jsonschema.MustParseJSON(`{"allOf":[
		{"type":"object","properties":{"a":{"type":"string","default":"x"}}},
		{"type":"object","properties":{"a":{"type":"string","default":"y"},"b":{"type":"number"}}}
	]}`)
	got := schemadoc.Instantiate(s, false)
	if !value.Equal(got, value.MustParseJSON(`{"a":"y","b":0}`)) {
		t.Fatalf("got %v", got)
	}
}

func TestInstantiate_AllOfMergesIntoPropertiesObject(t *testing.T) {
	s := jsonschema.MustParseJSON(`{
		"type": "object",
		"properties": {"a": {"type": "string"}},
		"allOf": [{"required": ["b"], "properties": {"b": {"type": "string", "default": "x"}}}]
	}`)
	if got := schemadoc.Instantiate(s, false); !value.Equal(got, value.MustParseJSON(`{"a":"","b":"x"}`)) {
		t.Fatalf("got %v", got)
	}
	if got := schemadoc.Instantiate(s, true); !value.Equal(got, value.MustParseJSON(`{"b":"x"}`)) {
		t.Fatalf("required only: got %v", got)
	}
	if _, err := schemadoc.New(s, nil); err != nil {
		t.Fatalf("new: %v", err)
	}
}

func TestInstantiate_UntypedIsUndefined(t *testing.T) {
	if got := schemadoc.Instantiate(jsonschema.MustParseJSON(`{"minLength":1}`), false); got != nil {
		t.Fatalf("expected undefined, got %v", got)
	}
	if got := schemadoc.Instantiate(jsonschema.MustParseJSON(`{"type":"object"}`), false); !value.Equal(got, value.Object{}) {
		t.Fatalf("expected {}, got %v", got)
	}
}

func TestInstantiate_DefaultIsCopied(t *testing.T) {
	s := jsonschema.MustParseJSON(`{"type":"object","default":{"k":[1]}}`)
	a := schemadoc.Instantiate(s, false).(value.Object)
	a["k"].(value.Array)[0] = value.Number(9)
	b := schemadoc.Instantiate(s, false)
	if !value.Equal(b, value.MustParseJSON(`{"k":[1]}`)) {
		t.Fatalf("default aliased across calls: %v", b)
	}
}

// Every schema here is accepted by New, so its full default must validate.
func TestInstantiate_DefaultSelfValidity(t *testing.T) {
	schemas := []string{
		presetSchema,
		`{"type":"string","enum":["a"]}`,
		`{"type":["null","number"]}`,
		`{"type":"integer","minimum":0,"multipleOf":3}`,
		`{"type":"array","minItems":2,"items":{"type":"object","properties":{"id":{"type":"integer"}}}}`,
		`{"type":"object","properties":{"a":{"type":"number"}},"additionalProperties":false,"dependencies":{"a":{"required":["a"]}}}`,
		`{"type":"object","properties":{"x":{"type":"string","default":"ab","pattern":"^a"}},"not":{"required":["zzz"]}}`,
	}
	for _, src := range schemas {
		s := jsonschema.MustParseJSON(src)
		d := schemadoc.Instantiate(s, false)
		if iss := schemadoc.Validate(d, s); len(iss) != 0 {
			t.Fatalf("%s: default %v is not self-valid: %v", src, d, iss)
		}
		if _, err := schemadoc.New(s, nil); err != nil {
			t.Fatalf("%s: New rejected schema: %v", src, err)
		}
	}
}
