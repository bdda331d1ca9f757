package value_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/schemadoc/value"
)

func TestEqual_TypeSensitive(t *testing.T) {
	if value.Equal(value.String("1"), value.Number(1)) {
		t.Fatalf("string and number must never be equal")
	}
	a := value.MustParseJSON(`{"a":[1,"x",{"b":null}],"c":true}`)
	b := value.MustParseJSON(`{"c":true,"a":[1,"x",{"b":null}]}`)
	if !value.Equal(a, b) {
		t.Fatalf("expected structural equality regardless of key order")
	}
	c := value.MustParseJSON(`{"c":true,"a":[1,"x",{"b":false}]}`)
	if value.Equal(a, c) {
		t.Fatalf("expected inequality on nested difference")
	}
	if !value.Equal(nil, nil) || value.Equal(nil, value.Null{}) {
		t.Fatalf("undefined equals only undefined")
	}
}

func TestClone_NoAliasing(t *testing.T) {
	orig := value.MustParseJSON(`{"a":{"b":[1,2]}}`).(value.Object)
	cp := value.Clone(orig).(value.Object)
	cp["a"].(value.Object)["b"].(value.Array)[0] = value.Number(99)
	cp["a"].(value.Object)["z"] = value.Bool(true)
	if got := orig["a"].(value.Object)["b"].(value.Array)[0]; got != value.Number(1) {
		t.Fatalf("clone aliased array storage: %v", got)
	}
	if orig["a"].(value.Object).Has("z") {
		t.Fatalf("clone aliased object storage")
	}
}

func TestParseJSON_RejectsDuplicateKeys(t *testing.T) {
	_, err := value.ParseJSON([]byte(`{"a":1,"a":2}`))
	if err == nil || !strings.Contains(err.Error(), "duplicated") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
	v, err := value.ParseJSON([]byte(`{"a":1,"a":2}`), value.DecodeOpt{AllowDuplicateKeys: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(value.Object)["a"] != value.Number(2) {
		t.Fatalf("expected last duplicate to win, got %v", v)
	}
}

func TestParseYAML(t *testing.T) {
	v, err := value.ParseYAML([]byte("type: object\nproperties:\n  n:\n    type: integer\n    default: 3\n  tags: [a, b]\n"))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	want := value.MustParseJSON(`{"type":"object","properties":{"n":{"type":"integer","default":3},"tags":["a","b"]}}`)
	if !value.Equal(v, want) {
		t.Fatalf("got %v want %v", v, want)
	}

	_, err = value.ParseYAML([]byte("a: 1\na: 2\n"))
	var dup *value.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Key != "a" {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	in := value.MustParseJSON(`{"a":[1,2.5,"s",null,true],"b":{}}`)
	b, err := value.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := value.ParseJSON(b)
	if err != nil {
		t.Fatalf("reparse %s: %v", b, err)
	}
	if !value.Equal(in, out) {
		t.Fatalf("round trip mismatch: %s", b)
	}
}

func TestFromAny(t *testing.T) {
	v, err := value.FromAny(map[string]any{"n": 3, "s": []string{"x"}, "z": nil})
	if err != nil {
		t.Fatalf("from any: %v", err)
	}
	want := value.MustParseJSON(`{"n":3,"s":["x"],"z":null}`)
	if !value.Equal(v, want) {
		t.Fatalf("got %v", v)
	}
	if _, err := value.FromAny(struct{}{}); err == nil {
		t.Fatalf("expected error for struct input")
	}
}

func TestIsInteger(t *testing.T) {
	if !value.IsInteger(value.Number(4)) || value.IsInteger(value.Number(4.5)) || value.IsInteger(value.String("4")) {
		t.Fatalf("IsInteger misclassified")
	}
}
