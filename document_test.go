package schemadoc_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reoring/schemadoc"
	"github.com/reoring/schemadoc/dotpath"
	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

func newDoc(t *testing.T, schema string, seed value.Value) *schemadoc.Document {
	t.Helper()
	d, err := schemadoc.New(jsonschema.MustParseJSON(schema), seed)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return d
}

func TestDocument_RequiredDeletionRevertsToDefault(t *testing.T) {
	d := newDoc(t, `{"type":"object","required":["name"],"properties":{"name":{"type":"string","default":"New Preset"}}}`, nil)
	if err := d.Set("name", value.String("X")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := d.Get("name"); got != value.String("X") {
		t.Fatalf("set not committed: %v", got)
	}
	if err := d.Delete("name"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := d.Get("name"); got != value.String("New Preset") {
		t.Fatalf("expected default after delete, got %v", got)
	}
}

func TestDocument_DeleteOptionalAndNested(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	if err := d.Delete("mode"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if d.Get("mode") != nil {
		t.Fatalf("optional property should be gone")
	}
	if err := d.Set("box.w", value.Number(5)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := d.Delete("box.w"); err != nil {
		t.Fatalf("delete nested: %v", err)
	}
	if got := d.Get("box.w"); got != value.Number(0) {
		t.Fatalf("nested required should revert, got %v", got)
	}
}

func TestDocument_AtomicityOnRejection(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	before := d.Get("")

	mutations := []func() error{
		func() error { return d.Set("size", value.String("big")) },
		func() error { return d.Set("size", value.Number(0)) },
		func() error { return d.Push("tags", value.String("a"), value.String("a")) },
		func() error { return d.Set("name.first", value.String("x")) },
		func() error { _, err := d.Pop("pos"); return err },
		func() error { _, err := d.Splice("pos", 0, 2); return err },
		func() error { return d.Wrap(value.MustParseJSON(`{"size":"x"}`)) },
	}
	for i, m := range mutations {
		if err := m(); err == nil {
			t.Fatalf("mutation %d: expected rejection", i)
		}
		if d.IsValid() {
			t.Fatalf("mutation %d: rejected document must report invalid", i)
		}
		if len(d.Errors()) == 0 {
			t.Fatalf("mutation %d: expected logged errors", i)
		}
		if after := d.Get(""); !value.Equal(before, after) {
			t.Fatalf("mutation %d changed the instance: %v", i, after)
		}
	}

	if err := d.Set("size", value.Number(3)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !d.IsValid() || len(d.Errors()) != 0 {
		t.Fatalf("a committed mutation clears the log and restores validity")
	}
}

func TestDocument_PathErrorIssue(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	err := d.Set("name.first", value.String("x"))
	iss, ok := schemadoc.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != schemadoc.CodePath {
		t.Fatalf("expected one path issue, got %v", err)
	}
	var pe *dotpath.Error
	if !errors.As(err, &pe) || pe.Found != "string" {
		t.Fatalf("expected *dotpath.Error cause, got %v", err)
	}
}

func TestDocument_IdempotentRewrap(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	x := value.MustParseJSON(`{"name":"A","size":4,"tags":["t"],"unknown":true}`)
	if err := d.Wrap(x); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	once := d.Get("")
	if once.(value.Object).Has("unknown") {
		t.Fatalf("unknown keys must be dropped: %v", once)
	}
	if err := d.Wrap(once); err != nil {
		t.Fatalf("rewrap: %v", err)
	}
	if twice := d.Get(""); !value.Equal(once, twice) {
		t.Fatalf("rewrap changed the instance: %v vs %v", once, twice)
	}
}

func TestDocument_WrapKeepsPatternProperties(t *testing.T) {
	d := newDoc(t, `{"type":"object","properties":{"a":{"type":"number"}},"patternProperties":{"^x-":{"type":"string"}}}`, nil)
	if err := d.Wrap(value.MustParseJSON(`{"x-one":"1","b":2}`)); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if !value.Equal(d.Get(""), value.MustParseJSON(`{"a":0,"x-one":"1"}`)) {
		t.Fatalf("got %v", d.Get(""))
	}
}

func TestDocument_MalformedArgumentPanics(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	defer func() {
		r := recover()
		var me *schemadoc.MalformedArgumentError
		err, _ := r.(error)
		if !errors.As(err, &me) || me.Got != "string" {
			t.Fatalf("expected MalformedArgumentError panic, got %v", r)
		}
	}()
	_ = d.Wrap(value.String("nope"))
}

func TestDocument_SchemaSelfInvalid(t *testing.T) {
	cases := []string{
		`{"required":["name"],"properties":{"name":{"type":"string"}}}`,
		`{"type":"string","minLength":2}`,
		`{"type":"object","required":["a"],"properties":{"b":{"type":"string"}}}`,
	}
	for _, src := range cases {
		d, err := schemadoc.New(jsonschema.MustParseJSON(src), nil)
		if !errors.Is(err, schemadoc.ErrSchemaSelfInvalid) {
			t.Fatalf("%s: expected ErrSchemaSelfInvalid, got %v", src, err)
		}
		if d == nil || d.IsValid() || d.IsSchemaValid() {
			t.Fatalf("%s: document must be permanently invalid", src)
		}
		if err := d.Set("a", value.String("x")); !errors.Is(err, schemadoc.ErrSchemaSelfInvalid) {
			t.Fatalf("%s: mutations must report the schema error, got %v", src, err)
		}
		if d.Get("") != nil || len(d.Errors()) == 0 {
			t.Fatalf("%s: no instance is managed", src)
		}
	}
}

func TestDocument_Seed(t *testing.T) {
	s := jsonschema.MustParseJSON(presetSchema)
	d, err := schemadoc.New(s, value.MustParseJSON(`{"name":"Seeded","extra":1}`))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := schemadoc.Instantiate(s, false).(value.Object)
	want["name"] = value.String("Seeded")
	if !value.Equal(d.Get(""), want) {
		t.Fatalf("got %v", d.Get(""))
	}

	d, err = schemadoc.New(s, value.MustParseJSON(`{"size":-1}`))
	if _, ok := schemadoc.AsIssues(err); !ok {
		t.Fatalf("expected seed issues, got %v", err)
	}
	if !value.Equal(d.Get(""), schemadoc.Instantiate(s, false)) {
		t.Fatalf("rejected seed must leave the default instance")
	}
	if !d.IsValid() || len(d.Errors()) == 0 {
		t.Fatalf("default instance is valid, seed issues stay logged: valid=%v errors=%v", d.IsValid(), d.Errors())
	}
}

func TestDocument_ArrayOperations(t *testing.T) {
	d := newDoc(t, presetSchema, nil)

	if err := d.Push("tags", value.String("b"), value.String("c")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := d.Unshift("tags", value.String("a")); err != nil {
		t.Fatalf("unshift: %v", err)
	}
	removed, err := d.Splice("tags", -2, 1, value.String("x"), value.String("y"))
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	if len(removed) != 1 || removed[0] != value.String("b") {
		t.Fatalf("unexpected removed %v", removed)
	}
	if got := d.Get("tags"); !value.Equal(got, value.MustParseJSON(`["a","x","y","c"]`)) {
		t.Fatalf("tags = %v", got)
	}

	v, err := d.Pop("tags")
	if err != nil || v != value.String("c") {
		t.Fatalf("pop = %v, %v", v, err)
	}
	v, err = d.Shift("tags")
	if err != nil || v != value.String("a") {
		t.Fatalf("shift = %v, %v", v, err)
	}
	if got := d.Get("tags"); !value.Equal(got, value.MustParseJSON(`["x","y"]`)) {
		t.Fatalf("tags = %v", got)
	}

	// no array at the path
	v, err = d.Pop("nothing.here")
	if err != nil || v != nil {
		t.Fatalf("pop on missing array = %v, %v", v, err)
	}
	if err := d.Push("notes", value.String("n")); err != nil {
		t.Fatalf("push creates arrays: %v", err)
	}
	if got := d.Get("notes"); !value.Equal(got, value.Array{value.String("n")}) {
		t.Fatalf("notes = %v", got)
	}
	if err := d.Push("name", value.String("x")); err == nil {
		t.Fatalf("push onto a string must fail")
	}
}

func TestDocument_GetReturnsCopy(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	box := d.Get("box").(value.Object)
	box["w"] = value.String("tampered")
	if got := d.Get("box.w"); got != value.Number(0) {
		t.Fatalf("Get leaked a live reference: %v", got)
	}
	if _, err := d.Lookup("name.x"); err == nil {
		t.Fatalf("Lookup should report path errors")
	}
}

func TestDocument_DelimiterAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, err := schemadoc.New(jsonschema.MustParseJSON(presetSchema), nil, schemadoc.Options{Delimiter: "/", Logger: logger})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := d.Set("box/h", value.Number(7)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := d.Get("box/h"); got != value.Number(7) {
		t.Fatalf("got %v", got)
	}
	err = d.Set("pos/0", value.String("x"))
	iss, _ := schemadoc.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "pos/0" {
		t.Fatalf("issue paths should use the delimiter, got %v", iss)
	}
	if !strings.Contains(buf.String(), "committed") || !strings.Contains(buf.String(), "rejected") {
		t.Fatalf("expected transaction logs, got %q", buf.String())
	}
}

func TestDocument_Template(t *testing.T) {
	d := newDoc(t, presetSchema, nil)
	if !value.Equal(d.Template(false), value.MustParseJSON(`{"name":"New Preset","size":12}`)) {
		t.Fatalf("template(false) = %v", d.Template(false))
	}
	if d.Schema() == nil {
		t.Fatalf("schema not bound")
	}
}
