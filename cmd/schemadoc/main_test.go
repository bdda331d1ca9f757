package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "default": "New Preset"},
		"size": {"type": "number", "default": 1, "minimum": 0}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestRun_Instantiate(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "s.json", testSchema)
	var out, errb bytes.Buffer
	if code := run([]string{"instantiate", "-schema", schema, "-required"}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	if !strings.Contains(out.String(), `"New Preset"`) || strings.Contains(out.String(), "size") {
		t.Fatalf("unexpected output %s", out.String())
	}
}

func TestRun_Validate(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "s.yaml", "type: object\nproperties:\n  size: {type: number, minimum: 0}\n")
	good := writeFile(t, dir, "good.json", `{"size":2}`)
	bad := writeFile(t, dir, "bad.json", `{"size":-2}`)

	var out, errb bytes.Buffer
	if code := run([]string{"validate", "-schema", schema, "-instance", good}, &out, &errb); code != 0 {
		t.Fatalf("expected valid, exit %d: %s %s", code, out.String(), errb.String())
	}
	out.Reset()
	if code := run([]string{"validate", "-schema", schema, "-instance", bad}, &out, &errb); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out.String(), "size\ttoo_small") {
		t.Fatalf("expected issue line, got %q", out.String())
	}
}

func TestRun_Set(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "s.json", testSchema)
	dst := filepath.Join(dir, "out.json")

	var out, errb bytes.Buffer
	if code := run([]string{"set", "-schema", schema, "-path", "size", "-value", "5", "-o", dst}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"size": 5`) {
		t.Fatalf("unexpected output %s", data)
	}

	out.Reset()
	if code := run([]string{"set", "-schema", schema, "-instance", dst, "-path", "size", "-value", `"x"`}, &out, &errb); code != 1 {
		t.Fatalf("expected rejection, got %d", code)
	}
	if !strings.Contains(out.String(), "invalid_type") {
		t.Fatalf("expected issue output, got %q", out.String())
	}
}

func TestRun_List(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "s.json", testSchema)
	file := writeFile(t, dir, "presets.json", `[{"name":"a","size":1},{"name":"b","size":7}]`)

	var out, errb bytes.Buffer
	if code := run([]string{"list", "-schema", schema, "-file", file, "-key", "name", "-filter", "size > 2"}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	if strings.TrimSpace(out.String()) != `"b"` {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRun_Usage(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run(nil, &out, &errb); code != 2 {
		t.Fatalf("expected usage exit 2, got %d", code)
	}
	if code := run([]string{"validate"}, &out, &errb); code != 2 {
		t.Fatalf("missing -schema should exit 2, got %d", code)
	}
}
