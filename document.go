package schemadoc

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/reoring/schemadoc/dotpath"
	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

// Options configures a Document. The zero value uses "." as the path
// delimiter and discards log output.
type Options struct {
	Delimiter string
	Logger    *slog.Logger
}

// Document binds one schema to one managed instance. Every mutation runs as a
// transaction on a clone: the clone is changed, validated, and either becomes
// the managed instance or is discarded. A rejected mutation leaves the managed
// instance exactly as it was and records the issues in the error log.
//
// A Document is not safe for concurrent use.
type Document struct {
	schema *jsonschema.Schema
	paths  dotpath.Accessor
	log    *slog.Logger

	instance value.Value

	schemaValid   bool
	instanceValid bool
	schemaIssues  Issues // self-check failures, replayed by every operation
	errs          Issues
}

var metaSchema = jsonschema.MustParseJSON(`{"type":"object","required":["type"]}`)

// New creates a Document over s. seed, when non-nil, must be an object or
// array; its keys declared by the schema are copied onto a fully defaulted
// template. Without a seed the template itself is managed.
//
// When s fails its self-check the returned Document is permanently invalid and
// the error wraps ErrSchemaSelfInvalid. When the seeded instance does not
// validate, the Document manages the default template instead, stays valid,
// and the seed's Issues are returned and kept in Errors.
func New(s *jsonschema.Schema, seed value.Value, opts ...Options) (*Document, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if seed != nil && !value.IsContainer(seed) {
		panic(&MalformedArgumentError{Op: "new", Got: value.TypeName(seed)})
	}
	d := &Document{schema: s, paths: dotpath.New(opt.Delimiter), log: opt.Logger}
	if d.log == nil {
		d.log = slog.New(slog.DiscardHandler)
	}

	if iss := selfCheck(s); len(iss) > 0 {
		d.schemaIssues = iss
		d.errs = append(Issues(nil), iss...)
		d.log.Warn("schema rejected", "issues", len(iss), "first", iss[0].Message)
		return d, fmt.Errorf("%w: %w", ErrSchemaSelfInvalid, iss)
	}
	d.schemaValid = true

	tmpl := Instantiate(s, false)
	d.instance = tmpl
	d.instanceValid = true
	if seed == nil {
		return d, nil
	}
	if err := d.transact("new", "", func(value.Value) (value.Value, error) {
		return adopt(value.Clone(tmpl), seed, s), nil
	}); err != nil {
		// the managed instance is still the valid template
		d.instanceValid = true
		return d, err
	}
	return d, nil
}

// selfCheck requires the raw schema to be an object with a "type" and the
// default instance to validate against the schema.
func selfCheck(s *jsonschema.Schema) Issues {
	if s == nil {
		return Issues{NewPathRef("", ".").Issue(CodeSchemaInvalid, "schema")}
	}
	if iss := Validate(s.Raw(), metaSchema); len(iss) > 0 {
		return iss
	}
	return Validate(Instantiate(s, false), s)
}

// adopt copies the declared keys of src onto tmpl. Object keys are taken when
// the schema names them in properties or matches them in patternProperties;
// array elements replace the template's by index.
func adopt(tmpl, src value.Value, s *jsonschema.Schema) value.Value {
	switch sv := src.(type) {
	case value.Object:
		out, ok := tmpl.(value.Object)
		if !ok {
			out = value.Object{}
		}
		for k, v := range sv {
			if s.Declares(k) {
				out[k] = value.Clone(v)
			}
		}
		return out
	case value.Array:
		out, _ := tmpl.(value.Array)
		for i, v := range sv {
			if i < len(out) {
				out[i] = value.Clone(v)
			} else {
				out = append(out, value.Clone(v))
			}
		}
		if out == nil {
			out = value.Array{}
		}
		return out
	}
	return tmpl
}

// transact clears the error log, applies mutate to a clone of the managed
// instance and commits the result when it validates.
func (d *Document) transact(op, path string, mutate func(value.Value) (value.Value, error)) error {
	d.errs = nil
	if !d.schemaValid {
		d.errs = append(Issues(nil), d.schemaIssues...)
		return fmt.Errorf("%w: %w", ErrSchemaSelfInvalid, d.schemaIssues)
	}
	next, err := mutate(value.Clone(d.instance))
	if err != nil {
		return d.reject(op, path, Issues{d.pathIssue(op, path, err)})
	}
	if iss := d.validate(next); len(iss) > 0 {
		return d.reject(op, path, iss)
	}
	d.instance = next
	d.instanceValid = true
	d.log.Debug("committed", "op", op, "path", path)
	return nil
}

func (d *Document) reject(op, path string, iss Issues) error {
	d.errs = AppendIssues(d.errs, iss...)
	d.instanceValid = false
	d.log.Debug("rejected", "op", op, "path", path, "issues", len(iss), "first", iss[0].Message)
	return iss
}

func (d *Document) validate(v value.Value) Issues {
	return validateNode(v, d.schema, NewPathRef("", d.paths.Delim))
}

func (d *Document) pathIssue(op, path string, err error) Issue {
	it := NewPathRef(path, d.paths.Delim).Issue(CodePath, op)
	it.Cause = err
	var pe *dotpath.Error
	if errors.As(err, &pe) {
		it.Message = pe.Error()
		it.Params = map[string]any{"segment": pe.Segment, "found": pe.Found}
	}
	return it
}

// Get returns a deep copy of the value at path, the whole instance for "". An
// unresolvable path or a schema-invalid Document yields nil.
func (d *Document) Get(path string) value.Value {
	v, err := d.Lookup(path)
	if err != nil {
		return nil
	}
	return v
}

// Lookup is Get reporting path resolution failures.
func (d *Document) Lookup(path string) (value.Value, error) {
	if !d.schemaValid {
		return nil, ErrSchemaSelfInvalid
	}
	v, err := d.paths.Read(d.instance, path)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return value.Clone(v), nil
}

// Set assigns v at path, creating missing intermediate containers.
func (d *Document) Set(path string, v value.Value) error {
	if v == nil {
		panic(&MalformedArgumentError{Op: "set", Got: "undefined"})
	}
	return d.transact("set", path, func(root value.Value) (value.Value, error) {
		return d.paths.Write(root, path, value.Clone(v), true)
	})
}

// Push appends values to the array at path. A missing array is created.
func (d *Document) Push(path string, values ...value.Value) error {
	_, err := d.splice("push", path, math.MaxInt, 0, true, values)
	return err
}

// Unshift prepends values to the array at path. A missing array is created.
func (d *Document) Unshift(path string, values ...value.Value) error {
	_, err := d.splice("unshift", path, 0, 0, true, values)
	return err
}

// Pop removes and returns the last element of the array at path. It returns
// nil when there is no array or it is empty, or when the removal is rejected.
func (d *Document) Pop(path string) (value.Value, error) {
	removed, err := d.splice("pop", path, -1, 1, false, nil)
	return first(removed), err
}

// Shift removes and returns the first element of the array at path, with the
// same nil cases as Pop.
func (d *Document) Shift(path string) (value.Value, error) {
	removed, err := d.splice("shift", path, 0, 1, false, nil)
	return first(removed), err
}

// Splice removes deleteCount elements at start from the array at path and
// inserts items there. A negative start counts from the end; both numbers are
// clamped to the array. It returns the removed elements once committed.
func (d *Document) Splice(path string, start, deleteCount int, items ...value.Value) ([]value.Value, error) {
	return d.splice("splice", path, start, deleteCount, true, items)
}

func (d *Document) splice(op, path string, start, deleteCount int, create bool, items []value.Value) ([]value.Value, error) {
	for _, it := range items {
		if it == nil {
			panic(&MalformedArgumentError{Op: op, Got: "undefined"})
		}
	}
	var removed []value.Value
	err := d.transact(op, path, func(root value.Value) (value.Value, error) {
		cloned := make([]value.Value, len(items))
		for i, it := range items {
			cloned[i] = value.Clone(it)
		}
		next, out, err := d.paths.Splice(root, path, start, deleteCount, create, cloned...)
		removed = out
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func first(vs []value.Value) value.Value {
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Delete removes the property or array element at path. A required property
// is put back with its schema default, so deleting it resets it.
func (d *Document) Delete(path string) error {
	return d.transact("delete", path, func(root value.Value) (value.Value, error) {
		next, err := d.paths.Delete(root, path)
		if err != nil {
			return nil, err
		}
		return d.restoreRequired(next, path)
	})
}

func (d *Document) restoreRequired(root value.Value, path string) (value.Value, error) {
	segs := d.paths.Split(path)
	if len(segs) == 0 {
		return root, nil
	}
	parentSegs, name := segs[:len(segs)-1], segs[len(segs)-1]
	ps := d.schema
	for _, seg := range parentSegs {
		ps = ps.Child(seg)
	}
	if ps == nil || !ps.IsRequired(name) {
		return root, nil
	}
	parent, err := d.paths.Read(root, d.paths.Join(parentSegs...))
	if err != nil {
		return nil, err
	}
	obj, ok := parent.(value.Object)
	if !ok || obj.Has(name) {
		return root, nil
	}
	if def := Instantiate(ps.Child(name), false); def != nil {
		obj[name] = def
	}
	return root, nil
}

// Wrap adopts raw as the managed instance: its declared keys are copied onto
// a fresh default instance, which then replaces the current one if it
// validates. raw must be an object or array.
func (d *Document) Wrap(raw value.Value) error {
	if !value.IsContainer(raw) {
		panic(&MalformedArgumentError{Op: "wrap", Got: value.TypeName(raw)})
	}
	return d.transact("wrap", "", func(value.Value) (value.Value, error) {
		return adopt(Instantiate(d.schema, false), raw, d.schema), nil
	})
}

// Template returns a fresh default instance; allProperties fills in optional
// properties as well.
func (d *Document) Template(allProperties bool) value.Value {
	return Instantiate(d.schema, !allProperties)
}

// Schema returns the bound schema.
func (d *Document) Schema() *jsonschema.Schema { return d.schema }

// Errors returns a copy of the issues recorded by the last operation.
func (d *Document) Errors() Issues { return append(Issues(nil), d.errs...) }

// Err returns the recorded issues as an error, or nil when there are none.
func (d *Document) Err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return d.Errors()
}

// IsValid reports whether the schema passed its self-check and the last
// mutation was committed.
func (d *Document) IsValid() bool { return d.schemaValid && d.instanceValid }

// IsSchemaValid reports whether the schema passed its self-check.
func (d *Document) IsSchemaValid() bool { return d.schemaValid }
