// Package collection keeps an ordered list of schema-governed documents: the
// stored presets of an editor, for instance. Entries are addressed by
// position (negative positions count from the end), by key/value match, by
// id or by an expr-lang predicate, and can be saved to and loaded from a flat
// JSON or YAML file.
package collection

import (
	"errors"
	"fmt"
	"log/slog"

	exprlang "github.com/expr-lang/expr"
	"github.com/google/uuid"

	"github.com/reoring/schemadoc"
	"github.com/reoring/schemadoc/jsonschema"
	"github.com/reoring/schemadoc/value"
)

// ErrOutOfRange is returned for positions that address no entry.
var ErrOutOfRange = errors.New("collection: position out of range")

// Entry is one stored document.
type Entry struct {
	ID uuid.UUID
	// Temporary entries are kept in memory but never saved.
	Temporary bool
	doc       *schemadoc.Document
}

// Get returns a copy of the entry's instance.
func (e *Entry) Get() value.Value { return e.doc.Get("") }

// Prop returns a copy of the top-level property key, or nil.
func (e *Entry) Prop(key string) value.Value { return e.doc.Get(key) }

// SetProp assigns an existing top-level property. Unknown keys are refused.
func (e *Entry) SetProp(key string, v value.Value) error {
	if e.doc.Get(key) == nil {
		return fmt.Errorf("collection: entry has no property %q", key)
	}
	return e.doc.Set(key, v)
}

// Document exposes the entry's Document for path-level edits.
func (e *Entry) Document() *schemadoc.Document { return e.doc }

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		if l != nil {
			c.log = l
		}
	}
}

// Collection is an ordered list of entries sharing one schema. It is not
// safe for concurrent use.
type Collection struct {
	schema   *jsonschema.Schema
	list     *schemadoc.Document
	standard []value.Value
	entries  []*Entry
	log      *slog.Logger
}

// New builds a collection over the item schema s, seeded with standard. A nil
// standard seeds a single fully defaulted entry. Both the item schema and the
// derived list schema {"type":"array","items":s} must pass the Document
// self-check, and standard must validate against the list schema.
func New(s *jsonschema.Schema, standard []value.Value, opts ...Option) (*Collection, error) {
	c := &Collection{schema: s, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if _, err := schemadoc.New(s, nil, schemadoc.Options{Logger: c.log}); err != nil {
		return nil, fmt.Errorf("collection: item schema: %w", err)
	}
	listSchema, err := jsonschema.Parse(value.Object{"type": value.String("array"), "items": s.Raw()})
	if err != nil {
		return nil, fmt.Errorf("collection: list schema: %w", err)
	}
	if c.list, err = schemadoc.New(listSchema, nil, schemadoc.Options{Logger: c.log}); err != nil {
		return nil, fmt.Errorf("collection: list schema: %w", err)
	}

	if standard == nil {
		standard = []value.Value{schemadoc.Instantiate(s, false)}
	}
	c.standard = make([]value.Value, len(standard))
	for i, v := range standard {
		c.standard[i] = value.Clone(v)
	}
	if err := c.list.Wrap(value.Array(c.standard)); err != nil {
		return nil, fmt.Errorf("collection: standard entries: %w", err)
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) newEntry(v value.Value) (*Entry, error) {
	if v == nil {
		v = schemadoc.Instantiate(c.schema, false)
	}
	if !value.IsContainer(v) {
		return nil, fmt.Errorf("collection: entry must be an object or array, got %s", value.TypeName(v))
	}
	doc, err := schemadoc.New(c.schema, v, schemadoc.Options{Logger: c.log})
	if err != nil {
		return nil, err
	}
	return &Entry{ID: uuid.New(), doc: doc}, nil
}

// infuse turns raw values into entries; nothing is replaced unless every
// value loads.
func (c *Collection) infuse(items []value.Value) ([]*Entry, error) {
	out := make([]*Entry, 0, len(items))
	for i, v := range items {
		e, err := c.newEntry(v)
		if err != nil {
			return nil, fmt.Errorf("collection: entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Get returns copies of all entry instances in order.
func (c *Collection) Get() []value.Value {
	out := make([]value.Value, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Get()
	}
	return out
}

// Len returns the number of entries.
func (c *Collection) Len() int { return len(c.entries) }

// Template returns a fully defaulted instance of the item schema.
func (c *Collection) Template() value.Value { return schemadoc.Instantiate(c.schema, false) }

// Schema returns the item schema.
func (c *Collection) Schema() *jsonschema.Schema { return c.schema }

// At returns the entry at pos; -1 is the last entry.
func (c *Collection) At(pos int) (*Entry, error) {
	i, ok := c.index(pos)
	if !ok {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, pos, len(c.entries))
	}
	return c.entries[i], nil
}

// ByIndex returns a copy of the instance at pos.
func (c *Collection) ByIndex(pos int) (value.Value, error) {
	e, err := c.At(pos)
	if err != nil {
		return nil, err
	}
	return e.Get(), nil
}

// ByKey returns the last entry whose property key equals v.
func (c *Collection) ByKey(key string, v value.Value) (value.Value, bool) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if value.Equal(c.entries[i].Prop(key), v) {
			return c.entries[i].Get(), true
		}
	}
	return nil, false
}

// ByID returns the entry instance with the given id.
func (c *Collection) ByID(id uuid.UUID) (value.Value, bool) {
	for _, e := range c.entries {
		if e.ID == id {
			return e.Get(), true
		}
	}
	return nil, false
}

// Indexes returns the ascending positions of entries whose property key
// equals v.
func (c *Collection) Indexes(key string, v value.Value) []int {
	var out []int
	for i, e := range c.entries {
		if value.Equal(e.Prop(key), v) {
			out = append(out, i)
		}
	}
	return out
}

// PropList returns property key of every entry, in order. key must be a
// property of the item template.
func (c *Collection) PropList(key string) ([]value.Value, error) {
	tmpl, _ := c.Template().(value.Object)
	if !tmpl.Has(key) {
		return nil, fmt.Errorf("collection: cannot list property %q", key)
	}
	out := make([]value.Value, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Prop(key)
	}
	return out, nil
}

// Reset replaces all entries with the standard ones.
func (c *Collection) Reset() error {
	return c.Load(c.standard)
}

// Load replaces all entries with items.
func (c *Collection) Load(items []value.Value) error {
	entries, err := c.infuse(items)
	if err != nil {
		return err
	}
	c.entries = entries
	c.log.Debug("collection loaded", "entries", len(entries))
	return nil
}

// AddOpt controls how Add inserts. A nil Position appends; otherwise it
// counts from the end when negative (-1 appends) and a position beyond
// either end appends.
type AddOpt struct {
	Position  *int
	Temporary bool
}

// Pos returns a Position for AddOpt.
func Pos(i int) *int { return &i }

// Add inserts v, appending unless an AddOpt says otherwise, and returns the
// new entry.
func (c *Collection) Add(v value.Value, opts ...AddOpt) (*Entry, error) {
	n := len(c.entries)
	pos := n
	var opt AddOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Position != nil && !outOfRange(*opt.Position, n) {
		pos = *opt.Position
	}
	e, err := c.newEntry(v)
	if err != nil {
		return nil, err
	}
	e.Temporary = opt.Temporary
	i := calcIndex(pos, n+1)
	c.entries = append(c.entries, nil)
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = e
	c.log.Debug("entry added", "id", e.ID, "index", i, "temporary", e.Temporary)
	return e, nil
}

// AddUnique adds v at pos after removing every entry whose property key equals
// v's. It reports whether existing entries were replaced.
func (c *Collection) AddUnique(v value.Value, key string, pos int) (replaced bool, err error) {
	obj, ok := v.(value.Object)
	if !ok {
		return false, fmt.Errorf("collection: add unique: expected object, got %s", value.TypeName(v))
	}
	if _, ok := obj[key]; !ok {
		return false, fmt.Errorf("collection: add unique: value has no property %q", key)
	}
	if _, err := c.newEntry(v); err != nil {
		return false, err
	}
	replaced = c.RemoveWhere(key, obj[key])
	if _, err := c.Add(v, AddOpt{Position: Pos(pos)}); err != nil {
		return replaced, err
	}
	return replaced, nil
}

// Remove deletes the entry at pos.
func (c *Collection) Remove(pos int) error {
	i, ok := c.index(pos)
	if !ok {
		return fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, pos, len(c.entries))
	}
	c.log.Debug("entry removed", "id", c.entries[i].ID, "index", i)
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return nil
}

// Overwrite replaces the entry at pos with v.
func (c *Collection) Overwrite(pos int, v value.Value) error {
	i, ok := c.index(pos)
	if !ok {
		return fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, pos, len(c.entries))
	}
	e, err := c.newEntry(v)
	if err != nil {
		return err
	}
	e.Temporary = c.entries[i].Temporary
	c.entries[i] = e
	return nil
}

// RemoveWhere deletes every entry whose property key equals v and reports
// whether any was removed.
func (c *Collection) RemoveWhere(key string, v value.Value) bool {
	kept := c.entries[:0]
	removed := false
	for _, e := range c.entries {
		if value.Equal(e.Prop(key), v) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	clear(c.entries[len(kept):])
	c.entries = kept
	return removed
}

// Filter returns the instances for which the boolean expr-lang expression
// holds. Top-level properties are variables; unknown names evaluate to nil.
func (c *Collection) Filter(expression string) ([]value.Value, error) {
	idx, err := c.match(expression)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(idx))
	for i, j := range idx {
		out[i] = c.entries[j].Get()
	}
	return out, nil
}

// RemoveExpr deletes the entries matching expression and returns how many
// were removed.
func (c *Collection) RemoveExpr(expression string) (int, error) {
	idx, err := c.match(expression)
	if err != nil {
		return 0, err
	}
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
	return len(idx), nil
}

func (c *Collection) match(expression string) ([]int, error) {
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("collection: compile %q: %w", expression, err)
	}
	var out []int
	for i, e := range c.entries {
		env, _ := value.ToAny(e.Get()).(map[string]any)
		if env == nil {
			env = map[string]any{}
		}
		res, err := exprlang.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("collection: evaluate %q on entry %d: %w", expression, i, err)
		}
		if ok, _ := res.(bool); ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// index maps a possibly negative position to a slice index.
func (c *Collection) index(pos int) (int, bool) {
	n := len(c.entries)
	if pos < 0 {
		pos += n
	}
	if pos < 0 || pos >= n {
		return 0, false
	}
	return pos, true
}

// outOfRange reports whether an insert position falls outside
// [-(n+1), n]; every position is out of range for an empty list.
func outOfRange(pos, n int) bool {
	return n == 0 || pos > n || pos < -1-n
}

// calcIndex resolves an insert position against n slots, counting negative
// positions from the end.
func calcIndex(pos, n int) int {
	if pos < 0 {
		pos = n + pos
	}
	if pos < 0 {
		return -pos
	}
	return pos
}
