// Package dotpath resolves delimiter-joined paths such as "obj.items.2.name"
// against value trees. It reads, writes with auto-vivification of missing
// containers, deletes and splices. It knows nothing about schemas.
//
// Writes are functional: object containers are updated in place, but arrays
// may be reallocated when they grow or shrink, so callers must keep the root
// returned by Write, Delete and Splice.
package dotpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/schemadoc/value"
)

// DefaultDelim separates path segments unless an Accessor says otherwise.
const DefaultDelim = "."

// Error is a path resolution failure: a segment was applied to something that
// is not a container, or a write needed a container that does not exist.
type Error struct {
	Op      string // "read", "set", "delete" or "splice"
	Path    string
	Segment string
	Found   string // type name of the offending value, "undefined" when absent
}

func (e *Error) Error() string {
	verb := e.Op
	if verb == "" {
		verb = "read"
	}
	return fmt.Sprintf("cannot %s property %q of %s (path %q)", verb, e.Segment, e.Found, e.Path)
}

// errAbsent marks a descent that stopped at a missing segment without upsert.
var errAbsent = errors.New("dotpath: absent")

// Accessor resolves paths with a fixed delimiter. The zero value uses ".".
type Accessor struct {
	Delim string
}

// New returns an Accessor for delim; an empty delim selects DefaultDelim.
func New(delim string) Accessor { return Accessor{Delim: delim} }

func (a Accessor) delim() string {
	if a.Delim == "" {
		return DefaultDelim
	}
	return a.Delim
}

// Split breaks path into segments. The empty path has no segments.
func (a Accessor) Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, a.delim())
}

// Join renders segments as a path.
func (a Accessor) Join(segs ...string) string { return strings.Join(segs, a.delim()) }

// Resolve walks every segment of path. A missing segment stops the walk and
// yields nil (undefined) unless upsert is set, in which case an empty Object,
// or an empty Array when the following segment is an integer, is created and
// the walk continues. Stepping into null or a scalar is an *Error. The
// returned root must replace the input root when upsert is set.
func (a Accessor) Resolve(root value.Value, path string, upsert bool) (found value.Value, newRoot value.Value, err error) {
	segs := a.Split(path)
	var out value.Value
	newRoot, err = a.descend(root, segs, 0, len(segs), upsert, "read", path, func(v value.Value) (value.Value, error) {
		out = v
		return v, nil
	})
	if errors.Is(err, errAbsent) {
		return nil, newRoot, nil
	}
	if err != nil {
		return nil, root, err
	}
	return out, newRoot, nil
}

// Read returns the value at path without modifying root. The empty path
// returns root itself; a missing location returns nil.
func (a Accessor) Read(root value.Value, path string) (value.Value, error) {
	v, _, err := a.Resolve(root, path, false)
	return v, err
}

// Write assigns v at path and returns the new root. With upsert, missing
// intermediate containers are created; without it a missing intermediate is
// an *Error. The empty path cannot be written.
func (a Accessor) Write(root value.Value, path string, v value.Value, upsert bool) (value.Value, error) {
	segs := a.Split(path)
	if len(segs) == 0 {
		return root, &Error{Op: "set", Path: path, Found: value.TypeName(root)}
	}
	last := segs[len(segs)-1]
	newRoot, err := a.descend(root, segs, 0, len(segs)-1, upsert, "set", path, func(parent value.Value) (value.Value, error) {
		return setChild(parent, last, v, path)
	})
	if errors.Is(err, errAbsent) {
		return root, &Error{Op: "set", Path: path, Segment: last, Found: "undefined"}
	}
	if err != nil {
		return root, err
	}
	return newRoot, nil
}

// Delete removes the object key or array element at path and returns the new
// root. A missing target is not an error.
func (a Accessor) Delete(root value.Value, path string) (value.Value, error) {
	segs := a.Split(path)
	if len(segs) == 0 {
		return root, &Error{Op: "delete", Path: path, Found: value.TypeName(root)}
	}
	last := segs[len(segs)-1]
	newRoot, err := a.descend(root, segs, 0, len(segs)-1, false, "delete", path, func(parent value.Value) (value.Value, error) {
		switch p := parent.(type) {
		case value.Object:
			delete(p, last)
			return p, nil
		case value.Array:
			i, ok := index(last)
			if !ok || i >= len(p) {
				return p, nil
			}
			out := make(value.Array, 0, len(p)-1)
			out = append(out, p[:i]...)
			return append(out, p[i+1:]...), nil
		}
		return parent, &Error{Op: "delete", Path: path, Segment: last, Found: value.TypeName(parent)}
	})
	if errors.Is(err, errAbsent) {
		return root, nil
	}
	if err != nil {
		return root, err
	}
	return newRoot, nil
}

// Splice edits the array at path the way Array.prototype.splice does: start
// counts from the end when negative and is clamped to the array bounds,
// deleteCount is clamped to what remains. It returns the new root and the
// removed elements. When create is set a missing array is treated as empty
// and written back; a non-array target is an *Error.
func (a Accessor) Splice(root value.Value, path string, start, deleteCount int, create bool, items ...value.Value) (value.Value, []value.Value, error) {
	cur, err := a.Read(root, path)
	if err != nil {
		return root, nil, err
	}
	var arr value.Array
	switch t := cur.(type) {
	case value.Array:
		arr = t
	case nil:
		if !create {
			return root, nil, nil
		}
	default:
		return root, nil, &Error{Op: "splice", Path: path, Segment: lastSegment(a.Split(path)), Found: value.TypeName(cur)}
	}

	n := len(arr)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := make([]value.Value, deleteCount)
	copy(removed, arr[start:start+deleteCount])
	out := make(value.Array, 0, n-deleteCount+len(items))
	out = append(out, arr[:start]...)
	out = append(out, items...)
	out = append(out, arr[start+deleteCount:]...)

	if path == "" {
		return out, removed, nil
	}
	newRoot, err := a.Write(root, path, out, true)
	if err != nil {
		return root, nil, err
	}
	return newRoot, removed, nil
}

// descend walks segs[i:depth] from node, applying fn to the value reached, and
// returns node with the (possibly replaced) child stored back in place.
func (a Accessor) descend(node value.Value, segs []string, i, depth int, upsert bool, op, path string, fn func(value.Value) (value.Value, error)) (value.Value, error) {
	if i == depth {
		return fn(node)
	}
	seg := segs[i]
	next := ""
	if i+1 < len(segs) {
		next = segs[i+1]
	}

	switch n := node.(type) {
	case value.Object:
		child, ok := n[seg]
		if !ok {
			if !upsert {
				return node, errAbsent
			}
			child = emptyContainerFor(next)
		}
		nc, err := a.descend(child, segs, i+1, depth, upsert, op, path, fn)
		if err != nil {
			return node, err
		}
		n[seg] = nc
		return n, nil
	case value.Array:
		idx, ok := index(seg)
		if !ok {
			return node, &Error{Op: op, Path: path, Segment: seg, Found: "array"}
		}
		if idx >= len(n) {
			if !upsert {
				return node, errAbsent
			}
			n = grow(n, idx+1)
			n[idx] = emptyContainerFor(next)
		}
		nc, err := a.descend(n[idx], segs, i+1, depth, upsert, op, path, fn)
		if err != nil {
			return node, err
		}
		n[idx] = nc
		return n, nil
	}
	return node, &Error{Op: op, Path: path, Segment: seg, Found: value.TypeName(node)}
}

func setChild(parent value.Value, key string, v value.Value, path string) (value.Value, error) {
	switch p := parent.(type) {
	case value.Object:
		p[key] = v
		return p, nil
	case value.Array:
		idx, ok := index(key)
		if !ok {
			return parent, &Error{Op: "set", Path: path, Segment: key, Found: "array"}
		}
		if idx >= len(p) {
			p = grow(p, idx+1)
		}
		p[idx] = v
		return p, nil
	}
	return parent, &Error{Op: "set", Path: path, Segment: key, Found: value.TypeName(parent)}
}

// emptyContainerFor picks the container to auto-vivify: an Array when the next
// segment is an integer, an Object otherwise.
func emptyContainerFor(next string) value.Value {
	if _, err := strconv.Atoi(next); err == nil {
		return value.Array{}
	}
	return value.Object{}
}

// grow extends arr to n elements, padding with Null.
func grow(arr value.Array, n int) value.Array {
	out := make(value.Array, n)
	copy(out, arr)
	for i := len(arr); i < n; i++ {
		out[i] = value.Null{}
	}
	return out
}

func index(seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func lastSegment(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
