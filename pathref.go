package schemadoc

import (
	"fmt"
	"strconv"

	"github.com/reoring/schemadoc/i18n"
)

// PathRef builds instance paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	String() string
	Issue(code, rule string, kv ...any) Issue
}

// NewPathRef returns a PathRef positioned at base; segments are joined with
// delim ("." when empty).
func NewPathRef(base, delim string) PathRef {
	if delim == "" {
		delim = "."
	}
	return pathRef{path: base, delim: delim}
}

type pathRef struct {
	path  string
	delim string
}

func (p pathRef) Field(name string) PathRef {
	if p.path == "" {
		return pathRef{path: name, delim: p.delim}
	}
	return pathRef{path: p.path + p.delim + name, delim: p.delim}
}

func (p pathRef) Index(i int) PathRef { return p.Field(strconv.Itoa(i)) }

func (p pathRef) String() string { return p.path }

// Issue builds an Issue at p. kv are alternating param names and values; the
// message is rendered from them by the i18n translator.
func (p pathRef) Issue(code, rule string, kv ...any) Issue {
	m := map[string]any{}
	data := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		m[k] = kv[i+1]
		data[k] = fmt.Sprint(kv[i+1])
	}
	return Issue{Path: p.path, Code: code, Message: i18n.T(code, data), Params: m, Rule: rule}
}
