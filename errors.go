package schemadoc

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"
	CodeRequired        = "required"
	CodeUnknownKey      = "unknown_key"
	CodeTooSmall        = "too_small"
	CodeTooBig          = "too_big"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodePattern         = "pattern"
	CodeInvalidEnum     = "invalid_enum"
	CodeNotMultiple     = "not_multiple"
	CodeNotUnique       = "not_unique"
	CodeDependency      = "dependency"
	CodeAdditionalItems = "additional_items"
	CodeAnyOf           = "any_of"
	CodeOneOf           = "one_of"
	CodeNot             = "not"
	// Document level
	CodePath          = "path"
	CodeSchemaInvalid = "schema_invalid"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // Delimiter-joined instance path ("" for the root).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error (for example *dotpath.Error).
	// Params carries structured parameters (e.g., {"min":1, "got":"string"})
	// for i18n and observability.
	Params map[string]any
	// Rule records the schema keyword (or Document operation) that produced
	// this issue.
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at items.2: expected string, got number
		fmt.Fprintf(b, "%s at %s: %s", it.Code, displayPath(it.Path), it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the issue causes to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrSchemaSelfInvalid is wrapped by the error New returns when the schema
// fails the meta-check or cannot produce a default that validates against it.
var ErrSchemaSelfInvalid = errors.New("schemadoc: schema is not self-valid")

// MalformedArgumentError is the panic value for API misuse, such as wrapping
// a scalar where an object or array is required.
type MalformedArgumentError struct {
	Op  string
	Got string // type name of the argument
}

func (e *MalformedArgumentError) Error() string {
	return fmt.Sprintf("schemadoc: %s: expected object or array, got %s", e.Op, e.Got)
}
