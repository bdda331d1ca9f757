package value

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	eng "github.com/reoring/schemadoc/internal/engine"
	"github.com/reoring/schemadoc/source/gojson"
)

// DecodeOpt configures JSON decoding. The zero value rejects duplicate object
// keys and imposes no depth limit.
type DecodeOpt struct {
	AllowDuplicateKeys bool
	MaxDepth           int
}

// ParseJSON decodes exactly one JSON document into a Value.
func ParseJSON(data []byte, opts ...DecodeOpt) (Value, error) {
	return ParseJSONReader(bytes.NewReader(data), opts...)
}

// ParseJSONReader decodes exactly one JSON document from r into a Value.
func ParseJSONReader(r io.Reader, opts ...DecodeOpt) (Value, error) {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	eo := eng.EnforceOptions{OnDuplicate: eng.DupError, MaxDepth: opt.MaxDepth}
	if opt.AllowDuplicateKeys {
		eo.OnDuplicate = eng.DupIgnore
	}
	raw, err := eng.DecodeDocument(eng.WrapWithEnforcement(gojson.NewReader(r), eo))
	if err != nil {
		return nil, fmt.Errorf("value: decode json: %w", err)
	}
	return FromAny(raw)
}

// MustParseJSON is ParseJSON for literals in tests and examples; it panics on
// error.
func MustParseJSON(s string) Value {
	v, err := ParseJSON([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// Marshal encodes v as JSON. A nil Value encodes as null.
func Marshal(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// MarshalIndent is Marshal with indentation.
func MarshalIndent(v Value, prefix, indent string) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(v, prefix, indent)
}
