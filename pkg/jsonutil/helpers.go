// Package jsonutil provides the JSON encoding helpers used by the CLI's
// --format json output and by the snapshot store.
package jsonutil

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Write encodes v to w as indented JSON followed by a newline.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// MustMarshal marshals a value to JSON, panicking on error.
// Use only for values known to be marshalable.
func MustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("jsonutil.MustMarshal: %v", err))
	}
	return string(b)
}

// MarshalStrings encodes an ordered string list, as stored for column
// sets.
func MarshalStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	return MustMarshal(ss)
}

// UnmarshalStrings decodes a list written by MarshalStrings. Empty input
// yields nil.
func UnmarshalStrings(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decoding string list: %w", err)
	}
	return out, nil
}
