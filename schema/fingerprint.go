// Package schema adds a couple of small helpers around *arrow.Schema, which
// is used directly as the engine's Field/Schema model (an ordered, named,
// typed, nullable sequence of fields with structural equality already built
// in via arrow.Schema.Equal).
package schema

import (
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	metro "github.com/dgryski/go-metro"
)

// Fingerprint returns a structural digest of a schema: same fields, same
// names, same types and nullability produce the same fingerprint regardless
// of *arrow.Schema pointer identity. The engine itself does not call it; it
// is a helper for hosts that want a cheap schema comparison or cache key.
func Fingerprint(s *arrow.Schema) uint64 {
	if s == nil {
		return 0
	}

	buf := make([]byte, 0, 64)
	for _, f := range s.Fields() {
		buf = append(buf, f.Name...)
		buf = append(buf, 0)
		buf = append(buf, f.Type.Name()...)
		buf = append(buf, 0)
		buf = strconv.AppendBool(buf, f.Nullable)
		buf = append(buf, 0)
	}
	return metro.Hash64(buf, 0)
}

// Project returns the subset of s's fields whose name is in names, preserving
// s's original field order (the order the underlying data source exposes
// them in, not the order names happens to be iterated).
func Project(s *arrow.Schema, names map[string]struct{}) *arrow.Schema {
	if names == nil {
		return s
	}

	fields := make([]arrow.Field, 0, len(names))
	for _, f := range s.Fields() {
		if _, ok := names[f.Name]; ok {
			fields = append(fields, f)
		}
	}
	return arrow.NewSchema(fields, nil)
}

// IndexOf returns the ordinal position of name in s, or -1 if absent.
func IndexOf(s *arrow.Schema, name string) int {
	indices := s.FieldIndices(name)
	if len(indices) == 0 {
		return -1
	}
	return indices[0]
}
