// Package transform provides per-item field projection for fetched items.
//
// A Projection maps raw API items onto the configured output columns. It is
// a pure per-item function with no cross-item state: applying it twice, or
// in any order, yields identical output. Missing keys never fail an item,
// they produce empty output cells.
package transform

import (
	"fmt"
)

// DeriveFunc computes a column value from a whole raw item.
type DeriveFunc func(item map[string]any) any

// Field describes one output column.
type Field struct {
	// Column is the output column name
	Column string

	// Key is the source key to copy the value from. Ignored when Derive
	// is set; defaults to Column when empty.
	Key string

	// Derive computes the value from the whole item (optional)
	Derive DeriveFunc
}

// Projection is an ordered field list applied uniformly to every item,
// regardless of which page produced it.
type Projection struct {
	fields []Field
}

// NewProjection creates a projection from an ordered field list.
func NewProjection(fields []Field) (*Projection, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("projection requires at least one field")
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Column == "" {
			return nil, fmt.Errorf("field with empty column name")
		}
		if seen[f.Column] {
			return nil, fmt.Errorf("duplicate column %q", f.Column)
		}
		seen[f.Column] = true
	}

	return &Projection{fields: fields}, nil
}

// FromKeys builds a plain key-copy projection, one column per source key.
func FromKeys(keys []string) (*Projection, error) {
	fields := make([]Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, Field{Column: key, Key: key})
	}
	return NewProjection(fields)
}

// Columns returns the output column names in configured order.
func (p *Projection) Columns() []string {
	cols := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		cols = append(cols, f.Column)
	}
	return cols
}

// Apply projects one raw item onto the output columns.
// Absent source keys map to nil; malformed items never fail.
func (p *Projection) Apply(item map[string]any) map[string]any {
	out := make(map[string]any, len(p.fields))
	for _, f := range p.fields {
		if f.Derive != nil {
			out[f.Column] = f.Derive(item)
			continue
		}
		key := f.Key
		if key == "" {
			key = f.Column
		}
		out[f.Column] = item[key]
	}
	return out
}

// ApplyAll projects a batch of items, preserving their order.
func (p *Projection) ApplyAll(items []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, p.Apply(item))
	}
	return out
}
