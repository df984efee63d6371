// Package model contains domain models passed between layers.
package model

import "strings"

// RawRow is one decoded source line: an ordered mapping of header name to
// string value. Order follows the source file's header order so that derived
// documents keep a stable column layout across imports.
type RawRow struct {
	keys   []string
	values map[string]string
}

// NewRawRow creates an empty row.
func NewRawRow() RawRow {
	return RawRow{values: make(map[string]string)}
}

// Set stores a value under key, appending the key on first use.
func (r *RawRow) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key and whether the key exists.
func (r RawRow) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the row's keys in insertion order.
// The returned slice must not be mutated by the caller.
func (r RawRow) Keys() []string {
	return r.keys
}

// Len returns the number of keys in the row.
func (r RawRow) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy of the row.
func (r RawRow) Clone() RawRow {
	c := RawRow{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// IsBlank reports whether every value in the row is empty or whitespace.
func (r RawRow) IsBlank() bool {
	for _, k := range r.keys {
		if strings.TrimSpace(r.values[k]) != "" {
			return false
		}
	}
	return true
}

// Map returns the row as a plain map. Key order is lost; intended for
// serialization into document bodies where the header list travels separately.
func (r RawRow) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// FromMap builds a RawRow from a plain map using keyOrder for ordering.
// Keys present in the map but missing from keyOrder are skipped so the
// resulting shape stays deterministic.
func FromMap(m map[string]string, keyOrder []string) RawRow {
	r := NewRawRow()
	for _, k := range keyOrder {
		if v, ok := m[k]; ok {
			r.Set(k, v)
		}
	}
	return r
}
