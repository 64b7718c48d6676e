package models

import (
	"encoding/json"
	"time"
)

// Nullable tells an absent JSON field apart from an explicit null.
// Set is true whenever the field appeared in the payload; Value is nil for null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// NullableID is an optional reference that an explicit null clears.
type NullableID = Nullable[ID]

// Null is a present field holding null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Some is a present field holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}

	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	n.Value = v
	return nil
}

// putNullable records column in changes when n was supplied, as NULL when
// n carries no value.
func putNullable[T any](changes map[string]any, column string, n Nullable[T]) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		changes[column] = nil
		return
	}
	changes[column] = *n.Value
}

// utcTime drops the zone of a supplied time so stored values compare by instant.
func utcTime(n Nullable[time.Time]) Nullable[time.Time] {
	if n.Value != nil {
		return Some(n.Value.UTC())
	}
	return n
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
