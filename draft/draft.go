// Package draft keeps unsaved schema edits in a key-value store. Saves are
// debounced per key: only the last snapshot scheduled within the window is
// written.
package draft

import (
	"context"
	"fmt"

	formkit "github.com/reoring/formkit"
)

// KeyNew is the draft key of a schema that has not been published yet.
const KeyNew = "draft_form_new"

// KeyFor returns the storage key for the schema id, or KeyNew when id is
// empty.
func KeyFor(id formkit.SchemaID) string {
	if id == "" {
		return KeyNew
	}
	return "draft_form_" + id.String()
}

// Snapshot is the persisted unit: the schema name and its field list.
type Snapshot struct {
	Name   string                    `json:"name"`
	Fields []formkit.FieldDefinition `json:"fields"`
}

// SnapshotOf captures the editable part of s.
func SnapshotOf(s formkit.Schema) Snapshot {
	c := s.Clone()
	return Snapshot{Name: c.Name, Fields: c.Fields}
}

func (s Snapshot) clone() Snapshot {
	return SnapshotOf(formkit.Schema{Name: s.Name, Fields: s.Fields})
}

// Store is a string-keyed byte store. Get reports ok=false for a missing key;
// Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// IOError describes a failed store operation. The manager logs and counts
// these; they never reach the caller.
type IOError struct {
	Op  string // get, put, delete or decode
	Key string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("draft %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
