// Package store holds the corpus: one immutable table per record type,
// keyed by document id. Tables are populated once at build time and never
// mutated afterwards, so they are safe for unlimited concurrent readers.
package store

import (
	"fmt"

	apperrors "github.com/auroralabs/aurora-search/pkg/errors"
)

// Table is an id-keyed collection of records of a single type. It is
// read-only after construction.
type Table[T Record] struct {
	docs map[string]T
	ids  []string // insertion order, used by Enumerate
}

// NewTable builds a Table from a batch of records. The whole batch is
// rejected when two records share an id or a record fails validation.
func NewTable[T Record](records []T) (*Table[T], error) {
	t := &Table[T]{
		docs: make(map[string]T, len(records)),
		ids:  make([]string, 0, len(records)),
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		id := rec.DocID()
		if _, exists := t.docs[id]; exists {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrDuplicateDocument, id)
		}
		t.docs[id] = rec
		t.ids = append(t.ids, id)
	}
	return t, nil
}

// Get looks up a record by id.
func (t *Table[T]) Get(id string) (T, bool) {
	rec, ok := t.docs[id]
	return rec, ok
}

// Len returns the number of records in the table.
func (t *Table[T]) Len() int {
	return len(t.docs)
}

// Enumerate calls fn for every record in insertion order. Used only during
// index construction.
func (t *Table[T]) Enumerate(fn func(rec T)) {
	for _, id := range t.ids {
		fn(t.docs[id])
	}
}
