// Package repository maps the loader's records onto the relational
// schema. Each table has a repo whose ReplaceAll is one unit of work:
// truncate, bulk insert, commit, or roll back on the first failure.
// IntegrityRepo reads the loaded tables back for verification.
package repository

import (
	"errors"
	"fmt"
)

// ErrEmptyColumns guards the bulk insert builder against a table
// definition with no columns.
var ErrEmptyColumns = errors.New("bulk insert: no columns")

// PartialLoadError is returned when a table's load was rejected by the
// database (constraint violation, type error, lost connection). The
// table's transaction has been rolled back; tables loaded before it stay
// committed.
type PartialLoadError struct {
	Table string
	Err   error
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("load %s: rolled back: %v", e.Table, e.Err)
}

func (e *PartialLoadError) Unwrap() error { return e.Err }
