// Package source reads the three input artifacts of a batch run: the users
// and viewing sessions CSV tables and the nested content catalog JSON.
// Every reader is all-or-nothing: on failure it returns no records and a
// *ReadError naming the file and, where known, the row or key at fault.
package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingInput marks a required source file that does not exist.
var ErrMissingInput = errors.New("missing input")

// ErrMalformedRecord marks a row or object that lacks a required field or
// whose value cannot be coerced to the expected type.
var ErrMalformedRecord = errors.New("malformed record")

// ReadError identifies the file and, when available, the 1-based data row
// and column/key of a parse failure.
type ReadError struct {
	Path string
	Row  int
	Key  string
	Err  error
}

func (e *ReadError) Error() string {
	var b strings.Builder
	b.WriteString("read ")
	b.WriteString(e.Path)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, ": %q", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ReadError) Unwrap() error { return e.Err }

// MissingInputError lists every required input absent at startup.
type MissingInputError struct {
	Paths []string
}

func (e *MissingInputError) Error() string {
	return "missing input files: " + strings.Join(e.Paths, ", ")
}

// Is makes errors.Is(err, ErrMissingInput) hold.
func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

func malformed(path string, row int, key string, err error) *ReadError {
	if err == nil {
		return &ReadError{Path: path, Row: row, Key: key, Err: ErrMalformedRecord}
	}
	return &ReadError{Path: path, Row: row, Key: key, Err: fmt.Errorf("%w: %w", ErrMalformedRecord, err)}
}
