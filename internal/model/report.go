package model

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// IntegrityReport is the post-load snapshot of the relational store.
// Orphan counts are measured, never enforced: a non-zero count fails
// Passed but does not undo the load.
type IntegrityReport struct {
	Users             int64                 `json:"users"`
	ContentByKind     map[ContentKind]int64 `json:"content_by_kind"`
	ContentTotal      int64                 `json:"content_total"`
	Sessions          int64                 `json:"sessions"`
	OrphanUserRefs    int64                 `json:"orphan_user_refs"`
	OrphanContentRefs int64                 `json:"orphan_content_refs"`
}

// Passed is true when no session has a dangling user or content reference.
func (r IntegrityReport) Passed() bool {
	return r.OrphanUserRefs == 0 && r.OrphanContentRefs == 0
}

// WriteSummary prints the human readable verification block shown at the
// end of a pipeline run.
func (r IntegrityReport) WriteSummary(w io.Writer) error {
	var b strings.Builder
	b.WriteString("verification\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "users:    %d\n", r.Users)
	kinds := make([]string, 0, len(r.ContentByKind))
	for k := range r.ContentByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "content (%s): %d\n", k, r.ContentByKind[ContentKind(k)])
	}
	fmt.Fprintf(&b, "content:  %d\n", r.ContentTotal)
	fmt.Fprintf(&b, "sessions: %d\n", r.Sessions)
	if r.Passed() {
		b.WriteString("referential integrity: OK\n")
	} else {
		fmt.Fprintf(&b, "orphan user refs:    %d\n", r.OrphanUserRefs)
		fmt.Fprintf(&b, "orphan content refs: %d\n", r.OrphanContentRefs)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
