// Package locus provides genomic positions and splice-aware locations with
// coordinate projection between reference and transcript space.
package locus

import "unique"

// Name is an interned identifier for reference sequences, genes and
// transcripts. Two Names are equal iff their strings are equal, and copying a
// Name copies a single pointer.
type Name struct {
	h unique.Handle[string]
}

// Intern returns the canonical Name for s.
func Intern(s string) Name {
	return Name{h: unique.Make(s)}
}

// IsZero reports whether n was never assigned.
func (n Name) IsZero() bool {
	return n == Name{}
}

// String returns the interned string, or "" for the zero Name.
func (n Name) String() string {
	if n.IsZero() {
		return ""
	}
	return n.h.Value()
}
