package cache

import (
	"github.com/biogo/store/interval"
)

// extent is a transcript's genomic bounding box in the interval tree.
type extent struct {
	start, end int
	uid        uintptr
	trx        *Transcript
}

// Overlap uses half-open interval indexing.
func (e extent) Overlap(b interval.IntRange) bool {
	return e.end > b.Start && e.start < b.End
}

func (e extent) ID() uintptr {
	return e.uid
}

func (e extent) Range() interval.IntRange {
	return interval.IntRange{Start: e.start, End: e.end}
}

// IntervalTree indexes transcripts of one reference sequence by their
// genomic extent.
type IntervalTree struct {
	tree interval.IntTree
}

// Insert adds a transcript under a caller-unique id.
func (t *IntervalTree) Insert(trx *Transcript, uid uintptr) error {
	return t.tree.Insert(extent{start: trx.Loc.Start(), end: trx.Loc.End(), uid: uid, trx: trx}, false)
}

// Len returns the number of indexed transcripts.
func (t *IntervalTree) Len() int {
	return t.tree.Len()
}

// DoOverlaps calls fn for every transcript whose extent intersects
// [start, end) until fn returns false.
func (t *IntervalTree) DoOverlaps(start, end int, fn func(*Transcript) bool) {
	t.tree.DoMatching(func(iv interval.IntInterface) bool {
		return !fn(iv.(extent).trx)
	}, extent{start: start, end: end})
}

// FindOverlaps returns all transcripts whose extent intersects [start, end).
func (t *IntervalTree) FindOverlaps(start, end int) []*Transcript {
	var result []*Transcript
	t.DoOverlaps(start, end, func(trx *Transcript) bool {
		result = append(result, trx)
		return true
	})
	return result
}
