package locus

// SpliceCompatible reports whether inner lies on the same strand as outer and
// forms a contiguous stretch of outer's internal coordinates: every block of
// inner maps whole into outer, and consecutive blocks of inner land on
// consecutive outer offsets.
func SpliceCompatible(outer, inner *Spliced) bool {
	if outer.strand != inner.strand {
		return false
	}
	prevEnd := 0
	for i, blk := range inner.blocks() {
		first, last := blk.Start, blk.End-1
		if inner.strand == Reverse {
			first, last = last, first
		}
		start, strand, ok := outer.ProjectInto(Pos{Ref: inner.ref, Pos: first, Strand: inner.strand})
		if !ok || strand != Forward {
			return false
		}
		if i > 0 && start != prevEnd+1 {
			return false
		}
		end, _, ok := outer.ProjectInto(Pos{Ref: inner.ref, Pos: last, Strand: inner.strand})
		if !ok || 1+end-start != blk.Len() {
			return false
		}
		prevEnd = end
	}
	return true
}
