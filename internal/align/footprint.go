package align

import (
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/inodb/ribo-framing/internal/locus"
)

// RefNames maps header reference IDs to interned names.
type RefNames struct {
	names []locus.Name
}

// NewRefNames interns every reference of h.
func NewRefNames(h *sam.Header) *RefNames {
	refs := h.Refs()
	names := make([]locus.Name, len(refs))
	for i, ref := range refs {
		names[i] = locus.Intern(ref.Name())
	}
	return &RefNames{names: names}
}

// Lookup returns the interned name for a record's reference.
func (r *RefNames) Lookup(ref *sam.Reference) (locus.Name, error) {
	if ref == nil {
		return locus.Name{}, fmt.Errorf("record has no reference")
	}
	id := ref.ID()
	if id < 0 || id >= len(r.names) {
		return locus.Name{}, fmt.Errorf("reference ID %d (%s) not in header", id, ref.Name())
	}
	return r.names[id], nil
}

// Len returns the number of references.
func (r *RefNames) Len() int {
	return len(r.names)
}

// IsUnmapped reports whether the record has no alignment position.
func IsUnmapped(rec *sam.Record) bool {
	return rec.Flags&sam.Unmapped != 0 || rec.Ref == nil || rec.Pos < 0
}

// CigarBlocks converts a CIGAR into aligned blocks relative to the alignment
// start. Matches, mismatches and deletions extend the current block; a
// reference skip closes it. Insertions, clipping and padding consume no
// reference and are ignored.
func CigarBlocks(cigar sam.Cigar) (lengths, starts []int) {
	blockStart, blockEnd := 0, 0
	for _, co := range cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion:
			blockEnd += co.Len()
		case sam.CigarSkipped:
			if blockEnd > blockStart {
				starts = append(starts, blockStart)
				lengths = append(lengths, blockEnd-blockStart)
			}
			blockStart = blockEnd + co.Len()
			blockEnd = blockStart
		}
	}
	if blockEnd > blockStart {
		starts = append(starts, blockStart)
		lengths = append(lengths, blockEnd-blockStart)
	}
	return lengths, starts
}

// Footprint returns the spliced genomic location covered by a mapped record.
// Unmapped records give nil without error.
func Footprint(rec *sam.Record, refs *RefNames) (*locus.Spliced, error) {
	if IsUnmapped(rec) {
		return nil, nil
	}
	ref, err := refs.Lookup(rec.Ref)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rec.Name, err)
	}

	lengths, starts := CigarBlocks(rec.Cigar)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("read %s: CIGAR %v covers no reference bases", rec.Name, rec.Cigar)
	}
	// A leading skip leaves the first block away from the alignment start.
	shift := starts[0]
	for i := range starts {
		starts[i] -= shift
	}

	strand := locus.Forward
	if rec.Flags&sam.Reverse != 0 {
		strand = locus.Reverse
	}
	loc, err := locus.NewSpliced(ref, rec.Pos+shift, lengths, starts, strand)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rec.Name, err)
	}
	return loc, nil
}

// HitCount returns the NH tag value, the number of reported alignments for
// the read.
func HitCount(rec *sam.Record) (int, bool) {
	return intTag(rec, "NH")
}

// HitIndex returns the HI tag value, the 1-based index of this alignment
// among the read's hits.
func HitIndex(rec *sam.Record) (int, bool) {
	return intTag(rec, "HI")
}

func intTag(rec *sam.Record, tag string) (int, bool) {
	aux, ok := rec.Tag([]byte(tag))
	if !ok {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case uint8:
		return int(v), true
	case int8:
		return int(v), true
	case uint16:
		return int(v), true
	case int16:
		return int(v), true
	case uint32:
		return int(v), true
	case int32:
		return int(v), true
	}
	return 0, false
}
