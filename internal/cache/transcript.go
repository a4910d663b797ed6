// Package cache provides the transcript catalog used for footprint annotation.
package cache

import (
	"fmt"

	"github.com/inodb/ribo-framing/internal/locus"
)

// CDSRange is a half-open coding region in transcript coordinates.
type CDSRange struct {
	Start int
	End   int
}

// Len returns the CDS length in nucleotides.
func (r CDSRange) Len() int {
	return r.End - r.Start
}

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID   locus.Name     // Transcript ID (e.g., YAL030W)
	Gene locus.Name     // Parent gene ID
	Loc  *locus.Spliced // Exon structure
	CDS  *CDSRange      // Coding region in transcript coordinates, nil if non-coding
}

// NewTranscript validates that cds lies within loc before building the
// transcript.
func NewTranscript(gene, id locus.Name, loc *locus.Spliced, cds *CDSRange) (*Transcript, error) {
	if cds != nil {
		if cds.End <= cds.Start || cds.Start < 0 {
			return nil, fmt.Errorf("transcript %s: invalid CDS range [%d,%d)", id, cds.Start, cds.End)
		}
		if cds.End > loc.Length() {
			return nil, fmt.Errorf("transcript %s: CDS range [%d,%d) extends beyond transcript length %d",
				id, cds.Start, cds.End, loc.Length())
		}
	}
	return &Transcript{ID: id, Gene: gene, Loc: loc, CDS: cds}, nil
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDS != nil
}

// Position is a 0-based offset within a transcript's exonic sequence.
type Position struct {
	Transcript *Transcript
	Pos        int
}

// OffsetFromCDSStart returns the signed distance from the first CDS
// nucleotide, or false for a non-coding transcript.
func (p Position) OffsetFromCDSStart() (int, bool) {
	if p.Transcript.CDS == nil {
		return 0, false
	}
	return p.Pos - p.Transcript.CDS.Start, true
}

// OffsetFromCDSEnd returns the signed distance from the exclusive CDS end, so
// the first base of the stop codon sits at -3.
func (p Position) OffsetFromCDSEnd() (int, bool) {
	if p.Transcript.CDS == nil {
		return 0, false
	}
	return p.Pos - p.Transcript.CDS.End, true
}

// CDSFrame returns the codon register (0, 1 or 2) of the position relative to
// the CDS start.
func (p Position) CDSFrame() (int, bool) {
	off, ok := p.OffsetFromCDSStart()
	if !ok {
		return 0, false
	}
	return ((off % 3) + 3) % 3, true
}

func (p Position) String() string {
	return fmt.Sprintf("%s@%d", p.Transcript.ID, p.Pos)
}
