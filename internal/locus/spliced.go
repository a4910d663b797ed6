package locus

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Interval is a half-open genomic range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Len returns the number of bases in the interval.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// Spliced is a stranded location made of one or more exons. Exons are kept in
// genomic order; the internal coordinate runs 0..Length()-1 along the
// concatenated exons in transcription order. A Spliced is immutable.
type Spliced struct {
	ref    Name
	strand Strand
	exons  []Interval
	prefix []int // prefix[i] is the total length of exons[:i]
}

// NewSpliced builds a location from BED12-style blocks: start is the genomic
// start of the first block, and lengths/starts give each block's size and its
// offset from start.
func NewSpliced(ref Name, start int, lengths, starts []int, strand Strand) (*Spliced, error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no exon blocks")
	}
	if len(lengths) != len(starts) {
		return nil, fmt.Errorf("%d block lengths but %d block starts", len(lengths), len(starts))
	}
	if starts[0] != 0 {
		return nil, fmt.Errorf("first block starts at offset %d, not 0", starts[0])
	}
	if strand != Forward && strand != Reverse {
		return nil, fmt.Errorf("invalid strand %d", strand)
	}

	exons := make([]Interval, len(lengths))
	for i := range lengths {
		if lengths[i] <= 0 {
			return nil, fmt.Errorf("block %d has non-positive length %d", i, lengths[i])
		}
		exons[i] = Interval{Start: start + starts[i], End: start + starts[i] + lengths[i]}
		if i > 0 && exons[i].Start < exons[i-1].End {
			return nil, fmt.Errorf("block %d at %d overlaps previous block ending at %d",
				i, exons[i].Start, exons[i-1].End)
		}
	}
	return newSpliced(ref, exons, strand), nil
}

// NewContig returns a single-exon location [start, start+length).
func NewContig(ref Name, start, length int, strand Strand) (*Spliced, error) {
	return NewSpliced(ref, start, []int{length}, []int{0}, strand)
}

func newSpliced(ref Name, exons []Interval, strand Strand) *Spliced {
	prefix := make([]int, len(exons)+1)
	for i, e := range exons {
		prefix[i+1] = prefix[i] + e.Len()
	}
	return &Spliced{ref: ref, strand: strand, exons: exons, prefix: prefix}
}

// Ref returns the reference sequence name.
func (s *Spliced) Ref() Name { return s.ref }

// Strand returns the location's strand.
func (s *Spliced) Strand() Strand { return s.strand }

// Length is the total exonic length.
func (s *Spliced) Length() int { return s.prefix[len(s.exons)] }

// Start is the genomic start of the first exon.
func (s *Spliced) Start() int { return s.exons[0].Start }

// End is the genomic end (exclusive) of the last exon.
func (s *Spliced) End() int { return s.exons[len(s.exons)-1].End }

// Exons returns a copy of the exon intervals in genomic order.
func (s *Spliced) Exons() []Interval {
	out := make([]Interval, len(s.exons))
	copy(out, s.exons)
	return out
}

// FirstPos is the 5' base of the location.
func (s *Spliced) FirstPos() Pos {
	if s.strand == Reverse {
		return Pos{Ref: s.ref, Pos: s.End() - 1, Strand: s.strand}
	}
	return Pos{Ref: s.ref, Pos: s.Start(), Strand: s.strand}
}

// LastPos is the 3' base of the location.
func (s *Spliced) LastPos() Pos {
	if s.strand == Reverse {
		return Pos{Ref: s.ref, Pos: s.Start(), Strand: s.strand}
	}
	return Pos{Ref: s.ref, Pos: s.End() - 1, Strand: s.strand}
}

// ProjectInto expresses p as an offset from the 5' end of s. The returned
// strand is Forward when p lies on the same strand as s. ok is false when p is
// on another reference or outside every exon.
func (s *Spliced) ProjectInto(p Pos) (offset int, strand Strand, ok bool) {
	if p.Ref != s.ref {
		return 0, 0, false
	}
	i := sort.Search(len(s.exons), func(i int) bool { return s.exons[i].End > p.Pos })
	if i == len(s.exons) || p.Pos < s.exons[i].Start {
		return 0, 0, false
	}
	offset = s.prefix[i] + p.Pos - s.exons[i].Start
	if s.strand == Reverse {
		offset = s.Length() - 1 - offset
	}
	strand = Forward
	if p.Strand != s.strand {
		strand = Reverse
	}
	return offset, strand, true
}

// ProjectOutOf maps an internal offset back to its genomic position on the
// strand of s. ok is false for offsets outside [0, Length()).
func (s *Spliced) ProjectOutOf(offset int) (Pos, bool) {
	n := s.Length()
	if offset < 0 || offset >= n {
		return Pos{}, false
	}
	fwd := offset
	if s.strand == Reverse {
		fwd = n - 1 - offset
	}
	i := sort.Search(len(s.exons), func(i int) bool { return s.prefix[i+1] > fwd })
	return Pos{Ref: s.ref, Pos: s.exons[i].Start + fwd - s.prefix[i], Strand: s.strand}, true
}

// Overlaps reports whether s and other share at least one exonic base on the
// same reference, regardless of strand.
func (s *Spliced) Overlaps(other *Spliced) bool {
	if s.ref != other.ref {
		return false
	}
	i, j := 0, 0
	for i < len(s.exons) && j < len(other.exons) {
		a, b := s.exons[i], other.exons[j]
		if a.Start < b.End && b.Start < a.End {
			return true
		}
		if a.End <= b.End {
			i++
		} else {
			j++
		}
	}
	return false
}

// blocks returns the exons in transcription order.
func (s *Spliced) blocks() []Interval {
	out := s.Exons()
	if s.strand == Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// String formats the location as "chr01:1000-1100;1200-1300(+)".
func (s *Spliced) String() string {
	var b strings.Builder
	b.WriteString(s.ref.String())
	b.WriteByte(':')
	for i, e := range s.exons {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(e.Start))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(e.End))
	}
	b.WriteByte('(')
	b.WriteString(s.strand.String())
	b.WriteByte(')')
	return b.String()
}

// ParseSpliced parses the form produced by String. A single block such as
// "chr2:300000-300027(+)" gives a contig.
func ParseSpliced(s string) (*Spliced, error) {
	ref, body, strand, err := splitLocation(s)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(body, ";")
	exons := make([]Interval, 0, len(parts))
	for _, part := range parts {
		dash := strings.IndexByte(part, '-')
		if dash <= 0 {
			return nil, fmt.Errorf("location %q: bad block %q", s, part)
		}
		start, err := strconv.Atoi(part[:dash])
		if err != nil {
			return nil, fmt.Errorf("location %q: bad block start: %w", s, err)
		}
		end, err := strconv.Atoi(part[dash+1:])
		if err != nil {
			return nil, fmt.Errorf("location %q: bad block end: %w", s, err)
		}
		exons = append(exons, Interval{Start: start, End: end})
	}

	start := exons[0].Start
	lengths := make([]int, len(exons))
	starts := make([]int, len(exons))
	for i, e := range exons {
		lengths[i] = e.Len()
		starts[i] = e.Start - start
	}
	loc, err := NewSpliced(Intern(ref), start, lengths, starts, strand)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", s, err)
	}
	return loc, nil
}
