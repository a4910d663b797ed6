package stats

import (
	"math"

	"github.com/inodb/ribo-framing/internal/annotate"
)

// Span is an inclusive integer range.
type Span struct {
	Start int
	End   int
}

// AlignStats counts alignment records by outcome.
type AlignStats struct {
	counts [annotate.Good + 1]int
}

// Add counts one record.
func (s *AlignStats) Add(o annotate.Outcome) {
	s.counts[o]++
}

// Count returns the number of records with outcome o.
func (s *AlignStats) Count(o annotate.Outcome) int {
	return s.counts[o]
}

// Total returns the number of records counted.
func (s *AlignStats) Total() int {
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}

// Annotated returns the number of footprints that reached overlap
// resolution, the denominator of annotation-level fractions.
func (s *AlignStats) Annotated() int {
	n := 0
	for o, c := range s.counts {
		if annotate.Outcome(o).IsAnnotated() {
			n += c
		}
	}
	return n
}

// FramingStats collects every table reported for a run. It is not safe for
// concurrent use.
type FramingStats struct {
	Align AlignStats

	// FrameLength counts body frames by footprint length.
	FrameLength LenProfile[Frame[int]]

	// AroundStart and AroundEnd count footprint 5' ends by offset from the
	// CDS start and end, split by length.
	AroundStart Metagene[LenProfile[int]]
	AroundEnd   Metagene[LenProfile[int]]
}

// New creates empty statistics for footprint lengths and a flanking window.
func New(lengths, flanking Span) *FramingStats {
	byLength := func() LenProfile[int] {
		return NewLenProfile[int](lengths.Start, lengths.End, nil)
	}
	return &FramingStats{
		FrameLength: NewLenProfile[Frame[int]](lengths.Start, lengths.End, nil),
		AroundStart: NewMetagene(flanking.Start, flanking.End, byLength),
		AroundEnd:   NewMetagene(flanking.Start, flanking.End, byLength),
	}
}

// Tally records one classified alignment.
func (s *FramingStats) Tally(res annotate.Result) {
	s.Align.Add(res.Outcome)
	if res.Outcome != annotate.Good || res.Framing == nil {
		return
	}

	f := res.Framing
	if f.Frame.Valid {
		(*s.FrameLength.At(res.Length).At(f.Frame.Value))++
	}
	if f.VsCDSStart.Valid {
		if cell, ok := s.AroundStart.At(f.VsCDSStart.Value); ok {
			(*cell.At(res.Length))++
		}
	}
	if f.VsCDSEnd.Valid {
		if cell, ok := s.AroundEnd.At(f.VsCDSEnd.Value); ok {
			(*cell.At(res.Length))++
		}
	}
}

// InfoContent scores how far a frame distribution is from uniform as
// log2(3) minus its Shannon entropy in bits: 0 for no frame preference and
// log2(3) when every count is in one frame. ok is false for an empty row.
func InfoContent(f *Frame[int]) (bits float64, ok bool) {
	total := 0
	for _, c := range f.cells {
		total += c
	}
	if total == 0 {
		return 0, false
	}
	h := 0.0
	for _, c := range f.cells {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	// Rounding can leave a uniform row a hair below zero.
	return max(0, math.Log2(3)-h), true
}
