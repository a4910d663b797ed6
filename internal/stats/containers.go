// Package stats accumulates framing statistics over a run.
package stats

import (
	"iter"
	"strconv"
)

// LenProfile holds one cell per footprint length in [min,max], plus an
// underflow cell for shorter and an overflow cell for longer lengths.
type LenProfile[T any] struct {
	min   int
	short T
	cells []T
	long  T
}

// NewLenProfile creates a length profile over [minLen,maxLen]. Each cell
// starts as newCell(), or the zero value when newCell is nil.
func NewLenProfile[T any](minLen, maxLen int, newCell func() T) LenProfile[T] {
	n := 0
	if maxLen >= minLen {
		n = maxLen - minLen + 1
	}
	p := LenProfile[T]{min: minLen, cells: make([]T, n)}
	if newCell != nil {
		p.short, p.long = newCell(), newCell()
		for i := range p.cells {
			p.cells[i] = newCell()
		}
	}
	return p
}

// Min returns the shortest length with its own cell.
func (p *LenProfile[T]) Min() int { return p.min }

// Max returns the longest length with its own cell.
func (p *LenProfile[T]) Max() int { return p.min + len(p.cells) - 1 }

// At returns the cell for length. It never fails: lengths outside [min,max]
// resolve to the underflow or overflow cell.
func (p *LenProfile[T]) At(length int) *T {
	switch {
	case length < p.min:
		return &p.short
	case length-p.min >= len(p.cells):
		return &p.long
	default:
		return &p.cells[length-p.min]
	}
}

// All yields "<min", each length, then "≥max+1".
func (p *LenProfile[T]) All() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		if !yield("<"+strconv.Itoa(p.min), &p.short) {
			return
		}
		for i := range p.cells {
			if !yield(strconv.Itoa(p.min+i), &p.cells[i]) {
				return
			}
		}
		yield("≥"+strconv.Itoa(p.min+len(p.cells)), &p.long)
	}
}

// Frame holds one cell per codon register.
type Frame[T any] struct {
	cells [3]T
}

// FrameOf normalizes any offset into {0,1,2}, so -1 is frame 2.
func FrameOf(i int) int {
	return ((i % 3) + 3) % 3
}

// At returns the cell for the frame of i.
func (f *Frame[T]) At(i int) *T {
	return &f.cells[FrameOf(i)]
}

// All yields frames 0, 1 and 2.
func (f *Frame[T]) All() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		for i := range f.cells {
			if !yield(strconv.Itoa(i), &f.cells[i]) {
				return
			}
		}
	}
}

// Metagene holds one cell per position in the inclusive range [start,end],
// typically offsets around a start or stop codon.
type Metagene[T any] struct {
	start int
	cells []T
}

// NewMetagene creates a metagene over [start,end]. Each cell starts as
// newCell(), or the zero value when newCell is nil.
func NewMetagene[T any](start, end int, newCell func() T) Metagene[T] {
	n := 0
	if end >= start {
		n = end - start + 1
	}
	m := Metagene[T]{start: start, cells: make([]T, n)}
	if newCell != nil {
		for i := range m.cells {
			m.cells[i] = newCell()
		}
	}
	return m
}

// Start returns the first position covered.
func (m *Metagene[T]) Start() int { return m.start }

// End returns the last position covered.
func (m *Metagene[T]) End() int { return m.start + len(m.cells) - 1 }

// At returns the cell for pos, or false when pos is out of range.
func (m *Metagene[T]) At(pos int) (*T, bool) {
	i := pos - m.start
	if i < 0 || i >= len(m.cells) {
		return nil, false
	}
	return &m.cells[i], true
}

// All yields each position in increasing order.
func (m *Metagene[T]) All() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		for i := range m.cells {
			if !yield(strconv.Itoa(m.start+i), &m.cells[i]) {
				return
			}
		}
	}
}
