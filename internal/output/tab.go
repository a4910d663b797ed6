// Package output provides tab-delimited report formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/ribo-framing/internal/annotate"
	"github.com/inodb/ribo-framing/internal/stats"
)

// TabWriter writes tab-delimited rows.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteRow writes one row.
func (tw *TabWriter) WriteRow(values ...string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// fraction formats n/total, or "-" when total is zero.
func fraction(n, total int) string {
	if total == 0 {
		return "-"
	}
	return strconv.FormatFloat(float64(n)/float64(total), 'f', 4, 64)
}

// WriteOutcomes writes outcome counts with their fraction of all alignments
// and, for annotated outcomes, of annotated footprints.
func WriteOutcomes(w io.Writer, s *stats.AlignStats) error {
	tw := NewTabWriter(w)
	total, annotated := s.Total(), s.Annotated()

	if err := tw.WriteRow("Category", "Count", "FracAlign", "FracAnnot"); err != nil {
		return err
	}
	for _, o := range annotate.Outcomes() {
		n := s.Count(o)
		fracAnnot := "-"
		if o.IsAnnotated() {
			fracAnnot = fraction(n, annotated)
		}
		if err := tw.WriteRow(o.String(), strconv.Itoa(n), fraction(n, total), fracAnnot); err != nil {
			return err
		}
	}
	if err := tw.WriteRow("Annotated", strconv.Itoa(annotated), fraction(annotated, total), fraction(annotated, annotated)); err != nil {
		return err
	}
	if err := tw.WriteRow("Total", strconv.Itoa(total), fraction(total, total), "-"); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteFrameLength writes body-frame counts per footprint length with the
// information content of each row in bits.
func WriteFrameLength(w io.Writer, p *stats.LenProfile[stats.Frame[int]]) error {
	tw := NewTabWriter(w)
	if err := tw.WriteRow("Length", "Frame0", "Frame1", "Frame2", "InfoBits"); err != nil {
		return err
	}
	for label, frames := range p.All() {
		row := []string{label}
		for _, n := range frames.All() {
			row = append(row, strconv.Itoa(*n))
		}
		info := "NA"
		if bits, ok := stats.InfoContent(frames); ok {
			info = strconv.FormatFloat(bits, 'f', 4, 64)
		}
		if err := tw.WriteRow(append(row, info)...); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteMetagene writes one row per offset with one count column per
// footprint length.
func WriteMetagene(w io.Writer, m *stats.Metagene[stats.LenProfile[int]]) error {
	tw := NewTabWriter(w)

	// Every cell has the same lengths; label the columns from the first.
	header := []string{"Offset"}
	for _, lens := range m.All() {
		for label := range lens.All() {
			header = append(header, label)
		}
		break
	}
	if err := tw.WriteRow(header...); err != nil {
		return err
	}

	for pos, lens := range m.All() {
		row := []string{pos}
		for _, n := range lens.All() {
			row = append(row, strconv.Itoa(*n))
		}
		if err := tw.WriteRow(row...); err != nil {
			return err
		}
	}
	return tw.Flush()
}
