package output

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/inodb/ribo-framing/internal/stats"
)

// Report file suffixes appended to the output prefix.
const (
	StatsSuffix       = "_framing_stats.txt"
	FrameLengthSuffix = "_frame_length.txt"
	AroundStartSuffix = "_around_start.txt"
	AroundEndSuffix   = "_around_end.txt"
)

// Reports holds the four report files of a run. They are created before
// processing starts so that an unwritable prefix fails early.
type Reports struct {
	paths []string
	files []*os.File
}

// CreateReports creates (truncating) the report files for prefix.
func CreateReports(prefix string) (*Reports, error) {
	r := &Reports{}
	for _, suffix := range []string{StatsSuffix, FrameLengthSuffix, AroundStartSuffix, AroundEndSuffix} {
		f, err := os.Create(prefix + suffix)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("create report: %w", err)
		}
		r.paths = append(r.paths, f.Name())
		r.files = append(r.files, f)
	}
	return r, nil
}

// Paths returns the report file names in write order.
func (r *Reports) Paths() []string {
	return r.paths
}

// Write renders every table of s into its report file.
func (r *Reports) Write(s *stats.FramingStats) error {
	writers := []func(io.Writer) error{
		func(w io.Writer) error { return WriteOutcomes(w, &s.Align) },
		func(w io.Writer) error { return WriteFrameLength(w, &s.FrameLength) },
		func(w io.Writer) error { return WriteMetagene(w, &s.AroundStart) },
		func(w io.Writer) error { return WriteMetagene(w, &s.AroundEnd) },
	}
	for i, write := range writers {
		if err := write(r.files[i]); err != nil {
			return fmt.Errorf("write %s: %w", r.files[i].Name(), err)
		}
	}
	return nil
}

// Close closes every report file. Closing twice is a no-op.
func (r *Reports) Close() error {
	var errs []error
	for _, f := range r.files {
		errs = append(errs, f.Close())
	}
	r.files = nil
	return errors.Join(errs...)
}
