// Package align reads and writes BAM/SAM alignment records and converts them
// into genomic footprint locations.
package align

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

type recordReader interface {
	Read() (*sam.Record, error)
	Header() *sam.Header
}

// Reader reads alignment records from a BAM or SAM stream.
type Reader struct {
	rr           recordReader
	file         *os.File
	bamReader    *bam.Reader
	refs         *RefNames
	recordNumber int
}

// Open opens a BAM or SAM file, or stdin for "-". BAM is recognised by its
// BGZF magic bytes; anything else is read as SAM text. workers bounds BGZF
// decompression concurrency.
func Open(path string, workers int) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin, workers)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment file: %w", err)
	}
	r, err := NewReader(file, workers)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReader creates a reader from an io.Reader (e.g., stdin).
func NewReader(in io.Reader, workers int) (*Reader, error) {
	if workers < 1 {
		workers = 1
	}
	br := bufio.NewReader(in)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read alignment header: %w", err)
	}

	r := &Reader{}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		r.bamReader, err = bam.NewReader(br, workers)
		if err != nil {
			return nil, fmt.Errorf("create BAM reader: %w", err)
		}
		r.rr = r.bamReader
	} else {
		r.rr, err = sam.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create SAM reader: %w", err)
		}
	}
	r.refs = NewRefNames(r.rr.Header())
	return r, nil
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*sam.Record, error) {
	rec, err := r.rr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", r.recordNumber+1, err)
	}
	r.recordNumber++
	return rec, nil
}

// Header returns the alignment header.
func (r *Reader) Header() *sam.Header {
	return r.rr.Header()
}

// Refs returns the interned reference names of the header.
func (r *Reader) Refs() *RefNames {
	return r.refs
}

// RecordNumber returns the number of records read so far.
func (r *Reader) RecordNumber() int {
	return r.recordNumber
}

// Close closes the reader and releases resources.
func (r *Reader) Close() error {
	var err error
	if r.bamReader != nil {
		err = r.bamReader.Close()
	}
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
