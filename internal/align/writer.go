package align

import (
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// AnnotationTag is the aux tag carrying the framing classification.
var AnnotationTag = sam.NewTag("ZF")

type recordWriter interface {
	Write(*sam.Record) error
}

// Writer writes annotated copies of alignment records. Files ending in .sam
// are written as SAM text, everything else as BAM.
type Writer struct {
	w         recordWriter
	bamWriter *bam.Writer
	file      *os.File
}

// Create opens path for writing with the given header.
func Create(path string, h *sam.Header, workers int) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create annotated output: %w", err)
	}

	w := &Writer{file: file}
	if strings.HasSuffix(path, ".sam") {
		w.w, err = sam.NewWriter(file, h, sam.FlagDecimal)
	} else {
		if workers < 1 {
			workers = 1
		}
		w.bamWriter, err = bam.NewWriter(file, h, workers)
		w.w = w.bamWriter
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create annotated output writer: %w", err)
	}
	return w, nil
}

// Write writes rec after setting its annotation tag to value.
func (w *Writer) Write(rec *sam.Record, value string) error {
	if err := SetTag(rec, AnnotationTag, value); err != nil {
		return err
	}
	if err := w.w.Write(rec); err != nil {
		return fmt.Errorf("write annotated record %s: %w", rec.Name, err)
	}
	return nil
}

// Close flushes and closes the output.
func (w *Writer) Close() error {
	var err error
	if w.bamWriter != nil {
		err = w.bamWriter.Close()
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// SetTag replaces any existing value of tag on rec.
func SetTag(rec *sam.Record, tag sam.Tag, value string) error {
	aux, err := sam.NewAux(tag, value)
	if err != nil {
		return fmt.Errorf("build %s tag: %w", tag, err)
	}
	fields := rec.AuxFields[:0]
	for _, f := range rec.AuxFields {
		if f.Tag() != tag {
			fields = append(fields, f)
		}
	}
	rec.AuxFields = append(fields, aux)
	return nil
}
