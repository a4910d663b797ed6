package cache

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

type textFile struct {
	io.Reader
	closers []io.Closer
}

func (f *textFile) Close() error {
	var first error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenText opens a plain, gzip (.gz) or lz4 (.lz4) compressed text file.
func OpenText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return &textFile{Reader: gz, closers: []io.Closer{f, gz}}, nil
	case strings.HasSuffix(path, ".lz4"):
		return &textFile{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	}
	return f, nil
}
