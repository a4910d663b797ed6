package duckdb

import (
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for an input file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. Streams such as
// "-" for stdin get a fingerprint with the path only.
func StatFile(path string) FileFingerprint {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return FileFingerprint{Path: path}
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// nullTime maps an unknown modification time to SQL NULL.
func (f FileFingerprint) nullTime() any {
	if f.ModTime.IsZero() {
		return nil
	}
	return f.ModTime
}

// RunInfo describes one framing run.
type RunInfo struct {
	Sample     string
	Created    time.Time
	Input      FileFingerprint
	Annotation FileFingerprint
	Records    int
}
