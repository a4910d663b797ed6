package cache

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/fatih/set.v0"
)

// GeneMap assigns transcripts to genes. Transcripts listed without a gene
// are suppressed from the catalog.
type GeneMap struct {
	genes      map[string]string
	suppressed set.Interface
}

// NewGeneMap creates an empty mapping.
func NewGeneMap() *GeneMap {
	return &GeneMap{
		genes:      make(map[string]string),
		suppressed: set.New(set.NonThreadSafe),
	}
}

// LoadGeneMap reads and merges one or more transcript-to-gene tables.
func LoadGeneMap(paths ...string) (*GeneMap, error) {
	m := NewGeneMap()
	for _, path := range paths {
		f, err := OpenText(path)
		if err != nil {
			return nil, fmt.Errorf("open gene table: %w", err)
		}
		err = m.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return m, nil
}

// Parse reads lines of "transcript<TAB>gene". A line with only a transcript
// suppresses it. Blank lines and lines starting with '#' are skipped.
func (m *GeneMap) Parse(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		switch {
		case len(fields) == 1 || (len(fields) == 2 && fields[1] == ""):
			m.suppressed.Add(fields[0])
			delete(m.genes, fields[0])
		case len(fields) == 2 && fields[0] != "":
			m.genes[fields[0]] = fields[1]
			m.suppressed.Remove(fields[0])
		default:
			return fmt.Errorf("line %d: expected transcript<TAB>gene, got %q", lineNum, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan gene table: %w", err)
	}
	return nil
}

// Gene returns the gene for a transcript, defaulting to the transcript name
// itself. keep is false when the transcript is suppressed.
func (m *GeneMap) Gene(transcript string) (gene string, keep bool) {
	if m == nil {
		return transcript, true
	}
	if m.suppressed.Has(transcript) {
		return "", false
	}
	if g, ok := m.genes[transcript]; ok {
		return g, true
	}
	return transcript, true
}

// Len returns the number of mapped plus suppressed transcripts.
func (m *GeneMap) Len() int {
	return len(m.genes) + m.suppressed.Size()
}
