package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/ribo-framing/internal/locus"
)

// BED12 column indexes.
const (
	bedChrom      = 0
	bedStart      = 1
	bedName       = 3
	bedStrand     = 5
	bedThickStart = 6
	bedThickEnd   = 7
	bedBlockCount = 9
	bedBlockSizes = 10
	bedBlockStart = 11
	bedColumns    = 12
)

// BEDLoader loads transcripts from a 12-column BED file. The BED name is used
// as transcript ID and, unless a GeneMap says otherwise, as gene ID.
type BEDLoader struct {
	path   string
	genes  *GeneMap
	logger *zap.Logger
}

// NewBEDLoader creates a new BED loader.
func NewBEDLoader(path string) *BEDLoader {
	return &BEDLoader{path: path, logger: zap.NewNop()}
}

// SetGeneMap assigns transcript-to-gene overrides.
func (l *BEDLoader) SetGeneMap(m *GeneMap) {
	l.genes = m
}

// SetLogger sets the logger for load summaries.
func (l *BEDLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load reads all transcripts from the BED file into the catalog.
func (l *BEDLoader) Load(c *Catalog) error {
	f, err := OpenText(l.path)
	if err != nil {
		return fmt.Errorf("open BED file: %w", err)
	}
	defer f.Close()

	n, skipped, err := l.parse(f, c)
	if err != nil {
		return fmt.Errorf("%s: %w", l.path, err)
	}
	l.logger.Info("loaded transcripts",
		zap.String("path", l.path),
		zap.Int("transcripts", n),
		zap.Int("suppressed", skipped),
		zap.Int("genes", c.GeneCount()))
	return nil
}

func (l *BEDLoader) parse(reader io.Reader, c *Catalog) (loaded, skipped int, err error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		t, err := ParseBED12(line, l.genes)
		if err != nil {
			return loaded, skipped, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if t == nil {
			skipped++
			continue
		}
		if _, err := c.AddTranscript(t); err != nil {
			return loaded, skipped, fmt.Errorf("line %d: %w", lineNum, err)
		}
		loaded++
	}

	if err := scanner.Err(); err != nil {
		return loaded, skipped, fmt.Errorf("scan BED: %w", err)
	}
	return loaded, skipped, nil
}

// ParseBED12 converts one BED12 line into a transcript. It returns nil
// without error when genes suppresses the transcript.
func ParseBED12(line string, genes *GeneMap) (*Transcript, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < bedColumns {
		return nil, fmt.Errorf("expected %d BED columns, got %d", bedColumns, len(fields))
	}

	name := fields[bedName]
	if name == "" {
		return nil, fmt.Errorf("no name")
	}
	geneName, keep := genes.Gene(name)
	if !keep {
		return nil, nil
	}

	loc, err := locFromBED(fields)
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", name, err)
	}
	cds, err := cdsFromBED(fields, loc)
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", name, err)
	}
	return NewTranscript(locus.Intern(geneName), locus.Intern(name), loc, cds)
}

func locFromBED(fields []string) (*locus.Spliced, error) {
	start, err := strconv.Atoi(fields[bedStart])
	if err != nil {
		return nil, fmt.Errorf("bad start: %w", err)
	}
	count, err := strconv.Atoi(fields[bedBlockCount])
	if err != nil {
		return nil, fmt.Errorf("bad block count: %w", err)
	}
	sizes, err := parseIntList(fields[bedBlockSizes])
	if err != nil {
		return nil, fmt.Errorf("bad block sizes: %w", err)
	}
	starts, err := parseIntList(fields[bedBlockStart])
	if err != nil {
		return nil, fmt.Errorf("bad block starts: %w", err)
	}
	if len(sizes) != count || len(starts) != count {
		return nil, fmt.Errorf("block count = %d, |sizes| = %d, |starts| = %d", count, len(sizes), len(starts))
	}
	strand, err := locus.ParseStrand(fields[bedStrand])
	if err != nil {
		return nil, err
	}

	loc, err := locus.NewSpliced(locus.Intern(fields[bedChrom]), start, sizes, starts, strand)
	if err != nil {
		return nil, fmt.Errorf("splicing: %w", err)
	}
	return loc, nil
}

// cdsFromBED converts genomic thickStart/thickEnd into a transcript CDS range.
// thickEnd is exclusive, so it may fall just past the last exon.
func cdsFromBED(fields []string, loc *locus.Spliced) (*CDSRange, error) {
	thickStart, err := strconv.Atoi(fields[bedThickStart])
	if err != nil {
		return nil, fmt.Errorf("bad thickStart: %w", err)
	}
	thickEnd, err := strconv.Atoi(fields[bedThickEnd])
	if err != nil {
		return nil, fmt.Errorf("bad thickEnd: %w", err)
	}
	if thickStart >= thickEnd {
		return nil, nil
	}

	ref, strand := loc.Ref(), loc.Strand()
	left, _, ok := loc.ProjectInto(locus.Pos{Ref: ref, Pos: thickStart, Strand: strand})
	if !ok {
		return nil, fmt.Errorf("thickStart %d not in transcript", thickStart)
	}

	var right int
	if pos, _, ok := loc.ProjectInto(locus.Pos{Ref: ref, Pos: thickEnd, Strand: strand}); ok {
		if strand == locus.Forward {
			right = pos - 1
		} else {
			right = pos + 1
		}
	} else {
		right, _, ok = loc.ProjectInto(locus.Pos{Ref: ref, Pos: thickEnd - 1, Strand: strand})
		if !ok {
			return nil, fmt.Errorf("thickEnd %d not in transcript", thickEnd)
		}
	}

	return &CDSRange{Start: min(left, right), End: max(left, right) + 1}, nil
}

// parseIntList parses "1,2,3," allowing a trailing comma.
func parseIntList(s string) ([]int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
